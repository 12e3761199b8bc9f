// internal/domain/audit/entity_test.go
package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dealdom "leadportal/internal/domain/deal"
)

func TestDiffDealTwoFields(t *testing.T) {
	before := dealdom.Deal{Stage: dealdom.StageQualified, CompanyName: "Acme", MRR: 1500, AssignedTo: "rep1"}
	after := before
	after.Stage = dealdom.StageDiscoveryScheduled
	after.MRR = 2000

	changes := DiffDeal(before, after)
	require.Len(t, changes, 2)
	assert.Equal(t, FieldChange{From: "qualified", To: "discovery-scheduled"}, changes["stage"])
	assert.Equal(t, FieldChange{From: 1500.0, To: 2000.0}, changes["mrr"])
}

func TestDiffDealUnwatchedFieldOnly(t *testing.T) {
	before := dealdom.Deal{Stage: dealdom.StageQualified, CompanyName: "Acme", Notes: "called twice"}
	after := before
	after.Notes = "left voicemail"
	after.Phone = "555-0100"

	assert.Empty(t, DiffDeal(before, after))
}

func TestDiffDealNoChange(t *testing.T) {
	d := dealdom.Deal{Stage: dealdom.StageCampaignLive, CompanyName: "Acme"}
	assert.Empty(t, DiffDeal(d, d))
}

func TestNewEntry(t *testing.T) {
	after := dealdom.Deal{CompanyName: "Acme", LastUpdatedBy: "rep1"}
	changes := map[string]FieldChange{"mrr": {From: 0.0, To: 900.0}}

	e, err := NewEntry("deal-1", after, changes)
	require.NoError(t, err)
	assert.Equal(t, "deal-1", e.DealID)
	assert.Equal(t, "Acme", e.CompanyName)
	assert.Equal(t, "rep1", e.ChangedBy)
	assert.Equal(t, changes, e.Changes)
}

func TestNewEntryAttributionFallsBackToSystem(t *testing.T) {
	e, err := NewEntry("deal-1", dealdom.Deal{CompanyName: "Acme"}, map[string]FieldChange{"stage": {}})
	require.NoError(t, err)
	assert.Equal(t, "system", e.ChangedBy)
}

func TestNewEntryRejectsEmptyDiff(t *testing.T) {
	_, err := NewEntry("deal-1", dealdom.Deal{}, nil)
	assert.ErrorIs(t, err, ErrEmptyDiff)

	_, err = NewEntry("", dealdom.Deal{}, map[string]FieldChange{"stage": {}})
	assert.ErrorIs(t, err, ErrInvalidID)
}
