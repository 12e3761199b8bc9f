package trigger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadportal/internal/domain/chat"
	"leadportal/internal/domain/deal"
	"leadportal/internal/domain/notification"
	"leadportal/internal/domain/portal"
	"leadportal/internal/domain/quote"
	"leadportal/internal/domain/revision"
)

var testRules = Rules{
	AdminBaseURL:  "https://admin.example.com",
	PortalBaseURL: "https://portal.example.com",
	OpsEmail:      "ops@example.com",
}

// 2026-09-01 is in ISO week 2026-W36.
var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func commandsOfType[T Command](cmds []Command) []T {
	var out []T
	for _, c := range cmds {
		if v, ok := c.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func TestOnDealUpdatedStageChangeIncrementsScorecard(t *testing.T) {
	before := deal.Deal{ID: "d1", CompanyName: "Acme", Stage: deal.StageQualified, AssignedTo: "rep-1"}
	after := before
	after.Stage = deal.StageDiscoveryScheduled

	cmds := testRules.OnDealUpdated(before, after, testNow)

	incs := commandsOfType[IncrementScorecard](cmds)
	require.Len(t, incs, 1)
	assert.Equal(t, "rep-1", incs[0].RepID)
	assert.Equal(t, "2026-W36", incs[0].WeekID)
	assert.Equal(t, "discoveryScheduled", incs[0].Counter)
}

func TestOnDealUpdatedSameStageNoIncrement(t *testing.T) {
	before := deal.Deal{ID: "d1", CompanyName: "Acme", Stage: deal.StageDiscoveryScheduled, AssignedTo: "rep-1"}
	after := before
	after.Notes = "updated notes"

	cmds := testRules.OnDealUpdated(before, after, testNow)

	assert.Empty(t, commandsOfType[IncrementScorecard](cmds))
	// Notes is not a watched field either.
	assert.Empty(t, commandsOfType[AppendAudit](cmds))
}

func TestOnDealUpdatedUnassignedNoIncrement(t *testing.T) {
	before := deal.Deal{ID: "d1", CompanyName: "Acme", Stage: deal.StageQualified, AssignedTo: "unassigned"}
	after := before
	after.Stage = deal.StageDiscoveryScheduled

	cmds := testRules.OnDealUpdated(before, after, testNow)
	assert.Empty(t, commandsOfType[IncrementScorecard](cmds))
	// The stage change is still audited.
	assert.Len(t, commandsOfType[AppendAudit](cmds), 1)
}

func TestOnDealUpdatedUncountedStage(t *testing.T) {
	before := deal.Deal{ID: "d1", CompanyName: "Acme", Stage: deal.StageLead, AssignedTo: "rep-1"}
	after := before
	after.Stage = deal.StageFollowUp

	cmds := testRules.OnDealUpdated(before, after, testNow)
	assert.Empty(t, commandsOfType[IncrementScorecard](cmds))
}

func TestOnDealUpdatedAuditDiff(t *testing.T) {
	before := deal.Deal{ID: "d1", CompanyName: "Acme", Stage: deal.StageQualified, AssignedTo: "rep-1", MRR: 1000}
	after := before
	after.Stage = deal.StageDiscoveryCompleted
	after.MRR = 1500
	after.LastUpdatedBy = "rep-1"

	cmds := testRules.OnDealUpdated(before, after, testNow)

	audits := commandsOfType[AppendAudit](cmds)
	require.Len(t, audits, 1)
	assert.Equal(t, "d1", audits[0].Entry.DealID)
	assert.Equal(t, "rep-1", audits[0].Entry.ChangedBy)
	assert.Len(t, audits[0].Entry.Changes, 2)
	assert.Contains(t, audits[0].Entry.Changes, "stage")
	assert.Contains(t, audits[0].Entry.Changes, "mrr")
}

func TestOnDealUpdatedAssignmentNotifiesRep(t *testing.T) {
	before := deal.Deal{ID: "d1", CompanyName: "Acme", Stage: deal.StageQualified, AssignedTo: "unassigned"}
	after := before
	after.AssignedTo = "rep-2"

	cmds := testRules.OnDealUpdated(before, after, testNow)

	notes := commandsOfType[CreateNotification](cmds)
	require.Len(t, notes, 1)
	assert.Equal(t, notification.TypeDealAssigned, notes[0].Record.Type)
	assert.Equal(t, "rep-2", notes[0].Record.RecipientID)
	assert.Equal(t, notification.RecipientSalesRep, notes[0].Record.RecipientType)
}

func TestOnQuoteStatusTransitionCompletionEdge(t *testing.T) {
	before := quote.Quote{ID: "q1", BusinessName: "Bloom Bakery", OwnerName: "Dana", Email: "dana@bloom.test", Phone: "555-0101", Status: quote.StatusIncomplete}
	after := before
	after.Status = quote.StatusCompleted

	cmds := testRules.OnQuoteStatusTransition(before, after, testNow)

	deals := commandsOfType[CreateDeal](cmds)
	require.Len(t, deals, 1)
	assert.Equal(t, "Bloom Bakery", deals[0].Deal.CompanyName)
	assert.Equal(t, deal.StageLead, deals[0].Deal.Stage)
	assert.Equal(t, "unassigned", deals[0].Deal.AssignedTo)
	assert.Equal(t, "q1", deals[0].Deal.WebsiteQuoteID)

	notes := commandsOfType[CreateNotification](cmds)
	require.Len(t, notes, 1)
	assert.Equal(t, notification.TypeQuoteSubmitted, notes[0].Record.Type)

	mails := commandsOfType[SendEmail](cmds)
	require.Len(t, mails, 1)
	assert.Equal(t, "ops@example.com", mails[0].To)
}

func TestOnQuoteStatusTransitionResaveIsSilent(t *testing.T) {
	q := quote.Quote{ID: "q1", BusinessName: "Bloom Bakery", Status: quote.StatusCompleted}
	assert.Empty(t, testRules.OnQuoteStatusTransition(q, q, testNow))
}

func TestOnQuoteStatusTransitionStillIncomplete(t *testing.T) {
	q := quote.Quote{ID: "q1", Status: quote.StatusIncomplete}
	assert.Empty(t, testRules.OnQuoteStatusTransition(q, q, testNow))
}

func TestOnStepCompletedNotifiesAdmin(t *testing.T) {
	c, err := portal.NewClientRecord("c1", "Acme", portal.VariantContract)
	require.NoError(t, err)
	c.Steps[0] = true
	c.Steps[1] = true

	cmds := testRules.OnStepCompleted(c, 2, testNow)

	notes := commandsOfType[CreateNotification](cmds)
	require.Len(t, notes, 1)
	assert.Equal(t, notification.TypeClientStepComplete, notes[0].Record.Type)
	assert.Equal(t, AdminRecipientID, notes[0].Record.RecipientID)
	assert.Contains(t, notes[0].Record.Message, "step 2 of 6")
	assert.Empty(t, commandsOfType[SendEmail](cmds))
}

func TestOnStepCompletedPenultimateStepEmailsOps(t *testing.T) {
	c, err := portal.NewClientRecord("c1", "Acme", portal.VariantContract)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		c.Steps[i] = true
	}

	cmds := testRules.OnStepCompleted(c, 5, testNow)

	mails := commandsOfType[SendEmail](cmds)
	require.Len(t, mails, 1)
	assert.Equal(t, "ops@example.com", mails[0].To)
	assert.Contains(t, mails[0].Subject, "final approval")
}

func TestOnMessagePostedClientToAdmin(t *testing.T) {
	m, err := chat.NewMessage("hello", chat.SenderClient, "Acme")
	require.NoError(t, err)

	cmds := testRules.OnMessagePosted("c1", "Acme", m)

	notes := commandsOfType[CreateNotification](cmds)
	require.Len(t, notes, 1)
	assert.Equal(t, notification.TypeMessageReceived, notes[0].Record.Type)
	assert.Equal(t, notification.RecipientAdmin, notes[0].Record.RecipientType)
}

func TestOnMessagePostedAdminToClient(t *testing.T) {
	m, err := chat.NewMessage("hi there", chat.SenderAdmin, "Team")
	require.NoError(t, err)

	cmds := testRules.OnMessagePosted("c1", "Acme", m)

	notes := commandsOfType[CreateNotification](cmds)
	require.Len(t, notes, 1)
	assert.Equal(t, notification.TypeMessageReply, notes[0].Record.Type)
	assert.Equal(t, "c1", notes[0].Record.RecipientID)
	assert.Equal(t, notification.RecipientClient, notes[0].Record.RecipientType)
}

func TestOnRevisionRequested(t *testing.T) {
	req, err := revision.NewRequest("c1", "Acme", "please fix the hero image", nil)
	require.NoError(t, err)

	cmds := testRules.OnRevisionRequested(req)

	notes := commandsOfType[CreateNotification](cmds)
	require.Len(t, notes, 1)
	assert.Equal(t, notification.TypeRevisionRequested, notes[0].Record.Type)
	assert.Contains(t, notes[0].Record.Message, "Acme")
}
