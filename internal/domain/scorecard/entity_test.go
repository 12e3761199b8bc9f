// internal/domain/scorecard/entity_test.go
package scorecard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	dealdom "leadportal/internal/domain/deal"
)

func TestWeekID(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{
			name: "mid-week",
			at:   time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC), // Tuesday
			want: "2026-W36",
		},
		{
			name: "monday boundary",
			at:   time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), // Monday 00:00
			want: "2026-W36",
		},
		{
			name: "sunday belongs to same monday-started week",
			at:   time.Date(2026, 9, 6, 23, 59, 59, 0, time.UTC),
			want: "2026-W36",
		},
		{
			name: "iso year rollover: jan 1 in previous iso year",
			at:   time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), // Friday, ISO week 53 of 2026
			want: "2026-W53",
		},
		{
			name: "non-utc input is bucketed in utc",
			at:   time.Date(2026, 9, 7, 5, 0, 0, 0, time.FixedZone("UTC+10", 10*3600)), // Sunday 19:00 UTC
			want: "2026-W36",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekID(tt.at))
		})
	}
}

func TestEntryID(t *testing.T) {
	assert.Equal(t, "rep42_2026-W36", EntryID("rep42", "2026-W36"))
}

func TestCounterForStage(t *testing.T) {
	tests := []struct {
		stage   dealdom.Stage
		counter string
		ok      bool
	}{
		{dealdom.StageDiscoveryScheduled, CounterDiscoveryScheduled, true},
		{dealdom.StageDiscoveryCompleted, CounterDiscoveryCompleted, true},
		{dealdom.StageOnboardingPortal, CounterDealsToOnboarding, true},
		{dealdom.StageCampaignLive, CounterDealsLive, true},
		{dealdom.StageQualified, "", false},
		{dealdom.StageClosedLost, "", false},
		{dealdom.StageLead, "", false},
	}
	for _, tt := range tests {
		c, ok := CounterForStage(tt.stage)
		assert.Equal(t, tt.ok, ok, "stage=%s", tt.stage)
		assert.Equal(t, tt.counter, c, "stage=%s", tt.stage)
	}
}

func TestEntryTotal(t *testing.T) {
	e := Entry{DiscoveryScheduled: 1, DiscoveryCompleted: 2, DealsToOnboarding: 3, DealsLive: 4}
	assert.Equal(t, 10, e.Total())
}
