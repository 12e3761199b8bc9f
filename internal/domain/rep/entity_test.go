package rep

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeeklyTargetsNormalized(t *testing.T) {
	got := WeeklyTargets{DiscoveryScheduled: 3}.Normalized()
	assert.Equal(t, 3, got.DiscoveryScheduled)
	assert.Equal(t, 1, got.DiscoveryCompleted)
	assert.Equal(t, 1, got.DealsToOnboarding)
	assert.Equal(t, 1, got.DealsLive)
}

func TestSalesRepIsAdmin(t *testing.T) {
	assert.True(t, SalesRep{Role: "admin"}.IsAdmin())
	assert.True(t, SalesRep{Role: " Manager "}.IsAdmin())
	assert.False(t, SalesRep{Role: "rep"}.IsAdmin())
	assert.False(t, SalesRep{}.IsAdmin())
}
