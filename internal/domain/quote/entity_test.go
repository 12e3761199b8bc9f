// internal/domain/quote/entity_test.go
package quote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteEdge(t *testing.T) {
	q, err := NewQuote("WQ_1", time.Now())
	require.NoError(t, err)
	require.Equal(t, StatusIncomplete, q.Status)

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	assert.True(t, q.Complete(now))
	assert.Equal(t, StatusCompleted, q.Status)
	require.NotNil(t, q.CompletedAt)
	assert.Equal(t, now, *q.CompletedAt)

	// 同じ状態への再保存は遷移ではない
	assert.False(t, q.Complete(now.Add(time.Hour)))
	assert.Equal(t, now, *q.CompletedAt)
}

func TestDisplayName(t *testing.T) {
	q := Quote{BusinessName: "  Acme Plumbing "}
	assert.Equal(t, "Acme Plumbing", q.DisplayName())
	assert.Equal(t, "Website Quote Lead", Quote{}.DisplayName())
}

func TestNewQuoteRequiresID(t *testing.T) {
	_, err := NewQuote("  ", time.Now())
	assert.ErrorIs(t, err, ErrInvalidID)
}
