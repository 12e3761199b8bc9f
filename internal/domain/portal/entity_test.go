// internal/domain/portal/entity_test.go
package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(t *testing.T, v Variant) ClientRecord {
	t.Helper()
	c, err := NewClientRecord("client-1", "Acme Plumbing", v)
	require.NoError(t, err)
	return c
}

func TestUnlockRule(t *testing.T) {
	for _, v := range []Variant{VariantMonthToMonth, VariantContract} {
		c := newRecord(t, v)
		n := c.StepCount()

		// 初期状態: ステップ1のみ解放
		for i := 1; i <= n; i++ {
			assert.Equal(t, i == 1, c.StepUnlocked(i), "variant=%s step=%d fresh", v, i)
		}

		// 逐次完了させながら全 i について規則を確認
		for done := 1; done <= n; done++ {
			changed, err := c.MarkStep(done)
			require.NoError(t, err)
			assert.True(t, changed)

			for i := 1; i <= n; i++ {
				want := i == 1 || c.StepComplete(i-1)
				assert.Equal(t, want, c.StepUnlocked(i), "variant=%s done=%d step=%d", v, done, i)
			}
		}
	}
}

func TestMarkStepLocked(t *testing.T) {
	c := newRecord(t, VariantContract)

	_, err := c.MarkStep(3)
	assert.ErrorIs(t, err, ErrStepLocked)
	assert.Equal(t, 0, c.CompletedCount())

	_, err = c.MarkStep(7)
	assert.ErrorIs(t, err, ErrStepOutOfRange)

	_, err = c.MarkStep(0)
	assert.ErrorIs(t, err, ErrStepOutOfRange)
}

func TestMarkStepIdempotent(t *testing.T) {
	c := newRecord(t, VariantMonthToMonth)

	changed, err := c.MarkStep(1)
	require.NoError(t, err)
	assert.True(t, changed)

	before := append([]bool(nil), c.Steps...)
	changed, err = c.MarkStep(1)
	require.NoError(t, err)
	assert.False(t, changed, "re-marking a completed step must be a no-op")
	assert.Equal(t, before, c.Steps)
}

func TestUnmarkStepRevertsOptimisticUpdate(t *testing.T) {
	c := newRecord(t, VariantContract)

	_, err := c.MarkStep(1)
	require.NoError(t, err)
	c.UnmarkStep(1)
	assert.False(t, c.StepComplete(1))
	assert.True(t, c.StepUnlocked(1))
}

func TestReset(t *testing.T) {
	c := newRecord(t, VariantContract)
	for i := 1; i <= c.StepCount(); i++ {
		_, err := c.MarkStep(i)
		require.NoError(t, err)
	}
	c.Links.Creative = "https://preview.example.com/acme"
	c.HasPendingRevision = true

	c.Reset()

	p := Project(&c)
	assert.Equal(t, 0, p.Completed)
	assert.Equal(t, 0, p.Percentage)
	assert.Equal(t, LinkSet{}, c.Links)
	assert.False(t, c.HasPendingRevision)
	for i := 1; i <= c.StepCount(); i++ {
		assert.Equal(t, i == 1, c.StepUnlocked(i), "after reset only step 1 unlocked, step=%d", i)
	}
}

func TestResolveLink(t *testing.T) {
	assert.Equal(t, "https://custom", ResolveLink("https://custom", "https://default"))
	assert.Equal(t, "https://default", ResolveLink("", "https://default"))
	assert.Equal(t, "https://default", ResolveLink("   ", "https://default"))
}

func TestLinkSetSelection(t *testing.T) {
	l := LinkSet{
		Service6:        "s6",
		Service12:       "s12",
		Stripe6Monthly:  "6m",
		Stripe6Upfront:  "6u",
		Stripe12Monthly: "12m",
		Stripe12Upfront: "12u",
	}
	assert.Equal(t, "s6", l.ServiceLink(Term6))
	assert.Equal(t, "s12", l.ServiceLink(Term12))
	assert.Equal(t, "6m", l.PaymentLink(Term6, PayMonthly))
	assert.Equal(t, "6u", l.PaymentLink(Term6, PayUpfront))
	assert.Equal(t, "12m", l.PaymentLink(Term12, PayMonthly))
	assert.Equal(t, "12u", l.PaymentLink(Term12, PayUpfront))
}

func TestAllCompleteAndFinalStep(t *testing.T) {
	c := newRecord(t, VariantMonthToMonth)
	assert.Equal(t, 5, c.FinalStep())
	for i := 1; i <= 5; i++ {
		assert.False(t, c.AllComplete())
		_, err := c.MarkStep(i)
		require.NoError(t, err)
	}
	assert.True(t, c.AllComplete())
}
