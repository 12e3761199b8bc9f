// internal/domain/portal/entity.go
package portal

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ========================================
// Variant
// ========================================

// Variant はポータルの契約形態を表します。
// 形態によってオンボーディングのステップ数が変わります。
type Variant string

const (
	// VariantContract: 6/12ヶ月契約ポータル（6ステップ）
	VariantContract Variant = "contract"
	// VariantMonthToMonth: 月額契約ポータル（5ステップ）
	VariantMonthToMonth Variant = "m2m"
)

func IsValidVariant(v Variant) bool {
	switch v {
	case VariantContract, VariantMonthToMonth:
		return true
	default:
		return false
	}
}

// StepCount returns the number of onboarding steps for the variant.
func (v Variant) StepCount() int {
	if v == VariantMonthToMonth {
		return 5
	}
	return 6
}

// ========================================
// Errors
// ========================================

var (
	ErrInvalidID      = errors.New("portal: invalid client id")
	ErrNotFound       = errors.New("portal: not found")
	ErrInactive       = errors.New("portal: inactive")
	ErrStepOutOfRange = errors.New("portal: step out of range")
	ErrStepLocked     = errors.New("portal: step locked")
)

// ========================================
// Links
// ========================================

// ServiceTerm は契約期間（6ヶ月/12ヶ月）を表します。
type ServiceTerm string

const (
	Term6  ServiceTerm = "service6"
	Term12 ServiceTerm = "service12"
)

// PaymentType は支払い方法を表します。
type PaymentType string

const (
	PayMonthly PaymentType = "monthly"
	PayUpfront PaymentType = "upfront"
)

// LinkSet holds per-client URL overrides. Empty string means "not set";
// resolution against deployment defaults happens via ResolveLink, never by
// chained optional access at call sites.
type LinkSet struct {
	DPA       string
	Service6  string
	Service12 string

	Stripe6Monthly  string
	Stripe6Upfront  string
	Stripe12Monthly string
	Stripe12Upfront string

	UploadFolder string
	Creative     string
}

// ResolveLink は上書きリンクがあればそれを、なければデプロイ既定値を返します。
// 常に定義済みの値を返します（空文字の二段フォールバックはしない）。
func ResolveLink(override, def string) string {
	if s := strings.TrimSpace(override); s != "" {
		return s
	}
	return def
}

// ServiceLink picks the agreement link override for a term.
func (l LinkSet) ServiceLink(term ServiceTerm) string {
	if term == Term12 {
		return l.Service12
	}
	return l.Service6
}

// PaymentLink picks the payment link override for a term/type pair.
func (l LinkSet) PaymentLink(term ServiceTerm, pay PaymentType) string {
	switch {
	case term == Term12 && pay == PayUpfront:
		return l.Stripe12Upfront
	case term == Term12:
		return l.Stripe12Monthly
	case pay == PayUpfront:
		return l.Stripe6Upfront
	default:
		return l.Stripe6Monthly
	}
}

// ========================================
// Entity (Firestore document: clients/{id})
// ========================================

// ClientRecord は1クライアント分のオンボーディング状態を保持します。
// Steps[i] はステップ i+1 の完了フラグです（長さは Variant.StepCount()）。
type ClientRecord struct {
	ID         string
	Active     bool
	ClientName string
	Variant    Variant

	Steps []bool
	Links LinkSet

	// クライアント操作で立ち、管理側の処理で落ちるフラグ（落とす側はスコープ外）
	HasPendingRevision         bool
	HasUnreviewedWebsiteAccess bool

	LastUpdated time.Time
}

// NewClientRecord builds an empty onboarding record for a variant.
func NewClientRecord(id, clientName string, v Variant) (ClientRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ClientRecord{}, ErrInvalidID
	}
	if !IsValidVariant(v) {
		v = VariantContract
	}
	return ClientRecord{
		ID:         id,
		Active:     true,
		ClientName: strings.TrimSpace(clientName),
		Variant:    v,
		Steps:      make([]bool, v.StepCount()),
	}, nil
}

// StepCount returns the fixed number of steps for this record.
func (c *ClientRecord) StepCount() int {
	return c.Variant.StepCount()
}

// StepComplete reports whether the 1-based step is complete.
func (c *ClientRecord) StepComplete(step int) bool {
	if step < 1 || step > len(c.Steps) {
		return false
	}
	return c.Steps[step-1]
}

// StepUnlocked は解放規則を判定します:
// ステップ i は i==1 または ステップ i-1 が完了している場合のみ操作可能。
func (c *ClientRecord) StepUnlocked(step int) bool {
	if step < 1 || step > c.StepCount() {
		return false
	}
	return step == 1 || c.StepComplete(step-1)
}

// MarkStep sets the 1-based step complete. Re-marking a completed step is a
// no-op (changed=false) so callers can skip the write entirely. Marking a
// locked step is rejected.
func (c *ClientRecord) MarkStep(step int) (changed bool, err error) {
	if step < 1 || step > c.StepCount() {
		return false, fmt.Errorf("%w: %d of %d", ErrStepOutOfRange, step, c.StepCount())
	}
	if c.Steps[step-1] {
		return false, nil
	}
	if !c.StepUnlocked(step) {
		return false, fmt.Errorf("%w: step %d requires step %d", ErrStepLocked, step, step-1)
	}
	c.Steps[step-1] = true
	return true, nil
}

// UnmarkStep reverts an optimistic MarkStep after a failed save.
func (c *ClientRecord) UnmarkStep(step int) {
	if step >= 1 && step <= len(c.Steps) {
		c.Steps[step-1] = false
	}
}

// CompletedCount returns how many steps are complete.
func (c *ClientRecord) CompletedCount() int {
	n := 0
	for _, done := range c.Steps {
		if done {
			n++
		}
	}
	return n
}

// AllComplete reports whether every step is complete.
func (c *ClientRecord) AllComplete() bool {
	return c.CompletedCount() == c.StepCount()
}

// FinalStep returns the 1-based terminal (creative approval) step.
func (c *ClientRecord) FinalStep() int {
	return c.StepCount()
}

// Reset はすべてのステップフラグと派生フィールド（リンク上書き・
// 申請フラグ）を初期状態に戻します。永続化側は単一書き込みで行うこと。
func (c *ClientRecord) Reset() {
	c.Steps = make([]bool, c.StepCount())
	c.Links = LinkSet{}
	c.HasPendingRevision = false
	c.HasUnreviewedWebsiteAccess = false
}
