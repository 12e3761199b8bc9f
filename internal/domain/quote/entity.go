// internal/domain/quote/entity.go
package quote

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ========================================
// Status
// ========================================

// Status はウェブサイト見積りフォームの状態です。
// incomplete -> completed の一方向遷移のみ。
type Status string

const (
	StatusIncomplete Status = "incomplete"
	StatusCompleted  Status = "completed"
)

// ========================================
// Errors
// ========================================

var (
	ErrInvalidID        = errors.New("quote: invalid id")
	ErrNotFound         = errors.New("quote: not found")
	ErrAlreadyCompleted = errors.New("quote: already completed")
)

// ========================================
// Entity (Firestore document: websiteQuotes/{id})
// ========================================

// Quote はマルチセクションの見積りウィザードが自動保存するドキュメント
// です。ウィザード自体はスコープ外なので、コアが読むフィールドだけを
// 型付けし、残りのセクション回答は Answers にそのまま持ちます。
type Quote struct {
	ID           string
	BusinessName string
	OwnerName    string
	Email        string
	Phone        string
	BusinessType string
	Locations    string
	BudgetRange  string

	Status            Status
	CompletionPercent int

	// Answers holds merge-saved wizard section fields verbatim.
	Answers map[string]any

	CreatedAt   time.Time
	LastUpdated time.Time
	CompletedAt *time.Time
}

// NewQuote builds a fresh incomplete quote.
func NewQuote(id string, now time.Time) (Quote, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Quote{}, ErrInvalidID
	}
	return Quote{
		ID:          id,
		Status:      StatusIncomplete,
		Answers:     map[string]any{},
		CreatedAt:   now.UTC(),
		LastUpdated: now.UTC(),
	}, nil
}

// Complete transitions incomplete -> completed. Completing an already
// completed quote reports changed=false so downstream effects (deal
// creation, notification, email) fire once per transition, never per save.
func (q *Quote) Complete(now time.Time) (changed bool) {
	if q.Status == StatusCompleted {
		return false
	}
	q.Status = StatusCompleted
	t := now.UTC()
	q.CompletedAt = &t
	q.LastUpdated = t
	return true
}

// DisplayName returns the business name or a placeholder for deal creation.
func (q Quote) DisplayName() string {
	if s := strings.TrimSpace(q.BusinessName); s != "" {
		return s
	}
	return "Website Quote Lead"
}

// ========================================
// Port
// ========================================

// Repository は見積りドキュメントの永続化ポートです。
type Repository interface {
	GetByID(ctx context.Context, id string) (Quote, error)

	// Create persists a new incomplete quote under the given id.
	Create(ctx context.Context, q Quote) error

	// SaveDraft merge-writes one auto-save chunk of section fields plus
	// completionPercent and lastUpdated.
	SaveDraft(ctx context.Context, id string, fields map[string]any, completionPercent int) error

	// SetCompleted merge-writes status=completed and completedAt.
	SetCompleted(ctx context.Context, id string) error
}
