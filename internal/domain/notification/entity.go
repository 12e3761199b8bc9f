// internal/domain/notification/entity.go
package notification

import (
	"context"
	"errors"
	"strings"
	"time"

	"leadportal/internal/domain/common"
)

// ========================================
// Types
// ========================================

// Type は通知種別です。消費側UIがアイコン・色を引くキーになります。
type Type string

const (
	TypeClientStepComplete Type = "CLIENT_STEP_COMPLETE"
	TypeQuoteSubmitted     Type = "QUOTE_SUBMITTED"
	TypeDealAssigned       Type = "DEAL_ASSIGNED"
	TypeDealStageChange    Type = "DEAL_STAGE_CHANGE"
	TypeMessageReceived    Type = "MESSAGE_RECEIVED"
	TypeMessageReply       Type = "MESSAGE_REPLY"
	TypeRevisionRequested  Type = "REVISION_REQUESTED"
)

func IsValidType(t Type) bool {
	switch t {
	case TypeClientStepComplete, TypeQuoteSubmitted, TypeDealAssigned,
		TypeDealStageChange, TypeMessageReceived, TypeMessageReply,
		TypeRevisionRequested:
		return true
	default:
		return false
	}
}

// RecipientType は宛先の種類です。
type RecipientType string

const (
	RecipientAdmin    RecipientType = "admin"
	RecipientSalesRep RecipientType = "salesRep"
	RecipientClient   RecipientType = "client"
)

func IsValidRecipientType(t RecipientType) bool {
	switch t {
	case RecipientAdmin, RecipientSalesRep, RecipientClient:
		return true
	default:
		return false
	}
}

// ========================================
// Errors
// ========================================

var (
	ErrValidation = errors.New("notification: missing required fields")
	ErrNotFound   = errors.New("notification: not found")
)

// ========================================
// Entity (Firestore document: notifications/{autoId})
// ========================================

// Record は1件の通知です。作成後に変わるのは read フラグのみで、
// スコープ内では削除されません。
type Record struct {
	ID            string
	Type          Type
	RecipientID   string
	RecipientType RecipientType
	Message       string

	// ActionURL is an opaque deep link; the store never interprets it.
	ActionURL string
	RelatedID string
	Metadata  map[string]any

	Read      bool
	CreatedAt time.Time
}

// New validates required fields and builds an unread record.
// type / recipientId / recipientType / message はすべて必須です。
func New(t Type, recipientID string, rt RecipientType, message string) (Record, error) {
	recipientID = strings.TrimSpace(recipientID)
	message = strings.TrimSpace(message)
	if !IsValidType(t) || recipientID == "" || !IsValidRecipientType(rt) || message == "" {
		return Record{}, ErrValidation
	}
	return Record{
		Type:          t,
		RecipientID:   recipientID,
		RecipientType: rt,
		Message:       message,
		Metadata:      map[string]any{},
		Read:          false,
	}, nil
}

// WithAction sets the deep link and related entity id.
func (r Record) WithAction(actionURL, relatedID string) Record {
	r.ActionURL = strings.TrimSpace(actionURL)
	r.RelatedID = strings.TrimSpace(relatedID)
	return r
}

// Validate reports whether all required fields are present.
// ストアは書き込み前にこれを呼び、不正なレコードは一切書きません。
func (r Record) Validate() error {
	if !IsValidType(r.Type) || strings.TrimSpace(r.RecipientID) == "" ||
		!IsValidRecipientType(r.RecipientType) || strings.TrimSpace(r.Message) == "" {
		return ErrValidation
	}
	return nil
}

// WithMetadata attaches free-form metadata.
func (r Record) WithMetadata(md map[string]any) Record {
	if md != nil {
		r.Metadata = md
	}
	return r
}

// ========================================
// Port
// ========================================

// DefaultWatchLimit bounds the realtime feed (newest first).
const DefaultWatchLimit = 50

// Repository は通知ストアの永続化ポートです。
type Repository interface {
	// Create stores the record with read=false and a server timestamp,
	// returning the new id. Validation happens before any write.
	Create(ctx context.Context, r Record) (string, error)

	// UnreadCount returns the number of unread records for a recipient.
	UnreadCount(ctx context.Context, recipientID string, rt RecipientType) (int, error)

	// Watch streams the recipient's records newest-first (bounded by
	// limit) on every change until the subscription is cancelled.
	Watch(ctx context.Context, recipientID string, rt RecipientType, limit int, fn func([]Record)) (common.Subscription, error)

	// MarkRead flips read=true on every id in one batched operation.
	MarkRead(ctx context.Context, ids []string) error
}
