// internal/domain/chat/entity.go
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"leadportal/internal/domain/common"
)

// ========================================
// Sender
// ========================================

// Sender はメッセージの送信者区分です。クライアントと管理側の二者です。
type Sender string

const (
	SenderClient Sender = "client"
	SenderAdmin  Sender = "admin"
)

func IsValidSender(s Sender) bool {
	return s == SenderClient || s == SenderAdmin
}

// Other returns the opposite party (whose unread counter a post bumps).
func (s Sender) Other() Sender {
	if s == SenderClient {
		return SenderAdmin
	}
	return SenderClient
}

// ========================================
// Errors
// ========================================

var (
	ErrEmptyText     = errors.New("chat: empty message text")
	ErrInvalidSender = errors.New("chat: invalid sender")
	ErrInvalidClient = errors.New("chat: invalid client id")
	ErrNotFound      = errors.New("chat: conversation not found")
)

// ========================================
// Entities
// (Firestore: messages/{clientId} summary + messages/{clientId}/thread/{autoId})
// ========================================

// Message はスレッド内の1メッセージです。サーバ採番のタイムスタンプが
// 表示順の全順序を定めます。
type Message struct {
	ID         string
	Text       string
	Sender     Sender
	SenderName string
	Timestamp  time.Time
	Read       bool
}

// NewMessage validates and builds a message ready to append.
func NewMessage(text string, sender Sender, senderName string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyText
	}
	if !IsValidSender(sender) {
		return Message{}, ErrInvalidSender
	}
	return Message{
		Text:       text,
		Sender:     sender,
		SenderName: strings.TrimSpace(senderName),
		Read:       false,
	}, nil
}

// Summary は会話の親ドキュメントです。マージ書き込みと
// atomic increment でのみ更新されます。
type Summary struct {
	ClientID        string
	ClientName      string
	LastMessage     string
	LastMessageTime time.Time
	UnreadByAdmin   int
	UnreadByClient  int
}

// UnreadFor returns the unread counter for a reading party.
func (s Summary) UnreadFor(reader Sender) int {
	if reader == SenderAdmin {
		return s.UnreadByAdmin
	}
	return s.UnreadByClient
}

// ========================================
// Port
// ========================================

// Repository は会話スレッドの永続化ポートです。
//
// Post は「スレッド追記」と「サマリのマージ更新（相手側未読の
// increment・自分側未読のゼロ化）」を単一トランザクションで行います。
// 二者同時送信での lost update を避けるためです。
type Repository interface {
	Post(ctx context.Context, clientID, clientName string, m Message) error

	// MarkRead zeroes the reader's unread counter only; message-level
	// read flags are untouched in the client-facing flow.
	MarkRead(ctx context.Context, clientID string, reader Sender) error

	// List returns the full thread in timestamp order.
	List(ctx context.Context, clientID string) ([]Message, error)

	GetSummary(ctx context.Context, clientID string) (Summary, error)

	// WatchThread delivers the full ordered message list on every change.
	WatchThread(ctx context.Context, clientID string, fn func([]Message)) (common.Subscription, error)

	// WatchSummary delivers the live summary (unread counters) on change.
	WatchSummary(ctx context.Context, clientID string, fn func(Summary)) (common.Subscription, error)
}
