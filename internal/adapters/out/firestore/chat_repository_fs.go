// internal/adapters/out/firestore/chat_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"leadportal/internal/domain/chat"
	"leadportal/internal/domain/common"
)

// ChatRepositoryFS implements chat.Repository using Firestore.
// サマリは messages/{clientId}、本文は messages/{clientId}/thread/{autoId} です。
type ChatRepositoryFS struct {
	Client *firestore.Client
}

func NewChatRepositoryFS(client *firestore.Client) *ChatRepositoryFS {
	return &ChatRepositoryFS{Client: client}
}

func (r *ChatRepositoryFS) summaryDoc(clientID string) *firestore.DocumentRef {
	return r.Client.Collection("messages").Doc(clientID)
}

func (r *ChatRepositoryFS) threadCol(clientID string) *firestore.CollectionRef {
	return r.summaryDoc(clientID).Collection("thread")
}

// Compile-time check
var _ chat.Repository = (*ChatRepositoryFS)(nil)

// =======================
// Writes
// =======================

// Post は本文の追記・サマリ更新・相手方未読の加算を単一トランザクションで
// 行います。部分的に書けた状態は残りません。
func (r *ChatRepositoryFS) Post(ctx context.Context, clientID, clientName string, m chat.Message) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return chat.ErrInvalidClient
	}

	msgRef := r.threadCol(clientID).NewDoc()
	msgData := map[string]any{
		"text":       m.Text,
		"sender":     string(m.Sender),
		"senderName": m.SenderName,
		"read":       false,
		"timestamp":  firestore.ServerTimestamp,
	}

	summary := map[string]any{
		"clientId":        clientID,
		"clientName":      clientName,
		"lastMessage":     m.Text,
		"lastMessageTime": firestore.ServerTimestamp,
	}
	switch m.Sender {
	case chat.SenderClient:
		summary["unreadByAdmin"] = firestore.Increment(1)
		summary["unreadByClient"] = 0
	case chat.SenderAdmin:
		summary["unreadByClient"] = firestore.Increment(1)
		summary["unreadByAdmin"] = 0
	default:
		return chat.ErrInvalidSender
	}

	err := r.Client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(msgRef, msgData); err != nil {
			return err
		}
		return tx.Set(r.summaryDoc(clientID), summary, firestore.MergeAll)
	})
	if err != nil {
		return fmt.Errorf("post message for %s: %w", clientID, err)
	}
	return nil
}

// MarkRead zeroes the reader's unread counter on the summary.
func (r *ChatRepositoryFS) MarkRead(ctx context.Context, clientID string, reader chat.Sender) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return chat.ErrInvalidClient
	}

	var field string
	switch reader {
	case chat.SenderAdmin:
		field = "unreadByAdmin"
	case chat.SenderClient:
		field = "unreadByClient"
	default:
		return chat.ErrInvalidSender
	}

	data := map[string]any{field: 0}
	if _, err := r.summaryDoc(clientID).Set(ctx, data, firestore.MergeAll); err != nil {
		return fmt.Errorf("mark thread read %s: %w", clientID, err)
	}
	return nil
}

// =======================
// Queries
// =======================

func (r *ChatRepositoryFS) List(ctx context.Context, clientID string) ([]chat.Message, error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}

	it := r.threadCol(clientID).OrderBy("timestamp", firestore.Asc).Documents(ctx)
	defer it.Stop()

	var out []chat.Message
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, docToChatMessage(doc))
	}
	return out, nil
}

func (r *ChatRepositoryFS) GetSummary(ctx context.Context, clientID string) (chat.Summary, error) {
	if r.Client == nil {
		return chat.Summary{}, errors.New("firestore client is nil")
	}

	snap, err := r.summaryDoc(clientID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return chat.Summary{}, chat.ErrNotFound
		}
		return chat.Summary{}, err
	}
	return docToChatSummary(snap), nil
}

// WatchThread streams the full thread oldest-first on every change.
func (r *ChatRepositoryFS) WatchThread(ctx context.Context, clientID string, fn func([]chat.Message)) (common.Subscription, error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}

	wctx, cancel := context.WithCancel(ctx)
	snaps := r.threadCol(clientID).OrderBy("timestamp", firestore.Asc).Snapshots(wctx)

	go func() {
		defer snaps.Stop()
		for {
			snap, err := snaps.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					log.Printf("[firestore] thread watch ended: client=%s: %v", clientID, err)
				}
				return
			}
			var msgs []chat.Message
			for {
				doc, err := snap.Documents.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					log.Printf("[firestore] thread decode: %v", err)
					return
				}
				msgs = append(msgs, docToChatMessage(doc))
			}
			fn(msgs)
		}
	}()

	return &snapshotSubscription{cancel: cancel}, nil
}

// WatchSummary streams the summary document on every change.
func (r *ChatRepositoryFS) WatchSummary(ctx context.Context, clientID string, fn func(chat.Summary)) (common.Subscription, error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}

	wctx, cancel := context.WithCancel(ctx)
	snaps := r.summaryDoc(clientID).Snapshots(wctx)

	go func() {
		defer snaps.Stop()
		for {
			snap, err := snaps.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					log.Printf("[firestore] summary watch ended: client=%s: %v", clientID, err)
				}
				return
			}
			if !snap.Exists() {
				continue
			}
			fn(docToChatSummary(snap))
		}
	}()

	return &snapshotSubscription{cancel: cancel}, nil
}

// =======================
// Mapping
// =======================

func docToChatMessage(doc *firestore.DocumentSnapshot) chat.Message {
	data := doc.Data()

	getStr := func(key string) string {
		if v, ok := data[key].(string); ok {
			return v
		}
		return ""
	}

	var m chat.Message
	m.ID = doc.Ref.ID
	m.Text = getStr("text")
	m.Sender = chat.Sender(getStr("sender"))
	m.SenderName = getStr("senderName")
	if v, ok := data["read"].(bool); ok {
		m.Read = v
	}
	if t, ok := data["timestamp"].(time.Time); ok {
		m.Timestamp = t.UTC()
	}
	return m
}

func docToChatSummary(doc *firestore.DocumentSnapshot) chat.Summary {
	data := doc.Data()

	getStr := func(key string) string {
		if v, ok := data[key].(string); ok {
			return v
		}
		return ""
	}
	getInt := func(key string) int {
		switch v := data[key].(type) {
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
		return 0
	}

	var s chat.Summary
	s.ClientID = doc.Ref.ID
	s.ClientName = getStr("clientName")
	s.LastMessage = getStr("lastMessage")
	s.UnreadByAdmin = getInt("unreadByAdmin")
	s.UnreadByClient = getInt("unreadByClient")
	if t, ok := data["lastMessageTime"].(time.Time); ok {
		s.LastMessageTime = t.UTC()
	}
	return s
}
