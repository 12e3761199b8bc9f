// internal/adapters/out/firestore/notification_repository_fs.go
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

	"leadportal/internal/domain/common"
	"leadportal/internal/domain/notification"
)

// NotificationRepositoryFS implements notification.Repository using
// Firestore (notifications/{autoId}).
type NotificationRepositoryFS struct {
	Client *firestore.Client
}

func NewNotificationRepositoryFS(client *firestore.Client) *NotificationRepositoryFS {
	return &NotificationRepositoryFS{Client: client}
}

func (r *NotificationRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("notifications")
}

// Compile-time check
var _ notification.Repository = (*NotificationRepositoryFS)(nil)

// =======================
// Writes
// =======================

// Create validates before writing; invalid records never reach Firestore.
func (r *NotificationRepositoryFS) Create(ctx context.Context, rec notification.Record) (string, error) {
	if r.Client == nil {
		return "", errors.New("firestore client is nil")
	}
	if err := rec.Validate(); err != nil {
		return "", err
	}

	ref := r.col().NewDoc()
	data := map[string]any{
		"type":          string(rec.Type),
		"recipientId":   rec.RecipientID,
		"recipientType": string(rec.RecipientType),
		"message":       rec.Message,
		"actionUrl":     rec.ActionURL,
		"relatedId":     rec.RelatedID,
		"metadata":      rec.Metadata,
		"read":          false,
		"createdAt":     firestore.ServerTimestamp,
	}
	if _, err := ref.Set(ctx, data); err != nil {
		return "", fmt.Errorf("create notification: %w", err)
	}
	return ref.ID, nil
}

// MarkRead flips read=true on every id in one write batch.
func (r *NotificationRepositoryFS) MarkRead(ctx context.Context, ids []string) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	if len(ids) == 0 {
		return nil
	}

	bw := r.Client.BulkWriter(ctx)
	jobs := make(map[string]*firestore.BulkWriterJob, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		job, err := bw.Update(r.col().Doc(id), []firestore.Update{{Path: "read", Value: true}})
		if err != nil {
			bw.End()
			return fmt.Errorf("mark read %s: %w", id, err)
		}
		jobs[id] = job
	}
	bw.End()

	// End は各ジョブの完了を待つだけでエラーは返さないため、
	// 個々の結果から最初の失敗を拾います。
	for id, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("mark read %s: %w", id, err)
		}
	}
	return nil
}

// =======================
// Queries
// =======================

func (r *NotificationRepositoryFS) UnreadCount(ctx context.Context, recipientID string, rt notification.RecipientType) (int, error) {
	if r.Client == nil {
		return 0, errors.New("firestore client is nil")
	}

	it := r.col().
		Where("recipientId", "==", recipientID).
		Where("recipientType", "==", string(rt)).
		Where("read", "==", false).
		Documents(ctx)
	defer it.Stop()

	n := 0
	for {
		_, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}

// Watch は受信者のフィードを新しい順で購読します。変更のたびに
// 最新 limit 件をまとめてコールバックします。
func (r *NotificationRepositoryFS) Watch(ctx context.Context, recipientID string, rt notification.RecipientType, limit int, fn func([]notification.Record)) (common.Subscription, error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}
	if limit <= 0 {
		limit = notification.DefaultWatchLimit
	}

	q := r.col().
		Where("recipientId", "==", recipientID).
		Where("recipientType", "==", string(rt)).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit)

	wctx, cancel := context.WithCancel(ctx)
	snaps := q.Snapshots(wctx)

	go func() {
		defer snaps.Stop()
		for {
			snap, err := snaps.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					log.Printf("[firestore] notification watch ended: recipient=%s: %v", recipientID, err)
				}
				return
			}
			records, err := snapshotToNotifications(snap)
			if err != nil {
				log.Printf("[firestore] notification decode: %v", err)
				continue
			}
			fn(records)
		}
	}()

	return &snapshotSubscription{cancel: cancel}, nil
}

func snapshotToNotifications(snap *firestore.QuerySnapshot) ([]notification.Record, error) {
	var out []notification.Record
	for {
		doc, err := snap.Documents.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		rec, err := docToNotification(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func docToNotification(doc *firestore.DocumentSnapshot) (notification.Record, error) {
	data := doc.Data()
	if data == nil {
		return notification.Record{}, fmt.Errorf("empty notification document: %s", doc.Ref.ID)
	}

	getStr := func(key string) string {
		if v, ok := data[key].(string); ok {
			return strings.TrimSpace(v)
		}
		return ""
	}

	var rec notification.Record
	rec.ID = doc.Ref.ID
	rec.Type = notification.Type(getStr("type"))
	rec.RecipientID = getStr("recipientId")
	rec.RecipientType = notification.RecipientType(getStr("recipientType"))
	rec.Message = getStr("message")
	rec.ActionURL = getStr("actionUrl")
	rec.RelatedID = getStr("relatedId")

	if md, ok := data["metadata"].(map[string]any); ok {
		rec.Metadata = md
	}
	if v, ok := data["read"].(bool); ok {
		rec.Read = v
	}
	if t, ok := data["createdAt"].(time.Time); ok {
		rec.CreatedAt = t.UTC()
	}

	return rec, nil
}
