// internal/adapters/out/firestore/audit_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"

	"leadportal/internal/domain/audit"
)

// AuditRepositoryFS implements audit.Repository using Firestore
// (dealAudit/{autoId}). 追記専用で、更新も削除もしません。
type AuditRepositoryFS struct {
	Client *firestore.Client
}

func NewAuditRepositoryFS(client *firestore.Client) *AuditRepositoryFS {
	return &AuditRepositoryFS{Client: client}
}

func (r *AuditRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("dealAudit")
}

// Compile-time check
var _ audit.Repository = (*AuditRepositoryFS)(nil)

func (r *AuditRepositoryFS) Append(ctx context.Context, e audit.Entry) (string, error) {
	if r.Client == nil {
		return "", errors.New("firestore client is nil")
	}
	if len(e.Changes) == 0 {
		return "", audit.ErrEmptyDiff
	}
	if e.DealID == "" {
		return "", audit.ErrInvalidID
	}

	changes := make(map[string]any, len(e.Changes))
	for field, ch := range e.Changes {
		changes[field] = map[string]any{"from": ch.From, "to": ch.To}
	}

	ref := r.col().NewDoc()
	data := map[string]any{
		"dealId":      e.DealID,
		"companyName": e.CompanyName,
		"changes":     changes,
		"changedBy":   e.ChangedBy,
		"timestamp":   firestore.ServerTimestamp,
	}
	if _, err := ref.Set(ctx, data); err != nil {
		return "", fmt.Errorf("append audit for deal %s: %w", e.DealID, err)
	}
	return ref.ID, nil
}
