// internal/adapters/out/firestore/revision_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"leadportal/internal/domain/revision"
)

// RevisionRepositoryFS implements revision.Repository using Firestore
// (revisionRequests/{autoId}).
type RevisionRepositoryFS struct {
	Client *firestore.Client
}

func NewRevisionRepositoryFS(client *firestore.Client) *RevisionRepositoryFS {
	return &RevisionRepositoryFS{Client: client}
}

func (r *RevisionRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("revisionRequests")
}

// Compile-time check
var _ revision.Repository = (*RevisionRepositoryFS)(nil)

func (r *RevisionRepositoryFS) Create(ctx context.Context, req revision.Request) (string, error) {
	if r.Client == nil {
		return "", errors.New("firestore client is nil")
	}
	if strings.TrimSpace(req.ClientID) == "" {
		return "", revision.ErrInvalidClient
	}

	assets := make([]map[string]any, 0, len(req.Assets))
	for _, a := range req.Assets {
		assets = append(assets, map[string]any{
			"objectPath": a.ObjectPath,
			"url":        a.URL,
			"fileName":   a.FileName,
			"fileSize":   a.FileSize,
			"mimeType":   a.MimeType,
			"uploadedAt": a.UploadedAt,
		})
	}

	ref := r.col().NewDoc()
	data := map[string]any{
		"clientId":   req.ClientID,
		"clientName": req.ClientName,
		"notes":      req.Notes,
		"assets":     assets,
		"status":     req.Status,
		"createdAt":  firestore.ServerTimestamp,
	}
	if _, err := ref.Set(ctx, data); err != nil {
		return "", fmt.Errorf("create revision request for %s: %w", req.ClientID, err)
	}
	return ref.ID, nil
}

func (r *RevisionRepositoryFS) ListByClient(ctx context.Context, clientID string) ([]revision.Request, error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}

	it := r.col().Where("clientId", "==", clientID).Documents(ctx)
	defer it.Stop()

	var out []revision.Request
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, docToRevisionRequest(doc))
	}

	// newest first; sorted in-memory so no composite index is needed
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func docToRevisionRequest(doc *firestore.DocumentSnapshot) revision.Request {
	data := doc.Data()

	getStr := func(key string) string {
		if v, ok := data[key].(string); ok {
			return strings.TrimSpace(v)
		}
		return ""
	}

	var req revision.Request
	req.ID = doc.Ref.ID
	req.ClientID = getStr("clientId")
	req.ClientName = getStr("clientName")
	req.Notes = getStr("notes")
	req.Status = getStr("status")
	if t, ok := data["createdAt"].(time.Time); ok {
		req.CreatedAt = t.UTC()
	}

	raw, _ := data["assets"].([]any)
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		var a revision.AssetRef
		if v, ok := m["objectPath"].(string); ok {
			a.ObjectPath = v
		}
		if v, ok := m["url"].(string); ok {
			a.URL = v
		}
		if v, ok := m["fileName"].(string); ok {
			a.FileName = v
		}
		if v, ok := m["fileSize"].(int64); ok {
			a.FileSize = v
		}
		if v, ok := m["mimeType"].(string); ok {
			a.MimeType = v
		}
		if v, ok := m["uploadedAt"].(time.Time); ok {
			a.UploadedAt = v.UTC()
		}
		req.Assets = append(req.Assets, a)
	}

	return req
}
