// internal/adapters/out/firestore/quote_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"leadportal/internal/domain/quote"
)

// QuoteRepositoryFS implements quote.Repository using Firestore
// (websiteQuotes/{id}). ドキュメント ID はフォーム側が発行します。
type QuoteRepositoryFS struct {
	Client *firestore.Client
}

func NewQuoteRepositoryFS(client *firestore.Client) *QuoteRepositoryFS {
	return &QuoteRepositoryFS{Client: client}
}

func (r *QuoteRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("websiteQuotes")
}

// Compile-time check
var _ quote.Repository = (*QuoteRepositoryFS)(nil)

// 固定フィールド。これ以外のフォーム回答は answers の自由形式に入ります。
var quoteKnownFields = map[string]bool{
	"businessName":      true,
	"ownerName":         true,
	"email":             true,
	"phone":             true,
	"businessType":      true,
	"locations":         true,
	"budgetRange":       true,
	"status":            true,
	"completionPercent": true,
	"createdAt":         true,
	"lastUpdated":       true,
	"completedAt":       true,
}

func (r *QuoteRepositoryFS) GetByID(ctx context.Context, id string) (quote.Quote, error) {
	if r.Client == nil {
		return quote.Quote{}, errors.New("firestore client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return quote.Quote{}, quote.ErrInvalidID
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return quote.Quote{}, quote.ErrNotFound
		}
		return quote.Quote{}, err
	}
	return docToQuote(snap)
}

func (r *QuoteRepositoryFS) Create(ctx context.Context, q quote.Quote) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	if strings.TrimSpace(q.ID) == "" {
		return quote.ErrInvalidID
	}

	data := map[string]any{
		"status":            string(q.Status),
		"completionPercent": q.CompletionPercent,
		"createdAt":         firestore.ServerTimestamp,
		"lastUpdated":       firestore.ServerTimestamp,
	}
	if _, err := r.col().Doc(q.ID).Set(ctx, data); err != nil {
		return fmt.Errorf("create quote %s: %w", q.ID, err)
	}
	return nil
}

func (r *QuoteRepositoryFS) SaveDraft(ctx context.Context, id string, fields map[string]any, completionPercent int) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return quote.ErrInvalidID
	}

	data := map[string]any{
		"completionPercent": completionPercent,
		"lastUpdated":       firestore.ServerTimestamp,
	}
	for k, v := range fields {
		// status と completedAt はこの経路では触らせません。
		if k == "status" || k == "completedAt" {
			continue
		}
		data[k] = v
	}

	if _, err := r.col().Doc(id).Set(ctx, data, firestore.MergeAll); err != nil {
		if status.Code(err) == codes.NotFound {
			return quote.ErrNotFound
		}
		return fmt.Errorf("save quote draft %s: %w", id, err)
	}
	return nil
}

func (r *QuoteRepositoryFS) SetCompleted(ctx context.Context, id string) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return quote.ErrInvalidID
	}

	data := map[string]any{
		"status":            string(quote.StatusCompleted),
		"completionPercent": 100,
		"completedAt":       firestore.ServerTimestamp,
		"lastUpdated":       firestore.ServerTimestamp,
	}
	if _, err := r.col().Doc(id).Set(ctx, data, firestore.MergeAll); err != nil {
		if status.Code(err) == codes.NotFound {
			return quote.ErrNotFound
		}
		return fmt.Errorf("complete quote %s: %w", id, err)
	}
	return nil
}

func docToQuote(doc *firestore.DocumentSnapshot) (quote.Quote, error) {
	data := doc.Data()
	if data == nil {
		return quote.Quote{}, fmt.Errorf("empty quote document: %s", doc.Ref.ID)
	}

	getStr := func(key string) string {
		if v, ok := data[key].(string); ok {
			return strings.TrimSpace(v)
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
	getTime := func(key string) (time.Time, bool) {
		if v, ok := data[key].(time.Time); ok {
			return v.UTC(), !v.IsZero()
		}
		return time.Time{}, false
	}

	var q quote.Quote
	q.ID = doc.Ref.ID
	q.BusinessName = getStr("businessName")
	q.OwnerName = getStr("ownerName")
	q.Email = getStr("email")
	q.Phone = getStr("phone")
	q.BusinessType = getStr("businessType")
	q.Locations = getStr("locations")
	q.BudgetRange = getStr("budgetRange")

	st := quote.Status(getStr("status"))
	if st == "" {
		st = quote.StatusIncomplete
	}
	q.Status = st
	q.CompletionPercent = getInt("completionPercent")

	// 固定フィールド以外の回答はそのまま answers に残します。
	answers := map[string]any{}
	for k, v := range data {
		if !quoteKnownFields[k] {
			answers[k] = v
		}
	}
	q.Answers = answers

	if t, ok := getTime("createdAt"); ok {
		q.CreatedAt = t
	}
	if t, ok := getTime("lastUpdated"); ok {
		q.LastUpdated = t
	}
	if t, ok := getTime("completedAt"); ok {
		q.CompletedAt = &t
	}

	return q, nil
}
