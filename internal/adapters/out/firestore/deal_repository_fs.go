// internal/adapters/out/firestore/deal_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	dealdom "leadportal/internal/domain/deal"
)

// DealRepositoryFS implements deal.Repository using Firestore (deals/{autoId}).
type DealRepositoryFS struct {
	Client *firestore.Client
}

func NewDealRepositoryFS(client *firestore.Client) *DealRepositoryFS {
	return &DealRepositoryFS{Client: client}
}

func (r *DealRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("deals")
}

// Compile-time check
var _ dealdom.Repository = (*DealRepositoryFS)(nil)

// =======================
// Queries
// =======================

func (r *DealRepositoryFS) GetByID(ctx context.Context, id string) (dealdom.Deal, error) {
	if r.Client == nil {
		return dealdom.Deal{}, errors.New("firestore client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return dealdom.Deal{}, dealdom.ErrInvalidID
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return dealdom.Deal{}, dealdom.ErrNotFound
		}
		return dealdom.Deal{}, err
	}
	return docToDeal(snap)
}

func (r *DealRepositoryFS) ListByRep(ctx context.Context, repID string) ([]dealdom.Deal, error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}

	it := r.col().Where("assignedTo", "==", repID).Documents(ctx)
	defer it.Stop()

	var out []dealdom.Deal
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		d, err := docToDeal(doc)
		if err != nil {
			return nil, err
		}
		// archived filter in-memory (no composite index required)
		if d.Archived {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// =======================
// Writes
// =======================

func (r *DealRepositoryFS) Create(ctx context.Context, d dealdom.Deal) (string, error) {
	if r.Client == nil {
		return "", errors.New("firestore client is nil")
	}

	ref := r.col().NewDoc()
	data := dealToData(d)
	data["createdAt"] = firestore.ServerTimestamp
	data["lastUpdated"] = firestore.ServerTimestamp

	if _, err := ref.Set(ctx, data); err != nil {
		return "", fmt.Errorf("create deal: %w", err)
	}
	return ref.ID, nil
}

func (r *DealRepositoryFS) Save(ctx context.Context, d dealdom.Deal) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	if strings.TrimSpace(d.ID) == "" {
		return dealdom.ErrInvalidID
	}

	data := dealToData(d)
	data["lastUpdated"] = firestore.ServerTimestamp

	if _, err := r.col().Doc(d.ID).Set(ctx, data, firestore.MergeAll); err != nil {
		if status.Code(err) == codes.NotFound {
			return dealdom.ErrNotFound
		}
		return fmt.Errorf("save deal %s: %w", d.ID, err)
	}
	return nil
}

func (r *DealRepositoryFS) SetClientPortalID(ctx context.Context, dealID, portalID string) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	dealID = strings.TrimSpace(dealID)
	if dealID == "" {
		return dealdom.ErrInvalidID
	}

	data := map[string]any{
		"clientPortalId": portalID,
		"lastUpdated":    firestore.ServerTimestamp,
	}
	if _, err := r.col().Doc(dealID).Set(ctx, data, firestore.MergeAll); err != nil {
		if status.Code(err) == codes.NotFound {
			return dealdom.ErrNotFound
		}
		return fmt.Errorf("link portal to deal %s: %w", dealID, err)
	}
	return nil
}

// =======================
// Mapping
// =======================

func dealToData(d dealdom.Deal) map[string]any {
	return map[string]any{
		"companyName":    d.CompanyName,
		"contactName":    d.ContactName,
		"email":          d.Email,
		"phone":          d.Phone,
		"assignedTo":     d.AssignedTo,
		"stage":          string(d.Stage),
		"mrr":            d.MRR,
		"contractLength": d.ContractLength,
		"clientPortalId": d.ClientPortalID,
		"websiteQuoteId": d.WebsiteQuoteID,
		"notes":          d.Notes,
		"archived":       d.Archived,
		"lastUpdatedBy":  d.LastUpdatedBy,
	}
}

func docToDeal(doc *firestore.DocumentSnapshot) (dealdom.Deal, error) {
	data := doc.Data()
	if data == nil {
		return dealdom.Deal{}, fmt.Errorf("empty deal document: %s", doc.Ref.ID)
	}

	getStr := func(key string) string {
		if v, ok := data[key].(string); ok {
			return strings.TrimSpace(v)
		}
		return ""
	}
	getBool := func(key string) bool {
		v, ok := data[key].(bool)
		return ok && v
	}
	getFloat := func(key string) float64 {
		switch v := data[key].(type) {
		case float64:
			return v
		case int64:
			return float64(v)
		}
		return 0
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

	var d dealdom.Deal
	d.ID = doc.Ref.ID
	d.CompanyName = getStr("companyName")
	d.ContactName = getStr("contactName")
	d.Email = getStr("email")
	d.Phone = getStr("phone")

	d.AssignedTo = getStr("assignedTo")
	if d.AssignedTo == "" {
		d.AssignedTo = "unassigned"
	}

	d.Stage = dealdom.Stage(getStr("stage"))
	d.MRR = getFloat("mrr")
	d.ContractLength = getInt("contractLength")
	d.ClientPortalID = getStr("clientPortalId")
	d.WebsiteQuoteID = getStr("websiteQuoteId")
	d.Notes = getStr("notes")
	d.Archived = getBool("archived")
	d.LastUpdatedBy = getStr("lastUpdatedBy")

	if t, ok := getTime("createdAt"); ok {
		d.CreatedAt = t
	}
	if t, ok := getTime("lastUpdated"); ok {
		d.LastUpdated = t
	}

	return d, nil
}
