// internal/adapters/out/firestore/client_repository_fs.go
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

	"leadportal/internal/domain/portal"
)

// ClientRepositoryFS implements portal.Repository using Firestore.
// ドキュメントは clients/{id}、ステップは step1Complete .. stepNComplete の
// フラグで持ちます。
type ClientRepositoryFS struct {
	Client *firestore.Client
}

func NewClientRepositoryFS(client *firestore.Client) *ClientRepositoryFS {
	return &ClientRepositoryFS{Client: client}
}

func (r *ClientRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("clients")
}

// Compile-time check
var _ portal.Repository = (*ClientRepositoryFS)(nil)

func stepField(step int) string {
	return fmt.Sprintf("step%dComplete", step)
}

// =======================
// Queries
// =======================

func (r *ClientRepositoryFS) GetByID(ctx context.Context, id string) (portal.ClientRecord, error) {
	if r.Client == nil {
		return portal.ClientRecord{}, errors.New("firestore client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return portal.ClientRecord{}, portal.ErrInvalidID
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return portal.ClientRecord{}, portal.ErrNotFound
		}
		return portal.ClientRecord{}, err
	}
	return docToClient(snap)
}

// =======================
// Writes
// =======================

func (r *ClientRepositoryFS) Create(ctx context.Context, c portal.ClientRecord) (string, error) {
	if r.Client == nil {
		return "", errors.New("firestore client is nil")
	}
	if strings.TrimSpace(c.ID) == "" {
		return "", portal.ErrInvalidID
	}

	data := map[string]any{
		"active":                     c.Active,
		"clientName":                 c.ClientName,
		"variant":                    string(c.Variant),
		"hasPendingRevision":         c.HasPendingRevision,
		"hasUnreviewedWebsiteAccess": c.HasUnreviewedWebsiteAccess,
		"lastUpdated":                firestore.ServerTimestamp,
	}
	for i := 1; i <= c.StepCount(); i++ {
		data[stepField(i)] = c.StepComplete(i)
	}
	putLinkFields(data, c.Links)

	if _, err := r.col().Doc(c.ID).Set(ctx, data); err != nil {
		return "", fmt.Errorf("create client %s: %w", c.ID, err)
	}
	return c.ID, nil
}

func (r *ClientRepositoryFS) SaveSteps(ctx context.Context, id string, steps []bool) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return portal.ErrInvalidID
	}

	data := map[string]any{
		"lastUpdated": firestore.ServerTimestamp,
	}
	for i, done := range steps {
		data[stepField(i+1)] = done
	}

	if _, err := r.col().Doc(id).Set(ctx, data, firestore.MergeAll); err != nil {
		if status.Code(err) == codes.NotFound {
			return portal.ErrNotFound
		}
		return fmt.Errorf("save steps %s: %w", id, err)
	}
	return nil
}

func (r *ClientRepositoryFS) Reset(ctx context.Context, id string, stepCount int) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return portal.ErrInvalidID
	}

	data := map[string]any{
		"hasPendingRevision":         false,
		"hasUnreviewedWebsiteAccess": false,
		"lastUpdated":                firestore.ServerTimestamp,
	}
	for i := 1; i <= stepCount; i++ {
		data[stepField(i)] = false
	}
	// リンク上書きはフィールドごと消し、既定値に戻します。
	for _, f := range linkFieldNames {
		data[f] = firestore.Delete
	}

	if _, err := r.col().Doc(id).Set(ctx, data, firestore.MergeAll); err != nil {
		if status.Code(err) == codes.NotFound {
			return portal.ErrNotFound
		}
		return fmt.Errorf("reset client %s: %w", id, err)
	}
	return nil
}

func (r *ClientRepositoryFS) SetRevisionPending(ctx context.Context, id string, pending bool) error {
	return r.mergeFlags(ctx, id, map[string]any{"hasPendingRevision": pending})
}

func (r *ClientRepositoryFS) SetWebsiteAccessPending(ctx context.Context, id string) error {
	return r.mergeFlags(ctx, id, map[string]any{"hasUnreviewedWebsiteAccess": true})
}

func (r *ClientRepositoryFS) mergeFlags(ctx context.Context, id string, fields map[string]any) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return portal.ErrInvalidID
	}

	fields["lastUpdated"] = firestore.ServerTimestamp
	if _, err := r.col().Doc(id).Set(ctx, fields, firestore.MergeAll); err != nil {
		if status.Code(err) == codes.NotFound {
			return portal.ErrNotFound
		}
		return fmt.Errorf("update client %s: %w", id, err)
	}
	return nil
}

// =======================
// Mapping
// =======================

var linkFieldNames = []string{
	"dpaLink",
	"service6Link",
	"service12Link",
	"stripe6MonthlyLink",
	"stripe6UpfrontLink",
	"stripe12MonthlyLink",
	"stripe12UpfrontLink",
	"uploadFolderLink",
	"creativeLink",
}

func putLinkFields(data map[string]any, l portal.LinkSet) {
	set := func(key, val string) {
		if strings.TrimSpace(val) != "" {
			data[key] = val
		}
	}
	set("dpaLink", l.DPA)
	set("service6Link", l.Service6)
	set("service12Link", l.Service12)
	set("stripe6MonthlyLink", l.Stripe6Monthly)
	set("stripe6UpfrontLink", l.Stripe6Upfront)
	set("stripe12MonthlyLink", l.Stripe12Monthly)
	set("stripe12UpfrontLink", l.Stripe12Upfront)
	set("uploadFolderLink", l.UploadFolder)
	set("creativeLink", l.Creative)
}

func docToClient(doc *firestore.DocumentSnapshot) (portal.ClientRecord, error) {
	data := doc.Data()
	if data == nil {
		return portal.ClientRecord{}, fmt.Errorf("empty client document: %s", doc.Ref.ID)
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
	getTime := func(key string) (time.Time, bool) {
		if v, ok := data[key].(time.Time); ok {
			return v.UTC(), !v.IsZero()
		}
		return time.Time{}, false
	}

	var c portal.ClientRecord
	c.ID = doc.Ref.ID

	// 旧ドキュメントは active を持たないため、欠落は有効扱いにします。
	if v, ok := data["active"].(bool); ok {
		c.Active = v
	} else {
		c.Active = true
	}

	c.ClientName = getStr("clientName")

	v := portal.Variant(getStr("variant"))
	if !portal.IsValidVariant(v) {
		v = portal.VariantContract
	}
	c.Variant = v

	c.Steps = make([]bool, c.StepCount())
	for i := 1; i <= c.StepCount(); i++ {
		c.Steps[i-1] = getBool(stepField(i))
	}

	c.Links = portal.LinkSet{
		DPA:             getStr("dpaLink"),
		Service6:        getStr("service6Link"),
		Service12:       getStr("service12Link"),
		Stripe6Monthly:  getStr("stripe6MonthlyLink"),
		Stripe6Upfront:  getStr("stripe6UpfrontLink"),
		Stripe12Monthly: getStr("stripe12MonthlyLink"),
		Stripe12Upfront: getStr("stripe12UpfrontLink"),
		UploadFolder:    getStr("uploadFolderLink"),
		Creative:        getStr("creativeLink"),
	}

	c.HasPendingRevision = getBool("hasPendingRevision")
	c.HasUnreviewedWebsiteAccess = getBool("hasUnreviewedWebsiteAccess")

	if t, ok := getTime("lastUpdated"); ok {
		c.LastUpdated = t
	}

	return c, nil
}
