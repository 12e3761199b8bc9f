// internal/adapters/out/firestore/rep_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"leadportal/internal/domain/rep"
)

// RepRepositoryFS implements rep.Repository using Firestore (salesReps/{id}).
type RepRepositoryFS struct {
	Client *firestore.Client
}

func NewRepRepositoryFS(client *firestore.Client) *RepRepositoryFS {
	return &RepRepositoryFS{Client: client}
}

func (r *RepRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("salesReps")
}

// Compile-time check
var _ rep.Repository = (*RepRepositoryFS)(nil)

func (r *RepRepositoryFS) GetByID(ctx context.Context, id string) (rep.SalesRep, error) {
	if r.Client == nil {
		return rep.SalesRep{}, errors.New("firestore client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return rep.SalesRep{}, rep.ErrInvalidID
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return rep.SalesRep{}, rep.ErrNotFound
		}
		return rep.SalesRep{}, err
	}
	return docToSalesRep(snap), nil
}

func (r *RepRepositoryFS) GetByFirebaseUID(ctx context.Context, uid string) (rep.SalesRep, error) {
	if r.Client == nil {
		return rep.SalesRep{}, errors.New("firestore client is nil")
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return rep.SalesRep{}, rep.ErrInvalidID
	}

	it := r.col().Where("firebaseUid", "==", uid).Limit(1).Documents(ctx)
	defer it.Stop()

	doc, err := it.Next()
	if err == iterator.Done {
		return rep.SalesRep{}, rep.ErrNotFound
	}
	if err != nil {
		return rep.SalesRep{}, err
	}
	return docToSalesRep(doc), nil
}

func (r *RepRepositoryFS) ListActive(ctx context.Context) ([]rep.SalesRep, error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}

	it := r.col().Where("active", "==", true).Documents(ctx)
	defer it.Stop()

	var out []rep.SalesRep
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, docToSalesRep(doc))
	}
	return out, nil
}

func docToSalesRep(doc *firestore.DocumentSnapshot) rep.SalesRep {
	data := doc.Data()

	getStr := func(key string) string {
		if v, ok := data[key].(string); ok {
			return strings.TrimSpace(v)
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		switch v := m[key].(type) {
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
		return 0
	}

	var s rep.SalesRep
	s.ID = doc.Ref.ID
	s.Name = getStr("name")
	s.Email = getStr("email")
	s.Role = getStr("role")
	s.FirebaseUID = getStr("firebaseUid")
	if v, ok := data["active"].(bool); ok {
		s.Active = v
	}

	if wt, ok := data["weeklyTargets"].(map[string]any); ok {
		s.Targets = rep.WeeklyTargets{
			DiscoveryScheduled: getInt(wt, "discoveryScheduled"),
			DiscoveryCompleted: getInt(wt, "discoveryCompleted"),
			DealsToOnboarding:  getInt(wt, "dealsToOnboarding"),
			DealsLive:          getInt(wt, "dealsLive"),
		}
	}
	s.Targets = s.Targets.Normalized()

	return s
}
