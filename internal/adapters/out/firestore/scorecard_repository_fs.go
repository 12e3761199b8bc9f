// internal/adapters/out/firestore/scorecard_repository_fs.go
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

	"leadportal/internal/domain/scorecard"
)

// ScorecardRepositoryFS implements scorecard.Repository using Firestore.
// ドキュメント ID は {repId}_{weekId} で、加算は firestore.Increment による
// 原子的なマージ書き込みです。ドキュメントが無ければ作られます。
type ScorecardRepositoryFS struct {
	Client *firestore.Client
}

func NewScorecardRepositoryFS(client *firestore.Client) *ScorecardRepositoryFS {
	return &ScorecardRepositoryFS{Client: client}
}

func (r *ScorecardRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("scorecard")
}

// Compile-time check
var _ scorecard.Repository = (*ScorecardRepositoryFS)(nil)

func (r *ScorecardRepositoryFS) Increment(ctx context.Context, repID, weekID, counter string) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	repID = strings.TrimSpace(repID)
	weekID = strings.TrimSpace(weekID)
	counter = strings.TrimSpace(counter)
	if repID == "" || weekID == "" || counter == "" {
		return fmt.Errorf("scorecard increment: empty key (rep=%q week=%q counter=%q)", repID, weekID, counter)
	}

	data := map[string]any{
		"repId":       repID,
		"weekId":      weekID,
		counter:       firestore.Increment(1),
		"lastUpdated": firestore.ServerTimestamp,
	}
	docID := scorecard.EntryID(repID, weekID)
	if _, err := r.col().Doc(docID).Set(ctx, data, firestore.MergeAll); err != nil {
		return fmt.Errorf("scorecard increment %s: %w", docID, err)
	}
	return nil
}

func (r *ScorecardRepositoryFS) Get(ctx context.Context, repID, weekID string) (scorecard.Entry, error) {
	if r.Client == nil {
		return scorecard.Entry{}, errors.New("firestore client is nil")
	}

	snap, err := r.col().Doc(scorecard.EntryID(repID, weekID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return scorecard.Entry{}, scorecard.ErrNotFound
		}
		return scorecard.Entry{}, err
	}
	return docToScorecardEntry(snap)
}

func (r *ScorecardRepositoryFS) ListWeek(ctx context.Context, weekID string) ([]scorecard.Entry, error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}

	it := r.col().Where("weekId", "==", weekID).Documents(ctx)
	defer it.Stop()

	var out []scorecard.Entry
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		e, err := docToScorecardEntry(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func docToScorecardEntry(doc *firestore.DocumentSnapshot) (scorecard.Entry, error) {
	data := doc.Data()
	if data == nil {
		return scorecard.Entry{}, fmt.Errorf("empty scorecard document: %s", doc.Ref.ID)
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

	var e scorecard.Entry
	e.RepID = getStr("repId")
	e.WeekID = getStr("weekId")
	e.DiscoveryScheduled = getInt(scorecard.CounterDiscoveryScheduled)
	e.DiscoveryCompleted = getInt(scorecard.CounterDiscoveryCompleted)
	e.DealsToOnboarding = getInt(scorecard.CounterDealsToOnboarding)
	e.DealsLive = getInt(scorecard.CounterDealsLive)

	if v, ok := data["lastUpdated"].(time.Time); ok {
		e.LastUpdated = v.UTC()
	}
	return e, nil
}
