// internal/domain/scorecard/entity.go
package scorecard

import (
	"context"
	"errors"
	"fmt"
	"time"

	dealdom "leadportal/internal/domain/deal"
)

// ========================================
// Counters
// ========================================

// カウンタ名は Firestore のフィールドパスとしてそのまま使われます。
// 変更は必ず atomic increment 経由で行い、read-modify-write はしません。
const (
	CounterDiscoveryScheduled = "discoveryScheduled"
	CounterDiscoveryCompleted = "discoveryCompleted"
	CounterDealsToOnboarding  = "dealsToOnboarding"
	CounterDealsLive          = "dealsLive"
)

// stageCounters maps a deal's *new* stage to at most one counter.
// Stages outside the table produce no increment.
var stageCounters = map[dealdom.Stage]string{
	dealdom.StageDiscoveryScheduled: CounterDiscoveryScheduled,
	dealdom.StageDiscoveryCompleted: CounterDiscoveryCompleted,
	dealdom.StageOnboardingPortal:   CounterDealsToOnboarding,
	dealdom.StageCampaignLive:       CounterDealsLive,
}

// CounterForStage returns the scorecard counter fed by a stage, if any.
func CounterForStage(s dealdom.Stage) (string, bool) {
	c, ok := stageCounters[s]
	return c, ok
}

// ========================================
// Week bucket
// ========================================

// WeekID は処理時刻（UTC）が属する「月曜始まりの週」を
// ISO-8601 の (年, 週番号) で表したキーを返します。例: "2026-W36"。
// 集計はイベント時刻ではなく処理時刻でバケツ分けします（意図的な仕様）。
func WeekID(now time.Time) string {
	year, week := now.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%d", year, week)
}

// EntryID returns the document id for a (rep, week) pair.
func EntryID(repID, weekID string) string {
	return repID + "_" + weekID
}

// ========================================
// Entity (Firestore document: scorecard/{repId}_{weekId})
// ========================================

var ErrNotFound = errors.New("scorecard: not found")

// Entry は1レップ×1週間の実績カウンタです。
type Entry struct {
	RepID  string
	WeekID string

	DiscoveryScheduled int
	DiscoveryCompleted int
	DealsToOnboarding  int
	DealsLive          int

	LastUpdated time.Time
}

// Total returns the sum of all counters (leaderboard ordering).
func (e Entry) Total() int {
	return e.DiscoveryScheduled + e.DiscoveryCompleted + e.DealsToOnboarding + e.DealsLive
}

// ========================================
// Port
// ========================================

// Repository は週次スコアカードの永続化ポートです。
type Repository interface {
	// Increment atomically adds 1 to the named counter on the
	// {repId}_{weekId} document, creating it if absent.
	Increment(ctx context.Context, repID, weekID, counter string) error

	Get(ctx context.Context, repID, weekID string) (Entry, error)

	// ListWeek returns every rep's entry for one week.
	ListWeek(ctx context.Context, weekID string) ([]Entry, error)
}
