// internal/application/usecase/deal_usecase.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"leadportal/internal/application/trigger"
	"leadportal/internal/domain/deal"
	"leadportal/internal/domain/portal"
	"leadportal/internal/domain/rep"
	"leadportal/internal/domain/scorecard"
)

// DealUsecase はパイプライン案件の作成・更新と週次スコアカードの参照を扱います。
type DealUsecase struct {
	deals      deal.Repository
	clients    portal.Repository
	scorecards scorecard.Repository
	reps       rep.Repository

	rules      trigger.Rules
	dispatcher *trigger.Dispatcher

	now func() time.Time
}

// NewDealUsecase はユースケースを初期化します。
func NewDealUsecase(
	deals deal.Repository,
	clients portal.Repository,
	scorecards scorecard.Repository,
	reps rep.Repository,
	rules trigger.Rules,
	dispatcher *trigger.Dispatcher,
) *DealUsecase {
	return &DealUsecase{
		deals:      deals,
		clients:    clients,
		scorecards: scorecards,
		reps:       reps,
		rules:      rules,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// Get returns one deal.
func (uc *DealUsecase) Get(ctx context.Context, id string) (deal.Deal, error) {
	return uc.deals.GetByID(ctx, id)
}

// ListByRep returns the rep's non-archived deals.
func (uc *DealUsecase) ListByRep(ctx context.Context, repID string) ([]deal.Deal, error) {
	return uc.deals.ListByRep(ctx, repID)
}

// Create は案件を新規作成して ID を返します。
func (uc *DealUsecase) Create(ctx context.Context, companyName string, stage deal.Stage) (string, error) {
	d, err := deal.NewDeal(companyName, stage, uc.now())
	if err != nil {
		return "", err
	}
	return uc.deals.Create(ctx, d)
}

// Save は案件を保存し、ステージ変更のスコアカード加算と監査ログを
// 更新前後の差分から発行します。保存に失敗したときは何も発行しません。
func (uc *DealUsecase) Save(ctx context.Context, after deal.Deal) error {
	if after.ID == "" {
		return deal.ErrInvalidID
	}
	if !deal.IsValidStage(after.Stage) {
		return deal.ErrInvalidStage
	}

	before, err := uc.deals.GetByID(ctx, after.ID)
	if err != nil {
		return err
	}

	after.LastUpdated = uc.now()
	if err := uc.deals.Save(ctx, after); err != nil {
		return fmt.Errorf("deal usecase: save: %w", err)
	}

	uc.dispatcher.Dispatch(ctx, uc.rules.OnDealUpdated(before, after, uc.now()))
	return nil
}

// CreatePortalForDeal は案件がオンボーディング段階に入ったときに
// ポータルクライアントを作成し、案件へ紐付けます。
func (uc *DealUsecase) CreatePortalForDeal(ctx context.Context, dealID string, v portal.Variant) (string, error) {
	d, err := uc.deals.GetByID(ctx, dealID)
	if err != nil {
		return "", err
	}
	if d.ClientPortalID != "" {
		return d.ClientPortalID, nil
	}

	c, err := portal.NewClientRecord(dealID, d.CompanyName, v)
	if err != nil {
		return "", err
	}
	portalID, err := uc.clients.Create(ctx, c)
	if err != nil {
		return "", fmt.Errorf("deal usecase: create portal: %w", err)
	}
	if err := uc.deals.SetClientPortalID(ctx, d.ID, portalID); err != nil {
		return "", fmt.Errorf("deal usecase: link portal: %w", err)
	}
	return portalID, nil
}

// WeekScorecard は週次スコアカードの 1 担当者分を返します。
func (uc *DealUsecase) WeekScorecard(ctx context.Context, repID string, at time.Time) (scorecard.Entry, error) {
	return uc.scorecards.Get(ctx, repID, scorecard.WeekID(at))
}

// RepPerformance は1担当者分の週次実績と目標の組です。
type RepPerformance struct {
	Rep     rep.SalesRep
	Entry   scorecard.Entry
	Targets rep.WeeklyTargets
}

// TeamPerformance はアクティブな全担当者について、その週の実績を
// 週次目標と突き合わせて返します。その週に実績が無い担当者は
// ゼロ値の Entry で含まれます。
func (uc *DealUsecase) TeamPerformance(ctx context.Context, at time.Time) ([]RepPerformance, error) {
	reps, err := uc.reps.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("deal usecase: list reps: %w", err)
	}

	weekID := scorecard.WeekID(at)
	entries, err := uc.scorecards.ListWeek(ctx, weekID)
	if err != nil {
		return nil, fmt.Errorf("deal usecase: list week: %w", err)
	}
	byRep := make(map[string]scorecard.Entry, len(entries))
	for _, e := range entries {
		byRep[e.RepID] = e
	}

	out := make([]RepPerformance, 0, len(reps))
	for _, r := range reps {
		e, ok := byRep[r.ID]
		if !ok {
			e = scorecard.Entry{RepID: r.ID, WeekID: weekID}
		}
		out = append(out, RepPerformance{Rep: r, Entry: e, Targets: r.Targets.Normalized()})
	}
	return out, nil
}
