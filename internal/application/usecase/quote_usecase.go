// internal/application/usecase/quote_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadportal/internal/application/trigger"
	"leadportal/internal/domain/quote"
)

// QuoteUsecase は WEB サイト見積フォームの下書き保存と完了処理を扱います。
type QuoteUsecase struct {
	quotes quote.Repository

	rules      trigger.Rules
	dispatcher *trigger.Dispatcher

	now func() time.Time
}

// NewQuoteUsecase はユースケースを初期化します。
func NewQuoteUsecase(quotes quote.Repository, rules trigger.Rules, dispatcher *trigger.Dispatcher) *QuoteUsecase {
	return &QuoteUsecase{quotes: quotes, rules: rules, dispatcher: dispatcher, now: time.Now}
}

// LoadOrCreate は見積ドキュメントを取得し、無ければ作成して返します。
// フォーム初回表示時に呼びます。
func (uc *QuoteUsecase) LoadOrCreate(ctx context.Context, id string) (quote.Quote, error) {
	q, err := uc.quotes.GetByID(ctx, id)
	if err == nil {
		return q, nil
	}
	if !errors.Is(err, quote.ErrNotFound) {
		return quote.Quote{}, err
	}

	q, err = quote.NewQuote(id, uc.now())
	if err != nil {
		return quote.Quote{}, err
	}
	if err := uc.quotes.Create(ctx, q); err != nil {
		return quote.Quote{}, fmt.Errorf("quote usecase: create: %w", err)
	}
	return q, nil
}

// SaveDraft は自動保存の 1 区画分をマージ書き込みします。
// 完了済みの見積には書き込みません。
func (uc *QuoteUsecase) SaveDraft(ctx context.Context, id string, fields map[string]any, completionPercent int) error {
	q, err := uc.quotes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if q.Status == quote.StatusCompleted {
		return quote.ErrAlreadyCompleted
	}
	if completionPercent < 0 {
		completionPercent = 0
	}
	if completionPercent > 100 {
		completionPercent = 100
	}
	return uc.quotes.SaveDraft(ctx, id, fields, completionPercent)
}

// Complete は見積を完了にします。未完了 → 完了のエッジでだけ
// リード案件の作成・管理者通知・運用宛メールを発行し、再送信では
// 何も発行しません。
func (uc *QuoteUsecase) Complete(ctx context.Context, id string) (quote.Quote, error) {
	before, err := uc.quotes.GetByID(ctx, id)
	if err != nil {
		return quote.Quote{}, err
	}

	after := before
	if !after.Complete(uc.now()) {
		return before, nil
	}

	if err := uc.quotes.SetCompleted(ctx, id); err != nil {
		return quote.Quote{}, fmt.Errorf("quote usecase: complete: %w", err)
	}

	uc.dispatcher.Dispatch(ctx, uc.rules.OnQuoteStatusTransition(before, after, uc.now()))
	return after, nil
}
