// internal/application/usecase/portal_usecase.go
package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"leadportal/internal/application/trigger"
	"leadportal/internal/domain/chat"
	"leadportal/internal/domain/common"
	"leadportal/internal/domain/portal"
)

// ========================================
// Portal usecase
// オンボーディングポータルの中核ユースケースです。ステップ完了の
// 進行管理・進捗投影・リンク解決・WEB サイトアクセス申請を扱います。
// ========================================

// PortalUsecase はクライアントポータルの操作をまとめます。
type PortalUsecase struct {
	clients portal.Repository
	chats   chat.Repository

	rules      trigger.Rules
	dispatcher *trigger.Dispatcher

	// defaults は上書きリンクが空のときのフォールバックです。
	defaults portal.LinkSet

	now func() time.Time
}

// NewPortalUsecase はユースケースを初期化します。
func NewPortalUsecase(
	clients portal.Repository,
	chats chat.Repository,
	rules trigger.Rules,
	dispatcher *trigger.Dispatcher,
	defaults portal.LinkSet,
) *PortalUsecase {
	return &PortalUsecase{
		clients:    clients,
		chats:      chats,
		rules:      rules,
		dispatcher: dispatcher,
		defaults:   defaults,
		now:        time.Now,
	}
}

// ----------------------------------------
// Session
// ----------------------------------------

// Session は 1 クライアント分のポータル接続です。開いたリアルタイム購読を
// 束ねて保持し、Close で全て解除します。グローバル状態は持ちません。
type Session struct {
	uc     *PortalUsecase
	client portal.ClientRecord

	mu   sync.Mutex
	subs []common.Subscription
}

// Open は ID でクライアントを解決してセッションを開きます。
// 無効化されたクライアントは portal.ErrInactive になります。
func (uc *PortalUsecase) Open(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, portal.ErrInvalidID
	}
	c, err := uc.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.Active {
		return nil, portal.ErrInactive
	}
	return &Session{uc: uc, client: c}, nil
}

// Client returns the session's client snapshot.
func (s *Session) Client() portal.ClientRecord { return s.client }

// Progress returns the projection for the session's snapshot.
func (s *Session) Progress() portal.Progress { return portal.Project(&s.client) }

// Attach adds a realtime subscription to the session's lifetime.
func (s *Session) Attach(sub common.Subscription) {
	if sub == nil {
		return
	}
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
}

// Close は保持中の購読を全て解除します。何度呼んでも安全です。
func (s *Session) Close() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()
	for _, sub := range subs {
		sub.Cancel()
	}
}

// ----------------------------------------
// Steps
// ----------------------------------------

// StepResult はステップ完了操作の結果です。
type StepResult struct {
	Client   portal.ClientRecord `json:"client"`
	Progress portal.Progress     `json:"progress"`
	// Changed は今回の呼び出しで新たに完了扱いになったかどうか。
	// 既に完了済みのステップへの再送では false です。
	Changed bool `json:"changed"`
	// AllCompleteNow はこの操作で全ステップが完了に到達したときだけ true。
	AllCompleteNow bool `json:"allCompleteNow"`
}

// CompleteStep はステップ step（1 始まり）を完了にします。
// 直前のステップが未完了なら portal.ErrStepLocked を返します。
// 保存に失敗した場合は楽観的に立てたフラグを戻してエラーを返します。
func (uc *PortalUsecase) CompleteStep(ctx context.Context, id string, step int) (StepResult, error) {
	c, err := uc.clients.GetByID(ctx, id)
	if err != nil {
		return StepResult{}, err
	}
	if !c.Active {
		return StepResult{}, portal.ErrInactive
	}

	wasComplete := c.AllComplete()

	changed, err := c.MarkStep(step)
	if err != nil {
		return StepResult{}, err
	}
	if !changed {
		return StepResult{Client: c, Progress: portal.Project(&c)}, nil
	}

	if err := uc.clients.SaveSteps(ctx, c.ID, c.Steps); err != nil {
		c.UnmarkStep(step)
		return StepResult{}, fmt.Errorf("portal usecase: save steps: %w", err)
	}

	uc.dispatcher.Dispatch(ctx, uc.rules.OnStepCompleted(c, step, uc.now()))

	return StepResult{
		Client:         c,
		Progress:       portal.Project(&c),
		Changed:        true,
		AllCompleteNow: !wasComplete && c.AllComplete(),
	}, nil
}

// Reset は全ステップとリンク上書き・保留フラグを初期状態に戻します。
func (uc *PortalUsecase) Reset(ctx context.Context, id string) error {
	c, err := uc.clients.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return uc.clients.Reset(ctx, c.ID, c.StepCount())
}

// ----------------------------------------
// Links
// ----------------------------------------

// ResolvedLinks はクライアントに提示する実効リンク一式です。
// クライアント個別の上書きがあればそれを、無ければ既定値を使います。
type ResolvedLinks struct {
	DPA          string `json:"dpa"`
	Service      string `json:"service"`
	Payment      string `json:"payment"`
	UploadFolder string `json:"uploadFolder"`
	Creative     string `json:"creative"`
}

// ResolveLinks は契約期間と支払い方法の選択に応じたリンクを解決します。
func (uc *PortalUsecase) ResolveLinks(c portal.ClientRecord, term portal.ServiceTerm, pay portal.PaymentType) ResolvedLinks {
	return ResolvedLinks{
		DPA:          portal.ResolveLink(c.Links.DPA, uc.defaults.DPA),
		Service:      portal.ResolveLink(c.Links.ServiceLink(term), uc.defaults.ServiceLink(term)),
		Payment:      portal.ResolveLink(c.Links.PaymentLink(term, pay), uc.defaults.PaymentLink(term, pay)),
		UploadFolder: portal.ResolveLink(c.Links.UploadFolder, uc.defaults.UploadFolder),
		Creative:     portal.ResolveLink(c.Links.Creative, uc.defaults.Creative),
	}
}

// ----------------------------------------
// Website access
// ----------------------------------------

// SubmitWebsiteAccess は WEB サイトアクセス情報の提出を受け付けます。
// スレッドへの投稿と未確認フラグの両方を行い、管理者へ通知します。
func (uc *PortalUsecase) SubmitWebsiteAccess(ctx context.Context, id, details string) error {
	c, err := uc.clients.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !c.Active {
		return portal.ErrInactive
	}

	m, err := chat.NewMessage(details, chat.SenderClient, c.ClientName)
	if err != nil {
		return err
	}
	if err := uc.chats.Post(ctx, c.ID, c.ClientName, m); err != nil {
		return fmt.Errorf("portal usecase: post website access: %w", err)
	}
	if err := uc.clients.SetWebsiteAccessPending(ctx, c.ID); err != nil {
		return fmt.Errorf("portal usecase: flag website access: %w", err)
	}

	uc.dispatcher.Dispatch(ctx, uc.rules.OnMessagePosted(c.ID, c.ClientName, m))
	return nil
}

// ----------------------------------------
// Admin
// ----------------------------------------

// CreateClient は新しいポータルクライアントを作成して ID を返します。
func (uc *PortalUsecase) CreateClient(ctx context.Context, id, clientName string, v portal.Variant) (string, error) {
	c, err := portal.NewClientRecord(id, clientName, v)
	if err != nil {
		return "", err
	}
	return uc.clients.Create(ctx, c)
}
