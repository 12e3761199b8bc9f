// internal/application/usecase/chat_usecase.go
package usecase

import (
	"context"
	"fmt"
	"sync"

	"leadportal/internal/application/trigger"
	"leadportal/internal/domain/chat"
	"leadportal/internal/domain/common"
)

// ChatUsecase はクライアントと管理者のメッセージスレッドを扱います。
type ChatUsecase struct {
	chats      chat.Repository
	rules      trigger.Rules
	dispatcher *trigger.Dispatcher
}

// NewChatUsecase はユースケースを初期化します。
func NewChatUsecase(chats chat.Repository, rules trigger.Rules, dispatcher *trigger.Dispatcher) *ChatUsecase {
	return &ChatUsecase{chats: chats, rules: rules, dispatcher: dispatcher}
}

// Post はスレッドへ 1 件投稿します。本文の追記・サマリ更新・未読カウントの
// 加算はリポジトリ側で単一トランザクションとして行われます。
// 書き込み成功後に相手方宛の通知を発行します（通知は失敗しても戻しません）。
func (uc *ChatUsecase) Post(ctx context.Context, clientID, clientName, text string, sender chat.Sender, senderName string) (chat.Message, error) {
	m, err := chat.NewMessage(text, sender, senderName)
	if err != nil {
		return chat.Message{}, err
	}
	if err := uc.chats.Post(ctx, clientID, clientName, m); err != nil {
		return chat.Message{}, fmt.Errorf("chat usecase: post: %w", err)
	}
	uc.dispatcher.Dispatch(ctx, uc.rules.OnMessagePosted(clientID, clientName, m))
	return m, nil
}

// MarkRead は reader 側の未読カウントを 0 にします。
func (uc *ChatUsecase) MarkRead(ctx context.Context, clientID string, reader chat.Sender) error {
	return uc.chats.MarkRead(ctx, clientID, reader)
}

// List returns the full thread oldest-first.
func (uc *ChatUsecase) List(ctx context.Context, clientID string) ([]chat.Message, error) {
	return uc.chats.List(ctx, clientID)
}

// Summary returns the thread summary.
func (uc *ChatUsecase) Summary(ctx context.Context, clientID string) (chat.Summary, error) {
	return uc.chats.GetSummary(ctx, clientID)
}

// WatchThread streams the thread until the subscription is cancelled.
func (uc *ChatUsecase) WatchThread(ctx context.Context, clientID string, fn func([]chat.Message)) (common.Subscription, error) {
	return uc.chats.WatchThread(ctx, clientID, fn)
}

// WatchSummary streams the summary until the subscription is cancelled.
func (uc *ChatUsecase) WatchSummary(ctx context.Context, clientID string, fn func(chat.Summary)) (common.Subscription, error) {
	return uc.chats.WatchSummary(ctx, clientID, fn)
}

// ----------------------------------------
// Watcher
// ----------------------------------------

// Watcher は「常に 1 本だけ」の購読置き場です。新しい購読をセットすると
// 前の購読を解除します。スレッド切り替え時のリーク防止に使います。
type Watcher struct {
	mu  sync.Mutex
	sub common.Subscription
}

// Set は購読を差し替え、前の購読があれば解除します。
func (w *Watcher) Set(sub common.Subscription) {
	w.mu.Lock()
	prev := w.sub
	w.sub = sub
	w.mu.Unlock()
	if prev != nil {
		prev.Cancel()
	}
}

// Cancel は現在の購読を解除します。未設定なら何もしません。
func (w *Watcher) Cancel() {
	w.Set(nil)
}
