// internal/application/usecase/notification_usecase.go
package usecase

import (
	"context"

	"leadportal/internal/domain/common"
	"leadportal/internal/domain/notification"
)

// NotificationUsecase は通知フィードの参照と既読化を扱います。
// 作成はトリガー層（Dispatcher）経由のみです。
type NotificationUsecase struct {
	notifications notification.Repository
}

// NewNotificationUsecase はユースケースを初期化します。
func NewNotificationUsecase(notifications notification.Repository) *NotificationUsecase {
	return &NotificationUsecase{notifications: notifications}
}

// UnreadCount returns the recipient's unread count.
func (uc *NotificationUsecase) UnreadCount(ctx context.Context, recipientID string, rt notification.RecipientType) (int, error) {
	return uc.notifications.UnreadCount(ctx, recipientID, rt)
}

// Watch は最新順のフィードを購読します。limit が 0 以下のときは既定値
// （直近 50 件）に丸めます。
func (uc *NotificationUsecase) Watch(ctx context.Context, recipientID string, rt notification.RecipientType, limit int, fn func([]notification.Record)) (common.Subscription, error) {
	if limit <= 0 {
		limit = notification.DefaultWatchLimit
	}
	return uc.notifications.Watch(ctx, recipientID, rt, limit, fn)
}

// MarkRead は指定 ID 群を一括で既読にします。空リストは何もしません。
func (uc *NotificationUsecase) MarkRead(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return uc.notifications.MarkRead(ctx, ids)
}
