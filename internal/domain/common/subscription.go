// internal/domain/common/subscription.go
package common

// Subscription はリアルタイム購読のハンドルです。
// 所有コンポーネントは新しい購読を張る前に必ず Cancel() を呼び、
// コールバックの二重配送を防ぎます。
type Subscription interface {
	Cancel()
}

// SubscriptionFunc adapts a plain cancel func to Subscription.
type SubscriptionFunc func()

func (f SubscriptionFunc) Cancel() {
	if f != nil {
		f()
	}
}
