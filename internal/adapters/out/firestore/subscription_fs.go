// internal/adapters/out/firestore/subscription_fs.go
package firestore

import (
	"context"
	"sync"
)

// snapshotSubscription cancels the listener's derived context.
// Cancel は何度呼んでも安全です。
type snapshotSubscription struct {
	cancel context.CancelFunc
	once   sync.Once
}

func (s *snapshotSubscription) Cancel() {
	s.once.Do(s.cancel)
}
