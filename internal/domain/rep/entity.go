// internal/domain/rep/entity.go
package rep

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound  = errors.New("rep: not found")
	ErrInvalidID = errors.New("rep: invalid id")
)

// WeeklyTargets は週次スコアカードの目標値です。未設定は 1 扱い。
type WeeklyTargets struct {
	DiscoveryScheduled int
	DiscoveryCompleted int
	DealsToOnboarding  int
	DealsLive          int
}

func (t WeeklyTargets) orDefault(v int) int {
	if v <= 0 {
		return 1
	}
	return v
}

// Normalized returns the targets with unset values defaulted to 1.
func (t WeeklyTargets) Normalized() WeeklyTargets {
	return WeeklyTargets{
		DiscoveryScheduled: t.orDefault(t.DiscoveryScheduled),
		DiscoveryCompleted: t.orDefault(t.DiscoveryCompleted),
		DealsToOnboarding:  t.orDefault(t.DealsToOnboarding),
		DealsLive:          t.orDefault(t.DealsLive),
	}
}

// SalesRep は営業担当者です（Firestore: salesReps/{id}）。
// FirebaseUID は認証ミドルウェアのトークン照合に使います。
type SalesRep struct {
	ID          string
	Name        string
	Email       string
	Role        string // "rep" | "manager" | "admin"
	FirebaseUID string
	Active      bool
	Targets     WeeklyTargets
}

// IsAdmin reports whether the rep can see team-wide data.
func (r SalesRep) IsAdmin() bool {
	role := strings.ToLower(strings.TrimSpace(r.Role))
	return role == "admin" || role == "manager"
}

// Repository は営業担当者の参照ポートです。
type Repository interface {
	GetByID(ctx context.Context, id string) (SalesRep, error)
	GetByFirebaseUID(ctx context.Context, uid string) (SalesRep, error)
	ListActive(ctx context.Context) ([]SalesRep, error)
}
