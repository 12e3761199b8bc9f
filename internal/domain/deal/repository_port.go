// internal/domain/deal/repository_port.go
package deal

import "context"

// Repository は Deal の永続化ポートです。
// 更新はマージ書き込み（触るフィールドのみ）で行います。
type Repository interface {
	GetByID(ctx context.Context, id string) (Deal, error)

	// Create persists a new deal and returns the assigned id.
	Create(ctx context.Context, d Deal) (string, error)

	// Save merge-writes the deal's mutable fields and stamps lastUpdated.
	Save(ctx context.Context, d Deal) error

	// SetClientPortalID links an onboarding portal to the deal.
	SetClientPortalID(ctx context.Context, dealID, portalID string) error

	// ListByRep returns the rep's non-archived deals.
	ListByRep(ctx context.Context, repID string) ([]Deal, error)
}
