// internal/domain/portal/repository_port.go
package portal

import "context"

// Repository は ClientRecord の永続化ポートです。
// すべての更新は対象フィールドのみを触るマージ書き込みで行い、
// ドキュメント全体の上書きはしません（他アクターの書き込みを壊さないため）。
type Repository interface {
	GetByID(ctx context.Context, id string) (ClientRecord, error)

	// Create は新規クライアントを作成し、採番された ID を返します。
	Create(ctx context.Context, c ClientRecord) (string, error)

	// SaveSteps persists the completion flags plus lastUpdated, nothing else.
	SaveSteps(ctx context.Context, id string, steps []bool) error

	// Reset zeroes every step flag and clears derived fields in one write.
	Reset(ctx context.Context, id string, stepCount int) error

	// SetRevisionPending / SetWebsiteAccessPending flip the client-raised
	// request flags (merge write). Clearing them is an admin concern.
	SetRevisionPending(ctx context.Context, id string, pending bool) error
	SetWebsiteAccessPending(ctx context.Context, id string) error
}
