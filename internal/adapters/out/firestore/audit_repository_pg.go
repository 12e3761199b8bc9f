// internal/adapters/out/firestore/audit_repository_pg.go
package firestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"leadportal/internal/domain/audit"
)

// AuditRepositoryPG implements audit.Repository using PostgreSQL.
// Firestore 側のミラーとして使う追記専用テーブルです。スキーマは
// audit.DealAuditTableDDL を参照してください（cmd/ddlgen が出力します）。
type AuditRepositoryPG struct {
	DB *sql.DB
}

func NewAuditRepositoryPG(db *sql.DB) *AuditRepositoryPG {
	return &AuditRepositoryPG{DB: db}
}

// Compile-time check
var _ audit.Repository = (*AuditRepositoryPG)(nil)

func (r *AuditRepositoryPG) Append(ctx context.Context, e audit.Entry) (string, error) {
	if r.DB == nil {
		return "", errors.New("pg: db is nil")
	}
	if len(e.Changes) == 0 {
		return "", audit.ErrEmptyDiff
	}
	if e.DealID == "" {
		return "", audit.ErrInvalidID
	}

	changes, err := json.Marshal(e.Changes)
	if err != nil {
		return "", fmt.Errorf("pg: encode changes: %w", err)
	}

	const q = `
INSERT INTO deal_audit (deal_id, company_name, changes, changed_by, created_at)
VALUES ($1, $2, $3, $4, NOW())
RETURNING id
`
	var id string
	if err := r.DB.QueryRowContext(ctx, q, e.DealID, e.CompanyName, changes, e.ChangedBy).Scan(&id); err != nil {
		return "", fmt.Errorf("pg: append audit for deal %s: %w", e.DealID, err)
	}
	return id, nil
}
