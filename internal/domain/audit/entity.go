// internal/domain/audit/entity.go
package audit

import (
	"context"
	"errors"
	"time"

	dealdom "leadportal/internal/domain/deal"
)

// ========================================
// Errors
// ========================================

var (
	ErrEmptyDiff = errors.New("audit: empty change set")
	ErrInvalidID = errors.New("audit: invalid deal id")
)

// ========================================
// Diff
// ========================================

// FieldChange は1フィールドの変更前後です。
type FieldChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// 監査対象フィールドの固定リスト。ここに無いフィールドの変更は
// 監査エントリを生みません。
var WatchedFields = []string{"stage", "companyName", "mrr", "assignedTo"}

// DiffDeal は監査対象フィールドの変更を検出します。
// 変更が無ければ空のマップを返します（エントリは書かれない）。
func DiffDeal(before, after dealdom.Deal) map[string]FieldChange {
	changes := map[string]FieldChange{}
	if before.Stage != after.Stage {
		changes["stage"] = FieldChange{From: string(before.Stage), To: string(after.Stage)}
	}
	if before.CompanyName != after.CompanyName {
		changes["companyName"] = FieldChange{From: before.CompanyName, To: after.CompanyName}
	}
	if before.MRR != after.MRR {
		changes["mrr"] = FieldChange{From: before.MRR, To: after.MRR}
	}
	if before.AssignedTo != after.AssignedTo {
		changes["assignedTo"] = FieldChange{From: before.AssignedTo, To: after.AssignedTo}
	}
	return changes
}

// ========================================
// Entity (Firestore document: dealAudit/{autoId})
// ========================================

// Entry は追記専用の監査レコードです。作成後の更新・削除はしません。
type Entry struct {
	ID          string
	DealID      string
	CompanyName string
	Changes     map[string]FieldChange
	ChangedBy   string
	Timestamp   time.Time
}

// NewEntry builds an audit entry for one detected-change event.
// Exactly one entry captures all changed fields of that event.
func NewEntry(dealID string, after dealdom.Deal, changes map[string]FieldChange) (Entry, error) {
	if dealID == "" {
		return Entry{}, ErrInvalidID
	}
	if len(changes) == 0 {
		return Entry{}, ErrEmptyDiff
	}
	return Entry{
		DealID:      dealID,
		CompanyName: after.CompanyName,
		Changes:     changes,
		ChangedBy:   after.ChangedBy(),
	}, nil
}

// ========================================
// Port
// ========================================

// Repository は監査トレイルの永続化ポート（追記のみ）です。
type Repository interface {
	Append(ctx context.Context, e Entry) (string, error)
}

// ========================================
// SQL DDL (optional Postgres reporting mirror)
// ========================================

const DealAuditTableDDL = `
-- Migration: Initialize deal_audit table

BEGIN;

CREATE TABLE IF NOT EXISTS deal_audit (
  id           TEXT        PRIMARY KEY DEFAULT gen_random_uuid()::text,
  deal_id      TEXT        NOT NULL,
  company_name TEXT        NOT NULL DEFAULT '',
  changes      JSONB       NOT NULL,
  changed_by   TEXT        NOT NULL DEFAULT 'system',
  created_at   TIMESTAMPTZ NOT NULL,

  CONSTRAINT chk_deal_audit_non_empty CHECK (changes <> '{}'::jsonb)
);

CREATE INDEX IF NOT EXISTS idx_deal_audit_deal_id    ON deal_audit (deal_id);
CREATE INDEX IF NOT EXISTS idx_deal_audit_created_at ON deal_audit (created_at);

COMMIT;
`
