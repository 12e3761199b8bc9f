// internal/application/trigger/command.go
package trigger

import (
	"leadportal/internal/domain/audit"
	"leadportal/internal/domain/deal"
	"leadportal/internal/domain/notification"
)

// ========================================
// コマンド（ルールの出力）
// Commands are plain values produced by the rules. They describe side
// effects without performing them; the Dispatcher executes them.
// ========================================

type Command interface{ isCommand() }

// IncrementScorecard は週次スコアカードのカウンタを +1 します。
type IncrementScorecard struct {
	RepID   string
	WeekID  string
	Counter string
}

// AppendAudit は案件の変更履歴を 1 件追記します。
type AppendAudit struct {
	Entry audit.Entry
}

// CreateNotification は通知を 1 件作成します。
type CreateNotification struct {
	Record notification.Record
}

// SendEmail はトランザクションメールを 1 通送ります。
type SendEmail struct {
	To      string
	Subject string
	Body    string
}

// CreateDeal はパイプラインに案件を新規作成します。
type CreateDeal struct {
	Deal deal.Deal
}

func (IncrementScorecard) isCommand() {}
func (AppendAudit) isCommand()        {}
func (CreateNotification) isCommand() {}
func (SendEmail) isCommand()          {}
func (CreateDeal) isCommand()         {}
