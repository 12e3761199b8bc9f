// internal/application/trigger/dispatcher.go
package trigger

import (
	"context"
	"log"

	"leadportal/internal/domain/audit"
	"leadportal/internal/domain/deal"
	"leadportal/internal/domain/notification"
	"leadportal/internal/domain/scorecard"
)

// MailerPort はトランザクションメール送信の出力ポートです。
type MailerPort interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Dispatcher はコマンドを実行します。各コマンドはベストエフォートで、
// 1 件の失敗はログに残すだけで残りの実行を止めません。
// 呼び出し元のユースケースにもエラーを返しません。
type Dispatcher struct {
	Scorecard     scorecard.Repository
	Audit         audit.Repository
	AuditMirror   audit.Repository // 任意。Postgres ミラー。nil 可。
	Notifications notification.Repository
	Deals         deal.Repository
	Mailer        MailerPort // nil 可
}

// Dispatch executes every command in order.
func (d *Dispatcher) Dispatch(ctx context.Context, cmds []Command) {
	for _, cmd := range cmds {
		switch c := cmd.(type) {
		case IncrementScorecard:
			if d.Scorecard == nil {
				continue
			}
			if err := d.Scorecard.Increment(ctx, c.RepID, c.WeekID, c.Counter); err != nil {
				log.Printf("[trigger] scorecard increment failed: rep=%s week=%s counter=%s: %v", c.RepID, c.WeekID, c.Counter, err)
			}
		case AppendAudit:
			if d.Audit != nil {
				if _, err := d.Audit.Append(ctx, c.Entry); err != nil {
					log.Printf("[trigger] audit append failed: deal=%s: %v", c.Entry.DealID, err)
				}
			}
			if d.AuditMirror != nil {
				if _, err := d.AuditMirror.Append(ctx, c.Entry); err != nil {
					log.Printf("[trigger] audit mirror append failed: deal=%s: %v", c.Entry.DealID, err)
				}
			}
		case CreateNotification:
			if d.Notifications == nil {
				continue
			}
			if _, err := d.Notifications.Create(ctx, c.Record); err != nil {
				log.Printf("[trigger] notification create failed: type=%s recipient=%s: %v", c.Record.Type, c.Record.RecipientID, err)
			}
		case SendEmail:
			if d.Mailer == nil {
				continue
			}
			if err := d.Mailer.Send(ctx, c.To, c.Subject, c.Body); err != nil {
				log.Printf("[trigger] email send failed: to=%s: %v", c.To, err)
			}
		case CreateDeal:
			if d.Deals == nil {
				continue
			}
			if _, err := d.Deals.Create(ctx, c.Deal); err != nil {
				log.Printf("[trigger] deal create failed: company=%s: %v", c.Deal.CompanyName, err)
			}
		default:
			log.Printf("[trigger] unknown command %T", cmd)
		}
	}
}
