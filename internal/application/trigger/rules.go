// internal/application/trigger/rules.go
package trigger

import (
	"fmt"
	"time"

	"leadportal/internal/domain/audit"
	"leadportal/internal/domain/chat"
	"leadportal/internal/domain/deal"
	"leadportal/internal/domain/notification"
	"leadportal/internal/domain/portal"
	"leadportal/internal/domain/quote"
	"leadportal/internal/domain/revision"
	"leadportal/internal/domain/scorecard"
)

// AdminRecipientID は管理者宛通知の宛先 ID です。
const AdminRecipientID = "admin"

// Rules は「更新前後のスナップショットからコマンド列を導く」純粋関数の集まりです。
// 永続化やメール送信は一切行いません。副作用は Dispatcher に委ねます。
type Rules struct {
	AdminBaseURL  string
	PortalBaseURL string
	OpsEmail      string
}

// ----------------------------------------
// Deal
// ----------------------------------------

// OnDealUpdated は案件更新に対するコマンドを返します。
//   - ステージが変わり、かつ担当者が付いている場合のみスコアカードを加算します。
//     同一ステージでの再保存では加算しません。
//   - 監視対象フィールドに差分があれば監査ログを 1 件追記します。
func (r Rules) OnDealUpdated(before, after deal.Deal, now time.Time) []Command {
	var cmds []Command

	stageChanged := before.Stage != after.Stage
	if stageChanged && after.AssignedTo != "" && after.AssignedTo != "unassigned" {
		if counter, ok := scorecard.CounterForStage(after.Stage); ok {
			cmds = append(cmds, IncrementScorecard{
				RepID:   after.AssignedTo,
				WeekID:  scorecard.WeekID(now),
				Counter: counter,
			})
		}
	}

	if changes := audit.DiffDeal(before, after); len(changes) > 0 {
		entry, err := audit.NewEntry(after.ID, after, changes)
		if err == nil {
			cmds = append(cmds, AppendAudit{Entry: entry})
		}
	}

	if stageChanged && after.AssignedTo != "" && after.AssignedTo != "unassigned" {
		if rec, err := notification.New(
			notification.TypeDealStageChange,
			after.AssignedTo,
			notification.RecipientSalesRep,
			fmt.Sprintf("%s moved to %s", after.CompanyName, after.Stage.DisplayName()),
		); err == nil {
			cmds = append(cmds, CreateNotification{Record: rec.WithAction(r.AdminBaseURL+"/deals/"+after.ID, after.ID)})
		}
	}

	assigneeChanged := before.AssignedTo != after.AssignedTo
	if assigneeChanged && after.AssignedTo != "" && after.AssignedTo != "unassigned" {
		if rec, err := notification.New(
			notification.TypeDealAssigned,
			after.AssignedTo,
			notification.RecipientSalesRep,
			fmt.Sprintf("You were assigned %s", after.CompanyName),
		); err == nil {
			cmds = append(cmds, CreateNotification{Record: rec.WithAction(r.AdminBaseURL+"/deals/"+after.ID, after.ID)})
		}
	}

	return cmds
}

// ----------------------------------------
// Website quote
// ----------------------------------------

// OnQuoteStatusTransition は見積の完了エッジ（incomplete → completed）で
// リード案件の自動作成・管理者通知・運用宛メールを発行します。
// completed → completed の再保存では何も発行しません。
func (r Rules) OnQuoteStatusTransition(before, after quote.Quote, now time.Time) []Command {
	if before.Status == quote.StatusCompleted || after.Status != quote.StatusCompleted {
		return nil
	}

	d := deal.Deal{
		CompanyName:    after.DisplayName(),
		ContactName:    after.OwnerName,
		Email:          after.Email,
		Phone:          after.Phone,
		AssignedTo:     "unassigned",
		Stage:          deal.StageLead,
		WebsiteQuoteID: after.ID,
		LastUpdatedBy:  "system",
		CreatedAt:      now,
		LastUpdated:    now,
	}
	cmds := []Command{CreateDeal{Deal: d}}

	if rec, err := notification.New(
		notification.TypeQuoteSubmitted,
		AdminRecipientID,
		notification.RecipientAdmin,
		fmt.Sprintf("New website quote from %s", after.DisplayName()),
	); err == nil {
		cmds = append(cmds, CreateNotification{Record: rec.WithAction(r.AdminBaseURL+"/quotes/"+after.ID, after.ID)})
	}

	if r.OpsEmail != "" {
		cmds = append(cmds, SendEmail{
			To:      r.OpsEmail,
			Subject: fmt.Sprintf("Website quote completed: %s", after.DisplayName()),
			Body: fmt.Sprintf("%s finished the website quote form.\nEmail: %s\nPhone: %s\nBudget: %s\n",
				after.DisplayName(), after.Email, after.Phone, after.BudgetRange),
		})
	}

	return cmds
}

// ----------------------------------------
// Onboarding portal
// ----------------------------------------

// OnStepCompleted はクライアントのステップ完了に対するコマンドを返します。
// 最後から 2 番目のステップ完了時（最終承認ステップが解放されたタイミング）には
// 運用宛メールも発行します。
func (r Rules) OnStepCompleted(c portal.ClientRecord, step int, now time.Time) []Command {
	var cmds []Command

	p := portal.Project(&c)
	if rec, err := notification.New(
		notification.TypeClientStepComplete,
		AdminRecipientID,
		notification.RecipientAdmin,
		fmt.Sprintf("%s completed step %d of %d (%d%%)", c.ClientName, step, p.Total, p.Percentage),
	); err == nil {
		md := map[string]any{"step": step, "percentage": p.Percentage}
		cmds = append(cmds, CreateNotification{Record: rec.WithAction(r.AdminBaseURL+"/clients/"+c.ID, c.ID).WithMetadata(md)})
	}

	if step == c.StepCount()-1 && r.OpsEmail != "" {
		cmds = append(cmds, SendEmail{
			To:      r.OpsEmail,
			Subject: fmt.Sprintf("%s is ready for final approval", c.ClientName),
			Body: fmt.Sprintf("%s has completed step %d and unlocked the final approval step.\n%s/clients/%s\n",
				c.ClientName, step, r.AdminBaseURL, c.ID),
		})
	}

	return cmds
}

// ----------------------------------------
// Messaging
// ----------------------------------------

// OnMessagePosted はスレッド投稿に対する相手方宛の通知を返します。
func (r Rules) OnMessagePosted(clientID, clientName string, m chat.Message) []Command {
	switch m.Sender {
	case chat.SenderClient:
		rec, err := notification.New(
			notification.TypeMessageReceived,
			AdminRecipientID,
			notification.RecipientAdmin,
			fmt.Sprintf("New message from %s", clientName),
		)
		if err != nil {
			return nil
		}
		return []Command{CreateNotification{Record: rec.WithAction(r.AdminBaseURL+"/messages/"+clientID, clientID)}}
	case chat.SenderAdmin:
		rec, err := notification.New(
			notification.TypeMessageReply,
			clientID,
			notification.RecipientClient,
			"You have a new message from your account team",
		)
		if err != nil {
			return nil
		}
		return []Command{CreateNotification{Record: rec.WithAction(r.PortalBaseURL+"?id="+clientID, clientID)}}
	default:
		return nil
	}
}

// ----------------------------------------
// Revision requests
// ----------------------------------------

// OnRevisionRequested は修正依頼に対する管理者通知を返します。
func (r Rules) OnRevisionRequested(req revision.Request) []Command {
	rec, err := notification.New(
		notification.TypeRevisionRequested,
		AdminRecipientID,
		notification.RecipientAdmin,
		fmt.Sprintf("%s requested revisions (%d files)", req.ClientName, len(req.Assets)),
	)
	if err != nil {
		return nil
	}
	return []Command{CreateNotification{Record: rec.WithAction(r.AdminBaseURL+"/clients/"+req.ClientID, req.ClientID)}}
}
