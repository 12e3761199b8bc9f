// internal/adapters/out/mail/portal_mailer.go
package mail

import (
	"context"
	"fmt"
)

// PortalMailer はトリガー層のメール送信ポート（trigger.MailerPort）の
// 具象実装で、内部で EmailClient を利用してメール送信を行います。
type PortalMailer struct {
	client      EmailClient
	fromAddress string
}

// NewPortalMailer は PortalMailer のコンストラクタです。
//
//   - client      : SendGrid などの具体的な EmailClient 実装
//   - fromAddress : 送信元メールアドレス
func NewPortalMailer(client EmailClient, fromAddress string) *PortalMailer {
	return &PortalMailer{client: client, fromAddress: fromAddress}
}

// Send は件名と本文をそのまま送ります。宛先や文面の組み立ては
// トリガー層のルールが済ませています。
func (m *PortalMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.client == nil {
		return fmt.Errorf("mail: client is nil")
	}
	return m.client.Send(ctx, m.fromAddress, to, subject, body)
}
