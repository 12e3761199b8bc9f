// internal/adapters/out/mail/sendgrid_client.go
package mail

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailClient は実際のメール送信クライアント（SendGrid / SMTP など）を
// 抽象化した下位レベルのインターフェースです。
type EmailClient interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// SendGridClient implements EmailClient using the SendGrid v3 API.
type SendGridClient struct {
	apiKey     string
	senderName string
}

func NewSendGridClient(apiKey, senderName string) *SendGridClient {
	if senderName == "" {
		senderName = "Lead Portal"
	}
	return &SendGridClient{apiKey: apiKey, senderName: senderName}
}

// Send sends a plain-text email (with a minimal HTML mirror).
func (c *SendGridClient) Send(ctx context.Context, from, to, subject, body string) error {
	if c.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if from == "" {
		return fmt.Errorf("from address is empty")
	}
	if to == "" {
		return fmt.Errorf("to address is empty")
	}

	fromEmail := sgmail.NewEmail(c.senderName, from)
	toEmail := sgmail.NewEmail("", to)

	plainTextContent := body
	htmlContent := fmt.Sprintf("<pre>%s</pre>", body)

	message := sgmail.NewSingleEmail(fromEmail, subject, toEmail, plainTextContent, htmlContent)

	client := sendgrid.NewSendClient(c.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		log.Printf("[sendgrid] error status=%d, body=%s", response.StatusCode, response.Body)
		return fmt.Errorf("sendgrid send failed: status=%d", response.StatusCode)
	}

	log.Printf("[sendgrid] mail sent: status=%d to=%s subject=%s", response.StatusCode, to, subject)
	return nil
}
