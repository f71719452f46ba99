// Package mailer はSMTP経由のトランザクションメール送信を提供する。
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"

	mail "github.com/go-mail/mail"

	"github.com/hitoshi/mailsign/internal/auth"
)

// SMTPConfig はSMTP接続の設定。
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender はSMTP経由でメールを送信する。auth.Mailerを実装する。
type SMTPSender struct {
	config SMTPConfig
}

// NewSMTPSender はSMTPSenderを生成する。
func NewSMTPSender(config SMTPConfig) *SMTPSender {
	return &SMTPSender{config: config}
}

// SendSigninEmail はサインインリンク入りのメールを送信する。
func (s *SMTPSender) SendSigninEmail(ctx context.Context, email auth.SigninEmail) error {
	html, text, err := renderSigninEmail(email)
	if err != nil {
		return fmt.Errorf("failed to render signin email: %w", err)
	}
	return s.send(ctx, email.To, "サインイン用リンク", html, text)
}

// SendWelcomeEmail は初回サインイン時のウェルカムメールを送信する。
func (s *SMTPSender) SendWelcomeEmail(ctx context.Context, email auth.WelcomeEmail) error {
	html, text, err := renderWelcomeEmail(email)
	if err != nil {
		return fmt.Errorf("failed to render welcome email: %w", err)
	}
	return s.send(ctx, email.To, "ようこそ", html, text)
}

// send はmultipart/alternative（テキスト + HTML）でメールを送信する。
func (s *SMTPSender) send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.config.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	d := mail.NewDialer(s.config.Host, s.config.Port, s.config.Username, s.config.Password)
	d.TLSConfig = &tls.Config{ServerName: s.config.Host}

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	slog.Info("email sent",
		slog.String("subject", subject),
	)
	return nil
}

// compile-time interface check
var _ auth.Mailer = (*SMTPSender)(nil)
