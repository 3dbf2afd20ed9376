package dependencies

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/Xushengqwer/keenmind_auth/config"
)

// Mailer 发送邮件
type Mailer interface {
	// Send 同时发送 HTML 与纯文本两个版本
	Send(ctx context.Context, to, subject, html, text string) error
}

// SMTPMailer 基于 gomail 的 SMTP 实现
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer 端口未配置时使用 465 (SMTPS)
func NewSMTPMailer(cfg *config.EmailConfig) *SMTPMailer {
	port := cfg.SMTPPort
	if port == 0 {
		port = 465
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, port, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, html, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text)
	msg.AddAlternative("text/html", html)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("SMTPMailer.Send: 发送邮件失败: %w", err)
	}
	return nil
}
