package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/solarcare/inverter-service/internal/config"
)

// Mailer delivers HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// NewMailer returns an SMTP mailer, or a logging mailer when no SMTP host is configured.
func NewMailer(cfg config.MailConfig, logger *zap.Logger) Mailer {
	if strings.TrimSpace(cfg.Host) == "" {
		return &logMailer{logger: logger}
	}
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &smtpMailer{send: dialer.DialAndSend, from: cfg.From}
}

// smtpMailer sends through gomail. gomail has no context support, so Send stops
// waiting when ctx is done and leaves the SMTP exchange to finish on its own.
type smtpMailer struct {
	send func(...*gomail.Message) error
	from string
}

func (m *smtpMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(m.from, "Inverter Support"))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	done := make(chan error, 1)
	go func() { done <- m.send(msg) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type logMailer struct {
	logger *zap.Logger
}

func (m *logMailer) Send(_ context.Context, to, subject, _ string) error {
	m.logger.Info("mail delivery disabled, dropping message",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}
