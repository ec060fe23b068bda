package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/solarcare/inverter-service/internal/config"
)

func TestNewMailerWithoutHostLogsOnly(t *testing.T) {
	mailer := NewMailer(config.MailConfig{}, zap.NewNop())
	_, ok := mailer.(*logMailer)
	require.True(t, ok)
	assert.NoError(t, mailer.Send(context.Background(), "jane@example.com", "hi", "<p>hi</p>"))
}

func TestSMTPMailerBuildsMessage(t *testing.T) {
	var sent *gomail.Message
	mailer := &smtpMailer{from: "support@example.com", send: func(msgs ...*gomail.Message) error {
		sent = msgs[0]
		return nil
	}}

	require.NoError(t, mailer.Send(context.Background(), "jane@example.com", "Ticket received", "<p>ok</p>"))
	require.NotNil(t, sent)
	assert.Equal(t, []string{"jane@example.com"}, sent.GetHeader("To"))
	assert.Equal(t, []string{"Ticket received"}, sent.GetHeader("Subject"))
	assert.Contains(t, sent.GetHeader("From")[0], "support@example.com")
}

func TestSMTPMailerReturnsSendError(t *testing.T) {
	mailer := &smtpMailer{from: "support@example.com", send: func(...*gomail.Message) error {
		return errors.New("535 auth failed")
	}}
	assert.EqualError(t, mailer.Send(context.Background(), "jane@example.com", "s", "b"), "535 auth failed")
}

func TestSMTPMailerStopsWaitingWhenContextEnds(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	mailer := &smtpMailer{from: "support@example.com", send: func(...*gomail.Message) error {
		<-release
		return nil
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := mailer.Send(ctx, "jane@example.com", "s", "b")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
