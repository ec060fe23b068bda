package service

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/solarcare/inverter-service/internal/events"
)

// NotificationService delivers email for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     Mailer
	logger     *zap.Logger
	clientURL  string
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, mailer Mailer, logger *zap.Logger, clientURL string) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		mailer:     mailer,
		logger:     logger,
		clientURL:  strings.TrimRight(clientURL, "/"),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Info("TicketCreated", zap.String("ticket_id", payload.TicketID), zap.String("customer_id", payload.CustomerID))
	if payload.EmailID == "" {
		return nil
	}

	body := fmt.Sprintf(`<p>We received your support request <strong>%s</strong>.</p>
<p>Device: %s</p>
<blockquote>%s</blockquote>
<p>Our technicians will get back to you shortly.</p>`,
		html.EscapeString(payload.TicketID),
		html.EscapeString(payload.DeviceID),
		html.EscapeString(payload.Message))
	return n.mailer.Send(ctx, payload.EmailID, "Ticket "+payload.TicketID+" received", body)
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Info("TicketStatusChanged",
		zap.String("ticket_id", payload.TicketID),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)))
	if payload.EmailID == "" {
		return nil
	}

	body := fmt.Sprintf(`<p>Your ticket <strong>%s</strong> moved from %s to %s.</p>`,
		html.EscapeString(payload.TicketID), payload.OldStatus, payload.NewStatus)
	return n.mailer.Send(ctx, payload.EmailID, "Ticket "+payload.TicketID+" updated", body)
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Info("PasswordResetRequested", zap.String("user_id", payload.UserID))

	link := n.ResetLink(payload.Token)
	body := fmt.Sprintf(`<p>Hello %s,</p>
<p>Use the link below to choose a new password. It expires at %s.</p>
<p><a href="%s">Reset your password</a></p>
<p>If you did not ask for this, ignore this email.</p>`,
		html.EscapeString(payload.Name),
		payload.ExpiresAt.UTC().Format("2006-01-02 15:04 MST"),
		html.EscapeString(link))
	return n.mailer.Send(ctx, payload.EmailID, "Reset your password", body)
}

// ResetLink builds the client-side password reset URL for token.
func (n *NotificationService) ResetLink(token string) string {
	return n.clientURL + "/reset-password?token=" + url.QueryEscape(token)
}
