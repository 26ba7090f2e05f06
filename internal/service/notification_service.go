package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-intel/internal/config"
	"github.com/spec-kit/helpdesk-intel/internal/events"
)

// Notifier is the fire-and-forget notification collaborator. Failures are
// logged by the implementation and must never abort a caller.
type Notifier interface {
	Notify(ctx context.Context, channel string, payload any) error
}

// NotificationService forwards domain events to notification channels.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventTicketReassigned, n.handleTicketReassigned)
	n.dispatcher.Subscribe(events.EventSLAAlert, n.handleSLAAlert)
	n.dispatcher.Subscribe(events.EventDuplicateDetected, n.handleDuplicateDetected)
}

// Notify sends a payload to the named channel. Unknown channels are logged
// and dropped.
func (n *NotificationService) Notify(ctx context.Context, channel string, payload any) error {
	switch channel {
	case "email":
		n.sendEmailStub(ctx, payload)
	case "webhook":
		n.sendWebhookStub(ctx, payload)
	default:
		n.logger.Warn("unknown notification channel", zap.String("channel", channel))
	}
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketAssigned", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return n.Notify(ctx, "webhook", event)
}

func (n *NotificationService) handleTicketReassigned(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketReassigned", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return n.Notify(ctx, "webhook", event)
}

func (n *NotificationService) handleSLAAlert(ctx context.Context, event events.Event) error {
	n.logger.Info("SLAAlert", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	if err := n.Notify(ctx, "email", event); err != nil {
		return err
	}
	return n.Notify(ctx, "webhook", event)
}

func (n *NotificationService) handleDuplicateDetected(ctx context.Context, event events.Event) error {
	n.logger.Info("DuplicateDetected", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendEmailStub(ctx context.Context, payload any) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.Any("payload", payload))
}

func (n *NotificationService) sendWebhookStub(ctx context.Context, payload any) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.Any("payload", payload))
}
