package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fidelipromo/loyalty-service/internal/config"
	"github.com/fidelipromo/loyalty-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
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
	n.dispatcher.Subscribe(events.EventCustomerRegistered, n.handleCustomerRegistered)
	n.dispatcher.Subscribe(events.EventBusinessRegistered, n.handleBusinessRegistered)
	n.dispatcher.Subscribe(events.EventTeamMemberInvited, n.handleTeamMemberInvited)
	n.dispatcher.Subscribe(events.EventTeamMemberRemoved, n.handleTeamMemberRemoved)
	n.dispatcher.Subscribe(events.EventTransactionRecorded, n.handleTransactionRecorded)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
}

func (n *NotificationService) handleCustomerRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("CustomerRegistered", zap.String("actor", event.Actor.UserID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleBusinessRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("BusinessRegistered", zap.String("actor", event.Actor.UserID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTeamMemberInvited(ctx context.Context, event events.Event) error {
	n.logger.Info("TeamMemberInvited", zap.String("actor", event.Actor.UserID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTeamMemberRemoved(ctx context.Context, event events.Event) error {
	n.logger.Info("TeamMemberRemoved", zap.String("actor", event.Actor.UserID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTransactionRecorded(ctx context.Context, event events.Event) error {
	n.logger.Info("TransactionRecorded", zap.String("actor", event.Actor.UserID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	n.logger.Info("PasswordResetRequested", zap.String("actor", event.Actor.UserID))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)))
}
