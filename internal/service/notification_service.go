package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/logistics-kit/delivery-service/internal/config"
	"github.com/logistics-kit/delivery-service/internal/events"
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
	n.dispatcher.Subscribe(events.EventDeliveryCreated, n.handleDeliveryCreated)
	n.dispatcher.Subscribe(events.EventDriverAssigned, n.handleDriverAssigned)
	n.dispatcher.Subscribe(events.EventDeliveryStatusChanged, n.handleStatusChanged)
}

func (n *NotificationService) handleDeliveryCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("DeliveryCreated", zap.String("delivery_id", event.DeliveryID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleDriverAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("DriverAssigned", zap.String("delivery_id", event.DeliveryID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("DeliveryStatusChanged", zap.String("delivery_id", event.DeliveryID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("delivery_id", event.DeliveryID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("delivery_id", event.DeliveryID),
		zap.String("event_type", string(event.Type)))
}
