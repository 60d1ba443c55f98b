package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	"github.com/keranjangku/keranjangku-backend/pkg/enums"
	"github.com/keranjangku/keranjangku-backend/pkg/logger"
	"github.com/keranjangku/keranjangku-backend/pkg/outbox"
	"github.com/keranjangku/keranjangku-backend/pkg/outbox/idempotency"
	"github.com/keranjangku/keranjangku-backend/pkg/outbox/payloads"
)

const domainNotificationConsumer = "domain-notifications"

type notificationCreator interface {
	Create(ctx context.Context, notification *models.Notification) error
}

var _ notificationCreator = Repository(nil)

// Consumer watches domain events and turns share and order milestones into
// in-app notifications.
type Consumer struct {
	repo         notificationCreator
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a domain notification consumer.
func NewConsumer(repo notificationCreator, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

var notifiedEventTypes = map[string]struct{}{
	string(enums.EventShareCreated):    {},
	string(enums.EventShareDeleted):    {},
	string(enums.EventBasketCompleted): {},
	string(enums.EventOrderCreated):    {},
	string(enums.EventAssignUpdated):   {},
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	if _, relevant := notifiedEventTypes[eventType]; !relevant {
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, domainNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		return processResult{ack: true}
	}

	if err := c.handle(ctx, eventType, envelope.Data); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, domainNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	c.logg.Info(logCtx, "notification created")
	return processResult{ack: true}
}

func (c *Consumer) handle(ctx context.Context, eventType string, data json.RawMessage) error {
	switch eventType {
	case string(enums.EventShareCreated):
		var payload payloads.ShareChangedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notify(ctx, payload.ToUserID, enums.NotificationShareInvite,
			"Basket shared with you",
			"You were invited to collaborate on a basket.", data)
	case string(enums.EventShareDeleted):
		var payload payloads.ShareChangedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notify(ctx, payload.ToUserID, enums.NotificationShareRevoked,
			"Basket access removed",
			"Your access to a shared basket was removed.", data)
	case string(enums.EventBasketCompleted):
		var payload payloads.BasketCompletedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		if payload.OwnerID == payload.CompletedByID {
			return nil
		}
		return c.notify(ctx, payload.OwnerID, enums.NotificationBasketComplete,
			"Basket completed",
			"A collaborator marked your basket complete.", data)
	case string(enums.EventOrderCreated):
		var payload payloads.OrderCreatedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notify(ctx, payload.CustomerID, enums.NotificationOrderCreated,
			"Order received",
			fmt.Sprintf("Order %s is waiting for an assistant.", payload.Number), data)
	case string(enums.EventAssignUpdated):
		var payload payloads.AssignUpdatedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		if payload.IsComplete {
			return c.notify(ctx, payload.CustomerID, enums.NotificationOrderDone,
				"Order fulfilled",
				"Your assistant finished shopping for your order.", data)
		}
		return c.notify(ctx, payload.CustomerID, enums.NotificationOrderAssigned,
			"Assistant assigned",
			"An assistant started shopping for your order.", data)
	default:
		return nil
	}
}

func (c *Consumer) notify(ctx context.Context, userID uuid.UUID, kind enums.NotificationKind, title, body string, data json.RawMessage) error {
	if userID == uuid.Nil {
		return fmt.Errorf("notification target missing")
	}
	return c.repo.Create(ctx, &models.Notification{
		UserID: userID,
		Kind:   kind,
		Title:  title,
		Body:   body,
		Data:   data,
	})
}
