package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/pkg/logger"
	"github.com/keranjangku/keranjangku-backend/pkg/outbox"
)

// basketRef extracts the basket routing key shared by every domain payload.
type basketRef struct {
	BasketID uuid.UUID `json:"basket_id"`
}

// BroadcastMessage is the frame pushed to websocket clients.
type BroadcastMessage struct {
	EventType  string          `json:"event_type"`
	BasketID   uuid.UUID       `json:"basket_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// Broadcaster relays domain events from the broadcast subscription into hub
// rooms. Delivery is best effort; every message is acked regardless of how
// many clients were connected.
type Broadcaster struct {
	hub          *Hub
	subscription *pubsub.Subscriber
	logg         *logger.Logger
}

// NewBroadcaster builds a broadcaster for the given hub and subscription.
func NewBroadcaster(hub *Hub, subscription *pubsub.Subscriber, logg *logger.Logger) (*Broadcaster, error) {
	if hub == nil {
		return nil, fmt.Errorf("hub required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("broadcast subscription required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Broadcaster{hub: hub, subscription: subscription, logg: logg}, nil
}

// Run starts the relay loop until the context is canceled.
func (b *Broadcaster) Run(ctx context.Context) error {
	return b.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		b.relay(ctx, msg)
		msg.Ack()
	})
}

func (b *Broadcaster) relay(ctx context.Context, msg *pubsub.Message) {
	eventType := msg.Attributes["event_type"]
	logCtx := b.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		b.logg.Error(logCtx, "failed to decode envelope", err)
		return
	}
	var ref basketRef
	if err := json.Unmarshal(envelope.Data, &ref); err != nil || ref.BasketID == uuid.Nil {
		return
	}
	if b.hub.RoomSize(ref.BasketID) == 0 {
		return
	}

	frame, err := json.Marshal(BroadcastMessage{
		EventType:  eventType,
		BasketID:   ref.BasketID,
		OccurredAt: envelope.OccurredAt,
		Data:       envelope.Data,
	})
	if err != nil {
		b.logg.Error(logCtx, "failed to encode broadcast frame", err)
		return
	}
	b.hub.Broadcast(logCtx, ref.BasketID, frame)
}
