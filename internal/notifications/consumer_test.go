package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	"github.com/keranjangku/keranjangku-backend/pkg/enums"
	"github.com/keranjangku/keranjangku-backend/pkg/logger"
	"github.com/keranjangku/keranjangku-backend/pkg/outbox"
	"github.com/keranjangku/keranjangku-backend/pkg/outbox/idempotency"
	"github.com/keranjangku/keranjangku-backend/pkg/outbox/payloads"
)

type fakeConsumerRepo struct {
	created []*models.Notification
	err     error
}

func (f *fakeConsumerRepo) Create(ctx context.Context, notification *models.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, notification)
	return nil
}

type fakeIdempotencyStore struct {
	keys map[string]struct{}
	err  error
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{keys: map[string]struct{}{}}
}

func (f *fakeIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	return "", nil
}

func (f *fakeIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if _, exists := f.keys[key]; exists {
		return false, nil
	}
	f.keys[key] = struct{}{}
	return true, nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "test:" + scope + ":" + id
}

func (f *fakeIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.keys, key)
	}
	return nil
}

func newTestConsumer(t *testing.T, repo notificationCreator, store *fakeIdempotencyStore) *Consumer {
	t.Helper()
	manager, err := idempotency.NewManager(store, time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return &Consumer{
		repo:        repo,
		idempotency: manager,
		logg:        logger.New(logger.Options{ServiceName: "test"}),
	}
}

func domainMessage(t *testing.T, eventType string, payload any) *pubsub.Message {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return &pubsub.Message{
		ID:         uuid.NewString(),
		Data:       envelope,
		Attributes: map[string]string{"event_type": eventType},
	}
}

func TestProcessShareInvite(t *testing.T) {
	repo := &fakeConsumerRepo{}
	consumer := newTestConsumer(t, repo, newFakeIdempotencyStore())

	target := uuid.New()
	msg := domainMessage(t, string(enums.EventShareCreated), payloads.ShareChangedEvent{
		ShareID:  uuid.New(),
		BasketID: uuid.New(),
		ToUserID: target,
	})

	result := consumer.process(context.Background(), msg)
	if !result.ack || result.nack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one notification, got %d", len(repo.created))
	}
	created := repo.created[0]
	if created.UserID != target || created.Kind != enums.NotificationShareInvite {
		t.Fatalf("unexpected notification %+v", created)
	}
}

func TestProcessIgnoresUnknownEvents(t *testing.T) {
	repo := &fakeConsumerRepo{}
	consumer := newTestConsumer(t, repo, newFakeIdempotencyStore())

	msg := &pubsub.Message{
		ID:         uuid.NewString(),
		Data:       []byte(`{}`),
		Attributes: map[string]string{"event_type": "stuff_created"},
	}
	result := consumer.process(context.Background(), msg)
	if !result.ack {
		t.Fatalf("irrelevant events must ack, got %+v", result)
	}
	if len(repo.created) != 0 {
		t.Fatal("expected no notification")
	}
}

func TestProcessDuplicateEventAckedOnce(t *testing.T) {
	repo := &fakeConsumerRepo{}
	consumer := newTestConsumer(t, repo, newFakeIdempotencyStore())

	msg := domainMessage(t, string(enums.EventOrderCreated), payloads.OrderCreatedEvent{
		OrderID:    uuid.New(),
		Number:     "12345678",
		CustomerID: uuid.New(),
	})

	first := consumer.process(context.Background(), msg)
	second := consumer.process(context.Background(), msg)
	if !first.ack || !second.ack {
		t.Fatalf("expected both deliveries acked, got %+v and %+v", first, second)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected exactly one notification across redeliveries, got %d", len(repo.created))
	}
}

func TestProcessNacksOnRepoFailure(t *testing.T) {
	store := newFakeIdempotencyStore()
	repo := &fakeConsumerRepo{err: errors.New("db down")}
	consumer := newTestConsumer(t, repo, store)

	msg := domainMessage(t, string(enums.EventShareDeleted), payloads.ShareChangedEvent{
		ShareID:  uuid.New(),
		ToUserID: uuid.New(),
	})

	result := consumer.process(context.Background(), msg)
	if !result.nack {
		t.Fatalf("expected nack on handler failure, got %+v", result)
	}
	// The marker is rolled back so the redelivery can try again.
	if len(store.keys) != 0 {
		t.Fatalf("expected idempotency marker cleared, got %d keys", len(store.keys))
	}
}

func TestProcessSelfCompletionSkipsNotification(t *testing.T) {
	repo := &fakeConsumerRepo{}
	consumer := newTestConsumer(t, repo, newFakeIdempotencyStore())

	owner := uuid.New()
	msg := domainMessage(t, string(enums.EventBasketCompleted), payloads.BasketCompletedEvent{
		BasketID:      uuid.New(),
		OwnerID:       owner,
		CompletedByID: owner,
		CompletedAt:   time.Now().UTC(),
	})

	result := consumer.process(context.Background(), msg)
	if !result.ack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(repo.created) != 0 {
		t.Fatal("owner completing their own basket must not notify")
	}
}
