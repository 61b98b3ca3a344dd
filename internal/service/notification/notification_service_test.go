package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"softmarket-service/internal/domain/notification"
	"softmarket-service/internal/queue"
)

type fakeWishlist struct {
	userIDs []int64
	err     error
}

func (f *fakeWishlist) UserIDsBySoftware(ctx context.Context, softwareID int64) ([]int64, error) {
	return f.userIDs, f.err
}

type fakeStore struct {
	created []notification.Notification
	err     error
}

func (f *fakeStore) CreateBatch(ctx context.Context, notifications []notification.Notification) ([]notification.Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range notifications {
		notifications[i].ID = int64(i + 1)
	}
	f.created = append(f.created, notifications...)
	return notifications, nil
}

func (f *fakeStore) ListByUser(ctx context.Context, userID int64) ([]notification.Notification, error) {
	return f.created, nil
}

func (f *fakeStore) MarkAsRead(ctx context.Context, id, userID int64) error { return nil }

func (f *fakeStore) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type fakePublisher struct {
	events []*notification.Event
}

func (f *fakePublisher) Publish(ctx context.Context, event *notification.Event) error {
	f.events = append(f.events, event)
	return nil
}

func priceDropJob(t *testing.T, payload notification.PriceDropPayload) *queue.Job {
	raw, err := json.Marshal(payload)
	assert.NoError(t, err)
	return &queue.Job{ID: "job-1", Type: string(notification.TypePriceDrop), Payload: raw}
}

func TestPriceDropMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "The price has dropped from $49.99 to $39.99!", PriceDropMessage(49.99, 39.99))
	assert.Equal(t, "The price has dropped from $10.00 to $9.50!", PriceDropMessage(10, 9.5))
}

func TestHandlePriceDropFanOut(t *testing.T) {
	t.Parallel()

	wishlist := &fakeWishlist{userIDs: []int64{7, 8, 9}}
	store := &fakeStore{}
	publisher := &fakePublisher{}
	svc := NewService(wishlist, store, publisher, zap.NewNop())

	job := priceDropJob(t, notification.PriceDropPayload{
		ProductID: 42,
		OldPrice:  49.99,
		NewPrice:  39.99,
	})

	err := svc.HandlePriceDrop(context.Background(), job)
	assert.NoError(t, err)
	assert.Len(t, store.created, 3)
	assert.Len(t, publisher.events, 3)

	for i, n := range store.created {
		assert.Equal(t, wishlist.userIDs[i], n.UserID)
		assert.Equal(t, notification.TypePriceDrop, n.Type)
		assert.Equal(t, "The price has dropped from $49.99 to $39.99!", n.Message)
		assert.Equal(t, int64(42), n.SoftwareID.Int64)
	}
}

func TestHandlePriceDropEmptyAudience(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	svc := NewService(&fakeWishlist{}, store, &fakePublisher{}, zap.NewNop())

	err := svc.HandlePriceDrop(context.Background(), priceDropJob(t, notification.PriceDropPayload{ProductID: 1}))
	assert.NoError(t, err)
	assert.Empty(t, store.created)
}

func TestHandlePriceDropStoreFailure(t *testing.T) {
	t.Parallel()

	// A failed write must surface so the worker retries the job.
	store := &fakeStore{err: errors.New("db down")}
	svc := NewService(&fakeWishlist{userIDs: []int64{1}}, store, &fakePublisher{}, zap.NewNop())

	err := svc.HandlePriceDrop(context.Background(), priceDropJob(t, notification.PriceDropPayload{ProductID: 1}))
	assert.Error(t, err)
}

func TestHandlePriceDropMalformedPayload(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeWishlist{}, &fakeStore{}, &fakePublisher{}, zap.NewNop())
	job := &queue.Job{ID: "job-1", Type: string(notification.TypePriceDrop), Payload: []byte("{not json")}

	err := svc.HandlePriceDrop(context.Background(), job)
	assert.Error(t, err)
}

func TestHandleOrderCompleted(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	publisher := &fakePublisher{}
	svc := NewService(&fakeWishlist{}, store, publisher, zap.NewNop())

	payload, err := json.Marshal(notification.OrderCompletedPayload{UserID: 5, OrderID: 17, TotalAmount: 59.98})
	assert.NoError(t, err)

	job := &queue.Job{ID: "job-2", Type: string(notification.TypeOrderCompleted), Payload: payload}
	assert.NoError(t, svc.HandleOrderCompleted(context.Background(), job))

	assert.Len(t, store.created, 1)
	assert.Equal(t, int64(5), store.created[0].UserID)
	assert.Equal(t, notification.TypeOrderCompleted, store.created[0].Type)
	assert.Equal(t, "Your order #17 has been completed. Total: $59.98.", store.created[0].Message)
	assert.Len(t, publisher.events, 1)
}
