package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AppFriend/DrGolly-sub001/internal/dto"
	"github.com/AppFriend/DrGolly-sub001/internal/entity"
	"github.com/AppFriend/DrGolly-sub001/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	events []*entity.Event
	err    error
}

func (f *fakeSender) Send(_ context.Context, event *entity.Event) error {
	f.events = append(f.events, event)
	return f.err
}

type fakeDeadLetter struct {
	records []*entity.DeadLetterRecord
	err     error
}

func (f *fakeDeadLetter) Archive(_ context.Context, record *entity.DeadLetterRecord) error {
	f.records = append(f.records, record)
	return f.err
}

func allFlags() Flags {
	return Flags{Purchase: true, SubscriptionStarted: true, CartAbandoned: true}
}

func newTestUseCase(sender *fakeSender, dl *fakeDeadLetter, flags Flags) *EventsUseCase {
	return New(sender, dl, flags, "development", "https://shop.example.com", 3, logger.New("error"))
}

func TestTrackPurchaseMinimalDefaults(t *testing.T) {
	sender := &fakeSender{}
	uc := newTestUseCase(sender, &fakeDeadLetter{}, allFlags())

	uc.TrackPurchase(context.Background(), dto.Order{ID: "order-9", Email: "a@b.com", Total: 10})

	require.Len(t, sender.events, 1)
	event := sender.events[0]

	assert.Equal(t, entity.MetricPlacedOrder, event.MetricName)
	assert.Equal(t, "purchase:order-9", event.IdempotencyKey)
	assert.Equal(t, "email:a@b.com", event.ProfileID)
	assert.Equal(t, "AUD", event.Properties["currency"])
	assert.Equal(t, "stripe", event.Properties["payment_method"])
	assert.Equal(t, "order-9", event.Properties["order_id"])
	assert.Equal(t, 10.0, event.Properties["total"])
	assert.Equal(t, 0.0, event.Properties["subtotal"])
	assert.Empty(t, event.Properties["line_items"])

	require.NotNil(t, event.Value)
	assert.Equal(t, 10.0, *event.Value)
}

func TestTrackPurchaseFullOrder(t *testing.T) {
	sender := &fakeSender{}
	uc := newTestUseCase(sender, &fakeDeadLetter{}, allFlags())

	price := 99.99
	qty := 1

	uc.TrackPurchase(context.Background(), dto.Order{
		ID:       "order-123",
		Email:    "a@b.com",
		Total:    99.99,
		Currency: "AUD",
		Items: []dto.Item{
			{ID: "course-1", Name: "Sleep Course", Price: &price, Quantity: &qty},
		},
	})

	require.Len(t, sender.events, 1)
	event := sender.events[0]

	assert.Equal(t, "purchase:order-123", event.IdempotencyKey)
	require.NotNil(t, event.Value)
	assert.InDelta(t, 99.99, *event.Value, 0.001)

	items, ok := event.Properties["line_items"].([]entity.LineItem)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "course-1", items[0].ProductID)
	assert.Equal(t, "Sleep Course", items[0].Name)
	assert.InDelta(t, 99.99, items[0].LineTotal, 0.001)
}

func TestTrackSubscriptionStarted(t *testing.T) {
	sender := &fakeSender{}
	uc := newTestUseCase(sender, &fakeDeadLetter{}, allFlags())

	uc.TrackSubscriptionStarted(context.Background(), dto.Subscription{
		ID:                   "sub-1",
		StripeSubscriptionID: "sub_stripe_42",
		Email:                "a@b.com",
		StartDate:            time.Date(2026, 3, 15, 22, 0, 0, 0, time.UTC),
	})

	require.Len(t, sender.events, 1)
	event := sender.events[0]

	assert.Equal(t, entity.MetricSubscriptionStarted, event.MetricName)
	assert.Equal(t, "sub_started:sub_stripe_42", event.IdempotencyKey)
	assert.Equal(t, 15, event.Properties["monthly_billing_day"])
	assert.Equal(t, "gold", event.Properties["tier"])
	assert.Equal(t, "month", event.Properties["interval"])
	assert.Equal(t, 1, event.Properties["interval_count"])
}

func TestTrackStartedCheckoutKeyEmbedsUpdatedAt(t *testing.T) {
	sender := &fakeSender{}
	uc := newTestUseCase(sender, &fakeDeadLetter{}, allFlags())

	updated := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	cart := dto.Cart{ID: "cart-7", Email: "a@b.com", Total: 55, UpdatedAt: updated}

	uc.TrackStartedCheckout(context.Background(), cart)

	// a touched cart is a new occurrence
	cart.UpdatedAt = updated.Add(time.Minute)
	uc.TrackStartedCheckout(context.Background(), cart)

	require.Len(t, sender.events, 2)
	assert.Equal(t, "started_checkout:cart-7:2026-05-01T09:30:00Z", sender.events[0].IdempotencyKey)
	assert.NotEqual(t, sender.events[0].IdempotencyKey, sender.events[1].IdempotencyKey)
	assert.Equal(t, "https://shop.example.com/checkout/cart-7", sender.events[0].Properties["url"])
}

func TestTrackCheckoutAbandonedMinutesSinceLastActivity(t *testing.T) {
	sender := &fakeSender{}
	uc := newTestUseCase(sender, &fakeDeadLetter{}, allFlags())

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return now }

	last := now.Add(-25 * time.Minute)

	uc.TrackCheckoutAbandoned(context.Background(), dto.Cart{
		ID:             "cart-9",
		Email:          "a@b.com",
		Total:          30,
		UpdatedAt:      last,
		LastActivityAt: &last,
	})

	require.Len(t, sender.events, 1)
	event := sender.events[0]

	assert.Equal(t, entity.MetricCheckoutAbandoned, event.MetricName)
	assert.Equal(t, 25, event.Properties["minutes_since_last_activity"])
	assert.Equal(t, "checkout_abandoned:cart-9:2026-05-01T11:35:00Z", event.IdempotencyKey)
}

func TestTrackCheckoutAbandonedWithoutLastActivity(t *testing.T) {
	sender := &fakeSender{}
	uc := newTestUseCase(sender, &fakeDeadLetter{}, allFlags())

	uc.TrackCheckoutAbandoned(context.Background(), dto.Cart{ID: "cart-10", Email: "a@b.com"})

	require.Len(t, sender.events, 1)
	assert.Equal(t, 0, sender.events[0].Properties["minutes_since_last_activity"])
	assert.Equal(t, "checkout_abandoned:cart-10:", sender.events[0].IdempotencyKey)
}

func TestDisabledFlagIsNoOp(t *testing.T) {
	sender := &fakeSender{}
	dl := &fakeDeadLetter{}
	uc := newTestUseCase(sender, dl, Flags{})

	uc.TrackPurchase(context.Background(), dto.Order{ID: "o", Email: "a@b.com"})
	uc.TrackSubscriptionStarted(context.Background(), dto.Subscription{StripeSubscriptionID: "s", Email: "a@b.com"})
	uc.TrackStartedCheckout(context.Background(), dto.Cart{ID: "c", Email: "a@b.com"})
	uc.TrackCheckoutAbandoned(context.Background(), dto.Cart{ID: "c", Email: "a@b.com"})

	assert.Empty(t, sender.events)
	assert.Empty(t, dl.records)
}

func TestDeliveryFailureIsSwallowedAndArchived(t *testing.T) {
	sender := &fakeSender{err: errors.New("retries exhausted")}
	dl := &fakeDeadLetter{}
	uc := newTestUseCase(sender, dl, allFlags())

	// must not panic or surface the error
	uc.TrackPurchase(context.Background(), dto.Order{ID: "order-1", Email: "a@b.com", Total: 5})

	require.Len(t, dl.records, 1)
	assert.Equal(t, "purchase:order-1", dl.records[0].Event.IdempotencyKey)
	assert.Contains(t, dl.records[0].Cause, "retries exhausted")
	assert.Equal(t, 3, dl.records[0].Attempts)
}

func TestArchiveFailureIsAlsoSwallowed(t *testing.T) {
	sender := &fakeSender{err: errors.New("down")}
	dl := &fakeDeadLetter{err: errors.New("s3 down")}
	uc := newTestUseCase(sender, dl, allFlags())

	uc.TrackPurchase(context.Background(), dto.Order{ID: "order-1", Email: "a@b.com"})

	assert.Len(t, dl.records, 1)
}
