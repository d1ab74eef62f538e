package abandoned

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/AppFriend/DrGolly-sub001/internal/dto"
	"github.com/AppFriend/DrGolly-sub001/internal/entity"
	"github.com/AppFriend/DrGolly-sub001/internal/usecase/events"
	"github.com/AppFriend/DrGolly-sub001/pkg/logger"
	"github.com/AppFriend/DrGolly-sub001/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCarts struct {
	candidates []*entity.Cart
	queryErr   error
	marked     []string
	markErrs   map[string]error
}

func (f *fakeCarts) GetAbandonedCandidates(_ context.Context, _ time.Time, _ int) ([]*entity.Cart, error) {
	return f.candidates, f.queryErr
}

func (f *fakeCarts) MarkAbandonedNotified(_ context.Context, cartID string) error {
	if err, ok := f.markErrs[cartID]; ok {
		return err
	}
	f.marked = append(f.marked, cartID)
	return nil
}

type fakeEvents struct {
	abandoned []dto.Cart
}

func (f *fakeEvents) TrackPurchase(context.Context, dto.Order)                  {}
func (f *fakeEvents) TrackSubscriptionStarted(context.Context, dto.Subscription) {}
func (f *fakeEvents) TrackStartedCheckout(context.Context, dto.Cart)             {}

func (f *fakeEvents) TrackCheckoutAbandoned(_ context.Context, cart dto.Cart) {
	f.abandoned = append(f.abandoned, cart)
}

type fakeLocker struct {
	acquired   bool
	acquireErr error
	released   int
}

func (f *fakeLocker) Acquire(context.Context, string, time.Duration) (bool, error) {
	return f.acquired, f.acquireErr
}

func (f *fakeLocker) Release(context.Context, string) error {
	f.released++
	return nil
}

func allFlags() events.Flags {
	return events.Flags{Purchase: true, SubscriptionStarted: true, CartAbandoned: true}
}

func newTestWorker(carts *fakeCarts, ev *fakeEvents, locker *fakeLocker, flags events.Flags) *Worker {
	return New(
		carts, ev, locker, flags, logger.New("error"),
		time.Minute, 10*time.Minute, 55*time.Second, 100, 55*time.Second,
	)
}

func staleCart(id string) *entity.Cart {
	last := time.Now().Add(-25 * time.Minute)

	return &entity.Cart{
		ID:             id,
		Email:          "a@b.com",
		Total:          30,
		Currency:       "AUD",
		Status:         entity.CartOpen,
		Items:          []byte(`[{"id":"course-1","name":"Sleep Course","price":30,"quantity":1}]`),
		LastActivityAt: &last,
		UpdatedAt:      last,
	}
}

func TestProcessAbandonedCartsEmitsAndMarks(t *testing.T) {
	carts := &fakeCarts{candidates: []*entity.Cart{staleCart("cart-1"), staleCart("cart-2")}}
	ev := &fakeEvents{}
	locker := &fakeLocker{acquired: true}

	newTestWorker(carts, ev, locker, allFlags()).ProcessAbandonedCarts(context.Background())

	require.Len(t, ev.abandoned, 2)
	assert.Equal(t, "cart-1", ev.abandoned[0].ID)
	require.Len(t, ev.abandoned[0].Items, 1)
	assert.Equal(t, []string{"cart-1", "cart-2"}, carts.marked)
	assert.Equal(t, 1, locker.released)
}

func TestProcessSkipsWhenFlagDisabled(t *testing.T) {
	carts := &fakeCarts{candidates: []*entity.Cart{staleCart("cart-1")}}
	ev := &fakeEvents{}
	locker := &fakeLocker{acquired: true}

	newTestWorker(carts, ev, locker, events.Flags{}).ProcessAbandonedCarts(context.Background())

	assert.Empty(t, ev.abandoned)
	assert.Empty(t, carts.marked)
	assert.Zero(t, locker.released)
}

func TestProcessSkipsWhenLeaseHeld(t *testing.T) {
	carts := &fakeCarts{candidates: []*entity.Cart{staleCart("cart-1")}}
	ev := &fakeEvents{}
	locker := &fakeLocker{acquired: false}

	newTestWorker(carts, ev, locker, allFlags()).ProcessAbandonedCarts(context.Background())

	assert.Empty(t, ev.abandoned)
	assert.Empty(t, carts.marked)
	assert.Zero(t, locker.released)
}

func TestPerCartFailureDoesNotAbortBatch(t *testing.T) {
	carts := &fakeCarts{
		candidates: []*entity.Cart{staleCart("cart-1"), staleCart("cart-2")},
		markErrs:   map[string]error{"cart-1": errors.New("write failed")},
	}
	ev := &fakeEvents{}
	locker := &fakeLocker{acquired: true}

	newTestWorker(carts, ev, locker, allFlags()).ProcessAbandonedCarts(context.Background())

	assert.Len(t, ev.abandoned, 2)
	assert.Equal(t, []string{"cart-2"}, carts.marked)
}

func TestAlreadyNotifiedMarkIsQuietSkip(t *testing.T) {
	carts := &fakeCarts{
		candidates: []*entity.Cart{staleCart("cart-1")},
		markErrs:   map[string]error{"cart-1": fmt.Errorf("CartsUseCase: %w", errs.ErrAlreadyNotified)},
	}
	ev := &fakeEvents{}
	locker := &fakeLocker{acquired: true}

	// must not panic; the concurrent-mark case degrades to a warn
	newTestWorker(carts, ev, locker, allFlags()).ProcessAbandonedCarts(context.Background())

	assert.Len(t, ev.abandoned, 1)
}

func TestBadItemsPayloadDegradesToEmptyList(t *testing.T) {
	cart := staleCart("cart-1")
	cart.Items = []byte(`{not json`)

	carts := &fakeCarts{candidates: []*entity.Cart{cart}}
	ev := &fakeEvents{}
	locker := &fakeLocker{acquired: true}

	newTestWorker(carts, ev, locker, allFlags()).ProcessAbandonedCarts(context.Background())

	require.Len(t, ev.abandoned, 1)
	assert.Empty(t, ev.abandoned[0].Items)
}

func TestStartIsIdempotent(t *testing.T) {
	carts := &fakeCarts{}
	ev := &fakeEvents{}
	locker := &fakeLocker{}

	w := newTestWorker(carts, ev, locker, allFlags())

	require.NoError(t, w.Start(context.Background()))
	require.Error(t, w.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, w.Shutdown(ctx))
}
