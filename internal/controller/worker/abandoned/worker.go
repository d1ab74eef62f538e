package abandoned

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AppFriend/DrGolly-sub001/internal/dto"
	"github.com/AppFriend/DrGolly-sub001/internal/entity"
	"github.com/AppFriend/DrGolly-sub001/internal/repo"
	"github.com/AppFriend/DrGolly-sub001/internal/usecase"
	"github.com/AppFriend/DrGolly-sub001/internal/usecase/events"
	"github.com/AppFriend/DrGolly-sub001/pkg/logger"
	"github.com/AppFriend/DrGolly-sub001/pkg/types/errs"
)

const _lockKey = "abandoned-carts:run-lock"

// Worker periodically scans for inactive carts and fires the
// checkout-abandoned producer once per cart. Runs are serialized by a redis
// lease; the conditional notified-flag write in the repo is the backstop, so
// even a lost lease cannot double-emit once a mark is visible.
type Worker struct {
	carts  usecase.CartsUseCase
	events usecase.EventsUseCase
	locker repo.Locker
	flags  events.Flags
	logger logger.Interface

	pollInterval        time.Duration
	inactivityThreshold time.Duration
	processBatchTimeout time.Duration
	batchSize           int
	lockTTL             time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(
	carts usecase.CartsUseCase,
	ev usecase.EventsUseCase,
	locker repo.Locker,
	flags events.Flags,
	l logger.Interface,
	pollInterval time.Duration,
	inactivityThreshold time.Duration,
	processBatchTimeout time.Duration,
	batchSize int,
	lockTTL time.Duration,
) *Worker {
	return &Worker{
		carts:               carts,
		events:              ev,
		locker:              locker,
		flags:               flags,
		logger:              l,
		pollInterval:        pollInterval,
		inactivityThreshold: inactivityThreshold,
		processBatchTimeout: processBatchTimeout,
		batchSize:           batchSize,
		lockTTL:             lockTTL,
	}
}

func (w *Worker) Start(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return fmt.Errorf("AbandonedWorker - Start - worker already started")
	}

	w.ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ticker := time.NewTicker(w.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				batchCtx, batchCancel := context.WithTimeout(w.ctx, w.processBatchTimeout)
				w.ProcessAbandonedCarts(batchCtx)
				batchCancel()
			}
		}
	}()

	return nil
}

// ProcessAbandonedCarts is one run: flag gate, lease, scan, per-cart
// produce-then-mark. One cart's failure never aborts the rest of the batch.
func (w *Worker) ProcessAbandonedCarts(ctx context.Context) {
	if !w.flags.IsEnabled(events.FamilyCartAbandoned) {
		return
	}

	acquired, err := w.locker.Acquire(ctx, _lockKey, w.lockTTL)
	if err != nil {
		w.logger.Error(err, "AbandonedWorker - ProcessAbandonedCarts - w.locker.Acquire")

		return
	}
	if !acquired {
		// previous run still holds the lease
		return
	}
	defer func() {
		if releaseErr := w.locker.Release(ctx, _lockKey); releaseErr != nil {
			w.logger.Error(releaseErr, "AbandonedWorker - ProcessAbandonedCarts - w.locker.Release")
		}
	}()

	cutoff := time.Now().Add(-w.inactivityThreshold)

	carts, err := w.carts.GetAbandonedCandidates(ctx, cutoff, w.batchSize)
	if err != nil {
		w.logger.Error(err, "AbandonedWorker - ProcessAbandonedCarts - w.carts.GetAbandonedCandidates")

		return
	}
	if len(carts) == 0 {
		return
	}

	for _, cart := range carts {
		w.processCart(ctx, cart)
	}
}

func (w *Worker) processCart(ctx context.Context, cart *entity.Cart) {
	// 1. emit the event; producers swallow their own delivery failures
	w.events.TrackCheckoutAbandoned(ctx, cartToDTO(cart, w.logger))

	// 2. flip the notified flag so the cart is never re-emitted
	err := w.carts.MarkAbandonedNotified(ctx, cart.ID)
	if err != nil {
		if errors.Is(err, errs.ErrAlreadyNotified) {
			w.logger.Warn("AbandonedWorker - processCart - cart already marked, cart_id=%s", cart.ID)

			return
		}
		w.logger.Error(err, "AbandonedWorker - processCart - w.carts.MarkAbandonedNotified - cart_id="+cart.ID)
	}
}

// cartToDTO maps the persisted row to the producer input. Unparseable item
// JSON degrades to an empty item list rather than dropping the event.
func cartToDTO(cart *entity.Cart, l logger.Interface) dto.Cart {
	var items []dto.Item
	if len(cart.Items) > 0 {
		if err := json.Unmarshal(cart.Items, &items); err != nil {
			l.Warn("AbandonedWorker - cartToDTO - bad items payload, cart_id=%s, error=%v", cart.ID, err)

			items = nil
		}
	}

	return dto.Cart{
		ID:             cart.ID,
		Email:          cart.Email,
		Total:          cart.Total,
		Currency:       cart.Currency,
		Items:          items,
		UpdatedAt:      cart.UpdatedAt,
		LastActivityAt: cart.LastActivityAt,
	}
}

func (w *Worker) Shutdown(ctx context.Context) error {
	if !w.started.Load() {
		return nil
	}

	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})

	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return nil
	}
}
