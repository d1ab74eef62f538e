package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AppFriend/DrGolly-sub001/internal/dto"
	kafkapc "github.com/AppFriend/DrGolly-sub001/internal/infrastructure/kafka"
	"github.com/AppFriend/DrGolly-sub001/internal/usecase"
	"github.com/AppFriend/DrGolly-sub001/pkg/logger"
	"github.com/AppFriend/DrGolly-sub001/pkg/types/errs"
	"github.com/segmentio/kafka-go"
)

// KafkaController consumes the business-flow hooks from the domain-events
// topic and dispatches them to the matching producer.
type KafkaController struct {
	events usecase.EventsUseCase
	ec     *kafkapc.EventConsumer
	logger logger.Interface

	commitTimeout  time.Duration
	processTimeout time.Duration

	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	started atomic.Bool
}

func New(
	ev usecase.EventsUseCase,
	ec *kafkapc.EventConsumer,
	l logger.Interface,
	commitTimeout time.Duration,
	processTimeout time.Duration,
	workers int,
) *KafkaController {
	return &KafkaController{
		events:         ev,
		ec:             ec,
		logger:         l,
		commitTimeout:  commitTimeout,
		processTimeout: processTimeout,
		workers:        workers,
	}
}

func (c *KafkaController) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("KafkaController - Start - controller already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	tasks := make(chan kafka.Message, c.workers*2)

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(tasks)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(tasks)

		for {
			select {
			case <-c.ctx.Done():
				return
			default:
				// 1. fetch without committing
				event, err := c.ec.ReadEvent(c.ctx)
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						c.logger.Error(err, "KafkaController - Start - c.ec.ReadEvent")
					}
					continue
				}

				// 2. hand to the worker pool
				select {
				case tasks <- event:
				case <-c.ctx.Done():
					return
				}
			}
		}
	}()

	return nil
}

// processEvent decodes the envelope and calls the matching producer. Errors
// here are decode/dispatch only; delivery failures are swallowed inside the
// producer by contract.
func (c *KafkaController) processEvent(ctx context.Context, event kafka.Message) error {
	var payload DomainEventPayload
	err := json.Unmarshal(event.Value, &payload)
	if err != nil {
		return fmt.Errorf("KafkaController - processEvent - json.Unmarshal: %w", err)
	}

	switch payload.Type {
	case EventOrderCompleted:
		var order dto.Order
		if err := json.Unmarshal(payload.Data, &order); err != nil {
			return fmt.Errorf("KafkaController - processEvent - order - json.Unmarshal: %w", err)
		}
		c.events.TrackPurchase(ctx, order)

	case EventSubscriptionActivated:
		var sub dto.Subscription
		if err := json.Unmarshal(payload.Data, &sub); err != nil {
			return fmt.Errorf("KafkaController - processEvent - subscription - json.Unmarshal: %w", err)
		}
		c.events.TrackSubscriptionStarted(ctx, sub)

	case EventCheckoutUpdated:
		var cart dto.Cart
		if err := json.Unmarshal(payload.Data, &cart); err != nil {
			return fmt.Errorf("KafkaController - processEvent - cart - json.Unmarshal: %w", err)
		}
		c.events.TrackStartedCheckout(ctx, cart)

	default:
		return fmt.Errorf("KafkaController - processEvent - type=%s: %w", payload.Type, errs.ErrUnknownEventType)
	}

	return nil
}

func (c *KafkaController) worker(tasks <-chan kafka.Message) {
	defer c.wg.Done()

	for event := range tasks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error(fmt.Errorf("panic %v", r), "KafkaController - worker - panic")
				}
			}()

			processCtx, processCancel := context.WithTimeout(c.ctx, c.processTimeout)
			err := c.processEvent(processCtx, event)
			processCancel()
			if err != nil {
				// malformed hooks are logged and committed anyway; redelivery
				// would not make them parseable, and a poison message must
				// not stall the marketing stream
				c.logger.Error(err, "KafkaController - worker - c.processEvent")
			}

			commitCtx, commitCancel := context.WithTimeout(c.ctx, c.commitTimeout)
			err = c.ec.CommitEvent(commitCtx, event)
			commitCancel()
			if err != nil {
				c.logger.Error(err, "KafkaController - worker - c.ec.CommitEvent")
			}
		}()
	}
}

func (c *KafkaController) Shutdown(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		c.ec.Close()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return nil
	}
}
