package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AppFriend/DrGolly-sub001/internal/dto"
	"github.com/AppFriend/DrGolly-sub001/internal/entity"
	"github.com/AppFriend/DrGolly-sub001/internal/infrastructure"
	"github.com/AppFriend/DrGolly-sub001/internal/repo"
	"github.com/AppFriend/DrGolly-sub001/pkg/logger"
)

const (
	_defaultCurrency      = "AUD"
	_defaultPaymentMethod = "stripe"
	_defaultTier          = "gold"
	_defaultInterval      = "month"
)

type EventsUseCase struct {
	sender      infrastructure.EventsSender
	deadLetter  repo.DeadLetterRepo
	flags       Flags
	environment string
	baseURL     string
	maxAttempts int

	logger logger.Interface

	now func() time.Time
}

func New(
	sender infrastructure.EventsSender,
	deadLetter repo.DeadLetterRepo,
	flags Flags,
	environment string,
	baseURL string,
	maxAttempts int,
	l logger.Interface,
) *EventsUseCase {
	return &EventsUseCase{
		sender:      sender,
		deadLetter:  deadLetter,
		flags:       flags,
		environment: environment,
		baseURL:     strings.TrimRight(baseURL, "/"),
		maxAttempts: maxAttempts,
		logger:      l,
		now:         time.Now,
	}
}

// TrackPurchase emits "Placed Order". The idempotency key is stable per order
// id, so a retried checkout never double-counts a sale.
func (uc *EventsUseCase) TrackPurchase(ctx context.Context, order dto.Order) {
	if !uc.flags.IsEnabled(FamilyPurchase) {
		return
	}

	currency := order.Currency
	if currency == "" {
		currency = _defaultCurrency
	}

	paymentMethod := order.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = _defaultPaymentMethod
	}

	value := order.Total

	event := &entity.Event{
		MetricName: entity.MetricPlacedOrder,
		ProfileID:  profileID(order.Email),
		Properties: map[string]any{
			"order_id":       order.ID,
			"total":          order.Total,
			"subtotal":       order.Subtotal,
			"tax":            order.Tax,
			"shipping":       order.Shipping,
			"discount":       order.Discount,
			"currency":       currency,
			"payment_method": paymentMethod,
			"line_items":     normalizeItems(order.Items),
			"environment":    uc.environment,
		},
		Value:          &value,
		IdempotencyKey: fmt.Sprintf("purchase:%s", order.ID),
	}

	uc.deliver(ctx, event, "EventsUseCase - TrackPurchase - order_id="+order.ID)
}

// TrackSubscriptionStarted emits "Subscription Started", keyed by the Stripe
// subscription id so webhook redelivery never double-emits.
// monthly_billing_day is the day-of-month of start_date in UTC; the payload
// carries no customer timezone to localize against.
func (uc *EventsUseCase) TrackSubscriptionStarted(ctx context.Context, sub dto.Subscription) {
	if !uc.flags.IsEnabled(FamilySubscriptionStarted) {
		return
	}

	tier := sub.Tier
	if tier == "" {
		tier = _defaultTier
	}

	interval := sub.Interval
	if interval == "" {
		interval = _defaultInterval
	}

	intervalCount := sub.IntervalCount
	if intervalCount <= 0 {
		intervalCount = 1
	}

	props := map[string]any{
		"subscription_id":     sub.ID,
		"tier":                tier,
		"interval":            interval,
		"interval_count":      intervalCount,
		"monthly_billing_day": sub.StartDate.UTC().Day(),
		"start_date":          sub.StartDate.UTC().Format(time.RFC3339),
		"environment":         uc.environment,
	}
	if sub.Amount > 0 {
		props["amount"] = sub.Amount
	}

	event := &entity.Event{
		MetricName:     entity.MetricSubscriptionStarted,
		ProfileID:      profileID(sub.Email),
		Properties:     props,
		IdempotencyKey: fmt.Sprintf("sub_started:%s", sub.StripeSubscriptionID),
	}

	uc.deliver(ctx, event, "EventsUseCase - TrackSubscriptionStarted - subscription_id="+sub.StripeSubscriptionID)
}

// TrackStartedCheckout emits "Started Checkout". The updated_at timestamp is
// part of the idempotency key: a cart touched again is a new occurrence.
func (uc *EventsUseCase) TrackStartedCheckout(ctx context.Context, cart dto.Cart) {
	// started-checkout rides the purchase family switch
	if !uc.flags.IsEnabled(FamilyPurchase) {
		return
	}

	value := cart.Total

	event := &entity.Event{
		MetricName: entity.MetricStartedCheckout,
		ProfileID:  profileID(cart.Email),
		Properties: map[string]any{
			"cart_id":     cart.ID,
			"total":       cart.Total,
			"currency":    currencyOrDefault(cart.Currency),
			"line_items":  normalizeItems(cart.Items),
			"url":         uc.checkoutURL(cart.ID),
			"environment": uc.environment,
		},
		Value:          &value,
		IdempotencyKey: fmt.Sprintf("started_checkout:%s:%s", cart.ID, cart.UpdatedAt.UTC().Format(time.RFC3339)),
	}

	uc.deliver(ctx, event, "EventsUseCase - TrackStartedCheckout - cart_id="+cart.ID)
}

// TrackCheckoutAbandoned emits "Checkout Abandoned" for the worker. With no
// last activity timestamp, minutes_since_last_activity falls back to 0.
func (uc *EventsUseCase) TrackCheckoutAbandoned(ctx context.Context, cart dto.Cart) {
	if !uc.flags.IsEnabled(FamilyCartAbandoned) {
		return
	}

	var (
		minutes  int
		activity string
	)
	if cart.LastActivityAt != nil {
		if since := uc.now().Sub(*cart.LastActivityAt); since > 0 {
			minutes = int(since.Minutes())
		}
		activity = cart.LastActivityAt.UTC().Format(time.RFC3339)
	}

	value := cart.Total

	event := &entity.Event{
		MetricName: entity.MetricCheckoutAbandoned,
		ProfileID:  profileID(cart.Email),
		Properties: map[string]any{
			"cart_id":                     cart.ID,
			"total":                       cart.Total,
			"currency":                    currencyOrDefault(cart.Currency),
			"minutes_since_last_activity": minutes,
			"line_items":                  normalizeItems(cart.Items),
			"url":                         uc.checkoutURL(cart.ID),
			"environment":                 uc.environment,
		},
		Value:          &value,
		IdempotencyKey: fmt.Sprintf("checkout_abandoned:%s:%s", cart.ID, activity),
	}

	uc.deliver(ctx, event, "EventsUseCase - TrackCheckoutAbandoned - cart_id="+cart.ID)
}

// deliver sends and terminates the error branch: log with the business
// identifier, archive for replay, return nothing.
func (uc *EventsUseCase) deliver(ctx context.Context, event *entity.Event, opContext string) {
	err := uc.sender.Send(ctx, event)
	if err == nil {
		uc.logger.Info("%s - sent", opContext)

		return
	}

	uc.logger.Error(err, opContext)

	record := &entity.DeadLetterRecord{
		Event:      event,
		Cause:      err.Error(),
		Attempts:   uc.maxAttempts,
		ArchivedAt: uc.now(),
	}

	if dlErr := uc.deadLetter.Archive(ctx, record); dlErr != nil {
		uc.logger.Error(dlErr, opContext+" - uc.deadLetter.Archive")
	}
}

func (uc *EventsUseCase) checkoutURL(cartID string) string {
	return fmt.Sprintf("%s/checkout/%s", uc.baseURL, cartID)
}

// profileID is the email-derived identity reference; the prefix signals
// identify-by-email to the receiving side.
func profileID(email string) string {
	return "email:" + strings.ToLower(strings.TrimSpace(email))
}

func currencyOrDefault(currency string) string {
	if currency == "" {
		return _defaultCurrency
	}
	return currency
}
