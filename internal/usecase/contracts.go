package usecase

import (
	"context"
	"time"

	"github.com/AppFriend/DrGolly-sub001/internal/dto"
	"github.com/AppFriend/DrGolly-sub001/internal/entity"
)

type (
	// EventsUseCase holds the four producers. The methods deliberately return
	// nothing: a marketing-delivery failure must never reach the business
	// flow that triggered it, so the error branch is not expressible at the
	// call site. Failures end in the log and the dead-letter archive.
	EventsUseCase interface {
		TrackPurchase(ctx context.Context, order dto.Order)
		TrackSubscriptionStarted(ctx context.Context, sub dto.Subscription)
		TrackStartedCheckout(ctx context.Context, cart dto.Cart)
		TrackCheckoutAbandoned(ctx context.Context, cart dto.Cart)
	}

	CartsUseCase interface {
		GetAbandonedCandidates(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Cart, error)
		MarkAbandonedNotified(ctx context.Context, cartID string) error
	}
)
