package repo

import (
	"context"
	"time"

	"github.com/AppFriend/DrGolly-sub001/internal/entity"
)

type (
	CartRepo interface {
		GetAbandonedCandidates(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Cart, error)
		// MarkAbandonedNotified flips the notified flag false->true; returns
		// errs.ErrAlreadyNotified when another run got there first.
		MarkAbandonedNotified(ctx context.Context, cartID string) error
	}

	DeadLetterRepo interface {
		Archive(ctx context.Context, record *entity.DeadLetterRecord) error
	}

	// Locker is the run lease that keeps worker invocations from overlapping.
	Locker interface {
		Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
		Release(ctx context.Context, key string) error
	}
)
