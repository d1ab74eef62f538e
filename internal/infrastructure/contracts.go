package infrastructure

import (
	"context"

	"github.com/AppFriend/DrGolly-sub001/internal/entity"
)

type (
	// EventsSender delivers one canonical event to the marketing system.
	// An error means delivery failed permanently or exhausted its retries;
	// the producer layer decides what to do with it (log + archive, never
	// propagate to the business flow).
	EventsSender interface {
		Send(ctx context.Context, event *entity.Event) error
	}
)
