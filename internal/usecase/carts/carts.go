package carts

import (
	"context"
	"fmt"
	"time"

	"github.com/AppFriend/DrGolly-sub001/internal/entity"
	"github.com/AppFriend/DrGolly-sub001/internal/repo"
	"github.com/AppFriend/DrGolly-sub001/pkg/logger"
)

type CartsUseCase struct {
	cartRepo repo.CartRepo

	logger logger.Interface
}

func New(cartRepo repo.CartRepo, l logger.Interface) *CartsUseCase {
	return &CartsUseCase{
		cartRepo: cartRepo,
		logger:   l,
	}
}

func (uc *CartsUseCase) GetAbandonedCandidates(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Cart, error) {
	carts, err := uc.cartRepo.GetAbandonedCandidates(ctx, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("CartsUseCase - GetAbandonedCandidates - uc.cartRepo.GetAbandonedCandidates: %w", err)
	}

	return carts, nil
}

func (uc *CartsUseCase) MarkAbandonedNotified(ctx context.Context, cartID string) error {
	err := uc.cartRepo.MarkAbandonedNotified(ctx, cartID)
	if err != nil {
		return fmt.Errorf("CartsUseCase - MarkAbandonedNotified - uc.cartRepo.MarkAbandonedNotified: %w", err)
	}

	return nil
}
