package persistent

import (
	"context"
	"fmt"
	"time"

	"github.com/AppFriend/DrGolly-sub001/internal/entity"
	"github.com/AppFriend/DrGolly-sub001/pkg/postgres"
	"github.com/AppFriend/DrGolly-sub001/pkg/types/errs"
	"github.com/Masterminds/squirrel"
)

const (
	// Table
	cartsTable = "carts"

	// Columns
	cartIDColumn                = "id"
	cartEmailColumn             = "email"
	cartTotalColumn             = "total"
	cartCurrencyColumn          = "currency"
	cartStatusColumn            = "status"
	cartItemsColumn             = "items"
	cartLastActivityAtColumn    = "last_activity_at"
	cartUpdatedAtColumn         = "updated_at"
	cartAbandonedNotifiedColumn = "abandoned_notified"
)

type CartRepo struct {
	*postgres.Postgres
}

func NewCartRepo(pg *postgres.Postgres) *CartRepo {
	return &CartRepo{pg}
}

// GetAbandonedCandidates returns open carts with an email, last activity older
// than cutoff and the notified flag still false. Already-notified carts are
// filtered here, not in the worker; the flag is the dedup contract.
func (r *CartRepo) GetAbandonedCandidates(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Cart, error) {
	sql, args, err := r.Builder.
		Select(
			cartIDColumn,
			cartEmailColumn,
			cartTotalColumn,
			cartCurrencyColumn,
			cartStatusColumn,
			cartItemsColumn,
			cartLastActivityAtColumn,
			cartUpdatedAtColumn,
			cartAbandonedNotifiedColumn,
		).
		From(cartsTable).
		Where(squirrel.And{
			squirrel.Eq{cartStatusColumn: entity.CartOpen},
			squirrel.Eq{cartAbandonedNotifiedColumn: false},
			squirrel.Lt{cartLastActivityAtColumn: cutoff},
			squirrel.NotEq{cartEmailColumn: ""},
		}).
		OrderBy(cartLastActivityAtColumn + " ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("CartRepo - GetAbandonedCandidates - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("CartRepo - GetAbandonedCandidates - executor.Query: %w", err)
	}
	defer rows.Close()

	carts := make([]*entity.Cart, 0, limit)
	for rows.Next() {
		var cart entity.Cart
		err = rows.Scan(
			&cart.ID,
			&cart.Email,
			&cart.Total,
			&cart.Currency,
			&cart.Status,
			&cart.Items,
			&cart.LastActivityAt,
			&cart.UpdatedAt,
			&cart.AbandonedNotified,
		)
		if err != nil {
			return nil, fmt.Errorf("CartRepo - GetAbandonedCandidates - rows.Scan: %w", err)
		}
		carts = append(carts, &cart)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("CartRepo - GetAbandonedCandidates - rows.Err: %w", err)
	}

	return carts, nil
}

// MarkAbandonedNotified flips the flag with a conditional single-statement
// write. RowsAffected == 0 means a concurrent run already marked the cart.
func (r *CartRepo) MarkAbandonedNotified(ctx context.Context, cartID string) error {
	now := time.Now()

	sql, args, err := r.Builder.
		Update(cartsTable).
		Set(cartAbandonedNotifiedColumn, true).
		Set(cartUpdatedAtColumn, now).
		Where(squirrel.And{
			squirrel.Eq{cartIDColumn: cartID},
			squirrel.Eq{cartAbandonedNotifiedColumn: false},
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("CartRepo - MarkAbandonedNotified - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("CartRepo - MarkAbandonedNotified - executor.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("CartRepo - MarkAbandonedNotified: %w", errs.ErrAlreadyNotified)
	}

	return nil
}
