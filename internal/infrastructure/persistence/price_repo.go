package persistence

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"fantasy_trades/internal/domain"
	"fantasy_trades/internal/domain/entity"
	"fantasy_trades/pkg/errcodes"
	"fantasy_trades/pkg/lox"
)

// priceLockKey serializes reconciliation runs against the table. The lock
// is transaction scoped and released on commit or rollback.
const priceLockKey = "player_round_prices"

type PriceRepository struct {
	db *sqlx.DB
}

func NewPriceRepository(db *sqlx.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// withTx runs fn in a transaction holding the reconciliation advisory lock.
func (r *PriceRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, priceLockKey); err != nil {
		_ = tx.Rollback()
		return domain.WrapError(err, errcodes.InternalServerError, "failed to acquire reconciliation lock")
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return domain.WrapError(
				fmt.Errorf("%w; rollback: %v", err, rbErr),
				errcodes.InternalServerError,
				"transaction failed",
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to commit")
	}

	return nil
}

// List returns the whole price series ordered by player, round and id.
func (r *PriceRepository) List(ctx context.Context) ([]entity.PlayerRoundPrice, error) {
	return r.list(ctx, r.db)
}

func (r *PriceRepository) list(ctx context.Context, q sqlx.QueryerContext) ([]entity.PlayerRoundPrice, error) {
	query := `
		SELECT id, player_id, round, price, price_change
		FROM player_round_prices
		ORDER BY player_id, round, id`

	var schemas []priceSchema
	if err := sqlx.SelectContext(ctx, q, &schemas, query); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list prices")
	}

	return lox.Map(schemas, priceSchema.toDomain), nil
}

func (r *PriceRepository) ReconcileInTx(
	ctx context.Context,
	apply func([]entity.PlayerRoundPrice) []entity.PlayerRoundPrice,
) (int, error) {
	var updated int

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := r.list(ctx, tx)
		if err != nil {
			return err
		}

		changed := apply(rows)
		if len(changed) == 0 {
			return nil
		}

		stmt, err := tx.PreparexContext(ctx, `UPDATE player_round_prices SET price_change = $1 WHERE id = $2`)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to prepare update")
		}
		defer stmt.Close()

		for _, row := range changed {
			if _, err := stmt.ExecContext(ctx, toNullInt64(row.PriceChange), row.ID); err != nil {
				return domain.WrapError(err, errcodes.InternalServerError,
					fmt.Sprintf("failed to update price change of row %d", row.ID))
			}
			updated++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return updated, nil
}

// ReconcileWindow computes every delta with LAG over the rows that have a
// usable price, so invalid rows are bridged exactly as the in-process scan
// does, and writes only values that differ.
func (r *PriceRepository) ReconcileWindow(ctx context.Context) (int, error) {
	var updated int

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			WITH valid AS (
				SELECT id,
				       price - LAG(price) OVER (PARTITION BY player_id ORDER BY round, id) AS change
				FROM player_round_prices
				WHERE price IS NOT NULL AND price >= 0
			), computed AS (
				SELECT p.id, v.change
				FROM player_round_prices p
				LEFT JOIN valid v ON v.id = p.id
			)
			UPDATE player_round_prices t
			SET price_change = c.change
			FROM computed c
			WHERE t.id = c.id
			  AND t.price_change IS DISTINCT FROM c.change`

		res, err := tx.ExecContext(ctx, query)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to reconcile price changes")
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to check affected rows")
		}

		updated = int(rows)

		return nil
	})
	if err != nil {
		return 0, err
	}

	return updated, nil
}
