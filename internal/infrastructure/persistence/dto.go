package persistence

import (
	"database/sql"

	"fantasy_trades/internal/domain/entity"
)

// priceSchema maps a player_round_prices row.
type priceSchema struct {
	ID          int64         `db:"id"`
	PlayerID    int64         `db:"player_id"`
	Round       int           `db:"round"`
	Price       sql.NullInt64 `db:"price"`
	PriceChange sql.NullInt64 `db:"price_change"`
}

func (s priceSchema) toDomain() entity.PlayerRoundPrice {
	return entity.PlayerRoundPrice{
		ID:          s.ID,
		PlayerID:    s.PlayerID,
		Round:       s.Round,
		Price:       fromNullInt64(s.Price),
		PriceChange: fromNullInt64(s.PriceChange),
	}
}

func fromNullInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}

	n := v.Int64

	return &n
}

func toNullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: *v, Valid: true}
}
