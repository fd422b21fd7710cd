package entity

// PlayerRoundPrice is one row of a player's price time series.
type PlayerRoundPrice struct {
	ID       int64 `json:"id"`
	PlayerID int64 `json:"playerId"`
	Round    int   `json:"round"`
	// Price is nil when the source had no usable value for the round.
	Price       *int64 `json:"price"`
	PriceChange *int64 `json:"priceChange"`
}

// HasValidPrice reports whether the row takes part in delta computation.
func (p PlayerRoundPrice) HasValidPrice() bool {
	return p.Price != nil && *p.Price >= 0
}
