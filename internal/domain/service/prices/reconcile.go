package prices

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"fantasy_trades/internal/domain/entity"
)

// ReconcilePriceChanges returns a copy of rows, in the same order, with
// PriceChange set to the difference from the same player's nearest earlier
// row that has a valid price. Rounds missing from the series are bridged.
// Rows without a valid price get no delta and are skipped when looking for
// the predecessor of later rows, as is each player's first valid row.
//
// Rows are ordered by round within a player, ties broken by ID. Existing
// PriceChange values are ignored, which makes the function idempotent.
func ReconcilePriceChanges(rows []entity.PlayerRoundPrice) []entity.PlayerRoundPrice {
	result := make([]entity.PlayerRoundPrice, len(rows))
	copy(result, rows)

	positions := make([]int, len(result))
	for i := range positions {
		positions[i] = i
	}

	byPlayer := lo.GroupBy(positions, func(i int) int64 { return result[i].PlayerID })

	for _, partition := range byPlayer {
		slices.SortStableFunc(partition, func(a, b int) int {
			return cmp.Or(
				cmp.Compare(result[a].Round, result[b].Round),
				cmp.Compare(result[a].ID, result[b].ID),
			)
		})

		var previous *int64

		for _, i := range partition {
			row := &result[i]
			row.PriceChange = nil

			if !row.HasValidPrice() {
				continue
			}

			if previous != nil {
				change := *row.Price - *previous
				row.PriceChange = &change
			}

			previous = row.Price
		}
	}

	return result
}

// Summarize counts what a reconciliation produced. Rows must be the output
// of ReconcilePriceChanges.
func Summarize(mode Mode, reconciled []entity.PlayerRoundPrice, updated int) entity.PriceSummary {
	summary := entity.PriceSummary{
		Mode:    string(mode),
		Rows:    len(reconciled),
		Players: len(lo.UniqBy(reconciled, func(r entity.PlayerRoundPrice) int64 { return r.PlayerID })),
		Updated: updated,
	}

	for _, r := range reconciled {
		switch {
		case !r.HasValidPrice():
			summary.Invalid++
		case r.PriceChange == nil:
			summary.Debuts++
		}
	}

	return summary
}

// Changed returns the rows of reconciled whose PriceChange differs from the
// matching row of original. Both slices must be index-aligned.
func Changed(original, reconciled []entity.PlayerRoundPrice) []entity.PlayerRoundPrice {
	var changed []entity.PlayerRoundPrice

	for i := range reconciled {
		if !equalChange(original[i].PriceChange, reconciled[i].PriceChange) {
			changed = append(changed, reconciled[i])
		}
	}

	return changed
}

func equalChange(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return *a == *b
}
