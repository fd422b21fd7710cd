package trades

import (
	"github.com/samber/lo"

	"fantasy_trades/internal/domain"
	"fantasy_trades/internal/domain/entity"
	"fantasy_trades/pkg/errcodes"
)

// ComputeTrades diffs two rosters. Both lists keep the order of the roster
// they were taken from. Duplicate identifiers are not collapsed.
func ComputeTrades(previous, current []string) entity.Trades {
	out, in := lo.Difference(previous, current)

	return entity.Trades{
		TradedOut: out,
		TradedIn:  in,
	}
}

// FinalRoundIndex returns the position of the round after which no trades
// take effect, or -1 when the season has no such round yet. With fewer than
// two rounds there is nothing to force.
func FinalRoundIndex(season entity.Season, policy entity.SeasonPolicy) int {
	n := len(season.Rounds)
	if n < 2 {
		return -1
	}

	if policy.Length == 0 {
		return n - 1
	}

	if season.Rounds[n-1].Round == policy.Length {
		return n - 1
	}

	return -1
}

// AnnotateSeason returns a copy of season in which every round carries a
// trade record:
//   - the first round keeps an existing record (preseason trades) or gets
//     an empty one;
//   - the final round always gets an empty one;
//   - every other round gets the diff against the round before it.
func AnnotateSeason(season entity.Season, policy entity.SeasonPolicy) (entity.Season, error) {
	if err := CheckSeason(season, policy); err != nil {
		return entity.Season{}, err
	}

	annotated := season.Clone()
	if len(annotated.Rounds) == 0 {
		return annotated, nil
	}

	if annotated.Rounds[0].Trades == nil {
		annotated.Rounds[0].Trades = entity.EmptyTrades()
	}

	final := FinalRoundIndex(annotated, policy)

	for i := 1; i < len(annotated.Rounds); i++ {
		if i == final {
			annotated.Rounds[i].Trades = entity.EmptyTrades()
			continue
		}

		trades := ComputeTrades(annotated.Rounds[i-1].Players, annotated.Rounds[i].Players)
		annotated.Rounds[i].Trades = &trades
	}

	return annotated, nil
}

// CheckSeason rejects sequences the annotator cannot diff meaningfully.
func CheckSeason(season entity.Season, policy entity.SeasonPolicy) error {
	prev := 0

	for i, r := range season.Rounds {
		switch {
		case r.Round <= 0:
			return domain.Errorf(errcodes.MalformedSeason, "rounds[%d]: round must be positive, got %d", i, r.Round)
		case r.Round <= prev:
			return domain.Errorf(errcodes.MalformedSeason, "rounds[%d]: round %d does not follow round %d", i, r.Round, prev)
		case policy.Length > 0 && r.Round > policy.Length:
			return domain.Errorf(errcodes.MalformedSeason, "rounds[%d]: round %d is past the season's final round %d", i, r.Round, policy.Length)
		case r.Players == nil:
			return domain.Errorf(errcodes.MalformedSeason, "rounds[%d]: round %d has no players", i, r.Round)
		}

		prev = r.Round
	}

	return nil
}

// Validate compares trade counts with the nominal count of each phase. The
// result is informational; callers must not refuse to persist on it.
func Validate(season entity.Season, phases entity.TradePhases) []entity.TradeViolation {
	var violations []entity.TradeViolation

	for _, r := range season.Rounds {
		if r.Trades == nil {
			continue
		}

		expected, ok := phases.ExpectedFor(r.Round)
		if !ok {
			continue
		}

		out, in := len(r.Trades.TradedOut), len(r.Trades.TradedIn)
		if out == expected && in == expected {
			continue
		}

		violations = append(violations, entity.TradeViolation{
			Round:     r.Round,
			Expected:  expected,
			TradedOut: out,
			TradedIn:  in,
		})
	}

	return violations
}
