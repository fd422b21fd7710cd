package entity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// TradePhase is a contiguous round range with a nominal trade count per
// round.
type TradePhase struct {
	From     int
	To       int
	Expected int
}

func (p TradePhase) Contains(round int) bool {
	return round >= p.From && round <= p.To
}

func (p TradePhase) String() string {
	return fmt.Sprintf("%d-%d:%d", p.From, p.To, p.Expected)
}

// TradePhases is written as "from-to:expected" entries separated by commas,
// e.g. "2-11:2,12-18:3,19-23:2". A single round may omit the range: "5:1".
type TradePhases []TradePhase

func (p *TradePhases) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*p = nil
		return nil
	}

	var phases TradePhases

	for _, entry := range strings.Split(raw, ",") {
		phase, err := parsePhase(strings.TrimSpace(entry))
		if err != nil {
			return fmt.Errorf("phase %q: %w", entry, err)
		}

		phases = append(phases, phase)
	}

	*p = phases

	return nil
}

func (p TradePhases) String() string {
	parts := make([]string, len(p))
	for i, phase := range p {
		parts[i] = phase.String()
	}

	return strings.Join(parts, ",")
}

// Check rejects inverted or overlapping ranges and ranges past the season
// end. A seasonLength of 0 leaves the upper bound open.
func (p TradePhases) Check(seasonLength int) error {
	for i, phase := range p {
		if phase.From < 1 || phase.To < phase.From {
			return fmt.Errorf("phase %s: invalid round range", phase)
		}

		if phase.Expected < 0 {
			return fmt.Errorf("phase %s: negative expected count", phase)
		}

		if seasonLength > 0 && phase.To > seasonLength {
			return fmt.Errorf("phase %s: ends after round %d", phase, seasonLength)
		}

		for _, other := range p[:i] {
			if phase.From <= other.To && other.From <= phase.To {
				return fmt.Errorf("phase %s overlaps %s", phase, other)
			}
		}
	}

	return nil
}

// ExpectedFor returns the nominal trade count of the phase covering round.
func (p TradePhases) ExpectedFor(round int) (int, bool) {
	for _, phase := range p {
		if phase.Contains(round) {
			return phase.Expected, true
		}
	}

	return 0, false
}

func parsePhase(entry string) (TradePhase, error) {
	rangePart, countPart, ok := strings.Cut(entry, ":")
	if !ok {
		return TradePhase{}, errors.New("missing ':expected'")
	}

	expected, err := strconv.Atoi(strings.TrimSpace(countPart))
	if err != nil {
		return TradePhase{}, fmt.Errorf("expected count: %w", err)
	}

	fromPart, toPart, isRange := strings.Cut(rangePart, "-")
	if !isRange {
		toPart = fromPart
	}

	from, err := strconv.Atoi(strings.TrimSpace(fromPart))
	if err != nil {
		return TradePhase{}, fmt.Errorf("from round: %w", err)
	}

	to, err := strconv.Atoi(strings.TrimSpace(toPart))
	if err != nil {
		return TradePhase{}, fmt.Errorf("to round: %w", err)
	}

	return TradePhase{From: from, To: to, Expected: expected}, nil
}

// SeasonPolicy holds the business rules applied while annotating a season.
type SeasonPolicy struct {
	// Length is the number of the season's final round. Zero means the last
	// round present in the document is final.
	Length int
	Phases TradePhases
}
