package entity

// RawFields keeps JSON members this module does not interpret, keyed by
// member name, as raw encoded bytes.
type RawFields map[string][]byte

func (f RawFields) Clone() RawFields {
	if f == nil {
		return nil
	}

	out := make(RawFields, len(f))
	for k, v := range f {
		out[k] = append([]byte(nil), v...)
	}

	return out
}

// Trades is the roster diff between a round and the round before it.
type Trades struct {
	TradedOut []string `json:"tradedOut"`
	TradedIn  []string `json:"tradedIn"`
}

func EmptyTrades() *Trades {
	return &Trades{
		TradedOut: []string{},
		TradedIn:  []string{},
	}
}

func (t *Trades) IsEmpty() bool {
	return t == nil || (len(t.TradedOut) == 0 && len(t.TradedIn) == 0)
}

func (t *Trades) Clone() *Trades {
	if t == nil {
		return nil
	}

	return &Trades{
		TradedOut: append([]string{}, t.TradedOut...),
		TradedIn:  append([]string{}, t.TradedIn...),
	}
}

// RoundSnapshot is a team's roster at one round of the season.
type RoundSnapshot struct {
	Round   int      `json:"round"`
	Players []string `json:"players"`
	// Trades is nil until the round has been annotated.
	Trades *Trades   `json:"trades,omitempty"`
	Extra  RawFields `json:"-"`
}

func (r RoundSnapshot) Clone() RoundSnapshot {
	var players []string
	if r.Players != nil {
		players = append([]string{}, r.Players...)
	}

	return RoundSnapshot{
		Round:   r.Round,
		Players: players,
		Trades:  r.Trades.Clone(),
		Extra:   r.Extra.Clone(),
	}
}

// Season is an ordered round sequence plus whatever else the snapshot
// document holds.
type Season struct {
	Rounds []RoundSnapshot
	Extra  RawFields
}

func (s Season) Clone() Season {
	rounds := make([]RoundSnapshot, len(s.Rounds))
	for i, r := range s.Rounds {
		rounds[i] = r.Clone()
	}

	return Season{
		Rounds: rounds,
		Extra:  s.Extra.Clone(),
	}
}
