package entity

// TradeViolation is a round whose trade counts differ from the phase's
// nominal count.
type TradeViolation struct {
	Round     int `json:"round"`
	Expected  int `json:"expected"`
	TradedOut int `json:"tradedOut"`
	TradedIn  int `json:"tradedIn"`
}

type TradeReport struct {
	Dataset           string           `json:"dataset"`
	Rounds            int              `json:"rounds"`
	Annotated         int              `json:"annotated"`
	Forced            int              `json:"forced"`
	BaselinePreserved bool             `json:"baselinePreserved"`
	Violations        []TradeViolation `json:"violations"`
}

type PriceSummary struct {
	Mode    string `json:"mode"`
	Rows    int    `json:"rows"`
	Players int    `json:"players"`
	Updated int    `json:"updated"`
	Debuts  int    `json:"debuts"`
	Invalid int    `json:"invalid"`
}
