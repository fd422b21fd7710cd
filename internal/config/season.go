package config

import "fantasy_trades/internal/domain/entity"

type Season struct {
	Length int                `env:"SEASON_LENGTH" envDefault:"24" validate:"gte=0"`
	Phases entity.TradePhases `env:"TRADE_PHASES" envDefault:"2-11:2,12-18:3,19-23:2"`
}

func (s Season) Policy() entity.SeasonPolicy {
	return entity.SeasonPolicy{
		Length: s.Length,
		Phases: s.Phases,
	}
}
