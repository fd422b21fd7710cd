package export_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fantasy_trades/internal/domain/entity"
	"fantasy_trades/internal/infrastructure/export"
)

func TestXLSX_ExportTrades(t *testing.T) {
	rq := require.New(t)

	path := filepath.Join(t.TempDir(), "trades.xlsx")
	season := entity.Season{
		Rounds: []entity.RoundSnapshot{
			{Round: 1, Players: []string{"A", "B", "C"}, Trades: entity.EmptyTrades()},
			{Round: 2, Players: []string{"A", "B", "D"}, Trades: &entity.Trades{TradedOut: []string{"C"}, TradedIn: []string{"D"}}},
			{Round: 3, Players: []string{"A", "B", "D"}},
		},
	}

	rq.NoError(export.NewXLSX().ExportTrades(path, season))

	f, err := excelize.OpenFile(path)
	rq.NoError(err)
	t.Cleanup(func() { _ = f.Close() })

	rows, err := f.GetRows("Trades")
	rq.NoError(err)
	rq.Len(rows, 4)
	rq.Equal([]string{"Round", "Traded out", "Traded in", "Out", "In", "Roster size"}, rows[0])
	rq.Equal([]string{"1", "", "", "0", "0", "3"}, rows[1])
	rq.Equal([]string{"2", "C", "D", "1", "1", "3"}, rows[2])
	rq.Equal([]string{"3", "", "", "", "", "3"}, rows[3])
}

func TestXLSX_ExportTrades_BadPath(t *testing.T) {
	rq := require.New(t)

	err := export.NewXLSX().ExportTrades(filepath.Join(t.TempDir(), "missing", "trades.xlsx"), entity.Season{})
	rq.Error(err)
}
