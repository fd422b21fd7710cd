package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"fantasy_trades/internal/domain/entity"
)

const tradesSheet = "Trades"

//nolint:gochecknoglobals
var tradesHeader = []any{"Round", "Traded out", "Traded in", "Out", "In", "Roster size"}

type XLSX struct{}

func NewXLSX() XLSX {
	return XLSX{}
}

// ExportTrades writes one row per round. Rounds without a trade record get
// blank trade cells.
func (XLSX) ExportTrades(path string, season entity.Season) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), tradesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(tradesSheet, "A1", &tradesHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, round := range season.Rounds {
		row := []any{round.Round, "", "", "", "", len(round.Players)}
		if round.Trades != nil {
			row[1] = strings.Join(round.Trades.TradedOut, ", ")
			row[2] = strings.Join(round.Trades.TradedIn, ", ")
			row[3] = len(round.Trades.TradedOut)
			row[4] = len(round.Trades.TradedIn)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("round %d: %w", round.Round, err)
		}

		if err := f.SetSheetRow(tradesSheet, cell, &row); err != nil {
			return fmt.Errorf("round %d: %w", round.Round, err)
		}
	}

	if err := f.SetColWidth(tradesSheet, "B", "C", 40); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	return nil
}
