package persistence_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"fantasy_trades/internal/domain/entity"
	"fantasy_trades/internal/domain/service/prices"
	"fantasy_trades/internal/infrastructure/persistence"
	"fantasy_trades/pkg/dbtest"
)

const migration = "../../../migrations/001_player_round_prices.sql"

func seedPrices(t *testing.T, db *sqlx.DB) {
	t.Helper()

	rows := []struct {
		player int64
		round  int
		price  *int64
		change *int64
	}{
		{player: 7, round: 3, price: lo.ToPtr[int64](100)},
		{player: 7, round: 5, price: lo.ToPtr[int64](110)},
		{player: 7, round: 9, price: lo.ToPtr[int64](95)},
		{player: 8, round: 1, price: lo.ToPtr[int64](500), change: lo.ToPtr[int64](999)},
		{player: 8, round: 2},
		{player: 8, round: 3, price: lo.ToPtr[int64](450)},
		{player: 9, round: 4, price: lo.ToPtr[int64](-1)},
	}

	for _, r := range rows {
		_, err := db.Exec(
			`INSERT INTO player_round_prices (player_id, round, price, price_change) VALUES ($1, $2, $3, $4)`,
			r.player, r.round, r.price, r.change,
		)
		require.NoError(t, err)
	}
}

func priceChanges(t *testing.T, repo *persistence.PriceRepository) map[[2]int64]*int64 {
	t.Helper()

	rows, err := repo.List(context.Background())
	require.NoError(t, err)

	return lo.SliceToMap(rows, func(r entity.PlayerRoundPrice) ([2]int64, *int64) {
		return [2]int64{r.PlayerID, int64(r.Round)}, r.PriceChange
	})
}

func TestPriceRepositoryModesAgree(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	want := map[[2]int64]*int64{
		{7, 3}: nil,
		{7, 5}: lo.ToPtr[int64](10),
		{7, 9}: lo.ToPtr[int64](-15),
		{8, 1}: nil,
		{8, 2}: nil,
		{8, 3}: lo.ToPtr[int64](-50),
		{9, 4}: nil,
	}

	scanDB := dbtest.Open(t, migration)
	seedPrices(t, scanDB)
	scanRepo := persistence.NewPriceRepository(scanDB)

	updated, err := scanRepo.ReconcileInTx(ctx, func(rows []entity.PlayerRoundPrice) []entity.PlayerRoundPrice {
		return prices.Changed(rows, prices.ReconcilePriceChanges(rows))
	})
	rq.NoError(err)
	rq.Equal(4, updated)
	rq.Equal(want, priceChanges(t, scanRepo))

	windowDB := dbtest.Open(t, migration)
	seedPrices(t, windowDB)
	windowRepo := persistence.NewPriceRepository(windowDB)

	updated, err = windowRepo.ReconcileWindow(ctx)
	rq.NoError(err)
	rq.Equal(4, updated)
	rq.Equal(want, priceChanges(t, windowRepo))

	updated, err = windowRepo.ReconcileWindow(ctx)
	rq.NoError(err)
	rq.Zero(updated, "second run changes nothing")
}
