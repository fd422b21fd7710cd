package prices_test

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"fantasy_trades/internal/domain"
	"fantasy_trades/internal/domain/entity"
	"fantasy_trades/internal/domain/service/prices"
	"fantasy_trades/pkg/errcodes"
)

// memoryRepository applies writes to an in-memory table, mimicking the
// transactional repository.
type memoryRepository struct {
	rows      []entity.PlayerRoundPrice
	windowErr error
	writes    int
}

func (m *memoryRepository) ReconcileInTx(
	_ context.Context,
	apply func([]entity.PlayerRoundPrice) []entity.PlayerRoundPrice,
) (int, error) {
	snapshot := append([]entity.PlayerRoundPrice(nil), m.rows...)

	changed := apply(snapshot)
	for _, c := range changed {
		for i := range m.rows {
			if m.rows[i].ID == c.ID {
				m.rows[i].PriceChange = c.PriceChange
			}
		}
	}

	m.writes += len(changed)

	return len(changed), nil
}

// ReconcileWindow mirrors the window statement: LAG over the rows with a
// usable price, partitioned by player and ordered by (round, id), NULL for
// every other row, and only differing values written.
func (m *memoryRepository) ReconcileWindow(context.Context) (int, error) {
	if m.windowErr != nil {
		return 0, m.windowErr
	}

	valid := lo.Filter(m.rows, func(r entity.PlayerRoundPrice, _ int) bool {
		return r.Price != nil && *r.Price >= 0
	})
	slices.SortFunc(valid, func(a, b entity.PlayerRoundPrice) int {
		return cmp.Or(
			cmp.Compare(a.PlayerID, b.PlayerID),
			cmp.Compare(a.Round, b.Round),
			cmp.Compare(a.ID, b.ID),
		)
	})

	computed := make(map[int64]*int64, len(valid))
	for i, r := range valid {
		if i > 0 && valid[i-1].PlayerID == r.PlayerID {
			change := *r.Price - *valid[i-1].Price
			computed[r.ID] = &change
		}
	}

	updated := 0
	for i := range m.rows {
		change := computed[m.rows[i].ID]
		if !sameChange(m.rows[i].PriceChange, change) {
			m.rows[i].PriceChange = change
			updated++
		}
	}

	m.writes += updated

	return updated, nil
}

func sameChange(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return *a == *b
}

type fakeNotifier struct {
	summaries []entity.PriceSummary
}

func (f *fakeNotifier) NotifyPriceSummary(_ context.Context, summary entity.PriceSummary) error {
	f.summaries = append(f.summaries, summary)
	return nil
}

func TestServiceReconcileScan(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	repo := &memoryRepository{rows: []entity.PlayerRoundPrice{
		row(1, 7, 3, lo.ToPtr[int64](100)),
		row(2, 7, 5, lo.ToPtr[int64](110)),
		row(3, 7, 9, lo.ToPtr[int64](95)),
		row(4, 8, 1, nil),
	}}
	notifier := &fakeNotifier{}

	svc := prices.NewService(repo).WithNotifier(notifier)

	summary, err := svc.Reconcile(ctx, prices.ModeScan)
	rq.NoError(err)

	rq.Equal(entity.PriceSummary{Mode: "scan", Rows: 4, Players: 2, Updated: 2, Debuts: 1, Invalid: 1}, summary)
	rq.Equal([]*int64{nil, lo.ToPtr[int64](10), lo.ToPtr[int64](-15), nil}, changes(repo.rows))
	rq.Equal([]entity.PriceSummary{summary}, notifier.summaries)

	summary, err = svc.Reconcile(ctx, prices.ModeScan)
	rq.NoError(err)
	rq.Zero(summary.Updated, "second run writes nothing")
	rq.Equal(2, repo.writes)
}

func TestServiceReconcileWindow(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	repo := &memoryRepository{rows: []entity.PlayerRoundPrice{
		row(1, 7, 3, lo.ToPtr[int64](100)),
		row(2, 7, 5, lo.ToPtr[int64](110)),
		row(3, 7, 9, lo.ToPtr[int64](95)),
	}}

	summary, err := prices.NewService(repo).Reconcile(ctx, prices.ModeWindow)
	rq.NoError(err)
	rq.Equal(entity.PriceSummary{Mode: "window", Updated: 2}, summary)
	rq.Equal([]*int64{nil, lo.ToPtr[int64](10), lo.ToPtr[int64](-15)}, changes(repo.rows))

	dbErr := errors.New("connection reset")

	_, err = prices.NewService(&memoryRepository{windowErr: dbErr}).Reconcile(ctx, prices.ModeWindow)
	rq.ErrorIs(err, dbErr)

	_, err = prices.NewService(&memoryRepository{}).Reconcile(ctx, prices.Mode("bogus"))
	rq.True(domain.HasCode(err, errcodes.InvalidReconcileMode))
}

// bridgedFixture holds out-of-order rows with invalid prices in the middle
// of a series, a duplicate round and stale deltas.
func bridgedFixture() []entity.PlayerRoundPrice {
	stale := row(6, 8, 4, lo.ToPtr[int64](60))
	stale.PriceChange = lo.ToPtr[int64](999)

	invalidWithDelta := row(2, 7, 5, nil)
	invalidWithDelta.PriceChange = lo.ToPtr[int64](5)

	return []entity.PlayerRoundPrice{
		row(3, 7, 9, lo.ToPtr[int64](95)),
		invalidWithDelta,
		row(1, 7, 3, lo.ToPtr[int64](100)),
		row(4, 7, 11, lo.ToPtr[int64](-1)),
		row(5, 7, 12, lo.ToPtr[int64](97)),
		stale,
		row(7, 8, 2, lo.ToPtr[int64](50)),
		row(8, 8, 4, lo.ToPtr[int64](55)),
		row(9, 9, 1, nil),
	}
}

func TestServiceScanAndWindowAgree(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	scanRepo := &memoryRepository{rows: bridgedFixture()}
	windowRepo := &memoryRepository{rows: bridgedFixture()}

	scanned, err := prices.NewService(scanRepo).Reconcile(ctx, prices.ModeScan)
	rq.NoError(err)

	windowed, err := prices.NewService(windowRepo).Reconcile(ctx, prices.ModeWindow)
	rq.NoError(err)

	rq.Equal(scanRepo.rows, windowRepo.rows)
	rq.Equal(scanned.Updated, windowed.Updated)

	rq.Equal([]*int64{
		lo.ToPtr[int64](-5), // round 9 bridges the invalid round 5 back to round 3
		nil,
		nil,
		nil,
		lo.ToPtr[int64](2), // round 12 bridges the negative round 11
		lo.ToPtr[int64](10),
		nil,
		lo.ToPtr[int64](-5), // same round as id 6, ordered after it by id
		nil,
	}, changes(scanRepo.rows))
	rq.Equal(5, scanned.Updated)
}
