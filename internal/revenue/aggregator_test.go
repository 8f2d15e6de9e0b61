package revenue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	source  Source
	records []Record
	err     error
	calls   int
}

func (a *stubAdapter) Source() Source { return a.source }

func (a *stubAdapter) ListByOwner(ctx context.Context, creatorID uuid.UUID) ([]Record, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return a.records, nil
}

type stubCache struct {
	entries      map[uuid.UUID]*Summary
	invalidated  int
	setCallCount int
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[uuid.UUID]*Summary)}
}

func (c *stubCache) Get(ctx context.Context, creatorID uuid.UUID) (*Summary, bool) {
	s, ok := c.entries[creatorID]
	return s, ok
}

func (c *stubCache) Set(ctx context.Context, creatorID uuid.UUID, summary *Summary) {
	c.setCallCount++
	c.entries[creatorID] = summary
}

func (c *stubCache) Invalidate(ctx context.Context, creatorID uuid.UUID) {
	c.invalidated++
	delete(c.entries, creatorID)
}

func amounts(source Source, values ...string) *stubAdapter {
	records := make([]Record, 0, len(values))
	for _, v := range values {
		records = append(records, Record{
			Source:     source,
			Amount:     decimal.RequireFromString(v),
			OccurredAt: time.Now(),
		})
	}
	return &stubAdapter{source: source, records: records}
}

func ninetyPercent() decimal.Decimal {
	return decimal.NewFromInt(90).Div(decimal.NewFromInt(100))
}

func TestComputeEarnings_SumsAllStreams(t *testing.T) {
	creatorID := uuid.New()
	adapters := []Adapter{
		amounts(SourceTip, "7.50"),
		amounts(SourceSubscription, "10.00"), // 9.00 after revenue share
		amounts(SourceReferral, "4.00"),
		amounts(SourceAffiliate, "1.25", "0.75"),
		amounts(SourceShop),
		amounts(SourceBrand, "20.00"),
	}

	agg := NewAggregator(adapters, nil, ninetyPercent())

	summary, err := agg.ComputeEarnings(context.Background(), creatorID)
	require.NoError(t, err)

	assert.False(t, summary.Degraded)
	assert.Len(t, summary.Breakdown, 6)
	assert.True(t, summary.Breakdown[SourceTip].Equal(decimal.RequireFromString("7.50")))
	assert.True(t, summary.Breakdown[SourceSubscription].Equal(decimal.RequireFromString("9.00")))
	assert.True(t, summary.Breakdown[SourceAffiliate].Equal(decimal.RequireFromString("2.00")))
	assert.True(t, summary.Breakdown[SourceShop].Equal(decimal.Zero))
	assert.True(t, summary.Total.Equal(decimal.RequireFromString("42.50")))
}

func TestComputeEarnings_RevenueShareAppliedExactlyOnce(t *testing.T) {
	creatorID := uuid.New()
	subs := amounts(SourceSubscription, "100.00")

	agg := NewAggregator([]Adapter{subs}, nil, ninetyPercent())

	summary, err := agg.ComputeEarnings(context.Background(), creatorID)
	require.NoError(t, err)
	assert.True(t, summary.Total.Equal(decimal.RequireFromString("90.00")),
		"expected 90.00, got %s", summary.Total)

	// Recompute: still 90, not 81.
	summary, err = agg.ComputeEarnings(context.Background(), creatorID)
	require.NoError(t, err)
	assert.True(t, summary.Total.Equal(decimal.RequireFromString("90.00")))
}

func TestComputeEarnings_DegradesOnAdapterFailure(t *testing.T) {
	creatorID := uuid.New()
	broken := &stubAdapter{source: SourceShop, err: errors.New("connection refused")}
	adapters := []Adapter{
		amounts(SourceTip, "5.00"),
		broken,
	}

	agg := NewAggregator(adapters, nil, ninetyPercent())

	summary, err := agg.ComputeEarnings(context.Background(), creatorID)
	require.NoError(t, err, "one failed stream must not fail the whole computation")

	assert.True(t, summary.Degraded)
	assert.True(t, summary.Total.Equal(decimal.RequireFromString("5.00")))
	assert.True(t, summary.Breakdown[SourceShop].Equal(decimal.Zero))
}

func TestComputeEarnings_CacheHitSkipsAdapters(t *testing.T) {
	creatorID := uuid.New()
	tips := amounts(SourceTip, "3.00")
	cache := newStubCache()

	agg := NewAggregator([]Adapter{tips}, cache, ninetyPercent())

	_, err := agg.ComputeEarnings(context.Background(), creatorID)
	require.NoError(t, err)
	require.Equal(t, 1, tips.calls)

	_, err = agg.ComputeEarnings(context.Background(), creatorID)
	require.NoError(t, err)
	assert.Equal(t, 1, tips.calls, "second read must come from cache")
}

func TestComputeEarnings_DegradedResultNotCached(t *testing.T) {
	creatorID := uuid.New()
	broken := &stubAdapter{source: SourceTip, err: errors.New("down")}
	cache := newStubCache()

	agg := NewAggregator([]Adapter{broken}, cache, ninetyPercent())

	summary, err := agg.ComputeEarnings(context.Background(), creatorID)
	require.NoError(t, err)
	require.True(t, summary.Degraded)

	assert.Equal(t, 0, cache.setCallCount)
}

func TestInvalidate_ForcesRecompute(t *testing.T) {
	creatorID := uuid.New()
	tips := amounts(SourceTip, "3.00")
	cache := newStubCache()

	agg := NewAggregator([]Adapter{tips}, cache, ninetyPercent())

	_, err := agg.ComputeEarnings(context.Background(), creatorID)
	require.NoError(t, err)

	agg.Invalidate(context.Background(), creatorID)

	_, err = agg.ComputeEarnings(context.Background(), creatorID)
	require.NoError(t, err)
	assert.Equal(t, 2, tips.calls)
}

type countingSyncer struct{ calls int }

func (s *countingSyncer) SyncBestEffort(ctx context.Context, creatorID uuid.UUID) { s.calls++ }

func TestComputeEarnings_RunsSyncerFirst(t *testing.T) {
	creatorID := uuid.New()
	syncer := &countingSyncer{}

	agg := NewAggregator([]Adapter{amounts(SourceReferral, "1.00")}, nil, ninetyPercent())
	agg.SetSyncer(syncer)

	_, err := agg.ComputeEarnings(context.Background(), creatorID)
	require.NoError(t, err)
	assert.Equal(t, 1, syncer.calls)
}
