package revenue

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"creatorpay/internal/logger"
	"creatorpay/internal/metrics"
)

// Syncer pulls externally-discovered revenue records into their stream before
// an aggregation, best-effort. Implemented by the referral sync service.
type Syncer interface {
	SyncBestEffort(ctx context.Context, creatorID uuid.UUID)
}

// Aggregator sums all revenue streams into a single earnings view.
type Aggregator struct {
	adapters    []Adapter
	cache       Cache
	shareFactor decimal.Decimal
	syncer      Syncer
}

func NewAggregator(adapters []Adapter, cache Cache, shareFactor decimal.Decimal) *Aggregator {
	return &Aggregator{
		adapters:    adapters,
		cache:       cache,
		shareFactor: shareFactor,
	}
}

// SetSyncer attaches the referral pre-sync hook. Wired after construction to
// break the referral -> revenue -> referral cycle.
func (a *Aggregator) SetSyncer(s Syncer) {
	a.syncer = s
}

// ComputeEarnings reads every stream, applies the subscription revenue share
// exactly once, and returns the total with a per-stream breakdown. A failed
// adapter read degrades the result instead of failing it: earnings display
// must survive one subsystem being down. Degraded summaries are never cached.
func (a *Aggregator) ComputeEarnings(ctx context.Context, creatorID uuid.UUID) (*Summary, error) {
	if a.syncer != nil {
		a.syncer.SyncBestEffort(ctx, creatorID)
	}

	if a.cache != nil {
		if cached, ok := a.cache.Get(ctx, creatorID); ok {
			metrics.RecordEarningsRead(cached.Degraded)
			return cached, nil
		}
	}

	summary := &Summary{
		Total:     decimal.Zero,
		Breakdown: make(map[Source]decimal.Decimal, len(a.adapters)),
	}

	for _, adapter := range a.adapters {
		source := adapter.Source()

		records, err := adapter.ListByOwner(ctx, creatorID)
		if err != nil {
			logger.Warnf("revenue adapter %s unavailable for creator %s: %v", source, creatorID, err)
			metrics.RecordAdapterFailure(string(source))
			summary.Degraded = true
			summary.Breakdown[source] = decimal.Zero
			continue
		}

		sum := decimal.Zero
		for _, rec := range records {
			sum = sum.Add(rec.Amount)
		}
		if source == SourceSubscription {
			sum = sum.Mul(a.shareFactor)
		}

		summary.Breakdown[source] = sum
		summary.Total = summary.Total.Add(sum)
	}

	if a.cache != nil && !summary.Degraded {
		a.cache.Set(ctx, creatorID, summary)
	}

	metrics.RecordEarningsRead(summary.Degraded)
	return summary, nil
}

// Invalidate drops the cached summary so the next read recomputes. Called when
// a stream changes out of band, e.g. after a referral sync finds new records.
func (a *Aggregator) Invalidate(ctx context.Context, creatorID uuid.UUID) {
	if a.cache != nil {
		a.cache.Invalidate(ctx, creatorID)
	}
}
