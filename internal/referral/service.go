package referral

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"creatorpay/internal/logger"
	"creatorpay/internal/metrics"
)

// Invalidator drops the cached earnings aggregate after new referral revenue
// appears. Implemented by revenue.Aggregator.
type Invalidator interface {
	Invalidate(ctx context.Context, creatorID uuid.UUID)
}

// Service reconciles externally-discovered referral events into local
// records. Safe to call concurrently and repeatedly: the upsert is keyed by
// the external event id, so replays and races collapse to one record.
type Service struct {
	store            Store
	source           AttributionSource
	invalidator      Invalidator
	commissionFactor decimal.Decimal
}

func NewService(store Store, source AttributionSource, invalidator Invalidator, commissionFactor decimal.Decimal) *Service {
	return &Service{
		store:            store,
		source:           source,
		invalidator:      invalidator,
		commissionFactor: commissionFactor,
	}
}

// Sync scans the attribution source for events newer than the local cursor
// and creates the missing records. NewRecordsFound counts only records this
// call actually created, so concurrent syncs over the same events sum to the
// true number of new records, not a multiple of it.
func (s *Service) Sync(ctx context.Context, creatorID uuid.UUID) (*SyncResult, error) {
	cursor, err := s.store.LatestEventTime(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("referral sync cursor: %w", err)
	}

	events, err := s.source.ListNewEventsSince(ctx, creatorID, cursor)
	if err != nil {
		return nil, fmt.Errorf("referral sync scan: %w", err)
	}

	result := &SyncResult{NewAmount: decimal.Zero}
	for _, ev := range events {
		rec := &Record{
			CreatorID:        creatorID,
			ExternalEventID:  ev.ID,
			ReferredUser:     ev.ReferredUser,
			Status:           StatusActive,
			CommissionEarned: ev.Volume.Mul(s.commissionFactor),
			OccurredAt:       ev.OccurredAt,
		}

		created, err := s.store.InsertIfAbsent(ctx, rec)
		if err != nil {
			return nil, fmt.Errorf("referral sync upsert: %w", err)
		}
		if created {
			result.NewRecordsFound++
			result.NewAmount = result.NewAmount.Add(rec.CommissionEarned)
		}
	}

	if result.NewRecordsFound > 0 && s.invalidator != nil {
		s.invalidator.Invalidate(ctx, creatorID)
	}

	return result, nil
}

// SyncBestEffort is the aggregator pre-step hook: failures are logged and
// retried on the next tick, never surfaced.
func (s *Service) SyncBestEffort(ctx context.Context, creatorID uuid.UUID) {
	result, err := s.Sync(ctx, creatorID)
	if err != nil {
		logger.Warnf("best-effort referral sync failed for %s: %v", creatorID, err)
		metrics.RecordReferralSync("pre_aggregate", "error", 0)
		return
	}
	metrics.RecordReferralSync("pre_aggregate", "ok", result.NewRecordsFound)
}
