package payout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"creatorpay/internal/ledger"
	"creatorpay/internal/logger"
	"creatorpay/internal/metrics"
	"creatorpay/internal/processor"
)

// Service orchestrates withdrawals: ordered precondition checks, a reserved
// processing record, the external transfer, then settlement.
type Service struct {
	store         Store
	ledgerStore   ledger.Store
	balances      BalanceSource
	processor     processor.Client
	minPayout     decimal.Decimal
	payoutTimeout time.Duration
}

// BalanceSource is the slice of the balance calculator this orchestrator
// needs. Implemented by ledger.Service.
type BalanceSource interface {
	Balance(ctx context.Context, creatorID uuid.UUID) (*ledger.Balance, error)
}

func NewService(
	store Store,
	ledgerStore ledger.Store,
	balances BalanceSource,
	proc processor.Client,
	minPayout decimal.Decimal,
	payoutTimeout time.Duration,
) *Service {
	return &Service{
		store:         store,
		ledgerStore:   ledgerStore,
		balances:      balances,
		processor:     proc,
		minPayout:     minPayout,
		payoutTimeout: payoutTimeout,
	}
}

// RequestPayout checks preconditions in order, first failure wins:
// payout destination, then sufficient balance, then the minimum threshold.
// On success the record settles to completed or failed depending on the
// processor's answer; only completed payouts ever touch total_paid_out.
func (s *Service) RequestPayout(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) (*Payout, error) {
	l, err := s.ledgerStore.GetOrCreate(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	if !l.HasPayoutDestination() {
		metrics.RecordPayout("rejected_no_destination")
		return nil, ErrNoPayoutDestination
	}

	balance, err := s.balances.Balance(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	if amount.GreaterThan(balance.AvailableBalance) {
		metrics.RecordPayout("rejected_insufficient")
		return nil, insufficientBalance(amount.Sub(balance.AvailableBalance))
	}

	if amount.LessThan(s.minPayout) {
		metrics.RecordPayout("rejected_below_minimum")
		return nil, belowMinimum(s.minPayout.Sub(amount))
	}

	// Re-validated under the ledger row lock; a concurrent request may have
	// reserved funds since the check above.
	p, err := s.store.Reserve(ctx, creatorID, amount, balance.TotalEarnings)
	if err != nil {
		if _, ok := err.(*DeficitError); ok {
			metrics.RecordPayout("rejected_insufficient")
		}
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.payoutTimeout)
	defer cancel()

	result, callErr := s.processor.Payout(callCtx, *l.ProcessorAccountRef, amount)
	if callErr != nil {
		logger.Errorf("payout %s failed for creator %s: %v", p.ID, creatorID, callErr)
		metrics.RecordPayout("failed")
		settled, err := s.store.Settle(ctx, p.ID, false, callErr.Error())
		if err != nil {
			logger.Errorf("failed to settle payout %s as failed: %v", p.ID, err)
			return nil, err
		}
		return settled, fmt.Errorf("payout: %w", callErr)
	}

	settled, err := s.store.Settle(ctx, p.ID, true, "")
	if err != nil {
		return nil, err
	}

	metrics.RecordPayout("completed")
	logger.Infof("payout %s completed for creator %s: %s (%s)", p.ID, creatorID, amount.StringFixed(2), result.Message)
	return settled, nil
}

func (s *Service) History(ctx context.Context, creatorID uuid.UUID, limit, offset int) ([]Payout, error) {
	return s.store.ListByCreator(ctx, creatorID, limit, offset)
}
