package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"creatorpay/internal/logger"
	"creatorpay/internal/metrics"
	"creatorpay/internal/processor"
	"creatorpay/internal/revenue"
)

var (
	ErrNoPayoutDestination = errors.New("no payout destination linked")
	// ErrEarningsDegraded rejects a migration while one or more revenue
	// streams cannot be read: a partial sum must never become the
	// transferred amount.
	ErrEarningsDegraded = errors.New("earnings aggregate degraded, retry later")
)

// Aggregator is the slice of the revenue aggregator the ledger needs.
type Aggregator interface {
	ComputeEarnings(ctx context.Context, creatorID uuid.UUID) (*revenue.Summary, error)
	Invalidate(ctx context.Context, creatorID uuid.UUID)
}

// Service owns the balance calculation and the one-way migration of a
// creator's earnings basis from platform-computed to processor-reported.
type Service struct {
	store          Store
	aggregator     Aggregator
	processor      processor.Client
	migrateTimeout time.Duration
}

func NewService(store Store, aggregator Aggregator, proc processor.Client, migrateTimeout time.Duration) *Service {
	return &Service{
		store:          store,
		aggregator:     aggregator,
		processor:      proc,
		migrateTimeout: migrateTimeout,
	}
}

// Earnings returns the per-stream summary for display. After migration the
// authoritative total is the processor's, but the breakdown remains the
// platform view of where the money came from.
func (s *Service) Earnings(ctx context.Context, creatorID uuid.UUID) (*EarningsSummary, error) {
	l, err := s.store.GetOrCreate(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	summary, err := s.aggregator.ComputeEarnings(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	out := &EarningsSummary{
		Total:     summary.Total,
		Breakdown: summary.Breakdown,
		Degraded:  summary.Degraded,
		Migrated:  l.MigrationStatus == MigrationCompleted,
	}
	if out.Migrated {
		out.Total = l.ProcessorReportedBalance
	}
	return out, nil
}

// Balance computes TotalEarnings and AvailableBalance. Exactly one earnings
// basis applies: the processor-reported balance once migration completed,
// the platform aggregate otherwise. Never both.
func (s *Service) Balance(ctx context.Context, creatorID uuid.UUID) (*Balance, error) {
	l, err := s.store.GetOrCreate(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	return s.balanceFor(ctx, l)
}

func (s *Service) balanceFor(ctx context.Context, l *CreatorLedger) (*Balance, error) {
	var total decimal.Decimal

	if l.MigrationStatus == MigrationCompleted {
		total = l.ProcessorReportedBalance
		if l.HasPayoutDestination() {
			fresh, err := s.processor.GetBalance(ctx, *l.ProcessorAccountRef)
			if err != nil {
				logger.Warnf("processor balance refresh failed for %s, serving last known: %v", l.CreatorID, err)
			} else {
				total = fresh
				if err := s.store.UpdateProcessorBalance(ctx, l.CreatorID, fresh); err != nil {
					logger.Errorf("failed to persist processor balance for %s: %v", l.CreatorID, err)
				}
			}
		}
	} else {
		summary, err := s.aggregator.ComputeEarnings(ctx, l.CreatorID)
		if err != nil {
			return nil, err
		}
		total = summary.Total
	}

	available := total.Sub(l.TotalPaidOut)
	if available.IsNegative() {
		// A late payout failure record must never show negative funds.
		available = decimal.Zero
	}

	return &Balance{
		TotalEarnings:    total,
		AvailableBalance: available,
		MigrationStatus:  l.MigrationStatus,
	}, nil
}

// LinkProcessorAccount asks the processor for an onboarding link and stores
// the resulting account reference, the precondition for both migration and
// payout.
func (s *Service) LinkProcessorAccount(ctx context.Context, creatorID uuid.UUID) (string, error) {
	if _, err := s.store.GetOrCreate(ctx, creatorID); err != nil {
		return "", err
	}

	link, err := s.processor.CreateAccountLink(ctx, creatorID)
	if err != nil {
		return "", fmt.Errorf("create account link: %w", err)
	}

	if err := s.store.SetProcessorAccount(ctx, creatorID, link.AccountRef); err != nil {
		return "", err
	}

	return link.OnboardingURL, nil
}

// TriggerMigration runs the one-way move of the earnings basis onto the
// processor. Duplicate triggers while a migration is in progress or after
// completion are silent no-ops; a failed or timed-out external call rolls the
// state back so the platform path keeps serving and a later trigger can retry.
func (s *Service) TriggerMigration(ctx context.Context, creatorID uuid.UUID) (MigrationStatus, error) {
	l, err := s.store.GetOrCreate(ctx, creatorID)
	if err != nil {
		return "", err
	}

	switch l.MigrationStatus {
	case MigrationCompleted, MigrationInProgress:
		return l.MigrationStatus, nil
	}

	if !l.HasPayoutDestination() {
		return l.MigrationStatus, ErrNoPayoutDestination
	}

	summary, err := s.aggregator.ComputeEarnings(ctx, creatorID)
	if err != nil {
		return l.MigrationStatus, err
	}
	if summary.Degraded {
		return l.MigrationStatus, ErrEarningsDegraded
	}

	acquired, err := s.store.BeginMigration(ctx, creatorID)
	if err != nil {
		return l.MigrationStatus, err
	}
	if !acquired {
		// Lost the race to a concurrent trigger. Idempotent no-op.
		return MigrationInProgress, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.migrateTimeout)
	defer cancel()

	result, err := s.processor.Migrate(callCtx, *l.ProcessorAccountRef, summary.Total)
	if err != nil {
		logger.Errorf("migration failed for creator %s, rolling back: %v", creatorID, err)
		metrics.RecordMigration("failed")
		if rbErr := s.store.RollbackMigration(ctx, creatorID); rbErr != nil {
			logger.Errorf("migration rollback failed for creator %s: %v", creatorID, rbErr)
		}
		return MigrationNotStarted, fmt.Errorf("migrate: %w", err)
	}

	if err := s.store.CompleteMigration(ctx, creatorID, result.MigratedAmount); err != nil {
		return MigrationInProgress, err
	}

	metrics.RecordMigration("completed")
	s.aggregator.Invalidate(ctx, creatorID)
	logger.Infof("creator %s migrated %s to processor", creatorID, result.MigratedAmount.StringFixed(2))
	return MigrationCompleted, nil
}
