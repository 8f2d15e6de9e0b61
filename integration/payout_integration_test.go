package ledger_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"creatorpay/internal/ledger"
	"creatorpay/internal/payout"
)

func TestPayoutReserveAndSettle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanDatabase(t, db)

	ledgerRepo := ledger.NewRepository(db)
	payoutRepo := payout.NewRepository(db)
	ctx := context.Background()

	creatorID := uuid.New()
	_, err := ledgerRepo.GetOrCreate(ctx, creatorID)
	require.NoError(t, err)

	earnings := decimal.RequireFromString("100.00")

	p, err := payoutRepo.Reserve(ctx, creatorID, decimal.RequireFromString("40.00"), earnings)
	require.NoError(t, err)
	require.Equal(t, payout.StatusProcessing, p.Status)

	settled, err := payoutRepo.Settle(ctx, p.ID, true, "")
	require.NoError(t, err)
	require.Equal(t, payout.StatusCompleted, settled.Status)

	l, err := ledgerRepo.GetOrCreate(ctx, creatorID)
	require.NoError(t, err)
	require.True(t, l.TotalPaidOut.Equal(decimal.RequireFromString("40.00")))
}

func TestPayoutFailureDoesNotDeduct_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanDatabase(t, db)

	ledgerRepo := ledger.NewRepository(db)
	payoutRepo := payout.NewRepository(db)
	ctx := context.Background()

	creatorID := uuid.New()
	_, err := ledgerRepo.GetOrCreate(ctx, creatorID)
	require.NoError(t, err)

	earnings := decimal.RequireFromString("50.00")

	p, err := payoutRepo.Reserve(ctx, creatorID, decimal.RequireFromString("20.00"), earnings)
	require.NoError(t, err)

	settled, err := payoutRepo.Settle(ctx, p.ID, false, "processor rejected transfer")
	require.NoError(t, err)
	require.Equal(t, payout.StatusFailed, settled.Status)
	require.NotNil(t, settled.FailureReason)

	l, err := ledgerRepo.GetOrCreate(ctx, creatorID)
	require.NoError(t, err)
	require.True(t, l.TotalPaidOut.IsZero())

	// Failed payout released its reservation: the full amount is available again
	_, err = payoutRepo.Reserve(ctx, creatorID, decimal.RequireFromString("50.00"), earnings)
	require.NoError(t, err)
}

func TestConcurrentPayouts_NoOverdraft_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanDatabase(t, db)

	ledgerRepo := ledger.NewRepository(db)
	payoutRepo := payout.NewRepository(db)
	ctx := context.Background()

	creatorID := uuid.New()
	_, err := ledgerRepo.GetOrCreate(ctx, creatorID)
	require.NoError(t, err)

	// 100.00 earned, ten racing requests of 30.00 each: at most three can win
	earnings := decimal.RequireFromString("100.00")
	amount := decimal.RequireFromString("30.00")

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := payoutRepo.Reserve(ctx, creatorID, amount, earnings); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.LessOrEqual(t, succeeded, 3)

	var reserved decimal.Decimal
	err = db.Get(&reserved, `SELECT COALESCE(SUM(amount), 0) FROM payouts WHERE creator_id = $1 AND status = 'processing'`, creatorID)
	require.NoError(t, err)
	require.True(t, reserved.LessThanOrEqual(earnings), "reserved %s exceeds earnings", reserved)
}
