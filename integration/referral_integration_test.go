package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"creatorpay/internal/referral"
)

func TestReferralUpsert_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanDatabase(t, db)

	repo := referral.NewRepository(db)
	ctx := context.Background()

	creatorID := uuid.New()
	rec := &referral.Record{
		CreatorID:        creatorID,
		ExternalEventID:  "evt_int_1",
		ReferredUser:     "user-77",
		Status:           referral.StatusPending,
		CommissionEarned: decimal.RequireFromString("1.50"),
		OccurredAt:       time.Now().UTC().Truncate(time.Millisecond),
	}

	created, err := repo.InsertIfAbsent(ctx, rec)
	require.NoError(t, err)
	require.True(t, created)

	// Replay of the same event is a no-op
	created, err = repo.InsertIfAbsent(ctx, rec)
	require.NoError(t, err)
	require.False(t, created)

	records, err := repo.ListByCreator(ctx, creatorID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "evt_int_1", records[0].ExternalEventID)

	cursor, err := repo.LatestEventTime(ctx, creatorID)
	require.NoError(t, err)
	require.WithinDuration(t, rec.OccurredAt, cursor, time.Second)
}

func TestReferralConcurrentReplay_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanDatabase(t, db)

	repo := referral.NewRepository(db)
	ctx := context.Background()

	creatorID := uuid.New()

	var wg sync.WaitGroup
	var mu sync.Mutex
	createdCount := 0

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := &referral.Record{
				CreatorID:        creatorID,
				ExternalEventID:  "evt_race",
				ReferredUser:     "user-1",
				Status:           referral.StatusPending,
				CommissionEarned: decimal.RequireFromString("0.80"),
				OccurredAt:       time.Now().UTC(),
			}
			created, err := repo.InsertIfAbsent(ctx, rec)
			require.NoError(t, err)
			if created {
				mu.Lock()
				createdCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, createdCount)

	records, err := repo.ListByCreator(ctx, creatorID)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestReferralCommissionFrozen_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanDatabase(t, db)

	repo := referral.NewRepository(db)
	ctx := context.Background()

	creatorID := uuid.New()
	rec := &referral.Record{
		CreatorID:        creatorID,
		ExternalEventID:  "evt_frozen",
		ReferredUser:     "user-2",
		Status:           referral.StatusPending,
		CommissionEarned: decimal.RequireFromString("2.00"),
		OccurredAt:       time.Now().UTC(),
	}
	_, err := repo.InsertIfAbsent(ctx, rec)
	require.NoError(t, err)

	// Pending records accept revisions
	require.NoError(t, repo.UpdateCommission(ctx, creatorID, "evt_frozen", decimal.RequireFromString("2.50")))

	_, err = db.Exec(`UPDATE referral_records SET status = 'active' WHERE creator_id = $1 AND external_event_id = $2`,
		creatorID, "evt_frozen")
	require.NoError(t, err)

	err = repo.UpdateCommission(ctx, creatorID, "evt_frozen", decimal.RequireFromString("3.00"))
	require.ErrorIs(t, err, referral.ErrRecordFrozen)
}
