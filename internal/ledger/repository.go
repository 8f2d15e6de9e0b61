package ledger

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetOrCreate(ctx context.Context, creatorID uuid.UUID) (*CreatorLedger, error) {
	l := &CreatorLedger{}
	err := r.db.GetContext(ctx, l, `SELECT * FROM creator_ledgers WHERE creator_id = $1`, creatorID)
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO creator_ledgers (creator_id)
		 VALUES ($1)
		 ON CONFLICT (creator_id) DO UPDATE SET updated_at = creator_ledgers.updated_at
		 RETURNING creator_id, migration_status, processor_account_ref, processor_reported_balance, total_paid_out, created_at, updated_at`,
		creatorID,
	).StructScan(l)

	if err != nil {
		return nil, err
	}

	return l, nil
}

func (r *Repository) SetProcessorAccount(ctx context.Context, creatorID uuid.UUID, accountRef string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE creator_ledgers
		 SET processor_account_ref = $1, updated_at = NOW()
		 WHERE creator_id = $2`,
		accountRef, creatorID,
	)
	return err
}

// BeginMigration is the idempotency guard: a conditional write that moves the
// status from not_started to in_progress only when a payout destination is
// linked. It returns false when another attempt already holds the guard or
// the migration already completed, which callers treat as a silent no-op.
func (r *Repository) BeginMigration(ctx context.Context, creatorID uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE creator_ledgers
		 SET migration_status = 'in_progress', updated_at = NOW()
		 WHERE creator_id = $1
		   AND migration_status = 'not_started'
		   AND processor_account_ref IS NOT NULL`,
		creatorID,
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// CompleteMigration records the externally acknowledged amount and seals the
// terminal state. Only an in_progress attempt may complete.
func (r *Repository) CompleteMigration(ctx context.Context, creatorID uuid.UUID, migratedAmount decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE creator_ledgers
		 SET migration_status = 'completed',
		     processor_reported_balance = $1,
		     updated_at = NOW()
		 WHERE creator_id = $2
		   AND migration_status = 'in_progress'`,
		migratedAmount, creatorID,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return errors.New("no in-progress migration to complete")
	}
	return nil
}

// RollbackMigration releases the guard after a failed or timed-out external
// call, making the platform earnings path consumable again.
func (r *Repository) RollbackMigration(ctx context.Context, creatorID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE creator_ledgers
		 SET migration_status = 'not_started', updated_at = NOW()
		 WHERE creator_id = $1
		   AND migration_status = 'in_progress'`,
		creatorID,
	)
	return err
}

func (r *Repository) UpdateProcessorBalance(ctx context.Context, creatorID uuid.UUID, balance decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE creator_ledgers
		 SET processor_reported_balance = $1, updated_at = NOW()
		 WHERE creator_id = $2
		   AND migration_status = 'completed'`,
		balance, creatorID,
	)
	return err
}

func (r *Repository) ListCreatorIDs(ctx context.Context) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := r.db.SelectContext(ctx, &ids, `SELECT creator_id FROM creator_ledgers ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	return ids, nil
}
