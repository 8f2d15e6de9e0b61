package payout

import (
	"context"
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

// Reserve re-validates the balance under the creator's ledger row lock and
// creates the processing payout record in the same transaction. Payouts still
// processing count against the available balance, so two racing requests
// cannot both pass the check. totalEarnings is the caller's snapshot of the
// authoritative earnings basis; total_paid_out is read under the lock, which
// gives the read-after-write guarantee the precondition needs.
func (r *Repository) Reserve(ctx context.Context, creatorID uuid.UUID, amount, totalEarnings decimal.Decimal) (*Payout, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var paidOut decimal.Decimal
	err = tx.QueryRowxContext(ctx,
		`SELECT total_paid_out FROM creator_ledgers WHERE creator_id = $1 FOR UPDATE`,
		creatorID,
	).Scan(&paidOut)
	if err != nil {
		return nil, err
	}

	var reserved decimal.Decimal
	err = tx.QueryRowxContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payouts WHERE creator_id = $1 AND status = 'processing'`,
		creatorID,
	).Scan(&reserved)
	if err != nil {
		return nil, err
	}

	available := totalEarnings.Sub(paidOut).Sub(reserved)
	if available.IsNegative() {
		available = decimal.Zero
	}
	if amount.GreaterThan(available) {
		return nil, insufficientBalance(amount.Sub(available))
	}

	p := &Payout{}
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO payouts (creator_id, amount, status)
		 VALUES ($1, $2, 'processing')
		 RETURNING id, creator_id, amount, status, failure_reason, created_at, settled_at`,
		creatorID, amount,
	).StructScan(p)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return p, nil
}

// Settle moves a processing payout to its terminal status. Only a completed
// payout increments total_paid_out; the increment and the status change
// commit together so the monotonic total never drifts from the records.
func (r *Repository) Settle(ctx context.Context, payoutID uuid.UUID, success bool, failureReason string) (*Payout, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p := &Payout{}
	err = tx.QueryRowxContext(ctx,
		`SELECT id, creator_id, amount, status, failure_reason, created_at, settled_at
		 FROM payouts WHERE id = $1 FOR UPDATE`,
		payoutID,
	).StructScan(p)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusProcessing {
		return nil, errors.New("payout already settled")
	}

	status := StatusFailed
	var reason *string
	if success {
		status = StatusCompleted
	} else if failureReason != "" {
		reason = &failureReason
	}

	err = tx.QueryRowxContext(ctx,
		`UPDATE payouts
		 SET status = $1, failure_reason = $2, settled_at = NOW()
		 WHERE id = $3
		 RETURNING id, creator_id, amount, status, failure_reason, created_at, settled_at`,
		status, reason, payoutID,
	).StructScan(p)
	if err != nil {
		return nil, err
	}

	if success {
		_, err = tx.ExecContext(ctx,
			`UPDATE creator_ledgers
			 SET total_paid_out = total_paid_out + $1, updated_at = NOW()
			 WHERE creator_id = $2`,
			p.Amount, p.CreatorID,
		)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repository) ListByCreator(ctx context.Context, creatorID uuid.UUID, limit, offset int) ([]Payout, error) {
	if limit <= 0 {
		limit = 50
	}

	payouts := []Payout{}
	err := r.db.SelectContext(ctx, &payouts, `
		SELECT id, creator_id, amount, status, failure_reason, created_at, settled_at
		FROM payouts
		WHERE creator_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, creatorID, limit, offset)
	if err != nil {
		return nil, err
	}

	return payouts, nil
}
