package referral

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var ErrRecordFrozen = errors.New("referral record is in a terminal status")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// InsertIfAbsent is the idempotent upsert: the external event id is the
// identity, so replaying the same event from any number of concurrent sync
// calls creates at most one record. Returns whether this call created it.
func (r *Repository) InsertIfAbsent(ctx context.Context, rec *Record) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO referral_records (creator_id, external_event_id, referred_user, status, commission_earned, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (creator_id, external_event_id) DO NOTHING`,
		rec.CreatorID, rec.ExternalEventID, rec.ReferredUser, rec.Status, rec.CommissionEarned, rec.OccurredAt,
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

// LatestEventTime gives the sync cursor for a creator. Zero time when no
// records exist yet.
func (r *Repository) LatestEventTime(ctx context.Context, creatorID uuid.UUID) (time.Time, error) {
	var latest sql.NullTime
	err := r.db.GetContext(ctx, &latest,
		`SELECT MAX(occurred_at) FROM referral_records WHERE creator_id = $1`,
		creatorID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	if !latest.Valid {
		return time.Time{}, nil
	}
	return latest.Time, nil
}

// UpdateCommission revises the earned commission while the record is still
// pending. Terminal records are append-only.
func (r *Repository) UpdateCommission(ctx context.Context, creatorID uuid.UUID, externalEventID string, commission decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE referral_records
		 SET commission_earned = $1, updated_at = NOW()
		 WHERE creator_id = $2 AND external_event_id = $3 AND status = 'pending'`,
		commission, creatorID, externalEventID,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordFrozen
	}
	return nil
}

func (r *Repository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Record, error) {
	records := []Record{}
	err := r.db.SelectContext(ctx, &records, `
		SELECT id, creator_id, external_event_id, referred_user, status, commission_earned, occurred_at, created_at, updated_at
		FROM referral_records
		WHERE creator_id = $1
		ORDER BY occurred_at DESC
	`, creatorID)
	if err != nil {
		return nil, err
	}
	return records, nil
}
