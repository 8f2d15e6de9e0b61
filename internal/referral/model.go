package referral

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Record is the referral revenue fact consumed by the revenue aggregator.
// CommissionEarned stays mutable only while the status is pending; active and
// inactive are terminal and freeze the record.
type Record struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	CreatorID        uuid.UUID       `db:"creator_id" json:"creator_id"`
	ExternalEventID  string          `db:"external_event_id" json:"external_event_id"`
	ReferredUser     string          `db:"referred_user" json:"referred_user"`
	Status           Status          `db:"status" json:"status"`
	CommissionEarned decimal.Decimal `db:"commission_earned" json:"commission_earned"`
	OccurredAt       time.Time       `db:"occurred_at" json:"occurred_at"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// SyncResult reports what one sync pass discovered.
type SyncResult struct {
	NewRecordsFound int             `json:"new_records_found"`
	NewAmount       decimal.Decimal `json:"new_amount"`
}
