package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"creatorpay/internal/revenue"
)

type MigrationStatus string

const (
	MigrationNotStarted MigrationStatus = "not_started"
	MigrationInProgress MigrationStatus = "in_progress"
	MigrationCompleted  MigrationStatus = "completed"
)

// CreatorLedger is the single mutable record this subsystem owns per creator.
//
// While MigrationStatus is completed, ProcessorReportedBalance is the
// authoritative earnings basis; before that it is meaningless and the
// platform-computed aggregate rules. The two are never summed.
type CreatorLedger struct {
	CreatorID                uuid.UUID       `db:"creator_id" json:"creator_id"`
	MigrationStatus          MigrationStatus `db:"migration_status" json:"migration_status"`
	ProcessorAccountRef      *string         `db:"processor_account_ref" json:"processor_account_ref,omitempty"`
	ProcessorReportedBalance decimal.Decimal `db:"processor_reported_balance" json:"processor_reported_balance"`
	TotalPaidOut             decimal.Decimal `db:"total_paid_out" json:"total_paid_out"`
	CreatedAt                time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time       `db:"updated_at" json:"updated_at"`
}

func (l *CreatorLedger) HasPayoutDestination() bool {
	return l.ProcessorAccountRef != nil && *l.ProcessorAccountRef != ""
}

type Balance struct {
	TotalEarnings    decimal.Decimal `json:"total_earnings"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	MigrationStatus  MigrationStatus `json:"migration_status"`
}

type EarningsSummary struct {
	Total     decimal.Decimal                    `json:"total"`
	Breakdown map[revenue.Source]decimal.Decimal `json:"breakdown"`
	Degraded  bool                               `json:"degraded"`
	Migrated  bool                               `json:"migrated"`
}
