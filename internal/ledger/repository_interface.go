package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Store interface {
	GetOrCreate(ctx context.Context, creatorID uuid.UUID) (*CreatorLedger, error)
	SetProcessorAccount(ctx context.Context, creatorID uuid.UUID, accountRef string) error
	BeginMigration(ctx context.Context, creatorID uuid.UUID) (bool, error)
	CompleteMigration(ctx context.Context, creatorID uuid.UUID, migratedAmount decimal.Decimal) error
	RollbackMigration(ctx context.Context, creatorID uuid.UUID) error
	UpdateProcessorBalance(ctx context.Context, creatorID uuid.UUID, balance decimal.Decimal) error
	ListCreatorIDs(ctx context.Context) ([]uuid.UUID, error)
}
