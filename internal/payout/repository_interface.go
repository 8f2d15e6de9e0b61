package payout

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Store interface {
	Reserve(ctx context.Context, creatorID uuid.UUID, amount, totalEarnings decimal.Decimal) (*Payout, error)
	Settle(ctx context.Context, payoutID uuid.UUID, success bool, failureReason string) (*Payout, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID, limit, offset int) ([]Payout, error)
}
