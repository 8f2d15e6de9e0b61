package referral

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Store interface {
	InsertIfAbsent(ctx context.Context, rec *Record) (bool, error)
	LatestEventTime(ctx context.Context, creatorID uuid.UUID) (time.Time, error)
	UpdateCommission(ctx context.Context, creatorID uuid.UUID, externalEventID string, commission decimal.Decimal) error
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Record, error)
}
