package revenue

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Source string

const (
	SourceTip          Source = "tip"
	SourceSubscription Source = "subscription"
	SourceReferral     Source = "referral"
	SourceAffiliate    Source = "affiliate"
	SourceShop         Source = "shop"
	SourceBrand        Source = "brand"
)

// Sources lists every revenue stream in breakdown order.
var Sources = []Source{
	SourceTip,
	SourceSubscription,
	SourceReferral,
	SourceAffiliate,
	SourceShop,
	SourceBrand,
}

// Record is an immutable revenue fact owned by the originating subsystem.
// This package only ever reads them.
type Record struct {
	Source     Source          `db:"source" json:"source"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	CreatorID  uuid.UUID       `db:"creator_id" json:"creator_id"`
	OccurredAt time.Time       `db:"occurred_at" json:"occurred_at"`
}

// Summary is the aggregated earnings view. Degraded is set when at least one
// adapter read failed and the totals cover only the streams that responded.
type Summary struct {
	Total     decimal.Decimal            `json:"total"`
	Breakdown map[Source]decimal.Decimal `json:"breakdown"`
	Degraded  bool                       `json:"degraded"`
}
