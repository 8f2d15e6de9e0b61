package revenue

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Adapter is a read-only view over one revenue stream. Adapters filter to the
// owner themselves; the aggregator never post-filters.
type Adapter interface {
	Source() Source
	ListByOwner(ctx context.Context, creatorID uuid.UUID) ([]Record, error)
}

// sqlAdapter serves one stream from its owning subsystem's table. Each table
// keeps its own column names; the query aliases them to the Record shape.
type sqlAdapter struct {
	db     *sqlx.DB
	source Source
	query  string
}

func (a *sqlAdapter) Source() Source { return a.source }

func (a *sqlAdapter) ListByOwner(ctx context.Context, creatorID uuid.UUID) ([]Record, error) {
	rows := []Record{}
	if err := a.db.SelectContext(ctx, &rows, a.query, creatorID); err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Source = a.source
		rows[i].CreatorID = creatorID
	}
	return rows, nil
}

func NewTipAdapter(db *sqlx.DB) Adapter {
	return &sqlAdapter{db: db, source: SourceTip, query: `
		SELECT amount, created_at AS occurred_at
		FROM tips
		WHERE recipient_id = $1
	`}
}

func NewSubscriptionAdapter(db *sqlx.DB) Adapter {
	return &sqlAdapter{db: db, source: SourceSubscription, query: `
		SELECT price AS amount, created_at AS occurred_at
		FROM platform_subscriptions
		WHERE creator_id = $1 AND status != 'refunded'
	`}
}

func NewReferralAdapter(db *sqlx.DB) Adapter {
	return &sqlAdapter{db: db, source: SourceReferral, query: `
		SELECT commission_earned AS amount, created_at AS occurred_at
		FROM referral_records
		WHERE creator_id = $1 AND status != 'inactive'
	`}
}

func NewAffiliateAdapter(db *sqlx.DB) Adapter {
	return &sqlAdapter{db: db, source: SourceAffiliate, query: `
		SELECT commission AS amount, created_at AS occurred_at
		FROM affiliate_sales
		WHERE creator_id = $1
	`}
}

func NewShopAdapter(db *sqlx.DB) Adapter {
	return &sqlAdapter{db: db, source: SourceShop, query: `
		SELECT net_amount AS amount, created_at AS occurred_at
		FROM shop_sales
		WHERE seller_id = $1 AND status = 'completed'
	`}
}

func NewBrandAdapter(db *sqlx.DB) Adapter {
	return &sqlAdapter{db: db, source: SourceBrand, query: `
		SELECT spend_amount AS amount, created_at AS occurred_at
		FROM brand_campaigns
		WHERE creator_id = $1 AND status != 'cancelled'
	`}
}

// DefaultAdapters wires all six streams in breakdown order.
func DefaultAdapters(db *sqlx.DB) []Adapter {
	return []Adapter{
		NewTipAdapter(db),
		NewSubscriptionAdapter(db),
		NewReferralAdapter(db),
		NewAffiliateAdapter(db),
		NewShopAdapter(db),
		NewBrandAdapter(db),
	}
}
