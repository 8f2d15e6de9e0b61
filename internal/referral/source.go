package referral

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is a signup attributed to a creator's referral code, as reported by
// the external attribution source.
type Event struct {
	ID           string          `json:"id"`
	ReferredUser string          `json:"referred_user"`
	Volume       decimal.Decimal `json:"volume"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// AttributionSource lists signup events not yet seen locally. The cursor is
// the occurred_at of the newest known event; the source returns everything
// after it.
type AttributionSource interface {
	ListNewEventsSince(ctx context.Context, creatorID uuid.UUID, cursor time.Time) ([]Event, error)
}

type HTTPSource struct {
	baseURL string
	http    *http.Client
}

func NewHTTPSource(baseURL string, httpClient *http.Client) *HTTPSource {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPSource{baseURL: baseURL, http: httpClient}
}

func (s *HTTPSource) ListNewEventsSince(ctx context.Context, creatorID uuid.UUID, cursor time.Time) ([]Event, error) {
	q := url.Values{}
	q.Set("creator_id", creatorID.String())
	if !cursor.IsZero() {
		q.Set("since", cursor.UTC().Format(time.RFC3339Nano))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/events?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("attribution source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("attribution source: status %d", resp.StatusCode)
	}

	var events []Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("attribution source: bad response: %w", err)
	}
	return events, nil
}
