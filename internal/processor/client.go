package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"creatorpay/internal/logger"
)

// ErrUnavailable covers every failure mode of the external payout processor:
// transport errors, timeouts, non-2xx responses and explicit rejections. The
// caller treats all of them the same way, as a retryable terminal failure.
var ErrUnavailable = errors.New("payout processor unavailable")

type AccountLink struct {
	AccountRef    string `json:"account_ref"`
	OnboardingURL string `json:"onboarding_url"`
}

type MigrateResult struct {
	Success        bool            `json:"success"`
	MigratedAmount decimal.Decimal `json:"migrated_amount"`
}

type PayoutResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Client is the boundary to the external payout processor. The processor is a
// black box: it either acknowledges an operation or it does not.
type Client interface {
	CreateAccountLink(ctx context.Context, creatorID uuid.UUID) (*AccountLink, error)
	Migrate(ctx context.Context, accountRef string, amount decimal.Decimal) (*MigrateResult, error)
	Payout(ctx context.Context, accountRef string, amount decimal.Decimal) (*PayoutResult, error)
	GetBalance(ctx context.Context, accountRef string) (decimal.Decimal, error)
}

type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewHTTPClient(baseURL, apiKey string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    httpClient,
	}
}

func (c *HTTPClient) CreateAccountLink(ctx context.Context, creatorID uuid.UUID) (*AccountLink, error) {
	var link AccountLink
	err := c.post(ctx, "/v1/account_links", map[string]interface{}{
		"creator_id": creatorID.String(),
	}, &link)
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *HTTPClient) Migrate(ctx context.Context, accountRef string, amount decimal.Decimal) (*MigrateResult, error) {
	var res MigrateResult
	err := c.post(ctx, "/v1/migrations", map[string]interface{}{
		"account_ref": accountRef,
		"amount":      amount,
	}, &res)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, fmt.Errorf("%w: migration rejected", ErrUnavailable)
	}
	return &res, nil
}

func (c *HTTPClient) Payout(ctx context.Context, accountRef string, amount decimal.Decimal) (*PayoutResult, error) {
	var res PayoutResult
	err := c.post(ctx, "/v1/payouts", map[string]interface{}{
		"account_ref": accountRef,
		"amount":      amount,
	}, &res)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, res.Message)
	}
	return &res, nil
}

func (c *HTTPClient) GetBalance(ctx context.Context, accountRef string) (decimal.Decimal, error) {
	var res struct {
		Balance decimal.Decimal `json:"balance"`
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/accounts/"+accountRef+"/balance", nil)
	if err != nil {
		return decimal.Zero, err
	}
	if err := c.do(req, &res); err != nil {
		return decimal.Zero, err
	}
	return res.Balance, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out interface{}) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warnf("processor returned status %d for %s %s", resp.StatusCode, req.Method, req.URL.Path)
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: bad response: %v", ErrUnavailable, err)
	}
	return nil
}
