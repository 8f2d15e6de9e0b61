package payout

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"creatorpay/internal/ledger"
)

func setupHandlerRouter(svc *Service, creatorID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("creator_id", creatorID)
		c.Next()
	})

	h := NewHandler(svc)
	router.POST("/payouts", h.RequestPayout)
	router.GET("/payouts", h.ListPayouts)
	return router
}

func TestRequestPayoutHandler_DeficitResponse(t *testing.T) {
	creatorID := uuid.New()
	store := new(MockPayoutStore)
	ledgerStore := new(MockLedgerStore)
	balances := new(MockBalanceSource)
	proc := new(MockProcessor)

	ref := "acct_1"
	ledgerStore.On("GetOrCreate", mock.Anything, creatorID).Return(&ledger.CreatorLedger{
		CreatorID:           creatorID,
		ProcessorAccountRef: &ref,
	}, nil)
	balances.On("Balance", mock.Anything, creatorID).Return(&ledger.Balance{
		TotalEarnings:    dec("11.58"),
		AvailableBalance: dec("11.58"),
	}, nil)

	svc := NewService(store, ledgerStore, balances, proc, dec("10.00"), time.Second)
	router := setupHandlerRouter(svc, creatorID)

	body, _ := json.Marshal(map[string]string{"amount": "15.00"})
	req := httptest.NewRequest(http.MethodPost, "/payouts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "insufficient_balance", resp["error"])
	assert.Equal(t, "3.42", resp["deficit"])
	assert.Equal(t, "$3.42 more needed", resp["message"])
}

func TestRequestPayoutHandler_RejectsNonPositiveAmount(t *testing.T) {
	creatorID := uuid.New()
	svc := NewService(new(MockPayoutStore), new(MockLedgerStore), new(MockBalanceSource), new(MockProcessor), dec("10.00"), time.Second)
	router := setupHandlerRouter(svc, creatorID)

	body, _ := json.Marshal(map[string]string{"amount": "-5.00"})
	req := httptest.NewRequest(http.MethodPost, "/payouts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListPayoutsHandler(t *testing.T) {
	creatorID := uuid.New()
	store := new(MockPayoutStore)

	store.On("ListByCreator", mock.Anything, creatorID, 50, 0).Return([]Payout{
		{ID: uuid.New(), CreatorID: creatorID, Amount: decimal.RequireFromString("11.50"), Status: StatusCompleted},
	}, nil)

	svc := NewService(store, new(MockLedgerStore), new(MockBalanceSource), new(MockProcessor), dec("10.00"), time.Second)
	router := setupHandlerRouter(svc, creatorID)

	req := httptest.NewRequest(http.MethodGet, "/payouts", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var payouts []Payout
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payouts))
	require.Len(t, payouts, 1)
	assert.Equal(t, StatusCompleted, payouts[0].Status)
}
