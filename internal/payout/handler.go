package payout

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"creatorpay/internal/api"
	"creatorpay/internal/auth"
	"creatorpay/internal/processor"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type RequestPayoutRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

func (h *Handler) RequestPayout(c *gin.Context) {
	creatorID, ok := auth.GetCreatorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "creator not authenticated"})
		return
	}

	var req RequestPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "amount must be positive"})
		return
	}

	p, err := h.service.RequestPayout(c.Request.Context(), creatorID, req.Amount)
	if err != nil {
		var deficit *DeficitError
		switch {
		case errors.Is(err, ErrNoPayoutDestination):
			c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: "link a payout account before withdrawing"})
		case errors.As(err, &deficit):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   deficit.Reason,
				"deficit": deficit.Deficit.StringFixed(2),
				"message": "$" + deficit.Deficit.StringFixed(2) + " more needed",
			})
		case errors.Is(err, processor.ErrUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{
				"error":  "payout failed, no funds were moved, try again",
				"payout": p,
			})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to request payout"})
		}
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *Handler) ListPayouts(c *gin.Context) {
	creatorID, ok := auth.GetCreatorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "creator not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	payouts, err := h.service.History(c.Request.Context(), creatorID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load payouts"})
		return
	}

	c.JSON(http.StatusOK, payouts)
}
