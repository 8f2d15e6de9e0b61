package ledger

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

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

func (h *Handler) GetEarningsSummary(c *gin.Context) {
	creatorID, ok := auth.GetCreatorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "creator not authenticated"})
		return
	}

	summary, err := h.service.Earnings(c.Request.Context(), creatorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load earnings"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *Handler) GetAvailableBalance(c *gin.Context) {
	creatorID, ok := auth.GetCreatorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "creator not authenticated"})
		return
	}

	balance, err := h.service.Balance(c.Request.Context(), creatorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load balance"})
		return
	}

	c.JSON(http.StatusOK, balance)
}

func (h *Handler) LinkProcessorAccount(c *gin.Context) {
	creatorID, ok := auth.GetCreatorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "creator not authenticated"})
		return
	}

	onboardingURL, err := h.service.LinkProcessorAccount(c.Request.Context(), creatorID)
	if err != nil {
		if errors.Is(err, processor.ErrUnavailable) {
			c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "payout processor unavailable, try again"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to create account link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"onboarding_url": onboardingURL})
}

func (h *Handler) TriggerMigration(c *gin.Context) {
	creatorID, ok := auth.GetCreatorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "creator not authenticated"})
		return
	}

	status, err := h.service.TriggerMigration(c.Request.Context(), creatorID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoPayoutDestination):
			c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: "link a payout account before migrating"})
		case errors.Is(err, ErrEarningsDegraded):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "earnings are partially unavailable, try again later"})
		case errors.Is(err, processor.ErrUnavailable):
			c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "migration failed, no funds were moved, try again"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to trigger migration"})
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"migration_status": status})
}
