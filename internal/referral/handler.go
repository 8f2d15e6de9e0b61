package referral

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"creatorpay/internal/api"
	"creatorpay/internal/auth"
	"creatorpay/internal/metrics"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) TriggerSync(c *gin.Context) {
	creatorID, ok := auth.GetCreatorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "creator not authenticated"})
		return
	}

	result, err := h.service.Sync(c.Request.Context(), creatorID)
	if err != nil {
		metrics.RecordReferralSync("manual", "error", 0)
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "referral sync failed, try again later"})
		return
	}

	metrics.RecordReferralSync("manual", "ok", result.NewRecordsFound)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) ListRecords(c *gin.Context) {
	creatorID, ok := auth.GetCreatorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "creator not authenticated"})
		return
	}

	records, err := h.service.store.ListByCreator(c.Request.Context(), creatorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load referrals"})
		return
	}

	c.JSON(http.StatusOK, records)
}
