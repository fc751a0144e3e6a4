package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/ai-ready-data/api/middleware"
	"github.com/feichai0017/ai-ready-data/internal/billing"
	"github.com/feichai0017/ai-ready-data/internal/models"
	"github.com/feichai0017/ai-ready-data/pkg/logger"
)

type UsageHandler struct {
	meter  *billing.Meter
	logger logger.Logger
}

// UsageResponse reports the caller's consumption against their plan.
type UsageResponse struct {
	CredentialID string      `json:"credential_id"`
	Plan         models.Plan `json:"plan"`
	Usage        int64       `json:"usage"`
	Limit        int64       `json:"limit"`
	Remaining    int64       `json:"remaining"`
	Unlimited    bool        `json:"unlimited"`
}

func NewUsageHandler(meter *billing.Meter, logger logger.Logger) *UsageHandler {
	return &UsageHandler{
		meter:  meter,
		logger: logger,
	}
}

// GetUsage returns the authenticated caller's usage counters. Reading usage
// never consumes credits.
func (h *UsageHandler) GetUsage(c *gin.Context) {
	account, err := h.meter.Account(c.Request.Context(), middleware.Credential(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, UsageResponse{
		CredentialID: account.CredentialID,
		Plan:         account.Plan,
		Usage:        account.Usage,
		Limit:        account.Limit,
		Remaining:    account.Remaining(),
		Unlimited:    account.Unlimited(),
	})
}
