package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/ai-ready-data/internal/billing"
	"github.com/feichai0017/ai-ready-data/internal/models"
	"github.com/feichai0017/ai-ready-data/pkg/logger"
)

type AdminHandler struct {
	meter  *billing.Meter
	logger logger.Logger
}

type createAccountRequest struct {
	Plan models.Plan `json:"plan" binding:"required"`
}

type setPlanRequest struct {
	Plan models.Plan `json:"plan" binding:"required"`
}

func NewAdminHandler(meter *billing.Meter, logger logger.Logger) *AdminHandler {
	return &AdminHandler{
		meter:  meter,
		logger: logger,
	}
}

// CreateAccount provisions a new credential on the requested plan and
// returns the generated API key. The key is only shown once.
func (h *AdminHandler) CreateAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "ConfigurationError",
			Message: "plan is required",
		})
		return
	}

	account, err := h.meter.CreateAccount(c.Request.Context(), req.Plan)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.logger.Info("Account created",
		logger.String("credentialId", account.CredentialID),
		logger.String("plan", string(account.Plan)),
	)

	c.JSON(http.StatusCreated, gin.H{
		"api_key": account.CredentialID,
		"plan":    account.Plan,
		"limit":   account.Limit,
	})
}

// SetPlan moves an existing credential to a different plan. Recorded usage
// is kept; only the limit changes.
func (h *AdminHandler) SetPlan(c *gin.Context) {
	credentialID := c.Param("credentialId")
	if credentialID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "ConfigurationError",
			Message: "credential ID is required",
		})
		return
	}

	var req setPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "ConfigurationError",
			Message: "plan is required",
		})
		return
	}

	account, err := h.meter.SetPlan(c.Request.Context(), credentialID, req.Plan)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.logger.Info("Plan changed",
		logger.String("credentialId", credentialID),
		logger.String("plan", string(account.Plan)),
	)

	c.JSON(http.StatusOK, gin.H{
		"credential_id": account.CredentialID,
		"plan":          account.Plan,
		"limit":         account.Limit,
		"usage":         account.Usage,
	})
}

// GetAccount exposes one account's state to operators.
func (h *AdminHandler) GetAccount(c *gin.Context) {
	credentialID := c.Param("credentialId")
	if credentialID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "ConfigurationError",
			Message: "credential ID is required",
		})
		return
	}

	account, err := h.meter.Account(c.Request.Context(), credentialID)
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
