package cron

import (
	"net/http"

	"github.com/chainvoice/chainvoice/internal/logger"
	"github.com/chainvoice/chainvoice/internal/service"
	"github.com/gin-gonic/gin"
)

type BillingCronHandler struct {
	logger  *logger.Logger
	billing service.BillingService
}

func NewBillingCronHandler(logger *logger.Logger, billing service.BillingService) *BillingCronHandler {
	return &BillingCronHandler{
		logger:  logger,
		billing: billing,
	}
}

// EnforceBilling applies the subscription state machine to every
// non-cancelled company
func (h *BillingCronHandler) EnforceBilling(c *gin.Context) {
	h.logger.Infow("starting billing enforcement cron job")

	report, err := h.billing.EnforceAll(c.Request.Context())
	if err != nil {
		h.logger.Errorw("billing enforcement failed", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, report)
}
