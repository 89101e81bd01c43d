package cron

import (
	"net/http"

	"github.com/chainvoice/chainvoice/internal/logger"
	"github.com/chainvoice/chainvoice/internal/service"
	"github.com/gin-gonic/gin"
)

type IntegrityCronHandler struct {
	logger *logger.Logger
	sweep  service.SweepService
}

func NewIntegrityCronHandler(logger *logger.Logger, sweep service.SweepService) *IntegrityCronHandler {
	return &IntegrityCronHandler{
		logger: logger,
		sweep:  sweep,
	}
}

// RunIntegritySweep verifies the trailing window of every chain of every
// billable company and raises alerts for breaks
func (h *IntegrityCronHandler) RunIntegritySweep(c *gin.Context) {
	h.logger.Infow("starting integrity sweep cron job")

	report, err := h.sweep.Run(c.Request.Context())
	if err != nil {
		h.logger.Errorw("integrity sweep failed", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, report)
}
