package v1

import (
	"net/http"

	"github.com/chainvoice/chainvoice/internal/api/dto"
	ierr "github.com/chainvoice/chainvoice/internal/errors"
	"github.com/chainvoice/chainvoice/internal/logger"
	"github.com/chainvoice/chainvoice/internal/service"
	"github.com/gin-gonic/gin"
)

type LedgerHandler struct {
	issuance     service.IssuanceService
	verification service.VerificationService
	log          *logger.Logger
}

func NewLedgerHandler(
	issuance service.IssuanceService,
	verification service.VerificationService,
	log *logger.Logger,
) *LedgerHandler {
	return &LedgerHandler{
		issuance:     issuance,
		verification: verification,
		log:          log,
	}
}

// IssueDocument allocates the next sequential number for a draft and appends
// its chain entry. Repeating the call for an issued document returns the
// stored outcome.
func (h *LedgerHandler) IssueDocument(c *gin.Context) {
	resp, err := h.issuance.Issue(c.Request.Context(), c.Param("company_id"), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	status := http.StatusCreated
	if resp.Idempotent {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

// VerifyChain walks a chain segment and reports the first break, if any
func (h *LedgerHandler) VerifyChain(c *gin.Context) {
	var req dto.VerifyChainRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	resp, err := h.verification.Verify(c.Request.Context(), c.Param("company_id"), req.CounterKey, req.From, req.To)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
