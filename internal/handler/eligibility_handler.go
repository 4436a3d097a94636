package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/procure_api/internal/eligibility"
	"github.com/GTDGit/procure_api/internal/service"
)

// EligibilityHandler serves the credit eligibility check. Its responses keep
// the bare {eligible,...} / {error} shape the marketing site already reads,
// not the standard envelope.
type EligibilityHandler struct {
	eligibilityService *service.EligibilityService
}

// NewEligibilityHandler constructs an EligibilityHandler.
func NewEligibilityHandler(eligibilityService *service.EligibilityService) *EligibilityHandler {
	return &EligibilityHandler{eligibilityService: eligibilityService}
}

// Check handles POST /v1/eligibility/check
func (h *EligibilityHandler) Check(c *gin.Context) {
	var req eligibility.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	res, err := h.eligibilityService.Check(c.Request.Context(), req)
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Msg("eligibility check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, res)
}

func isValidationError(err error) bool {
	for _, target := range []error{
		eligibility.ErrMissingFields,
		eligibility.ErrInvalidPAN,
		eligibility.ErrInvalidTurnover,
		eligibility.ErrInvalidYears,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
