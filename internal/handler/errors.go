package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/procure_api/internal/utils"
)

type errorMapping struct {
	err     error
	status  int
	message string
	// detail echoes the wrapped error text, which carries validation detail.
	detail bool
}

var errorMappings = []errorMapping{
	{err: utils.ErrVendorNotFound, status: http.StatusNotFound, message: "Vendor not found"},
	{err: utils.ErrMaterialRequestNotFound, status: http.StatusNotFound, message: "Material request not found"},
	{err: utils.ErrMaterialRequestLocked, status: http.StatusConflict, message: "Material request can no longer be changed"},
	{err: utils.ErrQuoteNotFound, status: http.StatusNotFound, message: "Quote not found"},
	{err: utils.ErrInvalidQuote, status: http.StatusBadRequest, detail: true},
	{err: utils.ErrQuotesUnavailable, status: http.StatusServiceUnavailable, message: "Quotes are temporarily unavailable"},
	{err: utils.ErrSessionNotFound, status: http.StatusNotFound, message: "Session not found"},
	{err: utils.ErrSessionExpired, status: http.StatusGone, message: "Session has expired"},
	{err: utils.ErrInvalidTransition, status: http.StatusConflict, detail: true},
	{err: utils.ErrNoVendorsSelected, status: http.StatusBadRequest, message: "Select at least one vendor"},
	{err: utils.ErrVendorNotSelected, status: http.StatusBadRequest, message: "Vendor was not selected for this session"},
	{err: utils.ErrQuoteNotReceived, status: http.StatusConflict, message: "Vendor has not submitted a quote yet"},
	{err: utils.ErrWebhookNotConfigured, status: http.StatusServiceUnavailable, message: "Webhook is not configured"},
	{err: utils.ErrInvalidCredentials, status: http.StatusUnauthorized, message: "Invalid email or password"},
	{err: utils.ErrInvalidToken, status: http.StatusUnauthorized, message: "Invalid signature or token"},
}

// respondError maps known errors to their status and API code. Anything else
// is logged and answered with 500 using fallback as the message.
func respondError(c *gin.Context, err error, fallback string) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}
		msg := m.message
		if m.detail {
			msg = err.Error()
		}
		utils.Error(c, m.status, m.err.Error(), msg)
		return
	}

	log.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
	utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
}
