package utils

import "errors"

// Common application errors used across services.
var (
	ErrVendorNotFound          = errors.New("VENDOR_NOT_FOUND")
	ErrMaterialRequestNotFound = errors.New("MATERIAL_REQUEST_NOT_FOUND")
	ErrMaterialRequestLocked   = errors.New("MATERIAL_REQUEST_LOCKED")
	ErrQuoteNotFound           = errors.New("QUOTE_NOT_FOUND")
	ErrQuotesUnavailable       = errors.New("QUOTES_UNAVAILABLE")
	ErrInvalidQuote            = errors.New("INVALID_QUOTE")
	ErrSessionNotFound         = errors.New("SESSION_NOT_FOUND")
	ErrSessionExpired          = errors.New("SESSION_EXPIRED")
	ErrInvalidTransition       = errors.New("INVALID_TRANSITION")
	ErrNoVendorsSelected       = errors.New("NO_VENDORS_SELECTED")
	ErrVendorNotSelected       = errors.New("VENDOR_NOT_SELECTED")
	ErrQuoteNotReceived        = errors.New("QUOTE_NOT_RECEIVED")
	ErrWebhookNotConfigured    = errors.New("WEBHOOK_NOT_CONFIGURED")
	ErrInvalidCredentials      = errors.New("INVALID_CREDENTIALS")
	ErrInvalidToken            = errors.New("INVALID_TOKEN")
)
