package eligibility

import (
	"errors"
	"regexp"
	"strings"
)

// Validation failures. All are recoverable by correcting the input.
var (
	ErrMissingFields   = errors.New("Missing required fields: businessName, pan, turnover, years and email are required")
	ErrInvalidPAN      = errors.New("Invalid PAN format. Expected 5 letters, 4 digits and 1 letter (e.g. ABCDE1234F)")
	ErrInvalidTurnover = errors.New("Annual turnover must be a positive number")
	ErrInvalidYears    = errors.New("Years in business must be zero or a positive number")
)

var panPattern = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]{1}$`)

// Request is the raw eligibility form as posted by clients.
type Request struct {
	BusinessName string `json:"businessName"`
	PAN          string `json:"pan"`
	GSTIN        string `json:"gstin"`
	Turnover     Number `json:"turnover"`
	Years        Number `json:"years"`
	Email        string `json:"email"`
}

// Profile is a validated business profile ready for Evaluate.
type Profile struct {
	BusinessName string
	PAN          string
	GSTIN        *GSTIN
	Turnover     float64
	Years        float64
	Email        string
}

// Validate checks req and returns the normalized Profile. Checks run in a
// fixed order so the first failing rule determines the error.
func Validate(req Request) (Profile, error) {
	if strings.TrimSpace(req.BusinessName) == "" ||
		req.PAN == "" ||
		strings.TrimSpace(req.Email) == "" ||
		!req.Turnover.Set ||
		!req.Years.Set {
		return Profile{}, ErrMissingFields
	}

	// Only case is normalized; surrounding whitespace fails the pattern.
	pan := strings.ToUpper(req.PAN)
	if !panPattern.MatchString(pan) {
		return Profile{}, ErrInvalidPAN
	}

	if !req.Turnover.Finite() || req.Turnover.Value <= 0 {
		return Profile{}, ErrInvalidTurnover
	}

	if !req.Years.Finite() || req.Years.Value < 0 {
		return Profile{}, ErrInvalidYears
	}

	profile := Profile{
		BusinessName: strings.TrimSpace(req.BusinessName),
		PAN:          pan,
		Turnover:     req.Turnover.Value,
		Years:        req.Years.Value,
		Email:        strings.TrimSpace(req.Email),
	}

	if gstin, present := ParseGSTIN(req.GSTIN); present {
		profile.GSTIN = &gstin
	}

	return profile, nil
}
