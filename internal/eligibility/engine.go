// Package eligibility implements the indicative credit-line assessment offered
// to businesses during onboarding.
package eligibility

import (
	"encoding/json"
	"math"
	"strings"
)

const (
	MinTurnover       = 500000
	MinYears          = 0.5
	HighTurnover      = 5000000
	EstablishedYears  = 3
	MinCreditLimit    = 100000
	MaxCreditLimit    = 10000000
	MinAPR            = 12
	MaxAPR            = 28
	basePct           = 0.15
	minPct            = 0.12
	maxPct            = 0.22
	baseAPR           = 20
	reasonTurnover    = "Minimum annual turnover of ₹5,00,000 required"
	reasonYears       = "At least 6 months of operations required"
	IneligibleAdvice  = "You may qualify with a higher annual turnover, a longer operating history, or by adding your GST details."
	IndicativeMessage = "This is an indicative assessment. Final credit limit and APR are subject to document verification and underwriting."
)

// Result is the outcome of Evaluate. When Eligible is false only Reasons and
// Suggestion are meaningful; otherwise only CreditLimit, APR and Message.
type Result struct {
	Eligible    bool
	Reasons     []string
	Suggestion  string
	CreditLimit int64
	APR         int
	Message     string
}

// Reason joins all triggered reasons in evaluation order.
func (r Result) Reason() string {
	return strings.Join(r.Reasons, ". ")
}

// MarshalJSON renders the eligible or ineligible wire shape.
func (r Result) MarshalJSON() ([]byte, error) {
	if !r.Eligible {
		return json.Marshal(struct {
			Eligible   bool   `json:"eligible"`
			Reason     string `json:"reason"`
			Suggestion string `json:"suggestion"`
		}{false, r.Reason(), r.Suggestion})
	}
	return json.Marshal(struct {
		Eligible    bool   `json:"eligible"`
		CreditLimit int64  `json:"creditLimit"`
		APR         int    `json:"apr"`
		Message     string `json:"message"`
	}{true, r.CreditLimit, r.APR, r.Message})
}

// Evaluate maps a validated profile to an eligibility decision. It has no side
// effects and never fails.
func Evaluate(p Profile) Result {
	var reasons []string
	if p.Turnover < MinTurnover {
		reasons = append(reasons, reasonTurnover)
	}
	if p.Years < MinYears {
		reasons = append(reasons, reasonYears)
	}
	if len(reasons) > 0 {
		return Result{Reasons: reasons, Suggestion: IneligibleAdvice}
	}

	highTurnover := p.Turnover >= HighTurnover
	established := p.Years >= EstablishedYears
	gstBonus := p.GSTIN != nil && p.GSTIN.Qualifies()

	pct := basePct
	apr := float64(baseAPR)
	if highTurnover {
		pct += 0.03
		apr -= 3
	}
	if established {
		pct += 0.02
		apr -= 2
	}
	if gstBonus {
		pct += 0.01
		apr -= 1
	}
	pct = clampFloat(pct, minPct, maxPct)

	// Clamp before converting: huge turnovers would overflow int64.
	limit := int64(clampFloat(math.Round(p.Turnover*pct), MinCreditLimit, MaxCreditLimit))

	return Result{
		Eligible:    true,
		CreditLimit: limit,
		APR:         int(clampInt(int64(math.Round(apr)), MinAPR, MaxAPR)),
		Message:     IndicativeMessage,
	}
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
