package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/procure_api/internal/eligibility"
	"github.com/GTDGit/procure_api/internal/notify"
)

// EligibilityService validates and scores credit eligibility requests.
type EligibilityService struct {
	notifier notify.Notifier
	wg       sync.WaitGroup
}

// NewEligibilityService constructs an EligibilityService.
func NewEligibilityService(notifier notify.Notifier) *EligibilityService {
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	return &EligibilityService{notifier: notifier}
}

// Check validates req and evaluates it. Validation errors are returned as
// the eligibility package's sentinels. The result email is sent in the
// background and never affects the response.
func (s *EligibilityService) Check(ctx context.Context, req eligibility.Request) (eligibility.Result, error) {
	profile, err := eligibility.Validate(req)
	if err != nil {
		log.Debug().Err(err).Msg("eligibility request rejected")
		return eligibility.Result{}, err
	}

	res := eligibility.Evaluate(profile)

	log.Info().
		Str("business_name", profile.BusinessName).
		Str("email_domain", emailDomain(profile.Email)).
		Bool("gstin", profile.GSTIN != nil).
		Bool("gstin_valid", profile.GSTIN != nil && profile.GSTIN.Valid()).
		Bool("eligible", res.Eligible).
		Int64("credit_limit", res.CreditLimit).
		Int("apr", res.APR).
		Msg("Eligibility evaluated")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		mailCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.notifier.EligibilityChecked(mailCtx, profile.Email, profile.BusinessName, res); err != nil {
			log.Warn().Err(err).Str("email_domain", emailDomain(profile.Email)).Msg("failed to send eligibility email")
		}
	}()

	return res, nil
}

// Wait blocks until background emails have finished.
func (s *EligibilityService) Wait() {
	s.wg.Wait()
}

func emailDomain(email string) string {
	if i := strings.LastIndex(email, "@"); i >= 0 {
		return email[i+1:]
	}
	return ""
}
