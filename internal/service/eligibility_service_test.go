package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/procure_api/internal/eligibility"
)

func TestEligibilityService_Check(t *testing.T) {
	mailer := &recordingMailer{}
	svc := NewEligibilityService(mailer)

	res, err := svc.Check(context.Background(), eligibility.Request{
		BusinessName: "Acme Builders",
		PAN:          "abcde1234f",
		GSTIN:        "22AAAAA0000A1Z5",
		Turnover:     eligibility.Number{Set: true, Value: 6000000},
		Years:        eligibility.Number{Set: true, Value: 4},
		Email:        "owner@acme.in",
	})
	require.NoError(t, err)
	assert.True(t, res.Eligible)
	assert.Equal(t, int64(1260000), res.CreditLimit)
	assert.Equal(t, 14, res.APR)

	svc.Wait()
	assert.Equal(t, []string{"owner@acme.in"}, mailer.eligibility)
}

func TestEligibilityService_CheckRejectsInvalid(t *testing.T) {
	mailer := &recordingMailer{}
	svc := NewEligibilityService(mailer)

	_, err := svc.Check(context.Background(), eligibility.Request{
		BusinessName: "Acme Builders",
		PAN:          "ABCDE1234F",
		Turnover:     eligibility.Number{Set: true, Value: 0},
		Years:        eligibility.Number{Set: true, Value: 4},
		Email:        "owner@acme.in",
	})
	assert.ErrorIs(t, err, eligibility.ErrInvalidTurnover)

	svc.Wait()
	assert.Empty(t, mailer.eligibility)
}

func TestEmailDomain(t *testing.T) {
	assert.Equal(t, "acme.in", emailDomain("a@b@acme.in"))
	assert.Equal(t, "", emailDomain("nobody"))
}
