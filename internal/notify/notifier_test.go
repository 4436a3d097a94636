package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/procure_api/internal/eligibility"
	"github.com/GTDGit/procure_api/internal/models"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESNotifier_EligibilityChecked(t *testing.T) {
	fake := &fakeSES{}
	n := NewSESNotifierWithClient(fake, "noreply@example.com")

	res := eligibility.Result{Eligible: true, CreditLimit: 1260000, APR: 14, Message: eligibility.IndicativeMessage}
	require.NoError(t, n.EligibilityChecked(context.Background(), "a@b.com", "Acme", res))

	require.NotNil(t, fake.input)
	assert.Equal(t, []string{"a@b.com"}, fake.input.Destination.ToAddresses)
	assert.Equal(t, "noreply@example.com", aws.ToString(fake.input.Source))
	body := aws.ToString(fake.input.Message.Body.Text.Data)
	assert.Contains(t, body, "₹1260000")
	assert.Contains(t, body, "14% APR")
}

func TestSESNotifier_Ineligible(t *testing.T) {
	fake := &fakeSES{}
	n := NewSESNotifierWithClient(fake, "noreply@example.com")

	res := eligibility.Evaluate(eligibility.Profile{Turnover: 1000, Years: 1})
	require.NoError(t, n.EligibilityChecked(context.Background(), "a@b.com", "Acme", res))
	assert.Contains(t, aws.ToString(fake.input.Message.Body.Text.Data), "Minimum annual turnover")
}

func TestSESNotifier_OrderPlaced(t *testing.T) {
	fake := &fakeSES{err: errors.New("throttled")}
	n := NewSESNotifierWithClient(fake, "noreply@example.com")

	mr := &models.MaterialRequest{
		ReferenceNo:   "MR-20260101-ABCDEF",
		CustomerName:  "Acme",
		CustomerEmail: "buyer@acme.test",
		Items:         []models.MaterialRequestItem{{MaterialName: "Cement", Quantity: 10, Unit: "bags"}},
	}
	err := n.OrderPlaced(context.Background(), mr, &models.Vendor{Name: "Shree", Location: "Pune"})
	assert.ErrorContains(t, err, "throttled")
	assert.Equal(t, "Order MR-20260101-ABCDEF placed", aws.ToString(fake.input.Message.Subject.Data))
	assert.Contains(t, aws.ToString(fake.input.Message.Body.Text.Data), "- Cement x 10 bags")
}
