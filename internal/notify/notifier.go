// Package notify sends customer-facing emails.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/GTDGit/procure_api/internal/eligibility"
	"github.com/GTDGit/procure_api/internal/models"
)

// Notifier is the interface services use to email customers.
type Notifier interface {
	EligibilityChecked(ctx context.Context, to, businessName string, res eligibility.Result) error
	OrderPlaced(ctx context.Context, mr *models.MaterialRequest, vendor *models.Vendor) error
}

// SESAPI is the subset of the SES client used here.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESNotifier sends mail through Amazon SES.
type SESNotifier struct {
	client SESAPI
	from   string
}

// NewSESNotifier loads AWS credentials from the environment and builds an SES client.
func NewSESNotifier(ctx context.Context, region, from string) (*SESNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSESNotifierWithClient(ses.NewFromConfig(cfg), from), nil
}

// NewSESNotifierWithClient wraps an existing SES client.
func NewSESNotifierWithClient(client SESAPI, from string) *SESNotifier {
	return &SESNotifier{client: client, from: from}
}

func (n *SESNotifier) EligibilityChecked(ctx context.Context, to, businessName string, res eligibility.Result) error {
	subject, body := eligibilityEmail(businessName, res)
	return n.send(ctx, to, subject, body)
}

func (n *SESNotifier) OrderPlaced(ctx context.Context, mr *models.MaterialRequest, vendor *models.Vendor) error {
	subject, body := orderEmail(mr, vendor)
	return n.send(ctx, mr.CustomerEmail, subject, body)
}

func (n *SESNotifier) send(ctx context.Context, to, subject, body string) error {
	_, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.from),
	})
	if err != nil {
		return fmt.Errorf("ses send email: %w", err)
	}
	return nil
}

func eligibilityEmail(businessName string, res eligibility.Result) (string, string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", businessName)
	if !res.Eligible {
		fmt.Fprintf(&b, "We could not offer a credit line right now: %s.\n\n%s\n", res.Reason(), res.Suggestion)
		return "Your credit eligibility result", b.String()
	}
	fmt.Fprintf(&b, "Good news! You are eligible for a credit line of up to ₹%d at %d%% APR.\n\n%s\n",
		res.CreditLimit, res.APR, res.Message)
	return "You are eligible for a credit line", b.String()
}

func orderEmail(mr *models.MaterialRequest, vendor *models.Vendor) (string, string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", mr.CustomerName)
	fmt.Fprintf(&b, "Your order %s has been placed with %s (%s).\n\n", mr.ReferenceNo, vendor.Name, vendor.Location)
	for _, it := range mr.Items {
		fmt.Fprintf(&b, "- %s x %d %s\n", it.MaterialName, it.Quantity, it.Unit)
	}
	b.WriteString("\nThe vendor will contact you to confirm delivery.\n")
	return fmt.Sprintf("Order %s placed", mr.ReferenceNo), b.String()
}

// NopNotifier is used when mail is not configured.
type NopNotifier struct{}

func (NopNotifier) EligibilityChecked(ctx context.Context, to, businessName string, res eligibility.Result) error {
	return nil
}

func (NopNotifier) OrderPlaced(ctx context.Context, mr *models.MaterialRequest, vendor *models.Vendor) error {
	return nil
}
