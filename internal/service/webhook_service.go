package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/procure_api/internal/models"
	"github.com/GTDGit/procure_api/internal/utils"
	"github.com/GTDGit/procure_api/pkg/webhookproxy"
)

// MaxWebhookAttempts is the initial delivery plus one attempt per retry interval.
const MaxWebhookAttempts = 6

// retryIntervals: 30s, 1m, 5m, 30m, 2h
var retryIntervals = []time.Duration{
	30 * time.Second,
	1 * time.Minute,
	5 * time.Minute,
	30 * time.Minute,
	2 * time.Hour,
}

const retryBatchSize = 50

// WebhookService forwards events to the configured third-party webhook,
// logging every attempt and scheduling retries for failures.
type WebhookService struct {
	webhookRepo WebhookStore
	sender      WebhookSender
	secret      string
	now         func() time.Time
}

// NewWebhookService constructs a WebhookService. A nil sender means no
// webhook is configured and Forward returns ErrWebhookNotConfigured.
func NewWebhookService(webhookRepo WebhookStore, sender WebhookSender, secret string) *WebhookService {
	return &WebhookService{
		webhookRepo: webhookRepo,
		sender:      sender,
		secret:      secret,
		now:         time.Now,
	}
}

type webhookEnvelope struct {
	Event       models.WebhookEvent `json:"event"`
	ReferenceID string              `json:"referenceId"`
	Data        json.RawMessage     `json:"data"`
	Timestamp   string              `json:"timestamp"`
}

// Forward wraps data in the event envelope, delivers it once and records the
// attempt. Delivery failure is not an error; it is reported on the returned
// row and retried by RetryPending.
func (s *WebhookService) Forward(ctx context.Context, event models.WebhookEvent, referenceID string, data json.RawMessage) (*models.WebhookDelivery, error) {
	if s.sender == nil {
		return nil, utils.ErrWebhookNotConfigured
	}
	if len(data) == 0 {
		data = json.RawMessage("null")
	}

	payload, err := json.Marshal(webhookEnvelope{
		Event:       event,
		ReferenceID: referenceID,
		Data:        data,
		Timestamp:   s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal webhook payload: %w", err)
	}

	d := &models.WebhookDelivery{
		Event:       event,
		ReferenceID: referenceID,
		Payload:     payload,
	}
	s.attempt(ctx, d)

	if err := s.webhookRepo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("store webhook delivery: %w", err)
	}
	return d, nil
}

// RetryPending re-sends due deliveries and returns how many were attempted.
func (s *WebhookService) RetryPending(ctx context.Context) (int, error) {
	if s.sender == nil {
		return 0, nil
	}

	pending, err := s.webhookRepo.GetPending(ctx, MaxWebhookAttempts, retryBatchSize)
	if err != nil {
		return 0, err
	}

	for i := range pending {
		d := &pending[i]
		s.attempt(ctx, d)
		if err := s.webhookRepo.Update(ctx, d); err != nil {
			log.Error().Err(err).Int("delivery_id", d.ID).Msg("failed to update webhook delivery")
		}
	}
	return len(pending), nil
}

// List returns a page of deliveries and the total count.
func (s *WebhookService) List(ctx context.Context, page, limit int) ([]models.WebhookDelivery, int, error) {
	_, limit, offset := pageOffset(page, limit)
	return s.webhookRepo.List(ctx, limit, offset)
}

// VerifyInbound checks the signature of a payload posted back by the
// third-party integration.
func (s *WebhookService) VerifyInbound(body []byte, signature string) error {
	if s.secret == "" {
		return utils.ErrWebhookNotConfigured
	}
	if !utils.VerifySignature(body, signature, s.secret) {
		return utils.ErrInvalidToken
	}
	return nil
}

// attempt sends d once and records the outcome on it.
func (s *WebhookService) attempt(ctx context.Context, d *models.WebhookDelivery) {
	d.Attempt++

	req := webhookproxy.Request{
		Event:     string(d.Event),
		Body:      d.Payload,
		Timestamp: s.now(),
	}
	if s.secret != "" {
		req.Signature = utils.SignaturePrefix + utils.GenerateSignature(d.Payload, s.secret)
	}

	res, err := s.sender.Send(ctx, req)
	d.HTTPStatus = nil
	d.ResponseBody = nil
	if res != nil {
		status := res.StatusCode
		d.HTTPStatus = &status
		if res.Body != "" {
			body := res.Body
			d.ResponseBody = &body
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		msg := err.Error()
		d.ResponseBody = &msg
	}

	d.IsDelivered = err == nil && res.Delivered()
	d.NextRetryAt = nil
	if !d.IsDelivered {
		d.NextRetryAt = s.nextRetryAt(d.Attempt)
	}

	ev := log.Info()
	if !d.IsDelivered {
		ev = log.Warn().Err(err)
	}
	ev.Str("event", string(d.Event)).
		Str("reference_id", d.ReferenceID).
		Int("attempt", d.Attempt).
		Bool("delivered", d.IsDelivered).
		Msg("Webhook delivery attempted")
}

// nextRetryAt returns when to retry after the given attempt number, or nil
// once the schedule is exhausted.
func (s *WebhookService) nextRetryAt(attempt int) *time.Time {
	if attempt < 1 || attempt > len(retryIntervals) || attempt >= MaxWebhookAttempts {
		return nil
	}
	next := s.now().Add(retryIntervals[attempt-1])
	return &next
}
