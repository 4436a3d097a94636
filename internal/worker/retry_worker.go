package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// WebhookRetrier is implemented by service.WebhookService.
type WebhookRetrier interface {
	RetryPending(ctx context.Context) (int, error)
}

// WebhookRetryWorker re-sends failed webhook deliveries periodically.
type WebhookRetryWorker struct {
	webhooks WebhookRetrier
	interval time.Duration
}

// NewWebhookRetryWorker constructs a WebhookRetryWorker.
func NewWebhookRetryWorker(webhooks WebhookRetrier, interval time.Duration) *WebhookRetryWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &WebhookRetryWorker{
		webhooks: webhooks,
		interval: interval,
	}
}

// Start begins the periodic retry loop until context is canceled.
func (w *WebhookRetryWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting webhook retry worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Webhook retry worker stopped")
			return
		}
	}
}

func (w *WebhookRetryWorker) run(ctx context.Context) {
	n, err := w.webhooks.RetryPending(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to retry webhook deliveries")
		return
	}
	if n > 0 {
		log.Info().Int("count", n).Msg("Retried webhook deliveries")
	}
}
