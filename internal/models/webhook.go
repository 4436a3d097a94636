package models

import (
	"encoding/json"
	"time"
)

// WebhookEvent names a payload forwarded to the third-party webhook.
type WebhookEvent string

const (
	WebhookQuoteRequested WebhookEvent = "quote.requested"
	WebhookOrderPlaced    WebhookEvent = "order.placed"
)

// WebhookDelivery stores outgoing webhook attempts.
type WebhookDelivery struct {
	ID           int             `db:"id" json:"id"`
	Event        WebhookEvent    `db:"event" json:"event"`
	ReferenceID  string          `db:"reference_id" json:"referenceId"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Attempt      int             `db:"attempt" json:"attempt"`
	HTTPStatus   *int            `db:"http_status" json:"httpStatus,omitempty"`
	ResponseBody *string         `db:"response_body" json:"responseBody,omitempty"`
	IsDelivered  bool            `db:"is_delivered" json:"isDelivered"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	NextRetryAt  *time.Time      `db:"next_retry_at" json:"nextRetryAt,omitempty"`
}
