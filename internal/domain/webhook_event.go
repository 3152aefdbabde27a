// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import "time"

// Webhook event processing statuses. A row is created as received and moved
// exactly once to processed or failed by the endpoint that owns it.
const (
	EventStatusReceived  = "received"
	EventStatusProcessed = "processed"
	EventStatusFailed    = "failed"
)

// WebhookEvent is the idempotency record for one delivered webhook payload,
// keyed by the SHA-256 hash of the raw request body. The unique index on
// PayloadHash is what makes duplicate suppression safe under concurrent
// redelivery: two racing inserts of the same payload converge on one row at
// the storage layer, not in application code.
//
// Rows are never deleted by the pipeline; failed rows retain ErrorMessage
// for operator inspection.
type WebhookEvent struct {
	ID           string     `json:"id"            gorm:"type:char(36);primaryKey"`
	Topic        string     `json:"topic"         gorm:"type:varchar(64);not null;index:idx_webhook_events_topic"`
	PayloadHash  string     `json:"payload_hash"  gorm:"type:char(64);not null;uniqueIndex:ux_webhook_events_payload_hash"`
	ResourceID   *string    `json:"resource_id"   gorm:"type:varchar(64);index"`
	RawPayload   []byte     `json:"-"             gorm:"type:blob"`
	Status       string     `json:"status"        gorm:"type:varchar(16);not null;default:'received';index:idx_webhook_events_status"`
	ErrorMessage *string    `json:"error_message,omitempty" gorm:"type:text"`
	ReceivedAt   time.Time  `json:"received_at"   gorm:"not null;index"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
}

// TableName implements the GORM tabler interface.
func (WebhookEvent) TableName() string { return "webhook_events" }
