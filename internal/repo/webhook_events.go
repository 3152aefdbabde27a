// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the idempotency store over the
// webhook_events table: atomic insert-if-new keyed by payload hash, the
// processed/failed outcome transitions, and the operator-facing listing and
// aggregate queries.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alaaalzabargah/portal-admin/internal/domain"
)

// InsertWebhookEventIfNew attempts to record a newly delivered payload.
//
// The insert uses the storage layer's ON CONFLICT DO NOTHING primitive on
// the payload_hash unique index, not an application-level check-then-insert:
// concurrent duplicate deliveries racing each other still converge to
// exactly one row. When the hash already exists, the existing row is
// returned with isNew=false and nothing is written.
func InsertWebhookEventIfNew(ctx context.Context, db *gorm.DB, topic, payloadHash, resourceID string, raw []byte) (ev *domain.WebhookEvent, isNew bool, err error) {
	rec := &domain.WebhookEvent{
		ID:          uuid.NewString(),
		Topic:       topic,
		PayloadHash: payloadHash,
		RawPayload:  raw,
		Status:      domain.EventStatusReceived,
		ReceivedAt:  time.Now().UTC(),
	}
	if resourceID != "" {
		rec.ResourceID = &resourceID
	}

	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "payload_hash"}},
			DoNothing: true,
		}).
		Create(rec)
	if res.Error != nil {
		// Some drivers surface the conflict as an error instead of a zero
		// rows-affected result; fold both into the duplicate path.
		if !isUniqueViolation(res.Error) {
			return nil, false, res.Error
		}
		res.RowsAffected = 0
	}
	if res.RowsAffected == 0 {
		var existing domain.WebhookEvent
		if err := db.WithContext(ctx).
			Where("payload_hash = ?", payloadHash).
			First(&existing).Error; err != nil {
			return nil, false, err
		}
		return &existing, false, nil
	}
	return rec, true, nil
}

// MarkWebhookEventProcessed transitions the event with payloadHash to
// processed and stamps processed_at. The call is idempotent and tolerates a
// missing row without raising.
func MarkWebhookEventProcessed(ctx context.Context, db *gorm.DB, payloadHash string) error {
	now := time.Now().UTC()
	return db.WithContext(ctx).
		Model(&domain.WebhookEvent{}).
		Where("payload_hash = ?", payloadHash).
		Updates(map[string]any{
			"status":        domain.EventStatusProcessed,
			"error_message": nil,
			"processed_at":  now,
		}).Error
}

// MarkWebhookEventFailed transitions the event with payloadHash to failed,
// retaining errMsg for operator inspection. Idempotent; a missing row is not
// an error.
func MarkWebhookEventFailed(ctx context.Context, db *gorm.DB, payloadHash, errMsg string) error {
	now := time.Now().UTC()
	return db.WithContext(ctx).
		Model(&domain.WebhookEvent{}).
		Where("payload_hash = ?", payloadHash).
		Updates(map[string]any{
			"status":        domain.EventStatusFailed,
			"error_message": errMsg,
			"processed_at":  now,
		}).Error
}

// GetWebhookEventByHash fetches a single event by payload hash, returning
// ErrNotFound when absent.
func GetWebhookEventByHash(ctx context.Context, db *gorm.DB, payloadHash string) (*domain.WebhookEvent, error) {
	var rec domain.WebhookEvent
	err := db.WithContext(ctx).
		Where("payload_hash = ?", payloadHash).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// WebhookEventFilter narrows ListWebhookEvents and CountWebhookEvents to a
// status and/or topic. Empty fields match everything.
type WebhookEventFilter struct {
	Status string
	Topic  string
}

func (f WebhookEventFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Topic != "" {
		q = q.Where("topic = ?", f.Topic)
	}
	return q
}

// CountWebhookEvents returns the number of events matching the filter.
func CountWebhookEvents(ctx context.Context, db *gorm.DB, f WebhookEventFilter) (int64, error) {
	var total int64
	err := f.apply(db.WithContext(ctx).Model(&domain.WebhookEvent{})).
		Count(&total).Error
	return total, err
}

// ListWebhookEvents returns a page of events matching the filter, most
// recently received first. The caller computes offset and limit.
func ListWebhookEvents(ctx context.Context, db *gorm.DB, f WebhookEventFilter, offset, limit int) ([]domain.WebhookEvent, error) {
	var out []domain.WebhookEvent
	err := f.apply(db.WithContext(ctx)).
		Order("received_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// WebhookEventStats holds the aggregate counts external monitors poll to
// detect failed events without scanning the table.
type WebhookEventStats struct {
	Total          int64      `json:"total"`
	Received       int64      `json:"received"`
	Processed      int64      `json:"processed"`
	Failed         int64      `json:"failed"`
	LastReceivedAt *time.Time `json:"last_received_at,omitempty"`
}

// WebhookEventsStats returns per-status counts plus the most recent
// received_at. When the table is empty all counts are zero and
// LastReceivedAt is nil.
func WebhookEventsStats(ctx context.Context, db *gorm.DB) (*WebhookEventStats, error) {
	var stats WebhookEventStats

	type row struct {
		Status string
		N      int64
	}
	var rows []row
	if err := db.WithContext(ctx).
		Model(&domain.WebhookEvent{}).
		Select("status, count(*) as n").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.Total += r.N
		switch r.Status {
		case domain.EventStatusReceived:
			stats.Received = r.N
		case domain.EventStatusProcessed:
			stats.Processed = r.N
		case domain.EventStatusFailed:
			stats.Failed = r.N
		}
	}
	if stats.Total == 0 {
		return &stats, nil
	}

	// Latest received_at (avoid MAX() -> TEXT in SQLite).
	var last struct {
		ReceivedAt time.Time
	}
	if err := db.WithContext(ctx).
		Model(&domain.WebhookEvent{}).
		Select("received_at").
		Order("received_at DESC").
		Limit(1).
		Scan(&last).Error; err != nil {
		return nil, err
	}
	stats.LastReceivedAt = &last.ReceivedAt
	return &stats, nil
}
