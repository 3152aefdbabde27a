// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides refund inserts (dup-safe on the
// upstream refund id) and the append-only order timeline.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alaaalzabargah/portal-admin/internal/domain"
)

// InsertRefund records a refund keyed by its upstream external id. A
// redelivered refund webhook hits the unique index and is silently absorbed:
// the return value reports whether a new row was written.
func InsertRefund(ctx context.Context, db *gorm.DB, r *domain.Refund) (bool, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoNothing: true,
		}).
		Create(r)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// InsertOrderEvent appends one entry to an order's timeline. Pure append;
// the pipeline never updates or deletes timeline rows.
func InsertOrderEvent(ctx context.Context, db *gorm.DB, ev *domain.OrderEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	ev.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(ev).Error
}

// ListOrderEvents returns an order's timeline in occurrence order, oldest
// first, keyed by the order's upstream external id.
func ListOrderEvents(ctx context.Context, db *gorm.DB, orderExternalID string) ([]domain.OrderEvent, error) {
	var out []domain.OrderEvent
	err := db.WithContext(ctx).
		Where("order_external_id = ?", orderExternalID).
		Order("occurred_at").
		Find(&out).Error
	return out, err
}
