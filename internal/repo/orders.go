// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides order persistence: upsert by upstream
// external id, wholesale item replacement, and the narrow paid/cancelled
// status transitions used by partial-payload webhooks.
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

// orderUpdateColumns are the columns refreshed when an order external id
// collides with an existing row.
var orderUpdateColumns = []string{
	"number", "source_name", "status", "financial_status", "fulfillment_status",
	"currency", "subtotal_minor", "tax_minor", "shipping_minor", "paid_minor",
	"total_minor", "shipping_address", "note", "customer_id", "updated_at",
}

// UpsertOrder inserts or updates an order keyed by its upstream external id
// and returns the surviving row's primary key.
func UpsertOrder(ctx context.Context, db *gorm.DB, o *domain.Order) (string, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns(orderUpdateColumns),
		}).
		Create(o).Error
	if err != nil {
		return "", err
	}
	var row domain.Order
	if err := db.WithContext(ctx).Select("id").
		Where("external_id = ?", o.ExternalID).
		First(&row).Error; err != nil {
		return "", err
	}
	o.ID = row.ID
	return row.ID, nil
}

// GetOrderByExternalID fetches an order by upstream id, returning
// ErrNotFound when absent.
func GetOrderByExternalID(ctx context.Context, db *gorm.DB, externalID string) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ReplaceOrderItems transactionally deletes the order's existing items and
// inserts the new snapshot (the upstream sends full item lists, not deltas).
func ReplaceOrderItems(ctx context.Context, db *gorm.DB, orderID string, items []domain.OrderItem) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).
			Delete(&domain.OrderItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		now := time.Now().UTC()
		for i := range items {
			if items[i].ID == "" {
				items[i].ID = uuid.NewString()
			}
			items[i].OrderID = orderID
			items[i].CreatedAt = now
		}
		return tx.Create(&items).Error
	})
}

// ListOrderItems returns the current item snapshot for an order.
func ListOrderItems(ctx context.Context, db *gorm.DB, orderID string) ([]domain.OrderItem, error) {
	var out []domain.OrderItem
	err := db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at").
		Find(&out).Error
	return out, err
}

// MarkOrderPaid records payment on the order with the given upstream id:
// financial status, paid amount, and paid_at. It deliberately touches
// nothing else, because orders/paid payloads are partial and a full rebuild
// could regress data written by a later orders/updated event. Returns
// ErrNotFound when no order row matches.
func MarkOrderPaid(ctx context.Context, db *gorm.DB, externalID string, paidMinor int64, paidAt time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("external_id = ?", externalID).
		Updates(map[string]any{
			"financial_status": "paid",
			"paid_minor":       paidMinor,
			"paid_at":          paidAt,
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkOrderCancelled transitions the order with the given upstream id to
// cancelled, stamping cancelled_at. Same narrow-update semantics as
// MarkOrderPaid; returns ErrNotFound when no row matches.
func MarkOrderCancelled(ctx context.Context, db *gorm.DB, externalID string, cancelledAt time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("external_id = ?", externalID).
		Updates(map[string]any{
			"status":       "cancelled",
			"cancelled_at": cancelledAt,
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
