// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides checkout persistence: upsert by
// upstream external id and wholesale replacement of checkout items.
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

// checkoutUpdateColumns are the columns refreshed when a checkout external
// id collides with an existing row. The surrogate primary key and created_at
// are deliberately excluded so replays keep the original identity.
var checkoutUpdateColumns = []string{
	"token", "customer_id", "email", "phone", "currency",
	"subtotal_minor", "tax_minor", "shipping_minor", "total_minor",
	"completed_at", "updated_at",
}

// UpsertCheckout inserts or updates a checkout keyed by its upstream
// external id and returns the surviving row's primary key. Replaying the
// same checkout webhook twice updates one row rather than duplicating it.
func UpsertCheckout(ctx context.Context, db *gorm.DB, co *domain.Checkout) (string, error) {
	if co.ID == "" {
		co.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if co.CreatedAt.IsZero() {
		co.CreatedAt = now
	}
	co.UpdatedAt = now

	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns(checkoutUpdateColumns),
		}).
		Create(co).Error
	if err != nil {
		return "", err
	}
	// On the conflict path the generated ID was discarded; read back the
	// winning row's key so children attach to the right parent.
	var row domain.Checkout
	if err := db.WithContext(ctx).Select("id").
		Where("external_id = ?", co.ExternalID).
		First(&row).Error; err != nil {
		return "", err
	}
	co.ID = row.ID
	return row.ID, nil
}

// GetCheckoutByExternalID fetches a checkout by upstream id, returning
// ErrNotFound when absent.
func GetCheckoutByExternalID(ctx context.Context, db *gorm.DB, externalID string) (*domain.Checkout, error) {
	var co domain.Checkout
	err := db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&co).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &co, nil
}

// ReplaceCheckoutItems transactionally deletes the checkout's existing items
// and inserts the new snapshot. Correct because the upstream always sends
// the full item list, never deltas; an empty snapshot clears the children.
func ReplaceCheckoutItems(ctx context.Context, db *gorm.DB, checkoutID string, items []domain.CheckoutItem) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("checkout_id = ?", checkoutID).
			Delete(&domain.CheckoutItem{}).Error; err != nil {
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
			items[i].CheckoutID = checkoutID
			items[i].CreatedAt = now
		}
		return tx.Create(&items).Error
	})
}

// ListCheckoutItems returns the current item snapshot for a checkout.
func ListCheckoutItems(ctx context.Context, db *gorm.DB, checkoutID string) ([]domain.CheckoutItem, error) {
	var out []domain.CheckoutItem
	err := db.WithContext(ctx).
		Where("checkout_id = ?", checkoutID).
		Order("created_at").
		Find(&out).Error
	return out, err
}
