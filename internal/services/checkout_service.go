// Package services – CheckoutService
//
// Handles the checkouts/create and checkouts/update topics. Both carry a
// full snapshot of the checkout session, so they share one code path:
// validate, link the customer, upsert the checkout by upstream id, and
// replace the item set wholesale.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/alaaalzabargah/portal-admin/internal/domain"
	"github.com/alaaalzabargah/portal-admin/internal/repo"
	"github.com/alaaalzabargah/portal-admin/internal/webhook"
)

// CheckoutService applies checkout webhook effects. The zero value is not
// usable; DB must be set.
type CheckoutService struct {
	// DB is the database handle used for all checkout operations.
	DB *gorm.DB
}

// HandleCheckout applies one checkouts/create or checkouts/update event.
//
// The operation is idempotent at the business-key level independently of the
// outer event dedup: replaying the same payload upserts the same checkout
// row and rewrites the identical item snapshot.
func (s *CheckoutService) HandleCheckout(ctx context.Context, topic string, p map[string]any) error {
	if err := webhook.ValidatePayload(topic, p); err != nil {
		return err
	}

	customerID, err := linkCustomer(ctx, s.DB, p)
	if err != nil {
		return err
	}

	co := &domain.Checkout{
		ExternalID:  webhook.Str(p["id"]),
		Token:       webhook.Str(p["token"]),
		CustomerID:  customerID,
		Email:       webhook.Str(p["email"]),
		Phone:       webhook.NormalizePhone(webhook.Str(p["phone"])),
		Currency:    webhook.Str(p["currency"]),
		CompletedAt: parseTime(p["completed_at"]),
	}
	if n, ok := webhook.MoneyMinor(p["subtotal_price"]); ok {
		co.SubtotalMinor = n
	}
	if n, ok := webhook.MoneyMinor(p["total_tax"]); ok {
		co.TaxMinor = n
	}
	co.ShippingMinor = webhook.ExtractShippingTotal(p)
	if n, ok := webhook.MoneyMinor(p["total_price"]); ok {
		co.TotalMinor = n
	}

	checkoutID, err := repo.UpsertCheckout(ctx, s.DB, co)
	if err != nil {
		return err
	}

	items := make([]domain.CheckoutItem, 0)
	for _, li := range webhook.ExtractLineItems(p) {
		items = append(items, domain.CheckoutItem{
			ProductName:    li.ProductName,
			VariantTitle:   li.VariantTitle,
			SKU:            li.SKU,
			Size:           li.Size,
			Color:          li.Color,
			Quantity:       li.Quantity,
			UnitPriceMinor: li.UnitPriceMinor,
		})
	}
	return repo.ReplaceCheckoutItems(ctx, s.DB, checkoutID, items)
}
