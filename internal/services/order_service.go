// Package services – OrderService
//
// Handles the order topic family. orders/create and orders/updated carry
// full snapshots and rebuild the order row plus its item set; orders/paid
// and orders/cancelled carry partial payloads by the upstream's convention
// and therefore only touch the narrow status fields, never the whole row:
// rebuilding from a partial payload could regress data written by a later
// full-snapshot event that happened to arrive first.
package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/alaaalzabargah/portal-admin/internal/domain"
	"github.com/alaaalzabargah/portal-admin/internal/repo"
	"github.com/alaaalzabargah/portal-admin/internal/webhook"
)

// OrderService applies order webhook effects.
type OrderService struct {
	// DB is the database handle used for all order operations.
	DB *gorm.DB
}

// HandleOrderUpsert applies one orders/create or orders/updated event:
// customer linkage, full order upsert by upstream id, item snapshot
// replacement, and a timeline append.
func (s *OrderService) HandleOrderUpsert(ctx context.Context, topic string, p map[string]any) error {
	if err := webhook.ValidatePayload(topic, p); err != nil {
		return err
	}

	customerID, err := linkCustomer(ctx, s.DB, p)
	if err != nil {
		return err
	}

	o := &domain.Order{
		ExternalID:        webhook.Str(p["id"]),
		Number:            webhook.Str(p["order_number"]),
		SourceName:        webhook.Str(p["source_name"]),
		Status:            "open",
		FinancialStatus:   webhook.Str(p["financial_status"]),
		FulfillmentStatus: webhook.Str(p["fulfillment_status"]),
		Currency:          webhook.Str(p["currency"]),
		ShippingAddress:   formatAddress(p["shipping_address"]),
		Note:              webhook.Str(p["note"]),
		CustomerID:        customerID,
	}
	if o.Number == "" {
		o.Number = webhook.Str(p["name"])
	}
	if webhook.Str(p["cancelled_at"]) != "" {
		o.Status = "cancelled"
		o.CancelledAt = parseTime(p["cancelled_at"])
	}
	if n, ok := webhook.MoneyMinor(p["subtotal_price"]); ok {
		o.SubtotalMinor = n
	}
	if n, ok := webhook.MoneyMinor(p["total_tax"]); ok {
		o.TaxMinor = n
	}
	o.ShippingMinor = webhook.ExtractShippingTotal(p)
	if n, ok := webhook.MoneyMinor(p["total_price"]); ok {
		o.TotalMinor = n
	}
	if o.FinancialStatus == "paid" {
		o.PaidMinor = o.TotalMinor
		o.PaidAt = parseTime(p["processed_at"])
	}

	orderID, err := repo.UpsertOrder(ctx, s.DB, o)
	if err != nil {
		return err
	}

	items := make([]domain.OrderItem, 0)
	for _, li := range webhook.ExtractLineItems(p) {
		it := domain.OrderItem{
			ProductName:    li.ProductName,
			VariantTitle:   li.VariantTitle,
			SKU:            li.SKU,
			Size:           li.Size,
			Color:          li.Color,
			Quantity:       li.Quantity,
			UnitPriceMinor: li.UnitPriceMinor,
		}
		if li.Measurement != "" {
			m := li.Measurement
			it.Measurement = &m
		}
		items = append(items, it)
	}
	if err := repo.ReplaceOrderItems(ctx, s.DB, orderID, items); err != nil {
		return err
	}

	eventType := "order_created"
	if topic == "orders/updated" {
		eventType = "order_updated"
	}
	return repo.InsertOrderEvent(ctx, s.DB, &domain.OrderEvent{
		OrderExternalID: o.ExternalID,
		EventType:       eventType,
		Topic:           topic,
		Metadata:        metadataJSON(map[string]any{"total_minor": o.TotalMinor, "currency": o.Currency}),
		OccurredAt:      timeOrNow(parseTime(p["updated_at"])),
	})
}

// HandleOrderPaid applies one orders/paid event as a narrow field update.
//
// When the order row does not exist yet (the paid event outran
// orders/create), the update is skipped with a warning but the timeline
// entry is still appended — OrderEvent is keyed by the upstream id rather
// than a foreign key, so the payment signal is durably recorded and a later
// snapshot replay can converge the order row.
func (s *OrderService) HandleOrderPaid(ctx context.Context, topic string, p map[string]any) error {
	if err := webhook.ValidatePayload(topic, p); err != nil {
		return err
	}
	externalID := webhook.Str(p["id"])

	var paid int64
	if n, ok := webhook.MoneyMinor(p["total_price"]); ok {
		paid = n
	}
	paidAt := timeOrNow(parseTime(p["processed_at"]))

	if err := repo.MarkOrderPaid(ctx, s.DB, externalID, paid, paidAt); err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		log.Warn().
			Str("topic", topic).
			Str("order_external_id", externalID).
			Msg("paid event for unknown order, recording timeline only")
	}

	return repo.InsertOrderEvent(ctx, s.DB, &domain.OrderEvent{
		OrderExternalID: externalID,
		EventType:       "order_paid",
		Topic:           topic,
		Metadata:        metadataJSON(map[string]any{"paid_minor": paid}),
		OccurredAt:      paidAt,
	})
}

// HandleOrderCancelled applies one orders/cancelled event. Same
// narrow-update and out-of-order semantics as HandleOrderPaid.
func (s *OrderService) HandleOrderCancelled(ctx context.Context, topic string, p map[string]any) error {
	if err := webhook.ValidatePayload(topic, p); err != nil {
		return err
	}
	externalID := webhook.Str(p["id"])
	cancelledAt := timeOrNow(parseTime(p["cancelled_at"]))

	if err := repo.MarkOrderCancelled(ctx, s.DB, externalID, cancelledAt); err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		log.Warn().
			Str("topic", topic).
			Str("order_external_id", externalID).
			Msg("cancel event for unknown order, recording timeline only")
	}

	return repo.InsertOrderEvent(ctx, s.DB, &domain.OrderEvent{
		OrderExternalID: externalID,
		EventType:       "order_cancelled",
		Topic:           topic,
		Metadata:        metadataJSON(map[string]any{"reason": webhook.Str(p["cancel_reason"])}),
		OccurredAt:      cancelledAt,
	})
}
