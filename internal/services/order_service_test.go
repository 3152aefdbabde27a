package services

import (
	"context"
	"testing"

	"github.com/alaaalzabargah/portal-admin/internal/domain"
	"github.com/alaaalzabargah/portal-admin/internal/repo"
)

const orderCreateJSON = `{
	"id": 8001,
	"order_number": "1001",
	"source_name": "web",
	"financial_status": "pending",
	"currency": "AED",
	"subtotal_price": "250.00",
	"total_tax": "12.50",
	"total_price": "270.00",
	"shipping_lines": [{"price": "7.50"}],
	"note": "call before delivery",
	"shipping_address": {"name": "Maya K", "address1": "12 Marina Walk", "city": "Dubai", "country": "AE"},
	"customer": {"id": 44, "email": "maya@example.com", "first_name": "Maya", "last_name": "K"},
	"line_items": [
		{"title": "Kandura", "quantity": 1, "price": "250.00",
		 "properties": [{"name": "Measurement", "value": "chest 102"}]}
	],
	"updated_at": "2025-06-01T09:00:00Z"
}`

func TestHandleOrderUpsert_Create(t *testing.T) {
	db := newTestDB(t, "svc_ord_create")
	svc := &OrderService{DB: db}
	ctx := context.Background()

	if err := svc.HandleOrderUpsert(ctx, "orders/create", payload(t, orderCreateJSON)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	o, err := repo.GetOrderByExternalID(ctx, db, "8001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if o.Number != "1001" || o.Status != "open" || o.FinancialStatus != "pending" {
		t.Fatalf("order: %+v", o)
	}
	if o.SubtotalMinor != 25000 || o.TaxMinor != 1250 || o.ShippingMinor != 750 || o.TotalMinor != 27000 {
		t.Fatalf("money: %+v", o)
	}
	if o.ShippingAddress == "" || o.Note != "call before delivery" {
		t.Fatalf("text fields: %+v", o)
	}
	if o.CustomerID == nil {
		t.Fatalf("customer not linked")
	}
	// Not paid yet.
	if o.PaidMinor != 0 || o.PaidAt != nil {
		t.Fatalf("unpaid order carries payment: %+v", o)
	}

	items, err := repo.ListOrderItems(ctx, db, o.ID)
	if err != nil || len(items) != 1 {
		t.Fatalf("items: %d err=%v", len(items), err)
	}
	if items[0].Measurement == nil || *items[0].Measurement != "chest 102" {
		t.Fatalf("measurement: %+v", items[0])
	}

	// Timeline has the creation entry.
	evs, err := repo.ListOrderEvents(ctx, db, "8001")
	if err != nil || len(evs) != 1 || evs[0].EventType != "order_created" {
		t.Fatalf("timeline: %+v err=%v", evs, err)
	}
}

func TestHandleOrderUpsert_PaidSnapshot(t *testing.T) {
	db := newTestDB(t, "svc_ord_paidsnap")
	svc := &OrderService{DB: db}
	ctx := context.Background()

	p := payload(t, `{
		"id": 8002,
		"financial_status": "paid",
		"total_price": "99.00",
		"processed_at": "2025-06-02T08:00:00Z"
	}`)
	if err := svc.HandleOrderUpsert(ctx, "orders/create", p); err != nil {
		t.Fatalf("handle: %v", err)
	}

	o, err := repo.GetOrderByExternalID(ctx, db, "8002")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if o.PaidMinor != 9900 || o.PaidAt == nil {
		t.Fatalf("paid snapshot: %+v", o)
	}
}

func TestHandleOrderUpsert_UpdatedReplaysOntoSameRow(t *testing.T) {
	db := newTestDB(t, "svc_ord_updated")
	svc := &OrderService{DB: db}
	ctx := context.Background()

	if err := svc.HandleOrderUpsert(ctx, "orders/create", payload(t, orderCreateJSON)); err != nil {
		t.Fatalf("create: %v", err)
	}
	update := payload(t, `{
		"id": 8001,
		"order_number": "1001",
		"financial_status": "pending",
		"currency": "AED",
		"total_price": "300.00",
		"line_items": [
			{"title": "Kandura", "quantity": 1, "price": "250.00"},
			{"title": "Ghutra", "quantity": 1, "price": "50.00"}
		]
	}`)
	if err := svc.HandleOrderUpsert(ctx, "orders/updated", update); err != nil {
		t.Fatalf("update: %v", err)
	}

	o, err := repo.GetOrderByExternalID(ctx, db, "8001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if o.TotalMinor != 30000 {
		t.Fatalf("total not refreshed: %d", o.TotalMinor)
	}
	items, _ := repo.ListOrderItems(ctx, db, o.ID)
	if len(items) != 2 {
		t.Fatalf("items not replaced: %+v", items)
	}
	var orders int64
	db.Model(&domain.Order{}).Count(&orders)
	if orders != 1 {
		t.Fatalf("order rows = %d", orders)
	}

	// Timeline now carries created + updated.
	evs, _ := repo.ListOrderEvents(ctx, db, "8001")
	if len(evs) != 2 || evs[1].EventType != "order_updated" {
		t.Fatalf("timeline: %+v", evs)
	}
}

func TestHandleOrderUpsert_CancelledInSnapshot(t *testing.T) {
	db := newTestDB(t, "svc_ord_cxlsnap")
	svc := &OrderService{DB: db}
	ctx := context.Background()

	p := payload(t, `{"id": 8003, "cancelled_at": "2025-06-03T12:00:00Z", "total_price": "10.00"}`)
	if err := svc.HandleOrderUpsert(ctx, "orders/create", p); err != nil {
		t.Fatalf("handle: %v", err)
	}
	o, _ := repo.GetOrderByExternalID(ctx, db, "8003")
	if o.Status != "cancelled" || o.CancelledAt == nil {
		t.Fatalf("cancelled snapshot: %+v", o)
	}
}

func TestHandleOrderPaid_KnownOrder(t *testing.T) {
	db := newTestDB(t, "svc_ord_paid")
	svc := &OrderService{DB: db}
	ctx := context.Background()

	if err := svc.HandleOrderUpsert(ctx, "orders/create", payload(t, orderCreateJSON)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	paid := payload(t, `{"id": 8001, "total_price": "270.00", "processed_at": "2025-06-01T12:00:00Z"}`)
	if err := svc.HandleOrderPaid(ctx, "orders/paid", paid); err != nil {
		t.Fatalf("paid: %v", err)
	}

	o, _ := repo.GetOrderByExternalID(ctx, db, "8001")
	if o.FinancialStatus != "paid" || o.PaidMinor != 27000 || o.PaidAt == nil {
		t.Fatalf("paid transition: %+v", o)
	}
	// Full-snapshot fields untouched by the partial event.
	if o.Note != "call before delivery" || o.TotalMinor != 27000 {
		t.Fatalf("partial event touched snapshot fields: %+v", o)
	}

	evs, _ := repo.ListOrderEvents(ctx, db, "8001")
	if len(evs) != 2 || evs[1].EventType != "order_paid" {
		t.Fatalf("timeline: %+v", evs)
	}
}

func TestHandleOrderPaid_UnknownOrder_TimelineOnly(t *testing.T) {
	db := newTestDB(t, "svc_ord_paid_unknown")
	svc := &OrderService{DB: db}
	ctx := context.Background()

	paid := payload(t, `{"id": 7777, "total_price": "50.00"}`)
	if err := svc.HandleOrderPaid(ctx, "orders/paid", paid); err != nil {
		t.Fatalf("paid for unknown order should not error: %v", err)
	}

	// No order row was created.
	var orders int64
	db.Model(&domain.Order{}).Count(&orders)
	if orders != 0 {
		t.Fatalf("order rows = %d", orders)
	}
	// But the payment signal is on the timeline.
	evs, _ := repo.ListOrderEvents(ctx, db, "7777")
	if len(evs) != 1 || evs[0].EventType != "order_paid" {
		t.Fatalf("timeline: %+v", evs)
	}
}

func TestHandleOrderCancelled(t *testing.T) {
	db := newTestDB(t, "svc_ord_cxl")
	svc := &OrderService{DB: db}
	ctx := context.Background()

	if err := svc.HandleOrderUpsert(ctx, "orders/create", payload(t, orderCreateJSON)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	cxl := payload(t, `{"id": 8001, "cancelled_at": "2025-06-05T09:00:00Z", "cancel_reason": "customer"}`)
	if err := svc.HandleOrderCancelled(ctx, "orders/cancelled", cxl); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	o, _ := repo.GetOrderByExternalID(ctx, db, "8001")
	if o.Status != "cancelled" || o.CancelledAt == nil {
		t.Fatalf("cancel transition: %+v", o)
	}
	evs, _ := repo.ListOrderEvents(ctx, db, "8001")
	if len(evs) != 2 || evs[1].EventType != "order_cancelled" {
		t.Fatalf("timeline: %+v", evs)
	}

	// Unknown order: timeline-only, no error.
	if err := svc.HandleOrderCancelled(ctx, "orders/cancelled", payload(t, `{"id": 9999}`)); err != nil {
		t.Fatalf("cancel unknown: %v", err)
	}
	evs, _ = repo.ListOrderEvents(ctx, db, "9999")
	if len(evs) != 1 {
		t.Fatalf("unknown-order timeline: %+v", evs)
	}
}
