// Package services – RefundService
//
// Handles refunds/create. Refunds reference the order by upstream id rather
// than a foreign key, so they can be recorded even when the parent order
// record lags behind.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/alaaalzabargah/portal-admin/internal/domain"
	"github.com/alaaalzabargah/portal-admin/internal/repo"
	"github.com/alaaalzabargah/portal-admin/internal/webhook"
)

// RefundService applies refund webhook effects.
type RefundService struct {
	// DB is the database handle used for all refund operations.
	DB *gorm.DB
}

// HandleRefund applies one refunds/create event: sum the transaction
// amounts into an exact minor-unit integer, insert the refund (dup-safe on
// the upstream refund id), and append the order timeline entry.
//
// The timeline append is skipped when the refund row already existed, so a
// redelivered refund does not double its audit trail.
func (s *RefundService) HandleRefund(ctx context.Context, topic string, p map[string]any) error {
	if err := webhook.ValidatePayload(topic, p); err != nil {
		return err
	}

	r := &domain.Refund{
		ExternalID:      webhook.Str(p["id"]),
		OrderExternalID: webhook.Str(p["order_id"]),
		AmountMinor:     webhook.ExtractRefundAmount(p),
		Currency:        webhook.Str(p["currency"]),
		Reason:          webhook.Str(p["reason"]),
		Note:            webhook.Str(p["note"]),
		RefundedAt:      parseTime(p["created_at"]),
	}

	inserted, err := repo.InsertRefund(ctx, s.DB, r)
	if err != nil {
		return err
	}
	if !inserted {
		return nil
	}

	return repo.InsertOrderEvent(ctx, s.DB, &domain.OrderEvent{
		OrderExternalID: r.OrderExternalID,
		EventType:       "refund_created",
		Topic:           topic,
		Metadata:        metadataJSON(map[string]any{"refund_id": r.ExternalID, "amount_minor": r.AmountMinor, "reason": r.Reason}),
		OccurredAt:      timeOrNow(r.RefundedAt),
	})
}
