package webhook

import (
	"errors"
	"testing"
)

func TestValidatePayload_RequiredFields(t *testing.T) {
	// Valid order payload.
	if err := ValidatePayload("orders/create", decode(t, `{"id": 1, "total_price": "10.00"}`)); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}

	// Missing id.
	err := ValidatePayload("orders/create", decode(t, `{"total_price": "10.00"}`))
	if err == nil {
		t.Fatalf("expected missing-id error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Topic != "orders/create" {
		t.Fatalf("topic = %q", verr.Topic)
	}

	// Null and empty-string ids count as missing.
	if err := ValidatePayload("orders/create", decode(t, `{"id": null}`)); err == nil {
		t.Fatalf("null id should be rejected")
	}
	if err := ValidatePayload("orders/create", decode(t, `{"id": ""}`)); err == nil {
		t.Fatalf("empty id should be rejected")
	}
}

func TestValidatePayload_MoneyFields(t *testing.T) {
	// Money fields are optional but must parse when present.
	if err := ValidatePayload("checkouts/create", decode(t, `{"id": 1}`)); err != nil {
		t.Fatalf("absent money fields should pass: %v", err)
	}
	if err := ValidatePayload("checkouts/create", decode(t, `{"id": 1, "total_price": "12.50"}`)); err != nil {
		t.Fatalf("decimal string should pass: %v", err)
	}
	if err := ValidatePayload("checkouts/create", decode(t, `{"id": 1, "total_price": 12.5}`)); err != nil {
		t.Fatalf("numeric value should pass: %v", err)
	}
	if err := ValidatePayload("checkouts/create", decode(t, `{"id": 1, "total_price": "free"}`)); err == nil {
		t.Fatalf("non-amount money field should fail")
	}
}

func TestValidatePayload_RefundRequiresOrderID(t *testing.T) {
	if err := ValidatePayload("refunds/create", decode(t, `{"id": 5, "order_id": 7}`)); err != nil {
		t.Fatalf("valid refund rejected: %v", err)
	}
	if err := ValidatePayload("refunds/create", decode(t, `{"id": 5}`)); err == nil {
		t.Fatalf("refund without order_id should fail")
	}
}

func TestValidatePayload_UnknownTopicPasses(t *testing.T) {
	if err := ValidatePayload("products/create", decode(t, `{}`)); err != nil {
		t.Fatalf("unknown topic should pass vacuously: %v", err)
	}
}
