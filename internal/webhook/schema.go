// Per-topic structural validation. Payloads are open maps, so this is a
// small table-driven checker rather than struct binding: each recognized
// topic declares the keys a payload must carry and the fields that must be
// numeric-ish (a number or a decimal string) when present.
package webhook

import (
	"encoding/json"
	"fmt"
)

// ValidationError reports a structurally invalid payload for a topic. It is
// a terminal outcome for the event: redelivery of the same body cannot
// become valid, so the caller records it and acknowledges.
type ValidationError struct {
	Topic  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s payload: %s", e.Topic, e.Reason)
}

// topicSchema declares the structural requirements for one topic.
type topicSchema struct {
	required []string // keys that must be present and non-null
	money    []string // keys that, when present, must parse as amounts
}

var schemas = map[string]topicSchema{
	"checkouts/create": {
		required: []string{"id"},
		money:    []string{"subtotal_price", "total_tax", "total_price"},
	},
	"checkouts/update": {
		required: []string{"id"},
		money:    []string{"subtotal_price", "total_tax", "total_price"},
	},
	"orders/create": {
		required: []string{"id"},
		money:    []string{"subtotal_price", "total_tax", "total_price"},
	},
	"orders/updated": {
		required: []string{"id"},
		money:    []string{"subtotal_price", "total_tax", "total_price"},
	},
	"orders/paid": {
		required: []string{"id"},
		money:    []string{"total_price"},
	},
	"orders/cancelled": {
		required: []string{"id"},
	},
	"refunds/create": {
		required: []string{"id", "order_id"},
	},
}

// ValidatePayload checks p against the schema for topic. Topics without a
// registered schema pass vacuously (the registry, not the validator, decides
// which topics are handled). The returned error, when non-nil, is always a
// *ValidationError.
func ValidatePayload(topic string, p map[string]any) error {
	sch, ok := schemas[topic]
	if !ok {
		return nil
	}
	for _, key := range sch.required {
		v, present := p[key]
		if !present || v == nil {
			return &ValidationError{Topic: topic, Reason: fmt.Sprintf("missing required field %q", key)}
		}
		if s, isStr := v.(string); isStr && s == "" {
			return &ValidationError{Topic: topic, Reason: fmt.Sprintf("missing required field %q", key)}
		}
	}
	for _, key := range sch.money {
		v, present := p[key]
		if !present || v == nil {
			continue
		}
		if !numericish(v) {
			return &ValidationError{Topic: topic, Reason: fmt.Sprintf("field %q is not a monetary amount", key)}
		}
	}
	return nil
}

// numericish reports whether v is a number or a string that parses as a
// decimal amount.
func numericish(v any) bool {
	switch x := v.(type) {
	case json.Number, float64, int, int64:
		return true
	case string:
		_, err := MinorUnits(x)
		return err == nil
	default:
		return false
	}
}
