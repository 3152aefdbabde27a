// Package services – Dispatcher
//
// The dispatcher is the topic registry: an immutable mapping from topic
// string to handler, built once at startup and treated as configuration
// data. Handlers never touch the idempotency store; duplicate detection
// stays with the endpoint.
package services

import (
	"context"
	"sort"
)

// HandlerFunc applies one webhook event's effect. A nil return means the
// event was fully applied; any error is recorded against the event by the
// caller.
type HandlerFunc func(ctx context.Context, topic string, payload map[string]any) error

// Dispatcher routes recognized topics to their handlers.
type Dispatcher struct {
	handlers map[string]HandlerFunc
}

// NewDispatcher builds the topic→handler table over the three topic-family
// services. The table is never mutated after construction.
func NewDispatcher(checkouts *CheckoutService, orders *OrderService, refunds *RefundService) *Dispatcher {
	return &Dispatcher{handlers: map[string]HandlerFunc{
		"checkouts/create": checkouts.HandleCheckout,
		"checkouts/update": checkouts.HandleCheckout,
		"orders/create":    orders.HandleOrderUpsert,
		"orders/updated":   orders.HandleOrderUpsert,
		"orders/paid":      orders.HandleOrderPaid,
		"orders/cancelled": orders.HandleOrderCancelled,
		"refunds/create":   refunds.HandleRefund,
	}}
}

// Lookup returns the handler for topic, or (nil, false) for topics this
// system intentionally ignores. Unrecognized is a policy, not an error: the
// upstream may start sending new topics at any time and must not see
// failures for them.
func (d *Dispatcher) Lookup(topic string) (HandlerFunc, bool) {
	h, ok := d.handlers[topic]
	return h, ok
}

// Dispatch routes one event to its handler, returning ErrUnknownTopic for
// unrecognized topics.
func (d *Dispatcher) Dispatch(ctx context.Context, topic string, payload map[string]any) error {
	h, ok := d.Lookup(topic)
	if !ok {
		return ErrUnknownTopic
	}
	return h(ctx, topic, payload)
}

// Topics returns the sorted list of recognized topics, used by the
// capability document.
func (d *Dispatcher) Topics() []string {
	out := make([]string, 0, len(d.handlers))
	for t := range d.handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
