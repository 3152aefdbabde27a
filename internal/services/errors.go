// Package services implements the per-topic webhook handlers: the
// orchestration that validates a payload, extracts normalized records, and
// applies one event's effect through the data layer. This file centralizes
// common service-level error values so that they can be consistently
// returned by handlers and checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into processing outcomes and HTTP responses is performed at
// the endpoint layer.
package services

import "errors"

// ErrUnknownTopic is returned by the dispatcher when no handler is
// registered for a topic. Not an error in the HTTP sense: unknown topics
// are acknowledged so the sender does not retry them.
var ErrUnknownTopic = errors.New("unknown topic")
