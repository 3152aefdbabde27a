// Webhook HTTP handlers.
//
// This file exposes the webhook ingestion endpoint:
//   - POST /webhooks/shopify   (receive a signed delivery)
//   - GET  /webhooks/shopify   (describe the endpoint's capabilities)
//
// Handlers are transport-thin: they authenticate the delivery, record it
// exactly once, hand the payload to the topic dispatcher, and translate
// the outcome into an acknowledgement the sender understands. Everything
// after signature verification acknowledges with 200 so the sender never
// retries a delivery we have durably recorded.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/alaaalzabargah/portal-admin/internal/http/middleware"
	"github.com/alaaalzabargah/portal-admin/internal/repo"
	"github.com/alaaalzabargah/portal-admin/internal/services"
	"github.com/alaaalzabargah/portal-admin/internal/webhook"
)

// Shopify delivery headers.
const (
	HeaderSignature  = "X-Shopify-Hmac-Sha256"
	HeaderTopic      = "X-Shopify-Topic"
	HeaderShopDomain = "X-Shopify-Shop-Domain"
)

// Terminal outcomes for a delivery, used as the metrics outcome label.
const (
	outcomeUnauthenticated = "unauthenticated"
	outcomeForbidden       = "forbidden"
	outcomeMalformed       = "malformed"
	outcomeUnrecognized    = "unrecognized"
	outcomeDuplicate       = "duplicate"
	outcomeInvalid         = "invalid"
	outcomeFailed          = "failed"
	outcomeProcessed       = "processed"
)

// WebhookOptions configures delivery authentication and store deadlines.
type WebhookOptions struct {
	// Secret is the shared HMAC key deliveries are signed with.
	Secret string
	// ShopDomain, when non-empty, pins X-Shopify-Shop-Domain to one shop
	// (case-insensitive). Empty accepts any origin shop.
	ShopDomain string
	// DBTimeout bounds the store round-trips made for one delivery.
	DBTimeout time.Duration
}

// WebhookHandlers groups the ingestion endpoints. It owns no business
// logic; topic semantics live behind the dispatcher.
type WebhookHandlers struct {
	db         *gorm.DB
	dispatcher *services.Dispatcher
	opts       WebhookOptions
}

// NewWebhook constructs the ingestion handlers bound to the given store
// and dispatcher.
func NewWebhook(db *gorm.DB, d *services.Dispatcher, opts WebhookOptions) *WebhookHandlers {
	if opts.DBTimeout <= 0 {
		opts.DBTimeout = 5 * time.Second
	}
	return &WebhookHandlers{db: db, dispatcher: d, opts: opts}
}

// WebhookAck is the acknowledgement envelope returned for every delivery
// that passed authentication.
type WebhookAck struct {
	Received  bool   `json:"received"`
	Processed bool   `json:"processed"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Error     string `json:"error,omitempty"`
}

// respondOutcome is the single outcome→response mapping. Only the two
// authentication outcomes are non-200; every outcome reached after the
// signature check acknowledges so the sender does not redeliver. It also
// records the outcome metric, so every terminal path is counted exactly
// once.
func respondOutcome(c *gin.Context, topic, outcome, errMsg string) {
	middleware.ObserveWebhookEvent(topic, outcome)
	switch outcome {
	case outcomeUnauthenticated:
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid webhook signature")
	case outcomeForbidden:
		fail(c, http.StatusForbidden, ErrCodeForbidden, "shop domain not allowed")
	case outcomeMalformed:
		ok(c, http.StatusOK, WebhookAck{Received: true, Error: "malformed payload"})
	case outcomeUnrecognized:
		ok(c, http.StatusOK, WebhookAck{Received: true})
	case outcomeDuplicate:
		ok(c, http.StatusOK, WebhookAck{Received: true, Duplicate: true})
	case outcomeInvalid, outcomeFailed:
		ok(c, http.StatusOK, WebhookAck{Received: true, Error: errMsg})
	case outcomeProcessed:
		ok(c, http.StatusOK, WebhookAck{Received: true, Processed: true})
	}
}

// Receive godoc
// @ID          receiveWebhook
// @Summary     Receive a signed webhook delivery
// @Description Verifies the HMAC signature, records the delivery exactly once,
// @Description and routes the payload to its topic handler. Duplicate and
// @Description unrecognized deliveries are acknowledged without side effects.
// @Tags        Webhooks
// @Accept      json
// @Produce     json
//
// @Param       X-Shopify-Hmac-Sha256  header  string  true  "Base64 HMAC-SHA256 of the raw body"
// @Param       X-Shopify-Topic        header  string  true  "Event topic"  example(orders/create)
// @Param       X-Shopify-Shop-Domain  header  string  false "Origin shop"  example(demo.myshopify.com)
//
// @Success     200  {object}  handlers.WebhookAck
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid signature"
// @Failure     403  {object}  handlers.ErrorResponse  "Shop not allowed"
// @Router      /webhooks/shopify [post]
func (h *WebhookHandlers) Receive(c *gin.Context) {
	lg := middleware.LoggerFrom(c)

	body, err := readBody(c)
	if err != nil {
		// A body we could not even read cannot be signature-checked or
		// hashed; 400 tells the sender to redeliver the full request.
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable request body")
		return
	}

	topic := strings.TrimSpace(c.GetHeader(HeaderTopic))
	shop := strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderShopDomain)))

	// Authentication first; nothing is recorded for forged deliveries.
	if !webhook.VerifySignature(h.opts.Secret, body, c.GetHeader(HeaderSignature)) {
		lg.Warn().
			Str("topic", topic).
			Str("shop", shop).
			Msg("webhook signature verification failed")
		respondOutcome(c, topic, outcomeUnauthenticated, "")
		return
	}
	if h.opts.ShopDomain != "" && shop != h.opts.ShopDomain {
		lg.Warn().
			Str("topic", topic).
			Str("shop", shop).
			Msg("webhook from unexpected shop domain")
		respondOutcome(c, topic, outcomeForbidden, "")
		return
	}

	hash := webhook.PayloadHash(body)

	// Decode with UseNumber so money strings survive as-is and integer ids
	// don't round-trip through float64.
	payload, err := decodePayload(body)
	if err != nil {
		lg.Warn().
			Str("topic", topic).
			Str("payload_hash", hash).
			Msg("webhook payload is not a JSON object")
		respondOutcome(c, topic, outcomeMalformed, "")
		return
	}

	resourceID := webhook.ExtractResourceID(topic, payload)
	lg.Info().
		Str("topic", topic).
		Str("shop", shop).
		Str("resource_id", resourceID).
		Str("payload_hash", hash).
		Msg("webhook received")

	// Unknown topics are acknowledged but never recorded; redeliveries of
	// a topic we don't handle shouldn't accumulate rows.
	if _, known := h.dispatcher.Lookup(topic); !known {
		lg.Info().Str("topic", topic).Msg("webhook topic not handled")
		respondOutcome(c, topic, outcomeUnrecognized, "")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.opts.DBTimeout)
	defer cancel()

	ev, isNew, err := repo.InsertWebhookEventIfNew(ctx, h.db, topic, hash, resourceID, body)
	if err != nil {
		// Nothing was durably recorded, so acknowledging here would lose the
		// event. A 5xx makes the sender redeliver once the store recovers.
		lg.Error().Err(err).Str("payload_hash", hash).Msg("recording webhook delivery failed")
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to record delivery")
		return
	}
	if !isNew {
		lg.Info().
			Str("topic", topic).
			Str("payload_hash", hash).
			Str("event_id", ev.ID).
			Msg("duplicate webhook delivery")
		respondOutcome(c, topic, outcomeDuplicate, "")
		return
	}

	if err := h.dispatcher.Dispatch(ctx, topic, payload); err != nil {
		outcome := outcomeFailed
		var verr *webhook.ValidationError
		if errors.As(err, &verr) {
			outcome = outcomeInvalid
		}
		lg.Error().
			Err(err).
			Str("topic", topic).
			Str("payload_hash", hash).
			Msg("webhook processing failed")
		if merr := repo.MarkWebhookEventFailed(ctx, h.db, hash, err.Error()); merr != nil {
			lg.Error().Err(merr).Str("payload_hash", hash).Msg("marking webhook event failed errored")
		}
		respondOutcome(c, topic, outcome, err.Error())
		return
	}

	if err := repo.MarkWebhookEventProcessed(ctx, h.db, hash); err != nil {
		lg.Error().Err(err).Str("payload_hash", hash).Msg("marking webhook event processed errored")
	}
	respondOutcome(c, topic, outcomeProcessed, "")
}

// WebhookInfo describes the ingestion endpoint for operators and
// integration tooling.
type WebhookInfo struct {
	Topics  []string `json:"topics"`
	Headers []string `json:"headers"`
}

// Describe godoc
// @ID          describeWebhook
// @Summary     Describe the webhook endpoint
// @Description Lists the topics this endpoint handles and the headers a
// @Description delivery must carry.
// @Tags        Webhooks
// @Produce     json
// @Success     200  {object}  handlers.WebhookInfo
// @Router      /webhooks/shopify [get]
func (h *WebhookHandlers) Describe(c *gin.Context) {
	ok(c, http.StatusOK, WebhookInfo{
		Topics:  h.dispatcher.Topics(),
		Headers: []string{HeaderSignature, HeaderTopic, HeaderShopDomain},
	})
}

// readBody drains the raw request body. The router's body-size limit has
// already been applied upstream.
func readBody(c *gin.Context) ([]byte, error) {
	body, err := c.GetRawData()
	if err != nil {
		return nil, err
	}
	return body, nil
}

// decodePayload parses the body into a generic JSON object, preserving
// numeric literals as json.Number.
func decodePayload(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, errors.New("payload is null")
	}
	return payload, nil
}
