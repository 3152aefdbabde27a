// Webhook event inspection endpoints.
//
// This file exposes the operator-facing read API over the delivery ledger:
//   - GET /webhooks/events        (list, paginated, filterable)
//   - GET /webhooks/events/stats  (aggregate status counts)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/alaaalzabargah/portal-admin/internal/domain"
	"github.com/alaaalzabargah/portal-admin/internal/repo"
	"github.com/alaaalzabargah/portal-admin/internal/utils"
)

// EventHandlers serves read-only views over recorded webhook deliveries.
type EventHandlers struct {
	db *gorm.DB
}

// NewEvents constructs the event inspection handlers.
func NewEvents(db *gorm.DB) *EventHandlers {
	return &EventHandlers{db: db}
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListEventsResponse wraps a page of webhook events and pagination
// information.
type ListEventsResponse struct {
	Events     []domain.WebhookEvent `json:"events"`
	Pagination Pagination            `json:"pagination"`
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// ListEvents godoc
// @ID          listWebhookEvents
// @Summary     List webhook deliveries (paginated)
// @Description Returns recorded deliveries, most recent first. Filterable by
// @Description status and topic.
// @Tags        Webhooks
// @Produce     json
//
// @Param       status     query  string  false "Filter by status"  Enums(received, processed, failed)
// @Param       topic      query  string  false "Filter by topic"   example(orders/create)
// @Param       page       query  int     false "Page number"       minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"    minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListEventsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /webhooks/events [get]
func (h *EventHandlers) ListEvents(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	filter := repo.WebhookEventFilter{
		Status: c.Query("status"),
		Topic:  c.Query("topic"),
	}

	total, err := repo.CountWebhookEvents(ctx, h.db, filter)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	events, err := repo.ListWebhookEvents(ctx, h.db, filter, (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListEventsResponse{
		Events: events,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// EventStats godoc
// @ID          webhookEventStats
// @Summary     Aggregate webhook delivery counts
// @Description Returns per-status totals and the most recent delivery time,
// @Description for monitors that poll for failed events.
// @Tags        Webhooks
// @Produce     json
// @Success     200  {object}  repo.WebhookEventStats
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /webhooks/events/stats [get]
func (h *EventHandlers) EventStats(c *gin.Context) {
	stats, err := repo.WebhookEventsStats(c.Request.Context(), h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, stats)
}
