// Package domain defines the persistence models for customers, checkouts,
// orders, refunds, and the order timeline. These types are mapped with GORM
// and form the normalized data layer the webhook pipeline writes into.
//
// All monetary values are stored as integer minor currency units (e.g. fils
// or cents). No column in this package ever holds a floating-point amount.
package domain

import "time"

// Customer represents a shopper known to the portal. Rows are created by the
// webhook pipeline when an order or checkout references an unknown customer
// ("find or create"); existing profile fields are never overwritten by the
// pipeline.
//
// Identity:
//   - ExternalID: the upstream platform's customer id (unique when present).
//   - Phone: normalized phone number (unique when present); used as the
//     fallback lookup key when the upstream omits the customer id.
//
// TotalSpentMinor, OrdersCount, and Tier are derived aggregates owned by the
// rest of the application; the pipeline only seeds them at creation time.
type Customer struct {
	ID               string    `json:"id"                gorm:"type:char(36);primaryKey"`
	ExternalID       *string   `json:"external_id"       gorm:"type:varchar(64);uniqueIndex:ux_customers_external_id"`
	Name             string    `json:"name"              gorm:"type:varchar(255)"`
	Phone            *string   `json:"phone"             gorm:"type:varchar(32);uniqueIndex:ux_customers_phone"`
	Email            string    `json:"email"             gorm:"type:varchar(255);index"`
	Notes            string    `json:"notes"             gorm:"type:text"`
	Tags             string    `json:"tags"              gorm:"type:text"`
	AcceptsMarketing bool      `json:"accepts_marketing" gorm:"not null;default:false"`
	TotalSpentMinor  int64     `json:"total_spent_minor" gorm:"not null;default:0"`
	OrdersCount      int       `json:"orders_count"      gorm:"not null;default:0"`
	Tier             string    `json:"tier"              gorm:"type:varchar(32)"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName returns the database table name for Customer.
func (Customer) TableName() string { return "customers" }

// Checkout represents one upstream checkout session. A nil CompletedAt means
// the checkout is still pending or was abandoned. The row is upserted by
// external id on every checkouts/* webhook, and its items are replaced
// wholesale because the upstream always sends full snapshots.
type Checkout struct {
	ID            string     `json:"id"             gorm:"type:char(36);primaryKey"`
	ExternalID    string     `json:"external_id"    gorm:"type:varchar(64);not null;uniqueIndex:ux_checkouts_external_id"`
	Token         string     `json:"token"          gorm:"type:varchar(64);index"`
	CustomerID    *string    `json:"customer_id"    gorm:"type:char(36);index"`
	Email         string     `json:"email"          gorm:"type:varchar(255)"`
	Phone         string     `json:"phone"          gorm:"type:varchar(32)"`
	Currency      string     `json:"currency"       gorm:"type:char(3)"`
	SubtotalMinor int64      `json:"subtotal_minor" gorm:"not null;default:0"`
	TaxMinor      int64      `json:"tax_minor"      gorm:"not null;default:0"`
	ShippingMinor int64      `json:"shipping_minor" gorm:"not null;default:0"`
	TotalMinor    int64      `json:"total_minor"    gorm:"not null;default:0"`
	CompletedAt   *time.Time `json:"completed_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName returns the database table name for Checkout.
func (Checkout) TableName() string { return "checkouts" }

// CheckoutItem is a child row of Checkout. The full item set is deleted and
// re-inserted whenever the parent checkout is updated.
type CheckoutItem struct {
	ID             string    `json:"id"               gorm:"type:char(36);primaryKey"`
	CheckoutID     string    `json:"checkout_id"      gorm:"type:char(36);not null;index:idx_checkout_items_checkout"`
	ProductName    string    `json:"product_name"     gorm:"type:varchar(255);not null"`
	VariantTitle   string    `json:"variant_title"    gorm:"type:varchar(255)"`
	SKU            string    `json:"sku"              gorm:"type:varchar(64)"`
	Size           string    `json:"size"             gorm:"type:varchar(32)"`
	Color          string    `json:"color"            gorm:"type:varchar(64)"`
	Quantity       int       `json:"quantity"         gorm:"not null;default:1"`
	UnitPriceMinor int64     `json:"unit_price_minor" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"created_at"`

	// Checkout is the parent session; items are cascade-deleted with it.
	Checkout Checkout `json:"-" gorm:"foreignKey:CheckoutID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for CheckoutItem.
func (CheckoutItem) TableName() string { return "checkout_items" }

// Order represents one upstream order. Rows are upserted by external id, so
// replaying the same webhook converges on a single row. The paid and
// cancelled webhooks carry partial payloads and only touch the status,
// financial status, paid amount, and timestamp columns.
type Order struct {
	ID                string     `json:"id"                 gorm:"type:char(36);primaryKey"`
	ExternalID        string     `json:"external_id"        gorm:"type:varchar(64);not null;uniqueIndex:ux_orders_external_id"`
	Number            string     `json:"number"             gorm:"type:varchar(32);index"`
	SourceName        string     `json:"source_name"        gorm:"type:varchar(64)"`
	Status            string     `json:"status"             gorm:"type:varchar(16);not null;default:'open'"`
	FinancialStatus   string     `json:"financial_status"   gorm:"type:varchar(32)"`
	FulfillmentStatus string     `json:"fulfillment_status" gorm:"type:varchar(32)"`
	Currency          string     `json:"currency"           gorm:"type:char(3)"`
	SubtotalMinor     int64      `json:"subtotal_minor"     gorm:"not null;default:0"`
	TaxMinor          int64      `json:"tax_minor"          gorm:"not null;default:0"`
	ShippingMinor     int64      `json:"shipping_minor"     gorm:"not null;default:0"`
	PaidMinor         int64      `json:"paid_minor"         gorm:"not null;default:0"`
	TotalMinor        int64      `json:"total_minor"        gorm:"not null;default:0"`
	ShippingAddress   string     `json:"shipping_address"   gorm:"type:text"`
	Note              string     `json:"note"               gorm:"type:text"`
	CustomerID        *string    `json:"customer_id"        gorm:"type:char(36);index"`
	PaidAt            *time.Time `json:"paid_at"`
	CancelledAt       *time.Time `json:"cancelled_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName returns the database table name for Order.
func (Order) TableName() string { return "orders" }

// OrderItem is a child row of Order, replaced wholesale on every full-payload
// order webhook. Measurement optionally holds a JSON snapshot of garment
// measurements captured at purchase time.
type OrderItem struct {
	ID             string    `json:"id"               gorm:"type:char(36);primaryKey"`
	OrderID        string    `json:"order_id"         gorm:"type:char(36);not null;index:idx_order_items_order"`
	ProductName    string    `json:"product_name"     gorm:"type:varchar(255);not null"`
	VariantTitle   string    `json:"variant_title"    gorm:"type:varchar(255)"`
	SKU            string    `json:"sku"              gorm:"type:varchar(64)"`
	Size           string    `json:"size"             gorm:"type:varchar(32)"`
	Color          string    `json:"color"            gorm:"type:varchar(64)"`
	Quantity       int       `json:"quantity"         gorm:"not null;default:1"`
	UnitPriceMinor int64     `json:"unit_price_minor" gorm:"not null;default:0"`
	Measurement    *string   `json:"measurement,omitempty" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at"`

	// Order is the parent order; items are cascade-deleted with it.
	Order Order `json:"-" gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for OrderItem.
func (OrderItem) TableName() string { return "order_items" }

// Refund represents one upstream refund event. It references the order by
// the upstream external id rather than a foreign key, because a refund may
// legitimately arrive before the order record itself (delivery order is not
// guaranteed). The external id is unique so redelivery cannot duplicate it.
type Refund struct {
	ID              string     `json:"id"                gorm:"type:char(36);primaryKey"`
	ExternalID      string     `json:"external_id"       gorm:"type:varchar(64);not null;uniqueIndex:ux_refunds_external_id"`
	OrderExternalID string     `json:"order_external_id" gorm:"type:varchar(64);not null;index:idx_refunds_order"`
	AmountMinor     int64      `json:"amount_minor"      gorm:"not null;default:0"`
	Currency        string     `json:"currency"          gorm:"type:char(3)"`
	Reason          string     `json:"reason"            gorm:"type:varchar(255)"`
	Note            string     `json:"note"              gorm:"type:text"`
	RefundedAt      *time.Time `json:"refunded_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

// TableName returns the database table name for Refund.
func (Refund) TableName() string { return "refunds" }

// OrderEvent is one entry in an order's append-only timeline, keyed by the
// order's upstream external id. The pipeline only ever appends; rows are
// never updated or deleted here.
type OrderEvent struct {
	ID              string    `json:"id"                gorm:"type:char(36);primaryKey"`
	OrderExternalID string    `json:"order_external_id" gorm:"type:varchar(64);not null;index:idx_order_events_order"`
	EventType       string    `json:"event_type"        gorm:"type:varchar(64);not null"`
	Topic           string    `json:"topic"             gorm:"type:varchar(64)"`
	Metadata        string    `json:"metadata"          gorm:"type:text"`
	OccurredAt      time.Time `json:"occurred_at"       gorm:"not null"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName returns the database table name for OrderEvent.
func (OrderEvent) TableName() string { return "order_events" }
