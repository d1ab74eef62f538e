package entity

import "time"

// Event is the canonical unit sent to Klaviyo. Built fresh per producer
// invocation, never persisted; lives for one delivery attempt sequence.
type Event struct {
	MetricName     string         `json:"metric_name"`
	ProfileID      string         `json:"profile_id"`
	Properties     map[string]any `json:"properties"`
	Value          *float64       `json:"value,omitempty"`
	Time           *time.Time     `json:"time,omitempty"`
	IdempotencyKey string         `json:"idempotency_key"`
}

// Metric names as Klaviyo sees them.
const (
	MetricPlacedOrder         = "Placed Order"
	MetricSubscriptionStarted = "Subscription Started"
	MetricStartedCheckout     = "Started Checkout"
	MetricCheckoutAbandoned   = "Checkout Abandoned"
)

// LineItem is the normalized product/quantity/price tuple embedded in
// purchase and cart events.
type LineItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	SKU       string  `json:"sku,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
	Category  string  `json:"category,omitempty"`
}
