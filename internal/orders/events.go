package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type OrderPlacedPayload struct {
	OrderID      string      `json:"order_id"`
	CustomerName string      `json:"customer_name"`
	Phone        string      `json:"phone"`
	Total        int64       `json:"total"`
	Items        []ItemInput `json:"items"`
}

type OrderStatusChangedPayload struct {
	OrderID   string `json:"order_id"`
	NewStatus Status `json:"new_status"`
}
