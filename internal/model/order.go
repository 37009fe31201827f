package model

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusCreated            OrderStatus = "CREATED"
	OrderStatusValidated          OrderStatus = "VALIDATED"
	OrderStatusInventoryChecking  OrderStatus = "INVENTORY_CHECKING"
	OrderStatusInventoryConfirmed OrderStatus = "INVENTORY_CONFIRMED"
	OrderStatusPaymentPending     OrderStatus = "PAYMENT_PENDING"
	OrderStatusPaymentProcessed   OrderStatus = "PAYMENT_PROCESSED"
	OrderStatusPaymentFailed      OrderStatus = "PAYMENT_FAILED"
	OrderStatusCompleted          OrderStatus = "COMPLETED"
	OrderStatusCancelled          OrderStatus = "CANCELLED"
	OrderStatusFailed             OrderStatus = "FAILED"
)

var orderStatusDescriptions = map[OrderStatus]string{
	OrderStatusCreated:            "Order has been created",
	OrderStatusValidated:          "Order has been validated",
	OrderStatusInventoryChecking:  "Checking inventory availability",
	OrderStatusInventoryConfirmed: "Inventory has been confirmed",
	OrderStatusPaymentPending:     "Awaiting payment processing",
	OrderStatusPaymentProcessed:   "Payment has been processed",
	OrderStatusPaymentFailed:      "Payment processing failed",
	OrderStatusCompleted:          "Order has been completed successfully",
	OrderStatusCancelled:          "Order has been cancelled",
	OrderStatusFailed:             "Order processing failed",
}

// Description returns a human-readable explanation of the status, or "" if unknown.
func (s OrderStatus) Description() string {
	return orderStatusDescriptions[s]
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusDescriptions[s]
	return ok
}

// OrderItem is one line of an order. Amounts are in minor currency units.
type OrderItem struct {
	ProductID       string `json:"productId"`
	Quantity        int    `json:"quantity"`
	UnitPriceCents  int64  `json:"unitPriceCents"`
	SubtotalCents   int64  `json:"subtotalCents"`
	ProductName     string `json:"productName,omitempty"`
	ProductCategory string `json:"productCategory,omitempty"`
}

// Order is a customer order as stored by the order-processing service.
type Order struct {
	ID         string      `json:"orderId"`
	CustomerID string      `json:"customerId"`
	Items      []OrderItem `json:"items"`
	TotalCents int64       `json:"totalAmountCents"`
	Status     OrderStatus `json:"status"`
	PaymentID  string      `json:"paymentId,omitempty"`
	TraceID    string      `json:"traceId,omitempty"`
	SpanID     string      `json:"spanId,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// CalculateTotal fills every item subtotal and the order total.
func (o *Order) CalculateTotal() {
	var total int64
	for i := range o.Items {
		o.Items[i].SubtotalCents = o.Items[i].UnitPriceCents * int64(o.Items[i].Quantity)
		total += o.Items[i].SubtotalCents
	}
	o.TotalCents = total
}

// OrderItemRequest is one requested line in an OrderRequest.
type OrderItemRequest struct {
	ProductID      string `json:"productId"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

// OrderRequest is the body of POST /api/orders on the order-processing service.
type OrderRequest struct {
	CustomerID   string             `json:"customerId"`
	Items        []OrderItemRequest `json:"items"`
	CustomerNote string             `json:"customerNote,omitempty"`
	PromoCode    string             `json:"promoCode,omitempty"`
}

// OrderResponse is the result of processing an order. Failures carry only
// the status and a message.
type OrderResponse struct {
	OrderID    string      `json:"orderId,omitempty"`
	Status     OrderStatus `json:"status"`
	Message    string      `json:"message"`
	Items      []OrderItem `json:"items,omitempty"`
	TotalCents int64       `json:"totalAmountCents,omitempty"`
	CreatedAt  *time.Time  `json:"createdAt,omitempty"`
	TraceID    string      `json:"traceId,omitempty"`
	RequestID  string      `json:"requestId,omitempty"`
}

// InventoryCheckResult is the inventory service answer for one product.
type InventoryCheckResult struct {
	ProductID string `json:"productId"`
	Available bool   `json:"available"`
	Quantity  int    `json:"quantity"`
}

// PaymentStatus is the state reported by the payment service.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusSuccessful PaymentStatus = "SUCCESSFUL"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	PaymentStatusCancelled  PaymentStatus = "CANCELLED"
	PaymentStatusRefunded   PaymentStatus = "REFUNDED"
)

// PaymentRequest is the body posted to the payment service.
type PaymentRequest struct {
	OrderID     string `json:"orderId"`
	AmountCents int64  `json:"amountCents"`
	Currency    string `json:"currency"`
	CustomerID  string `json:"customerId,omitempty"`
}

// PaymentResponse is the payment service answer.
type PaymentResponse struct {
	PaymentID     string        `json:"paymentId"`
	OrderID       string        `json:"orderId"`
	Status        PaymentStatus `json:"status"`
	AmountCents   int64         `json:"amountCents"`
	Currency      string        `json:"currency,omitempty"`
	TransactionID string        `json:"transactionId,omitempty"`
	ErrorMessage  string        `json:"errorMessage,omitempty"`
}

// Successful reports whether the payment went through.
func (p *PaymentResponse) Successful() bool {
	return p != nil && p.Status == PaymentStatusSuccessful
}
