package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle label an admin assigns to an order.
type OrderStatus string

const (
	// OrderStatusPending is assigned to every new order.
	OrderStatusPending OrderStatus = "Pending"
	// OrderStatusPacked means the stand is boxed and waiting for pickup.
	OrderStatusPacked OrderStatus = "Packed"
	// OrderStatusShipped means the parcel is with the courier.
	OrderStatusShipped OrderStatus = "Shipped"
	// OrderStatusDelivered means the customer received the parcel.
	OrderStatusDelivered OrderStatus = "Delivered"
	// OrderStatusCanceled excludes the order from revenue.
	OrderStatusCanceled OrderStatus = "Canceled"
)

var (
	// ErrValidation is returned when an order payload does not match the schema.
	ErrValidation = errors.New("invalid order data")
	// ErrConfiguration is returned when outbound mail settings are missing.
	ErrConfiguration = errors.New("mail is not configured")
	// ErrDelivery is returned when a notification could not be sent.
	ErrDelivery = errors.New("failed to send email")
	// ErrOrderNotFound is returned when no stored order has the given id.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidStatus is returned for labels outside the five known statuses.
	ErrInvalidStatus = errors.New("invalid order status")
)

// Statuses returns every status in display order.
func Statuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusPacked,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCanceled,
	}
}

// ParseStatus matches s against the known statuses, ignoring case.
func ParseStatus(s string) (OrderStatus, error) {
	for _, status := range Statuses() {
		if strings.EqualFold(string(status), strings.TrimSpace(s)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// OrderFormData is the customer input captured by the order form.
type OrderFormData struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Country   string `json:"country"`
	City      string `json:"city"`
	Address   string `json:"address"`
	// PhoneNumber includes the calling-code prefix once submitted.
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
	Quantity    int    `json:"quantity"`
}

// Order is a stored order record.
type Order struct {
	OrderFormData
	// ID is server issued when available, otherwise generated by the client.
	ID string `json:"id"`
	// Date is an ISO-8601 UTC timestamp.
	Date   string      `json:"date"`
	Status OrderStatus `json:"status"`
}

// Pricing prices the order with the shared pricing rule.
func (o Order) Pricing() PricingResult {
	return Price(o.Country, o.Quantity)
}

// TimestampLayout matches JavaScript's Date.toISOString.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

const (
	orderIDLength    = 8
	fallbackIDLength = 9
)

// NewOrderID returns the 8 character id issued by the intake service.
func NewOrderID() string {
	return randomToken(orderIDLength)
}

// NewFallbackID returns the 9 character id a client uses when the server
// response carried none.
func NewFallbackID() string {
	return randomToken(fallbackIDLength)
}

// randomToken returns n uppercase alphanumeric characters, n <= 32.
func randomToken(n int) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:n])
}
