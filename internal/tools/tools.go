// Package tools holds the stub business-tool integrations the dispatcher
// calls into. Each stub returns deterministic structured results so the
// reply templates and escalation paths are fully testable; swapping in real
// backends only needs the Client construction to change.
package tools

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"sarathi/pkg/cache"
)

// Order is the structured result of an order-status lookup.
type Order struct {
	Status  string `json:"status"`
	ETADays int    `json:"eta_days"`
}

// Reschedule is the structured result of an appointment reschedule.
type Reschedule struct {
	OK            bool   `json:"ok"`
	AppointmentID string `json:"appointment_id"`
	NewSlot       string `json:"new_slot"`
}

// BillingCase is the structured result of opening a billing case.
type BillingCase struct {
	CaseID string  `json:"case_id"`
	Status string  `json:"status"`
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

// Client bundles the business-tool stubs. The order book is loaded through
// a refreshable cache so externally-sourced reference data can be swapped
// without a restart.
type Client struct {
	mu     sync.Mutex
	orders *cache.Value[map[string]Order]
	load   func() map[string]Order
	ttl    time.Duration
}

// NewClient creates a tool client over the default simulated order book.
func NewClient() *Client {
	return NewClientWithOrders(defaultOrders, time.Hour)
}

// NewClientWithOrders creates a tool client whose order reference data is
// produced by load and refreshed after ttl. Tests inject their own books.
func NewClientWithOrders(load func() map[string]Order, ttl time.Duration) *Client {
	return &Client{
		orders: cache.New(load()),
		load:   load,
		ttl:    ttl,
	}
}

func defaultOrders() map[string]Order {
	return map[string]Order{
		"ORD123": {Status: "Out for delivery", ETADays: 1},
	}
}

// orderBook returns the current order reference data, refreshing it when
// stale. Concurrent refreshes may race and both succeed; values are
// idempotent for the same window, so last write wins harmlessly.
func (c *Client) orderBook() map[string]Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.orders.Stale(time.Now(), c.ttl) {
		c.orders = cache.New(c.load())
	}
	return c.orders.Data
}

// GetOrderStatus looks up an order by id. found=false means the order does
// not exist in the reference data, not a lookup failure.
func (c *Client) GetOrderStatus(orderID string) (Order, bool) {
	order, found := c.orderBook()[strings.ToUpper(orderID)]
	return order, found
}

// RescheduleAppointment moves an appointment to a new slot.
func (c *Client) RescheduleAppointment(appointmentID, newSlot string) Reschedule {
	return Reschedule{OK: true, AppointmentID: appointmentID, NewSlot: newSlot}
}

// CreateBillingCase opens a billing case for a user. The case id embeds the
// tail of the user id so agents can correlate it quickly.
func (c *Client) CreateBillingCase(userID string, amount float64, reason string) BillingCase {
	tail := userID
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	return BillingCase{
		CaseID: fmt.Sprintf("BILL-%s", tail),
		Status: "open",
		Amount: amount,
		Reason: reason,
	}
}

// GetAccountHelp returns a canned help tip for an account topic.
func (c *Client) GetAccountHelp(topic string) string {
	if strings.EqualFold(topic, "password") {
		return "Use the Forgot Password option to receive a reset link."
	}
	return "Update profile from Account > Settings."
}
