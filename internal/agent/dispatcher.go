package agent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"sarathi/internal/intent"
	"sarathi/internal/models"
	"sarathi/internal/tools"
)

// orderIDPattern matches order identifiers like ORD123 in uppercased text.
var orderIDPattern = regexp.MustCompile(`\bORD[0-9]+\b`)

// Dispatcher extracts structured parameters per intent and invokes the
// matching business tool. Missing required parameters produce a
// clarification reply with no tool call; a tool reporting "not found"
// escalates with a support-ticket offer.
type Dispatcher struct {
	tools *tools.Client
}

// NewDispatcher creates a Dispatcher over the given tool client.
func NewDispatcher(t *tools.Client) *Dispatcher {
	return &Dispatcher{tools: t}
}

// Dispatch handles one structured intent. handled=false means the intent
// has no structured tool and should fall through to knowledge retrieval.
func (d *Dispatcher) Dispatch(routedIntent, userID, text string) (result *models.ChatResult, handled bool) {
	switch routedIntent {
	case intent.Status:
		return d.orderStatus(text), true
	case intent.Appointment:
		return d.reschedule(text), true
	case intent.Billing:
		return d.billingCase(userID, text), true
	case intent.Account:
		return d.accountHelp(), true
	default:
		return nil, false
	}
}

func (d *Dispatcher) orderStatus(text string) *models.ChatResult {
	orderID := orderIDPattern.FindString(strings.ToUpper(text))
	if orderID == "" {
		return &models.ChatResult{
			Reply:  "I can check your order. Please share the Order ID (e.g., ORD123).",
			Intent: intent.Status,
		}
	}

	call := models.ToolCall{
		Name: "orders.get_status",
		Args: map[string]interface{}{"order_id": orderID},
	}
	order, found := d.tools.GetOrderStatus(orderID)
	if !found {
		return &models.ChatResult{
			Reply:     fmt.Sprintf("I couldn't find order %s. Want me to create a support ticket?", orderID),
			ToolCalls: []models.ToolCall{call},
			Escalated: true,
			Intent:    intent.Status,
		}
	}
	return &models.ChatResult{
		Reply:     fmt.Sprintf("Order %s: %s. ETA ~%d day(s).", orderID, order.Status, order.ETADays),
		ToolCalls: []models.ToolCall{call},
		Intent:    intent.Status,
	}
}

func (d *Dispatcher) reschedule(text string) *models.ChatResult {
	var aptID, newSlot string
	for _, word := range strings.Fields(text) {
		if aptID == "" && strings.HasPrefix(strings.ToUpper(word), "APT") {
			aptID = word
		}
		// An ISO-8601-like slot token carries both the date/time separator
		// and a clock colon.
		if newSlot == "" && strings.Contains(word, "T") && strings.Contains(word, ":") {
			newSlot = word
		}
	}
	if aptID == "" || newSlot == "" {
		return &models.ChatResult{
			Reply:  "To reschedule, send: APT<id> and ISO time, e.g., APT123 2025-08-01T10:00",
			Intent: intent.Appointment,
		}
	}

	call := models.ToolCall{
		Name: "appointments.reschedule",
		Args: map[string]interface{}{"appointment_id": aptID, "new_slot": newSlot},
	}
	res := d.tools.RescheduleAppointment(aptID, newSlot)
	if !res.OK {
		return &models.ChatResult{
			Reply:     "I couldn't reschedule right now; connecting you to an agent.",
			ToolCalls: []models.ToolCall{call},
			Escalated: true,
			Intent:    intent.Appointment,
		}
	}
	return &models.ChatResult{
		Reply:     fmt.Sprintf("Rescheduled %s to %s. You'll receive a confirmation shortly.", aptID, newSlot),
		ToolCalls: []models.ToolCall{call},
		Intent:    intent.Appointment,
	}
}

func (d *Dispatcher) billingCase(userID, text string) *models.ChatResult {
	var amount float64
	for _, word := range strings.Fields(strings.ReplaceAll(text, "$", " ")) {
		if v, err := strconv.ParseFloat(word, 64); err == nil {
			amount = v
			break
		}
	}

	billing := d.tools.CreateBillingCase(userID, amount, "user_request")
	call := models.ToolCall{
		Name: "billing.create_case",
		Args: map[string]interface{}{"user_id": userID, "amount": amount},
	}
	return &models.ChatResult{
		Reply:     fmt.Sprintf("I opened billing case %s for $%.2f. An agent will review it.", billing.CaseID, amount),
		ToolCalls: []models.ToolCall{call},
		Intent:    intent.Billing,
	}
}

func (d *Dispatcher) accountHelp() *models.ChatResult {
	tip := d.tools.GetAccountHelp("password")
	return &models.ChatResult{
		Reply: tip,
		ToolCalls: []models.ToolCall{{
			Name: "account.help",
			Args: map[string]interface{}{"topic": "password"},
		}},
		Intent: intent.Account,
	}
}
