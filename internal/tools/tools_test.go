package tools

import (
	"testing"
	"time"
)

func TestGetOrderStatus(t *testing.T) {
	c := NewClient()

	order, found := c.GetOrderStatus("ord123")
	if !found {
		t.Fatal("expected ORD123 in the default order book")
	}
	if order.Status != "Out for delivery" || order.ETADays != 1 {
		t.Errorf("order = %+v", order)
	}

	if _, found := c.GetOrderStatus("ORD999"); found {
		t.Error("ORD999 must not exist")
	}
}

func TestOrderBookRefresh(t *testing.T) {
	loads := 0
	c := NewClientWithOrders(func() map[string]Order {
		loads++
		return map[string]Order{"ORD1": {Status: "Packed", ETADays: 2}}
	}, time.Nanosecond)

	c.GetOrderStatus("ORD1")
	time.Sleep(time.Millisecond)
	c.GetOrderStatus("ORD1")
	if loads < 2 {
		t.Errorf("loaded %d times, want a refresh after the TTL", loads)
	}
}

func TestCreateBillingCase(t *testing.T) {
	c := NewClient()
	bc := c.CreateBillingCase("user123", 25.5, "double charge")
	if bc.CaseID != "BILL-r123" {
		t.Errorf("case id = %s, want BILL-r123", bc.CaseID)
	}
	if bc.Status != "open" || bc.Amount != 25.5 {
		t.Errorf("case = %+v", bc)
	}
}

func TestAccountHelp(t *testing.T) {
	c := NewClient()
	if tip := c.GetAccountHelp("PASSWORD"); tip != "Use the Forgot Password option to receive a reset link." {
		t.Errorf("tip = %q", tip)
	}
}
