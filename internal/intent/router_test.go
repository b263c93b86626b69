package intent

import "testing"

func TestRoute(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"What is the refund policy?", FAQ},
		{"refund policy", FAQ},
		{"what about my refund", FAQ},
		{"Where is my order ORD123?", Status},
		{"track my package", Status},
		{"please reschedule my appointment", Appointment},
		{"need a new slot", Appointment},
		{"I want a refund now", Billing},
		{"invoice for last month", Billing},
		{"charge on my card", Billing},
		{"reset my password", Account},
		{"update my profile", Account},
		{"hello there", FAQ},
		{"", FAQ},
	}
	for _, tc := range cases {
		if got := Route(tc.text); got != tc.want {
			t.Errorf("Route(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

// Messages containing both "policy" and "refund" always route to FAQ, even
// though the billing rule would also match.
func TestRoutePolicyBeatsBilling(t *testing.T) {
	for _, text := range []string{
		"refund policy please",
		"what's your policy on refund timing",
		"POLICY for refund",
	} {
		if got := Route(text); got != FAQ {
			t.Errorf("Route(%q) = %s, want faq", text, got)
		}
	}
}

// First match wins: "order" appears before the billing rule, so a message
// with both "order" and "invoice" routes to status.
func TestRouteOrderedRules(t *testing.T) {
	if got := Route("invoice for my order"); got != Status {
		t.Errorf("Route() = %s, want status (first match wins)", got)
	}
}

func TestGate(t *testing.T) {
	enabled := EnabledSet([]string{"faq", "status"})

	if got, ok := Gate(Status, enabled); !ok || got != Status {
		t.Errorf("enabled intent must pass through, got %s ok=%v", got, ok)
	}
	if got, ok := Gate(Billing, enabled); ok || got != FAQ {
		t.Errorf("disabled intent must be forced to faq, got %s ok=%v", got, ok)
	}
}
