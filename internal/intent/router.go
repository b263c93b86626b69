// Package intent maps raw message text to an intent label with an ordered
// rule list: first match wins, not best match.
package intent

import "strings"

// Intent labels.
const (
	FAQ         = "faq"
	Status      = "status"
	Appointment = "appointment"
	Billing     = "billing"
	Account     = "account"
)

// DisabledReply is returned when the routed intent is gated off.
const DisabledReply = "Sorry, that function is disabled right now. I can answer FAQs."

// rule is one ordered routing rule: if any keyword is contained in the
// text, the rule's intent is chosen.
type rule struct {
	intent   string
	keywords []string
}

// rules are evaluated in order. The FAQ-first heuristic sits above the
// status rule so that "what is the refund policy" never routes to billing
// even though "refund" appears in its keyword list.
var rules = []rule{
	{Status, []string{"status", "track", "where is my order", "order"}},
	{Appointment, []string{"reschedule", "appointment", "slot"}},
	{Billing, []string{"refund", "invoice", "billing", "charge"}},
	{Account, []string{"password", "account", "login", "profile"}},
}

// Route classifies text into an intent. Stateless: the choice is a pure
// function of the input.
func Route(text string) string {
	t := strings.ToLower(text)

	// FAQ-first heuristic: policy questions and refund FAQs beat every
	// other rule.
	if strings.Contains(t, "policy") || (strings.Contains(t, "what") && strings.Contains(t, "refund")) {
		return FAQ
	}
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(t, kw) {
				return r.intent
			}
		}
	}
	return FAQ
}

// Gate rewrites a routed intent against the caller-supplied enabled set.
// A disabled intent is forced back to FAQ with ok=false; callers then reply
// with DisabledReply instead of dispatching.
func Gate(routed string, enabled map[string]bool) (string, bool) {
	if enabled[routed] {
		return routed, true
	}
	return FAQ, false
}

// EnabledSet builds the gate set from a config list.
func EnabledSet(intents []string) map[string]bool {
	set := make(map[string]bool, len(intents))
	for _, it := range intents {
		set[strings.TrimSpace(it)] = true
	}
	return set
}
