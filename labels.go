package flow

import (
	"fmt"
	"strconv"
)

var triggerLabels = map[string]string{
	"sms_reply":       "SMS Reply Received",
	"delivery_failed": "Delivery Failed",
	"new_lead":        "New Lead Added",
	"hubspot_form":    "HubSpot Form Submission",
	"order_placed":    "Order Placed",
	"lead_replies":    "Lead Replies with Keywords",
	"time_based":      "Time Based",
	"webhook":         "Webhook",
}

var actionLabels = map[string]string{
	"send_sms":       "Send SMS",
	"add_tag":        "Add Tag",
	"update_contact": "Update Contact",
	"send_webhook":   "Send Webhook",
	"send_email":     "Send Email",
	"create_task":    "Create Task",
}

var conditionLabels = map[string]string{
	"message_contains": "Message Contains Keywords",
	"message_equals":   "Message Equals Exactly",
	"any_reply":        "Any Reply Received",
	"24_hours_before":  "24 Hours Before Delivery",
	"keywords_match":   "Keywords Match",
	"time_of_day":      "Time of Day",
	"custom":           "Custom Condition",
}

var descriptions = map[NodeType]string{
	NodeTrigger:   "Starts the flow when an event occurs",
	NodeAction:    "Performs an action",
	NodeCondition: "Branches on a condition",
	NodeDelay:     "Waits before continuing",
}

// ResolveLabel returns the display label for a node of type t configured with cfg.
// Unknown or missing configuration falls back to a generic label for the type.
func ResolveLabel(t NodeType, cfg Config) string {
	switch t {
	case NodeTrigger:
		c, _ := cfg.(TriggerConfig)
		return lookup(triggerLabels, c.TriggerType, "New Trigger")
	case NodeAction:
		c, _ := cfg.(ActionConfig)
		return lookup(actionLabels, c.ActionType, "New Action")
	case NodeCondition:
		c, _ := cfg.(ConditionConfig)
		return lookup(conditionLabels, c.Condition, "IF / ELSE")
	case NodeDelay:
		c, _ := cfg.(DelayConfig)
		if c.DelayAmount > 0 && c.DelayUnit != "" {
			return fmt.Sprintf("Wait %s %s", strconv.FormatFloat(c.DelayAmount, 'f', -1, 64), c.DelayUnit)
		}
		return "New Delay"
	}
	return "New Node"
}

// ResolveDescription returns the one-line summary for type t.
// The configuration does not affect it.
func ResolveDescription(t NodeType, _ Config) string {
	if d, ok := descriptions[t]; ok {
		return d
	}
	return "Configure this node"
}

func lookup(labels map[string]string, key, fallback string) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return fallback
}

// relabel recomputes the derived display text of n.
func relabel(n *Node) {
	n.Data.Label = ResolveLabel(n.Type, n.Data.Config)
	n.Data.Description = ResolveDescription(n.Type, n.Data.Config)
}
