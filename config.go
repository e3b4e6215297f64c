package flow

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Config is the type-specific configuration of a node. Exactly one variant
// exists per NodeType.
type Config interface {
	NodeType() NodeType
}

// ConfigPatch is a partial configuration as sent by the sidebar form.
// Keys overwrite, absent keys are kept and nil values clear a key.
type ConfigPatch map[string]any

// TriggerConfig configures a trigger node.
type TriggerConfig struct {
	TriggerType string `mapstructure:"triggerType,omitempty"`
}

func (TriggerConfig) NodeType() NodeType { return NodeTrigger }

// ActionConfig configures an action node.
type ActionConfig struct {
	ActionType string `mapstructure:"actionType,omitempty"`
}

func (ActionConfig) NodeType() NodeType { return NodeAction }

// ConditionConfig configures a condition node.
type ConditionConfig struct {
	Condition string `mapstructure:"condition,omitempty"`
	Keywords  string `mapstructure:"keywords,omitempty"`
}

func (ConditionConfig) NodeType() NodeType { return NodeCondition }

// DelayUnit is the time unit of a delay node.
type DelayUnit string

const (
	Seconds DelayUnit = "seconds"
	Minutes DelayUnit = "minutes"
	Hours   DelayUnit = "hours"
	Days    DelayUnit = "days"
)

// DelayConfig configures a delay node.
type DelayConfig struct {
	DelayAmount float64   `mapstructure:"delayAmount,omitempty"`
	DelayUnit   DelayUnit `mapstructure:"delayUnit,omitempty"`
}

func (DelayConfig) NodeType() NodeType { return NodeDelay }

func (c DelayConfig) validate() error {
	switch c.DelayUnit {
	case "", Seconds, Minutes, Hours, Days:
	default:
		return fmt.Errorf("%w: unknown delay unit %q", ErrInvalidConfig, c.DelayUnit)
	}
	if c.DelayAmount < 0 {
		return fmt.Errorf("%w: negative delay amount %v", ErrInvalidConfig, c.DelayAmount)
	}
	return nil
}

// DefaultConfig returns the empty configuration for t.
func DefaultConfig(t NodeType) (Config, error) {
	return decodeConfig(t, nil)
}

// decodeConfig builds the variant for t from flat form fields.
// Keys that do not belong to the variant are rejected.
func decodeConfig(t NodeType, fields map[string]any) (Config, error) {
	switch t {
	case NodeTrigger:
		return decodeInto[TriggerConfig](fields)
	case NodeAction:
		return decodeInto[ActionConfig](fields)
	case NodeCondition:
		return decodeInto[ConditionConfig](fields)
	case NodeDelay:
		return decodeInto[DelayConfig](fields)
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidNodeType, t)
}

func decodeInto[T Config](fields map[string]any) (Config, error) {
	var c T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &c,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if v, ok := any(c).(interface{ validate() error }); ok {
		if err := v.validate(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// configFields flattens c into form fields. Zero values are omitted.
func configFields(c Config) map[string]any {
	fields := map[string]any{}
	if c != nil {
		_ = mapstructure.Decode(c, &fields)
	}
	return fields
}

// mergeConfig applies patch on top of cur and re-decodes the result for t.
func mergeConfig(t NodeType, cur Config, patch ConfigPatch) (Config, error) {
	fields := configFields(cur)
	for k, v := range patch {
		if v == nil {
			delete(fields, k)
			continue
		}
		fields[k] = v
	}
	return decodeConfig(t, fields)
}

// MarshalJSON writes label, description and the config fields side by side.
func (d NodeData) MarshalJSON() ([]byte, error) {
	fields := configFields(d.Config)
	fields["label"] = d.Label
	fields["description"] = d.Description
	return json.Marshal(fields)
}

// UnmarshalJSON decodes the flat data object using Type to pick the config variant.
func (n *Node) UnmarshalJSON(b []byte) error {
	type alias Node
	var aux struct {
		alias
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*n = Node(aux.alias)

	fields := aux.Data
	if fields == nil {
		fields = map[string]any{}
	}
	if s, ok := fields["label"].(string); ok {
		n.Data.Label = s
	}
	if s, ok := fields["description"].(string); ok {
		n.Data.Description = s
	}
	delete(fields, "label")
	delete(fields, "description")

	cfg, err := decodeConfig(n.Type, fields)
	if err != nil {
		return fmt.Errorf("node %q: %w", n.ID, err)
	}
	n.Data.Config = cfg
	return nil
}
