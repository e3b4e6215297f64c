package flow_test

import (
	"fmt"
	"testing"

	"github.com/meikuraledutech/flow"
	"github.com/stretchr/testify/require"
)

// seqIDs generates predictable ids that never collide with fixture ids.
func seqIDs() flow.Option {
	n := 0
	return flow.WithIDGenerator(func(prefix string) string {
		n++
		return fmt.Sprintf("%s-g%d", prefix, n)
	})
}

func node(id string, t flow.NodeType, x, y float64, cfg flow.Config) flow.Node {
	return flow.Node{
		ID:       id,
		Type:     t,
		Position: flow.Position{X: x, Y: y},
		Data:     flow.NodeData{Config: cfg},
	}
}

func edge(id, source, target string, h flow.Handle) flow.Edge {
	return flow.Edge{ID: id, Source: source, Target: target, SourceHandle: h}
}

// orderFlow is the default canvas: a trigger, an action and a condition
// branching into two actions.
func orderFlow() flow.Graph {
	return flow.Graph{
		Nodes: []flow.Node{
			node("trigger-1", flow.NodeTrigger, 300, 100, flow.TriggerConfig{TriggerType: "order_placed"}),
			node("action-1", flow.NodeAction, 300, 250, nil),
			node("condition-1", flow.NodeCondition, 300, 400, flow.ConditionConfig{Condition: "24_hours_before"}),
			node("action-2", flow.NodeAction, 150, 550, nil),
			node("action-3", flow.NodeAction, 450, 550, nil),
		},
		Edges: []flow.Edge{
			edge("e1-2", "trigger-1", "action-1", flow.HandleNone),
			edge("e2-3", "action-1", "condition-1", flow.HandleNone),
			edge("e3-4", "condition-1", "action-2", flow.HandleTrue),
			edge("e3-5", "condition-1", "action-3", flow.HandleFalse),
		},
	}
}

func newEditor(t *testing.T, g flow.Graph) *flow.Editor {
	t.Helper()
	e, err := flow.NewEditor(g, seqIDs())
	require.NoError(t, err)
	return e
}

// requireConsistent asserts referential integrity and branch exclusivity.
func requireConsistent(t *testing.T, g flow.Graph) {
	t.Helper()
	require.NoError(t, flow.Validate(g))
}

type link struct {
	Source, Target string
	Handle         flow.Handle
}

func links(g flow.Graph) []link {
	out := make([]link, 0, len(g.Edges))
	for _, e := range g.Edges {
		out = append(out, link{e.Source, e.Target, e.SourceHandle})
	}
	return out
}
