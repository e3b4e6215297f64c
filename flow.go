package flow

// NodeType identifies what a node does in a flow.
type NodeType string

const (
	NodeTrigger   NodeType = "trigger"
	NodeAction    NodeType = "action"
	NodeCondition NodeType = "condition"
	NodeDelay     NodeType = "delay"
)

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	switch t {
	case NodeTrigger, NodeAction, NodeCondition, NodeDelay:
		return true
	}
	return false
}

// Handle names a connection point on a condition node.
type Handle string

const (
	HandleNone  Handle = ""
	HandleTrue  Handle = "true"
	HandleFalse Handle = "false"
)

// Valid reports whether h is a known handle. HandleNone is valid.
func (h Handle) Valid() bool {
	return h == HandleNone || h == HandleTrue || h == HandleFalse
}

// Position is a free-form canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Flow is a named graph plus the editor's selected node.
type Flow struct {
	ID string `json:"id"`
	Graph
	Selected string `json:"selected,omitempty"`
}

// Graph holds the nodes and edges of a flow.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node represents a step on the canvas.
// Ref is a temporary key used only during CreateFlow for edge wiring. It is never kept.
type Node struct {
	ID       string   `json:"id,omitempty"`
	Ref      string   `json:"ref,omitempty"`
	Type     NodeType `json:"type"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// NodeData carries the derived display text and the type-specific configuration.
// Label and Description are always derived from Config.
type NodeData struct {
	Label       string
	Description string
	Config      Config
}

// Edge represents a directed connection between two nodes.
// SourceRef / TargetRef are temporary keys used only during CreateFlow. They are never kept.
type Edge struct {
	ID           string `json:"id,omitempty"`
	Source       string `json:"source,omitempty"`
	Target       string `json:"target,omitempty"`
	SourceHandle Handle `json:"sourceHandle,omitempty"`
	SourceRef    string `json:"sourceRef,omitempty"`
	TargetRef    string `json:"targetRef,omitempty"`
}

// Clone returns a deep copy of g. Config values are immutable structs and are shared.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	copy(out.Nodes, g.Nodes)
	copy(out.Edges, g.Edges)
	return out
}

func (g Graph) nodeIndex(id string) int {
	for i, n := range g.Nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (g Graph) edgeIndex(id string) int {
	for i, e := range g.Edges {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// handleInUse reports whether source already has an outgoing edge on h.
func (g Graph) handleInUse(source string, h Handle) bool {
	for _, e := range g.Edges {
		if e.Source == source && e.SourceHandle == h {
			return true
		}
	}
	return false
}

func (g Graph) findEdge(source, target string, h Handle) (Edge, bool) {
	for _, e := range g.Edges {
		if e.Source == source && e.Target == target && e.SourceHandle == h {
			return e, true
		}
	}
	return Edge{}, false
}
