package flow

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

const (
	// DefaultInsertOffset shifts a node inserted on an edge below the edge midpoint.
	DefaultInsertOffset = 40.0
	// DefaultAppendSpacing is the vertical gap between a branch end and a node appended to it.
	DefaultAppendSpacing = 120.0
)

// Option configures an Editor.
type Option func(*Editor)

// WithIDGenerator replaces the id source. fn receives a prefix
// ("trigger", "action", ..., or "e" for edges).
func WithIDGenerator(fn func(prefix string) string) Option {
	return func(e *Editor) {
		e.newID = fn
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.log = logger
	}
}

// WithInsertOffset sets how far below the edge midpoint InsertNodeOnEdge places a node.
func WithInsertOffset(dy float64) Option {
	return func(e *Editor) {
		e.insertOffset = dy
	}
}

// WithAppendSpacing sets how far below its parent AppendNode places a node.
func WithAppendSpacing(dy float64) Option {
	return func(e *Editor) {
		e.appendSpacing = dy
	}
}

// NewID returns prefix followed by a random UUID.
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// Editor is the sole owner of a flow graph. Every mutation computes the
// next (nodes, edges) pair and swaps it in with one assignment, so a failed
// call leaves the graph untouched. An Editor is not safe for concurrent use.
type Editor struct {
	graph         Graph
	newID         func(prefix string) string
	insertOffset  float64
	appendSpacing float64
	log           *slog.Logger
}

// Deletion reports what DeleteNode did.
type Deletion struct {
	Found       bool   `json:"found"`
	Removed     []Edge `json:"removed"`
	Reconnected []Edge `json:"reconnected"`
	// Skipped counts reconnections dropped because they would duplicate an
	// edge, loop a node onto itself or reuse a taken branch.
	Skipped int `json:"skipped"`
}

// NewEditor takes ownership of a copy of g. The graph must pass Validate;
// every node gets its default config if it has none and is relabelled.
func NewEditor(g Graph, opts ...Option) (*Editor, error) {
	e := &Editor{
		newID:         NewID,
		insertOffset:  DefaultInsertOffset,
		appendSpacing: DefaultAppendSpacing,
		log:           slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := Validate(g); err != nil {
		return nil, err
	}
	e.graph = g.Clone()
	for i := range e.graph.Nodes {
		n := &e.graph.Nodes[i]
		if n.Data.Config == nil {
			cfg, err := DefaultConfig(n.Type)
			if err != nil {
				return nil, err
			}
			n.Data.Config = cfg
		}
		relabel(n)
	}
	return e, nil
}

// Graph returns a copy of the current graph.
func (e *Editor) Graph() Graph {
	return e.graph.Clone()
}

// Node returns the node with the given id.
func (e *Editor) Node(id string) (Node, bool) {
	if i := e.graph.nodeIndex(id); i >= 0 {
		return e.graph.Nodes[i], true
	}
	return Node{}, false
}

// Edge returns the edge with the given id.
func (e *Editor) Edge(id string) (Edge, bool) {
	if i := e.graph.edgeIndex(id); i >= 0 {
		return e.graph.Edges[i], true
	}
	return Edge{}, false
}

// EndNodes returns the nodes without outgoing edges, in node order.
func (e *Editor) EndNodes() []Node {
	hasOut := make(map[string]bool, len(e.graph.Edges))
	for _, ed := range e.graph.Edges {
		hasOut[ed.Source] = true
	}
	ends := []Node{}
	for _, n := range e.graph.Nodes {
		if !hasOut[n.ID] {
			ends = append(ends, n)
		}
	}
	return ends
}

// AddNode creates an unconnected node of type t at pos and returns its id.
func (e *Editor) AddNode(t NodeType, pos Position) (string, error) {
	n, err := e.newNode(t, pos)
	if err != nil {
		return "", err
	}
	e.graph.Nodes = append(e.graph.Nodes, n)

	e.log.Debug("node added", "node", n.ID, "type", t)
	return n.ID, nil
}

// Connect creates an edge from source to target and returns its id.
// A condition source without a handle gets its first free branch, "true"
// then "false", unless it is already connected to target on some branch, in
// which case that edge is returned. Reconnecting an existing
// (source, target, handle) triple returns the existing edge.
func (e *Editor) Connect(source, target string, h Handle) (string, error) {
	g, id, err := e.connect(e.graph, source, target, h)
	if err != nil {
		return "", err
	}
	e.graph = g

	e.log.Debug("nodes connected", "edge", id, "source", source, "target", target, "handle", h)
	return id, nil
}

func (e *Editor) connect(g Graph, source, target string, h Handle) (Graph, string, error) {
	nodes := nodesByID(g)
	src := nodes[source]
	if src.Type == NodeCondition && h == HandleNone {
		for _, ed := range g.Edges {
			if ed.Source == source && ed.Target == target {
				return g, ed.ID, nil
			}
		}
		switch {
		case !g.handleInUse(source, HandleTrue):
			h = HandleTrue
		case !g.handleInUse(source, HandleFalse):
			h = HandleFalse
		default:
			return g, "", fmt.Errorf("%w: %q has both branches connected", ErrBranchTaken, source)
		}
	}

	if err := checkEdge(nodes, source, target, h); err != nil {
		return g, "", err
	}
	if h != HandleNone && src.Type != NodeCondition {
		return g, "", fmt.Errorf("%w: %s node %q has no %q handle", ErrInvalidHandle, src.Type, source, h)
	}
	if existing, ok := g.findEdge(source, target, h); ok {
		return g, existing.ID, nil
	}
	if h != HandleNone && g.handleInUse(source, h) {
		return g, "", fmt.Errorf("%w: %s/%s", ErrBranchTaken, source, h)
	}

	edge := Edge{ID: e.newID("e"), Source: source, Target: target, SourceHandle: h}
	g.Edges = append(g.Edges, edge)
	return g, edge.ID, nil
}

// InsertNodeOnEdge splits the edge S → T into S → N → T with a new node N
// of type t placed below the midpoint of S and T. S → N keeps the original
// handle. An unknown edge yields an error matching both ErrReference and
// ErrEdgeNotFound.
func (e *Editor) InsertNodeOnEdge(edgeID string, t NodeType) (string, error) {
	idx := e.graph.edgeIndex(edgeID)
	if idx < 0 {
		return "", fmt.Errorf("%w: %w %q", ErrReference, ErrEdgeNotFound, edgeID)
	}
	if t == NodeTrigger {
		return "", fmt.Errorf("%w: a trigger cannot be inserted on an edge", ErrInvalidConnection)
	}

	old := e.graph.Edges[idx]
	nodes := nodesByID(e.graph)
	s, d := nodes[old.Source].Position, nodes[old.Target].Position
	n, err := e.newNode(t, Position{
		X: (s.X + d.X) / 2,
		Y: (s.Y+d.Y)/2 + e.insertOffset,
	})
	if err != nil {
		return "", err
	}

	edges := make([]Edge, 0, len(e.graph.Edges)+1)
	for i, ed := range e.graph.Edges {
		if i != idx {
			edges = append(edges, ed)
			continue
		}
		edges = append(edges,
			Edge{ID: e.newID("e"), Source: old.Source, Target: n.ID, SourceHandle: old.SourceHandle},
			Edge{ID: e.newID("e"), Source: n.ID, Target: old.Target},
		)
	}
	next := Graph{
		Nodes: append(e.graph.Clone().Nodes, n),
		Edges: edges,
	}
	e.graph = next

	e.log.Debug("node inserted on edge", "node", n.ID, "type", t, "edge", edgeID)
	return n.ID, nil
}

// AppendNode adds a node of type t below the branch end afterID and
// connects afterID to it on handle h. Nothing changes if the connection is
// rejected.
func (e *Editor) AppendNode(afterID string, t NodeType, h Handle) (string, error) {
	after, ok := e.Node(afterID)
	if !ok {
		return "", fmt.Errorf("%w: %w %q", ErrReference, ErrNodeNotFound, afterID)
	}
	n, err := e.newNode(t, Position{X: after.Position.X, Y: after.Position.Y + e.appendSpacing})
	if err != nil {
		return "", err
	}

	g := e.graph.Clone()
	g.Nodes = append(g.Nodes, n)
	g, _, err = e.connect(g, afterID, n.ID, h)
	if err != nil {
		return "", err
	}
	e.graph = g

	e.log.Debug("node appended", "node", n.ID, "type", t, "after", afterID)
	return n.ID, nil
}

// DeleteNode removes the node and its edges, then reconnects every
// predecessor to every successor. A reconnection takes the incoming edge's
// handle, or the outgoing edge's handle when the incoming edge has none.
// A handle already used on a non-condition source is dropped rather than
// the reconnection. Deleting a missing node is a no-op.
func (e *Editor) DeleteNode(id string) Deletion {
	idx := e.graph.nodeIndex(id)
	if idx < 0 {
		return Deletion{}
	}

	var in, out []Edge
	next := Graph{
		Nodes: make([]Node, 0, len(e.graph.Nodes)-1),
		Edges: make([]Edge, 0, len(e.graph.Edges)),
	}
	next.Nodes = append(next.Nodes, e.graph.Nodes[:idx]...)
	next.Nodes = append(next.Nodes, e.graph.Nodes[idx+1:]...)
	for _, ed := range e.graph.Edges {
		switch {
		case ed.Target == id:
			in = append(in, ed)
		case ed.Source == id:
			out = append(out, ed)
		default:
			next.Edges = append(next.Edges, ed)
		}
	}

	d := Deletion{
		Found:       true,
		Removed:     append(append([]Edge{}, in...), out...),
		Reconnected: []Edge{},
	}
	nodes := nodesByID(next)
	for _, i := range in {
		for _, o := range out {
			if i.Source == o.Target {
				d.Skipped++
				continue
			}
			h := i.SourceHandle
			if h == HandleNone {
				h = o.SourceHandle
			}
			// Only a condition's branches are exclusive. Any other source
			// keeps the path and drops the borrowed handle instead.
			if h != HandleNone && next.handleInUse(i.Source, h) {
				if nodes[i.Source].Type == NodeCondition {
					d.Skipped++
					continue
				}
				h = HandleNone
			}
			if _, dup := next.findEdge(i.Source, o.Target, h); dup {
				d.Skipped++
				continue
			}
			r := Edge{ID: e.newID("e"), Source: i.Source, Target: o.Target, SourceHandle: h}
			next.Edges = append(next.Edges, r)
			d.Reconnected = append(d.Reconnected, r)
		}
	}
	e.graph = next

	e.log.Debug("node deleted", "node", id,
		"incoming", len(in), "outgoing", len(out),
		"reconnected", len(d.Reconnected), "skipped", d.Skipped)
	return d
}

// RemoveEdge deletes the edge and reports whether it existed.
func (e *Editor) RemoveEdge(id string) bool {
	idx := e.graph.edgeIndex(id)
	if idx < 0 {
		return false
	}
	edges := make([]Edge, 0, len(e.graph.Edges)-1)
	edges = append(edges, e.graph.Edges[:idx]...)
	edges = append(edges, e.graph.Edges[idx+1:]...)
	e.graph.Edges = edges

	e.log.Debug("edge removed", "edge", id)
	return true
}

// UpdateNodeConfig shallow-merges patch into the node's configuration and
// recomputes its label and description.
func (e *Editor) UpdateNodeConfig(id string, patch ConfigPatch) error {
	idx := e.graph.nodeIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	n := e.graph.Nodes[idx]
	cfg, err := mergeConfig(n.Type, n.Data.Config, patch)
	if err != nil {
		return fmt.Errorf("node %q: %w", id, err)
	}
	n.Data.Config = cfg
	relabel(&n)
	e.graph.Nodes[idx] = n

	e.log.Debug("node configured", "node", id, "label", n.Data.Label)
	return nil
}

// MoveNode sets the canvas position of a node.
func (e *Editor) MoveNode(id string, pos Position) error {
	idx := e.graph.nodeIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	e.graph.Nodes[idx].Position = pos
	return nil
}

func (e *Editor) newNode(t NodeType, pos Position) (Node, error) {
	cfg, err := DefaultConfig(t)
	if err != nil {
		return Node{}, err
	}
	n := Node{
		ID:       e.newID(string(t)),
		Type:     t,
		Position: pos,
		Data:     NodeData{Config: cfg},
	}
	relabel(&n)
	return n, nil
}
