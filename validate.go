package flow

import (
	"errors"
	"fmt"
)

// Validate checks the structural invariants of g: unique ids, known node
// types, matching and well-formed config variants, no dangling edges and at most one
// outgoing edge per condition branch. All violations are joined.
func Validate(g Graph) error {
	var errs []error

	nodes := make(map[string]Node, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			errs = append(errs, fmt.Errorf("%w: node without id", ErrReference))
			continue
		}
		if _, dup := nodes[n.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: node %q", ErrDuplicateID, n.ID))
			continue
		}
		nodes[n.ID] = n
		if !n.Type.Valid() {
			errs = append(errs, fmt.Errorf("%w: node %q has type %q", ErrInvalidNodeType, n.ID, n.Type))
			continue
		}
		c := n.Data.Config
		if c == nil {
			continue
		}
		if c.NodeType() != n.Type {
			errs = append(errs, fmt.Errorf("%w: node %q of type %s carries %s config", ErrInvalidConfig, n.ID, n.Type, c.NodeType()))
			continue
		}
		if v, ok := c.(interface{ validate() error }); ok {
			if err := v.validate(); err != nil {
				errs = append(errs, fmt.Errorf("node %q: %w", n.ID, err))
			}
		}
	}

	edgeIDs := make(map[string]bool, len(g.Edges))
	type branch struct {
		source string
		handle Handle
	}
	branches := make(map[branch]bool)
	for _, e := range g.Edges {
		if edgeIDs[e.ID] {
			errs = append(errs, fmt.Errorf("%w: edge %q", ErrDuplicateID, e.ID))
			continue
		}
		edgeIDs[e.ID] = true
		if err := checkEdge(nodes, e.Source, e.Target, e.SourceHandle); err != nil {
			errs = append(errs, fmt.Errorf("edge %q: %w", e.ID, err))
			continue
		}
		if e.SourceHandle == HandleNone {
			continue
		}
		b := branch{e.Source, e.SourceHandle}
		if branches[b] {
			errs = append(errs, fmt.Errorf("%w: %s/%s", ErrBranchTaken, e.Source, e.SourceHandle))
		}
		branches[b] = true
	}

	return errors.Join(errs...)
}

// checkEdge validates a single source → target connection against nodes.
// Branch exclusivity is checked by the caller. Handles are not restricted to
// condition sources here: a reconnection keeps the branch of the condition
// it replaced.
func checkEdge(nodes map[string]Node, source, target string, h Handle) error {
	if _, ok := nodes[source]; !ok {
		return fmt.Errorf("%w: source node %q", ErrReference, source)
	}
	dst, ok := nodes[target]
	if !ok {
		return fmt.Errorf("%w: target node %q", ErrReference, target)
	}
	if source == target {
		return fmt.Errorf("%w: node %q connected to itself", ErrInvalidConnection, source)
	}
	if dst.Type == NodeTrigger {
		return fmt.Errorf("%w: trigger %q cannot have incoming edges", ErrInvalidConnection, target)
	}
	if !h.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidHandle, h)
	}
	return nil
}

func nodesByID(g Graph) map[string]Node {
	m := make(map[string]Node, len(g.Nodes))
	for _, n := range g.Nodes {
		m[n.ID] = n
	}
	return m
}
