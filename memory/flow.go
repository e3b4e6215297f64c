package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/meikuraledutech/flow"
)

// CreateFlow starts a session for a full flow (nodes + edges).
// Nodes/edges without IDs get generated ones.
// Edge refs (SourceRef/TargetRef) are resolved to real node IDs.
// An existing flow with the same ID is replaced.
// Returns the flow with all IDs filled in and labels derived.
func (s *Store) CreateFlow(ctx context.Context, f *flow.Flow) (*flow.Flow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.ID == "" {
		f.ID = uuid.NewString()
	}

	// Build ref → ID mapping and assign IDs to nodes.
	refMap := make(map[string]string)
	for i := range f.Nodes {
		n := &f.Nodes[i]
		if n.ID == "" {
			n.ID = flow.NewID(string(n.Type))
		}
		if n.Ref != "" {
			refMap[n.Ref] = n.ID
		}
	}

	// Resolve edge refs and assign IDs to edges.
	for i := range f.Edges {
		e := &f.Edges[i]
		if e.ID == "" {
			e.ID = flow.NewID("e")
		}
		if e.SourceRef != "" {
			id, ok := refMap[e.SourceRef]
			if !ok {
				return nil, fmt.Errorf("%w: unknown source ref %q", flow.ErrReference, e.SourceRef)
			}
			e.Source = id
		}
		if e.TargetRef != "" {
			id, ok := refMap[e.TargetRef]
			if !ok {
				return nil, fmt.Errorf("%w: unknown target ref %q", flow.ErrReference, e.TargetRef)
			}
			e.Target = id
		}
	}

	// Refs are not kept.
	for i := range f.Nodes {
		f.Nodes[i].Ref = ""
	}
	for i := range f.Edges {
		f.Edges[i].SourceRef = ""
		f.Edges[i].TargetRef = ""
	}

	session, err := flow.NewSession(f.Graph, s.opts...)
	if err != nil {
		return nil, err
	}
	if err := session.Select(f.Selected); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.flows[f.ID] = &entry{session: session}
	s.mu.Unlock()

	return session.Flow(f.ID), nil
}

// GetFlow returns a snapshot of a flow by its ID.
// Returns nil, nil if not found.
func (s *Store) GetFlow(ctx context.Context, flowID string) (*flow.Flow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, ok := s.lookup(flowID)
	if !ok {
		return nil, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Flow(flowID), nil
}

// DeleteFlow drops a flow's session.
// No error if the flow doesn't exist.
func (s *Store) DeleteFlow(ctx context.Context, flowID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flows, flowID)
	return nil
}

// ListFlows returns all flow IDs, sorted.
// Returns an empty slice (not nil) if none exist.
func (s *Store) ListFlows(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.flows))
	for id := range s.flows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Edit runs fn while holding the flow's lock.
// Returns ErrFlowNotFound if the flow doesn't exist.
func (s *Store) Edit(ctx context.Context, flowID string, fn func(*flow.Session) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e, ok := s.lookup(flowID)
	if !ok {
		return fmt.Errorf("%w: %q", flow.ErrFlowNotFound, flowID)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}
