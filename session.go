package flow

import "fmt"

// Session is one user's editing state for a flow: the graph editor plus
// the node currently open in the sidebar.
type Session struct {
	*Editor
	selected string
}

// NewSession validates g and starts a session over a copy of it.
func NewSession(g Graph, opts ...Option) (*Session, error) {
	e, err := NewEditor(g, opts...)
	if err != nil {
		return nil, err
	}
	return &Session{Editor: e}, nil
}

// Select marks a node as selected. An empty id clears the selection.
func (s *Session) Select(id string) error {
	if id == "" {
		s.selected = ""
		return nil
	}
	if _, ok := s.Node(id); !ok {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	s.selected = id
	return nil
}

// ClearSelection deselects the current node.
func (s *Session) ClearSelection() {
	s.selected = ""
}

// Selected returns the selected node id, or "" if none.
func (s *Session) Selected() string {
	return s.selected
}

// DeleteNode deletes the node like Editor.DeleteNode and reports whether it
// was the selected node, in which case the selection is cleared.
func (s *Session) DeleteNode(id string) (Deletion, bool) {
	d := s.Editor.DeleteNode(id)
	wasSelected := d.Found && s.selected == id
	if wasSelected {
		s.selected = ""
	}
	return d, wasSelected
}

// Flow returns a snapshot of the session under the given flow id.
func (s *Session) Flow(id string) *Flow {
	return &Flow{ID: id, Graph: s.Graph(), Selected: s.selected}
}
