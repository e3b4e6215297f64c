package flow

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("flow: not found")
	ErrReference = errors.New("flow: reference to missing node or edge")

	ErrNodeNotFound = fmt.Errorf("%w: node", ErrNotFound)
	ErrEdgeNotFound = fmt.Errorf("%w: edge", ErrNotFound)
	ErrFlowNotFound = fmt.Errorf("%w: flow", ErrNotFound)

	ErrInvalidNodeType   = errors.New("flow: invalid node type")
	ErrInvalidConfig     = errors.New("flow: invalid node configuration")
	ErrInvalidHandle     = errors.New("flow: invalid source handle")
	ErrInvalidConnection = errors.New("flow: invalid connection")
	ErrBranchTaken       = errors.New("flow: condition branch already connected")
	ErrDuplicateID       = errors.New("flow: duplicate id")
)

// Store defines the contract for holding editor sessions by flow id.
type Store interface {
	// Flows (bulk operations)
	CreateFlow(ctx context.Context, f *Flow) (*Flow, error)
	GetFlow(ctx context.Context, flowID string) (*Flow, error)
	DeleteFlow(ctx context.Context, flowID string) error
	ListFlows(ctx context.Context) ([]string, error)

	// Edit runs fn with exclusive access to the flow's session.
	// Returns ErrFlowNotFound if the flow doesn't exist.
	Edit(ctx context.Context, flowID string, fn func(s *Session) error) error
}
