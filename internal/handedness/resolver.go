// Package handedness decides which physical controller index plays the left
// and which the right role for an XR session.
package handedness

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/soar/VRPawn/internal/xr"
)

// Default enumeration: index 0 is the right hand, index 1 the left.
const (
	defaultRightIndex = 0
	defaultLeftIndex  = 1
)

// Assignment maps physical indices to roles.
type Assignment struct {
	RIndex int
	LIndex int
}

// DefaultAssignment is used until (and unless) the first event says otherwise.
func DefaultAssignment() Assignment {
	return Assignment{RIndex: defaultRightIndex, LIndex: defaultLeftIndex}
}

// RoleOf returns the role played by a physical index.
func (a Assignment) RoleOf(index int) (xr.Role, bool) {
	switch index {
	case a.RIndex:
		return xr.Right, true
	case a.LIndex:
		return xr.Left, true
	}
	return 0, false
}

// IndexOf returns the physical index playing a role.
func (a Assignment) IndexOf(role xr.Role) int {
	if role == xr.Left {
		return a.LIndex
	}
	return a.RIndex
}

// ConflictError is the panic value raised when an assignment maps both roles
// to one index. It cannot happen through Resolver and indicates a bug.
type ConflictError struct {
	Assignment Assignment
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("role assignment conflict: right and left both at index %d", e.Assignment.RIndex)
}

func (a Assignment) mustValid() Assignment {
	if a.RIndex == a.LIndex {
		panic(ConflictError{Assignment: a})
	}
	return a
}

// Resolver inspects the first source event of a session, once.
type Resolver struct {
	logger     *zap.Logger
	assignment Assignment
	resolved   bool
}

// NewResolver returns a resolver holding the default assignment.
func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{logger: logger, assignment: DefaultAssignment()}
}

// Observe resolves the assignment from the first event it ever sees; every
// later call returns the assignment unchanged. Reconnects within a session
// therefore never swap roles.
func (r *Resolver) Observe(events []xr.SourceEvent) Assignment {
	if r.resolved || len(events) == 0 {
		return r.assignment
	}
	first := events[0]
	r.resolved = true
	if first.Index == 0 && first.Handedness == xr.HandednessLeft {
		r.assignment = Assignment{RIndex: defaultLeftIndex, LIndex: defaultRightIndex}
	}
	r.assignment = r.assignment.mustValid()
	r.logger.Info("controller roles resolved",
		zap.Int("first_index", first.Index),
		zap.String("first_handedness", string(first.Handedness)),
		zap.Int("right_index", r.assignment.RIndex),
		zap.Int("left_index", r.assignment.LIndex))
	return r.assignment
}

// Assignment returns the current assignment.
func (r *Resolver) Assignment() Assignment {
	return r.assignment
}

// Resolved reports whether the first event has been seen.
func (r *Resolver) Resolved() bool {
	return r.resolved
}

// Reset re-arms resolution for a new session.
func (r *Resolver) Reset() {
	r.assignment = DefaultAssignment()
	r.resolved = false
}
