package runtime

import (
	"errors"
	"fmt"

	"github.com/aretw0/kiteflow/pkg/domain"
)

var (
	// ErrRecursionLimit is matched by every RecursionLimitError.
	ErrRecursionLimit = errors.New("recursion limit exceeded")

	// ErrUnimplementedMode is matched by every UnimplementedModeError.
	ErrUnimplementedMode = errors.New("unimplemented condition mode")
)

// RecursionLimitError aborts a dispatch whose walk went deeper than MaxDepth.
type RecursionLimitError struct {
	NodeID string
	Limit  int
}

func (e *RecursionLimitError) Error() string {
	return fmt.Sprintf("recursion limit of %d reached at node '%s'", e.Limit, e.NodeID)
}

func (e *RecursionLimitError) Unwrap() error {
	return ErrRecursionLimit
}

// UnimplementedModeError reports a condition item whose mode cannot be evaluated.
type UnimplementedModeError struct {
	NodeID string
	Mode   domain.CompareMode
}

func (e *UnimplementedModeError) Error() string {
	if e.NodeID == "" {
		return fmt.Sprintf("condition mode '%s' is not implemented", e.Mode)
	}
	return fmt.Sprintf("condition item '%s': mode '%s' is not implemented", e.NodeID, e.Mode)
}

func (e *UnimplementedModeError) Unwrap() error {
	return ErrUnimplementedMode
}
