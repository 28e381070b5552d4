package engine

import (
	"errors"
	"fmt"

	"github.com/klothoplatform/stackgraph/pkg/construct"
)

var (
	ErrCollaborator     = errors.New("collaborator failed")
	ErrAlreadyResolved  = errors.New("graph has already been resolved")
	ErrMultipleProvider = errors.New("resource depends on more than one provider")
)

// CollaboratorError wraps a failure of the external Lookup or Provision collaborator. It aborts the
// resolution pass; re-running the build is the recovery strategy.
type CollaboratorError struct {
	Resource  construct.ResourceId
	Operation string
	Err       error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s of %s failed: %v", e.Operation, e.Resource, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

func (e *CollaboratorError) Is(target error) bool {
	return target == ErrCollaborator
}
