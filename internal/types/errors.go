package types

import (
	"errors"
	"fmt"
)

// ErrCollaborator matches every failure of an external service.
var ErrCollaborator = errors.New("collaborator failure")

// CollaboratorError wraps a failed call to an external service.
type CollaboratorError struct {
	Collaborator string
	Op           string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Collaborator, e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

func (e *CollaboratorError) Is(target error) bool { return target == ErrCollaborator }

// Collaborator wraps err as a CollaboratorError. A nil err stays nil and an
// error that already is a CollaboratorError is returned unchanged.
func Collaborator(name, op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CollaboratorError
	if errors.As(err, &ce) {
		return err
	}
	return &CollaboratorError{Collaborator: name, Op: op, Err: err}
}
