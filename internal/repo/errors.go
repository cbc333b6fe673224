package repo

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// NotFoundError reports an id with no cache entry. It signals a caller bug
// and is never retried.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %s not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// RemoteWriteError reports a create, update or delete the remote store did not
// confirm. The cache still reflects the last confirmed remote state.
type RemoteWriteError struct {
	Op  string
	ID  string
	Err error
}

func (e *RemoteWriteError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("remote %s task: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("remote %s task %s: %v", e.Op, e.ID, e.Err)
}

func (e *RemoteWriteError) Unwrap() error { return e.Err }

// RemoteReadError reports a failed fetch of the task collection. The previous
// cache contents are kept.
type RemoteReadError struct {
	Err error
}

func (e *RemoteReadError) Error() string {
	return fmt.Sprintf("remote list tasks: %v", e.Err)
}

func (e *RemoteReadError) Unwrap() error { return e.Err }
