package engine

import (
	"errors"
	"fmt"
	"strings"

	"inspectline/internal/domain"
)

// ErrValidation is the parent of every input or precondition failure raised
// before a network call. Callers correct the input; nothing is retried.
var ErrValidation = errors.New("validation failed")

type ValidationError struct {
	Code    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

var (
	ErrEmptyDescription       = &ValidationError{Code: "empty_description", Field: "description", Message: "description is required"}
	ErrNoInspectorSelected    = &ValidationError{Code: "no_inspector_selected", Field: "inspector", Message: "an inspector must be selected"}
	ErrNoDueDate              = &ValidationError{Code: "no_due_date", Field: "dueDate", Message: "due date is required"}
	ErrNoAssetsSelected       = &ValidationError{Code: "no_assets_selected", Field: "assetIds", Message: "at least one asset must be selected"}
	ErrMissingRejectionReason = &ValidationError{Code: "missing_rejection_reason", Field: "reason", Message: "a rejection reason is required"}
)

func invalidField(code, field, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Field: field, Message: fmt.Sprintf(format, args...)}
}

// IncompleteChecklistError lists the BA-set checklist items left unanswered.
type IncompleteChecklistError struct {
	TaskID  string
	Missing []string
}

func (e *IncompleteChecklistError) Error() string {
	return fmt.Sprintf("incomplete checklist for task %s: missing %s", e.TaskID, strings.Join(e.Missing, ", "))
}

func (e *IncompleteChecklistError) Unwrap() error { return ErrValidation }

// TransitionError reports a status change that is not an edge of the task lifecycle.
type TransitionError struct {
	TaskID string
	From   domain.Status
	To     domain.Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid task status transition %s -> %s for task %s", e.From, e.To, e.TaskID)
}

func (e *TransitionError) Unwrap() error { return ErrValidation }

// PartialAssignmentError reports a fan-out that stopped part way. Tasks
// created before the failure stay persisted.
type PartialAssignmentError struct {
	Created int
	Total   int
	AssetID string
	Err     error
}

func (e *PartialAssignmentError) Error() string {
	return fmt.Sprintf("assignment stopped at asset %s after %d of %d tasks: %v", e.AssetID, e.Created, e.Total, e.Err)
}

func (e *PartialAssignmentError) Unwrap() error { return e.Err }
