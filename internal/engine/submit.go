package engine

import (
	"context"
	"fmt"

	"inspectline/internal/domain"
	"inspectline/internal/events"
	"inspectline/internal/repo"
)

// SubmitInspection attaches the inspector's findings to a Pending or
// Rejected task and moves it to PendingForApproval. A resubmission keeps the
// previous rejectedAt and rejectionReason as history.
func (e Engine) SubmitInspection(ctx context.Context, taskID string, data domain.InspectionData) (domain.Task, error) {
	inspector, err := e.Session.UserID()
	if err != nil {
		return domain.Task{}, fmt.Errorf("submit inspection: %w", err)
	}
	t, err := e.Tasks.Get(ctx, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	if err := e.ensureTransition(t, domain.StatusPendingForApproval); err != nil {
		return domain.Task{}, err
	}
	if err := validateInspection(t, data); err != nil {
		return domain.Task{}, err
	}
	resubmission := t.Status == domain.StatusRejected
	updated, err := e.Tasks.Update(ctx, t.ID, repo.Patch{
		Status:         ptr(domain.StatusPendingForApproval),
		InspectionData: &data,
		SubmittedAt:    ptr(e.timestamp()),
		InspectedBy:    ptr(inspector),
	})
	if err != nil {
		return domain.Task{}, err
	}
	e.record(ctx, events.TaskSubmitted, updated.ID, events.EventPayload{
		"from_status":  t.Status,
		"to_status":    updated.Status,
		"resubmission": resubmission,
	})
	return updated, nil
}

// validateInspection checks the payload against the form of the task type.
// Safety kit material rows have no required fields.
func validateInspection(t domain.Task, data domain.InspectionData) error {
	switch t.TaskType {
	case domain.TaskTypeBASet:
		if len(data.Materials) > 0 {
			return invalidField("payload_mismatch", "inspectionData", "BA-SET inspection cannot carry material rows")
		}
		if missing := data.MissingChecklistItems(); len(missing) > 0 {
			return &IncompleteChecklistError{TaskID: t.ID, Missing: missing}
		}
		if invalid := data.InvalidChecklistItems(); len(invalid) > 0 {
			return invalidField("invalid_checklist_value", "inspectionData.checklist", "invalid checklist entries: %v", invalid)
		}
	case domain.TaskTypeSafetyKit:
		if data.Readings != nil || len(data.Checklist) > 0 {
			return invalidField("payload_mismatch", "inspectionData", "SK inspection cannot carry BA-SET readings or checklist")
		}
	default:
		return invalidField("invalid_task_type", "taskType", "task %s has unknown type %q", t.ID, t.TaskType)
	}
	return nil
}
