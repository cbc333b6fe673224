package engine

import (
	"context"
	"strings"

	"inspectline/internal/domain"
	"inspectline/internal/events"
	"inspectline/internal/repo"
)

type Decision string

const (
	DecisionApprove Decision = "Approve"
	DecisionReject  Decision = "Reject"
)

// ParseDecision accepts approve/reject in any case.
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approve", "approved":
		return DecisionApprove, nil
	case "reject", "rejected":
		return DecisionReject, nil
	}
	return "", invalidField("invalid_decision", "decision", "unknown decision %q (want approve or reject)", s)
}

func (e Engine) Approve(ctx context.Context, taskID string) (domain.Task, error) {
	return e.Decide(ctx, taskID, DecisionApprove, "")
}

func (e Engine) Reject(ctx context.Context, taskID, reason string) (domain.Task, error) {
	return e.Decide(ctx, taskID, DecisionReject, reason)
}

// Decide applies a reviewer decision to a PendingForApproval task. Approval
// is terminal; rejection sends the task back to the inspector with a reason.
func (e Engine) Decide(ctx context.Context, taskID string, d Decision, reason string) (domain.Task, error) {
	reason = strings.TrimSpace(reason)
	var (
		target  domain.Status
		patch   repo.Patch
		evtType string
	)
	now := e.timestamp()
	switch d {
	case DecisionApprove:
		target = domain.StatusApproved
		patch = repo.Patch{Status: ptr(target), ApprovedAt: ptr(now)}
		evtType = events.TaskApproved
	case DecisionReject:
		if reason == "" {
			return domain.Task{}, ErrMissingRejectionReason
		}
		target = domain.StatusRejected
		patch = repo.Patch{Status: ptr(target), RejectedAt: ptr(now), RejectionReason: ptr(reason)}
		evtType = events.TaskRejected
	default:
		return domain.Task{}, invalidField("invalid_decision", "decision", "unknown decision %q", d)
	}
	t, err := e.Tasks.Get(ctx, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	if err := e.ensureTransition(t, target); err != nil {
		return domain.Task{}, err
	}
	updated, err := e.Tasks.Update(ctx, t.ID, patch)
	if err != nil {
		return domain.Task{}, err
	}
	payload := events.EventPayload{"from_status": t.Status, "to_status": updated.Status}
	if reason != "" {
		payload["reason"] = reason
	}
	e.record(ctx, evtType, updated.ID, payload)
	e.logger().Info("review decision applied", "task_id", updated.ID, "decision", d)
	return updated, nil
}
