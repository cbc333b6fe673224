package engine

import (
	"context"
	"errors"
	"strings"

	"inspectline/internal/catalog"
	"inspectline/internal/domain"
	"inspectline/internal/events"
	"inspectline/internal/repo"
)

// AssignmentRequest describes one assignment made by a supervisor. When
// Existing is set the request edits that task instead of creating new ones.
type AssignmentRequest struct {
	Description string
	Inspector   *domain.User
	DueDate     string
	TaskType    domain.TaskType
	AssetIDs    []string
	Existing    *domain.Task
}

// AssignmentResult holds the tasks the remote store confirmed.
type AssignmentResult struct {
	Tasks []domain.Task
}

// Count is the number of confirmed creations (or 1 for an edit).
func (r AssignmentResult) Count() int { return len(r.Tasks) }

// Assign creates one Pending task per selected asset, sequentially. If a
// create fails, the tasks already created stay persisted and the result
// holds them alongside a *PartialAssignmentError.
func (e Engine) Assign(ctx context.Context, req AssignmentRequest) (AssignmentResult, error) {
	if err := validateAssignment(req); err != nil {
		return AssignmentResult{}, err
	}
	if req.Existing != nil {
		t, err := e.editAssignment(ctx, req)
		if err != nil {
			return AssignmentResult{}, err
		}
		return AssignmentResult{Tasks: []domain.Task{t}}, nil
	}
	snapshots, err := e.resolveAssets(ctx, req.TaskType, req.AssetIDs)
	if err != nil {
		return AssignmentResult{}, err
	}

	var res AssignmentResult
	for _, snap := range snapshots {
		draft := domain.Task{
			Description:    strings.TrimSpace(req.Description),
			AssignedTo:     req.Inspector.ID,
			AssignedToName: req.Inspector.Name,
			AssignedToDept: req.Inspector.Department,
			DueDate:        strings.TrimSpace(req.DueDate),
			TaskType:       req.TaskType,
			Status:         domain.StatusPending,
		}
		attachAsset(&draft, snap)
		t, err := e.Tasks.Create(ctx, draft)
		if err != nil {
			e.logger().Warn("assignment stopped", "asset_id", snap.ID, "created", res.Count(), "total", len(snapshots), "error", err)
			return res, &PartialAssignmentError{Created: res.Count(), Total: len(snapshots), AssetID: snap.ID, Err: err}
		}
		res.Tasks = append(res.Tasks, t)
		e.record(ctx, events.TaskAssigned, t.ID, events.EventPayload{
			"asset_id":    snap.ID,
			"task_type":   t.TaskType,
			"assigned_to": t.AssignedTo,
			"due_date":    t.DueDate,
		})
	}
	e.logger().Info("assignment created", "task_type", req.TaskType, "assigned_to", req.Inspector.ID, "count", res.Count())
	return res, nil
}

// editAssignment rewrites an existing task with the revised fields. It never fans out.
func (e Engine) editAssignment(ctx context.Context, req AssignmentRequest) (domain.Task, error) {
	if len(req.AssetIDs) != 1 {
		return domain.Task{}, invalidField("edit_single_asset", "assetIds", "editing a task takes exactly one asset, got %d", len(req.AssetIDs))
	}
	current, err := e.Tasks.Get(ctx, req.Existing.ID)
	if err != nil {
		return domain.Task{}, err
	}
	snapshots, err := e.resolveAssets(ctx, req.TaskType, req.AssetIDs)
	if err != nil {
		return domain.Task{}, err
	}
	snap := snapshots[0]
	snap.AssetID = snap.ID
	patch := repo.Patch{
		Description:    ptr(strings.TrimSpace(req.Description)),
		AssignedTo:     ptr(req.Inspector.ID),
		AssignedToName: ptr(req.Inspector.Name),
		AssignedToDept: ptr(req.Inspector.Department),
		DueDate:        ptr(strings.TrimSpace(req.DueDate)),
		TaskType:       ptr(req.TaskType),
	}
	switch req.TaskType {
	case domain.TaskTypeBASet:
		patch.BASets = &[]domain.Asset{snap}
		patch.SafetyKits = &[]domain.Asset{}
	case domain.TaskTypeSafetyKit:
		patch.SafetyKits = &[]domain.Asset{snap}
		patch.BASets = &[]domain.Asset{}
	}
	t, err := e.Tasks.Update(ctx, current.ID, patch)
	if err != nil {
		return domain.Task{}, err
	}
	e.record(ctx, events.TaskUpdated, t.ID, events.EventPayload{
		"asset_id":    snap.ID,
		"assigned_to": t.AssignedTo,
		"due_date":    t.DueDate,
	})
	return t, nil
}

func validateAssignment(req AssignmentRequest) error {
	if strings.TrimSpace(req.Description) == "" {
		return ErrEmptyDescription
	}
	if req.Inspector == nil || req.Inspector.ID == "" {
		return ErrNoInspectorSelected
	}
	if strings.TrimSpace(req.DueDate) == "" {
		return ErrNoDueDate
	}
	if _, err := domain.ParseTaskType(string(req.TaskType)); err != nil {
		return invalidField("invalid_task_type", "taskType", "%v", err)
	}
	if len(req.AssetIDs) == 0 {
		return ErrNoAssetsSelected
	}
	seen := make(map[string]struct{}, len(req.AssetIDs))
	for _, id := range req.AssetIDs {
		if strings.TrimSpace(id) == "" {
			return invalidField("empty_asset_id", "assetIds", "asset ids must not be empty")
		}
		if _, dup := seen[id]; dup {
			return invalidField("duplicate_asset", "assetIds", "asset %s selected more than once", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// resolveAssets looks every id up before anything is written, so an unknown
// asset never leaves a half-done fan-out behind.
func (e Engine) resolveAssets(ctx context.Context, tt domain.TaskType, ids []string) ([]domain.Asset, error) {
	out := make([]domain.Asset, 0, len(ids))
	for _, id := range ids {
		a, err := e.Assets.Resolve(ctx, tt, id)
		if err != nil {
			if errors.Is(err, catalog.ErrAssetNotFound) {
				return nil, invalidField("unknown_asset", "assetIds", "asset %s is not a known %s asset", id, tt)
			}
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func attachAsset(t *domain.Task, snap domain.Asset) {
	snap.AssetID = snap.ID
	switch t.TaskType {
	case domain.TaskTypeBASet:
		t.BASets = []domain.Asset{snap}
	case domain.TaskTypeSafetyKit:
		t.SafetyKits = []domain.Asset{snap}
	}
}
