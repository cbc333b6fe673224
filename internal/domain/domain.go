package domain

import "fmt"

// Status is the lifecycle state of an inspection task.
type Status string

const (
	StatusPending            Status = "Pending"
	StatusPendingForApproval Status = "PendingForApproval"
	StatusApproved           Status = "Approved"
	StatusRejected           Status = "Rejected"
)

var allStatuses = []Status{
	StatusPending,
	StatusPendingForApproval,
	StatusApproved,
	StatusRejected,
}

// Statuses returns every known status in lifecycle order.
func Statuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus accepts the wire form of a status.
func ParseStatus(s string) (Status, error) {
	for _, st := range allStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

// IsTerminal reports whether no transition leaves the status.
func (s Status) IsTerminal() bool {
	return s == StatusApproved
}

// CanTransition reports whether from -> to is an edge of the task lifecycle.
// Staying in the same status is not a transition and is reported as false.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusPendingForApproval
	case StatusPendingForApproval:
		return to == StatusApproved || to == StatusRejected
	case StatusRejected:
		return to == StatusPendingForApproval
	case StatusApproved:
		return false
	}
	return false
}

type TaskType string

const (
	TaskTypeBASet     TaskType = "BA-SET"
	TaskTypeSafetyKit TaskType = "SK"
)

// ParseTaskType accepts the wire form of a task type.
func ParseTaskType(s string) (TaskType, error) {
	switch TaskType(s) {
	case TaskTypeBASet:
		return TaskTypeBASet, nil
	case TaskTypeSafetyKit:
		return TaskTypeSafetyKit, nil
	}
	return "", fmt.Errorf("unknown task type %q", s)
}

// Asset is a snapshot of a catalog entry. AssetID mirrors ID once the
// snapshot is attached to a task.
type Asset struct {
	ID              string `json:"id"`
	AssetID         string `json:"assetId,omitempty"`
	Name            string `json:"name,omitempty"`
	SerialNumber    string `json:"serialNumber,omitempty"`
	Zone            string `json:"zone,omitempty"`
	Location        string `json:"location,omitempty"`
	LastServiceDate string `json:"lastServiceDate,omitempty"`
	NextServiceDate string `json:"nextServiceDate,omitempty"`
}

type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department,omitempty"`
	Role       string `json:"role"`
}

type Task struct {
	ID              string          `json:"id"`
	Description     string          `json:"description"`
	AssignedTo      string          `json:"assignedTo"`
	AssignedToName  string          `json:"assignedToName,omitempty"`
	AssignedToDept  string          `json:"assignedToDept,omitempty"`
	DueDate         string          `json:"dueDate"`
	TaskType        TaskType        `json:"taskType" enum:"BA-SET,SK"`
	Status          Status          `json:"status" enum:"Pending,PendingForApproval,Approved,Rejected"`
	BASets          []Asset         `json:"baSets,omitempty"`
	SafetyKits      []Asset         `json:"safetyKits,omitempty"`
	InspectionData  *InspectionData `json:"inspectionData,omitempty"`
	SubmittedAt     string          `json:"submittedAt,omitempty"`
	InspectedBy     string          `json:"inspectedBy,omitempty"`
	ApprovedAt      string          `json:"approvedAt,omitempty"`
	RejectedAt      string          `json:"rejectedAt,omitempty"`
	RejectionReason string          `json:"rejectionReason,omitempty"`
	CreatedAt       string          `json:"createdAt,omitempty" format:"date-time"`
}

// Asset returns the single asset the task is about, if any.
func (t Task) Asset() (Asset, bool) {
	assets := t.BASets
	if t.TaskType == TaskTypeSafetyKit {
		assets = t.SafetyKits
	}
	if len(assets) == 0 {
		return Asset{}, false
	}
	return assets[0], true
}

// Clone returns a deep copy so callers cannot alias cached slices.
func (t Task) Clone() Task {
	out := t
	if t.BASets != nil {
		out.BASets = append([]Asset(nil), t.BASets...)
	}
	if t.SafetyKits != nil {
		out.SafetyKits = append([]Asset(nil), t.SafetyKits...)
	}
	if t.InspectionData != nil {
		d := t.InspectionData.Clone()
		out.InspectionData = &d
	}
	return out
}

// CheckInvariants verifies the audit trail is consistent with the status.
// approvedAt exists only on Approved tasks and a Rejected task always carries
// its reason. The reason may outlive its rejection as history once the task
// is resubmitted or approved.
func (t Task) CheckInvariants() error {
	if len(t.BASets)+len(t.SafetyKits) > 1 {
		return fmt.Errorf("task %s holds %d assets; at most one allowed", t.ID, len(t.BASets)+len(t.SafetyKits))
	}
	switch t.Status {
	case StatusPending:
		if t.ApprovedAt != "" {
			return fmt.Errorf("task %s is pending but has approvedAt", t.ID)
		}
	case StatusPendingForApproval:
		if t.ApprovedAt != "" {
			return fmt.Errorf("task %s awaits approval but has approvedAt", t.ID)
		}
		if t.SubmittedAt == "" || t.InspectedBy == "" {
			return fmt.Errorf("task %s awaits approval without submission audit", t.ID)
		}
	case StatusApproved:
		if t.ApprovedAt == "" {
			return fmt.Errorf("task %s is approved without approvedAt", t.ID)
		}
	case StatusRejected:
		if t.ApprovedAt != "" {
			return fmt.Errorf("task %s is rejected but has approvedAt", t.ID)
		}
		if t.RejectionReason == "" || t.RejectedAt == "" {
			return fmt.Errorf("task %s is rejected without reason", t.ID)
		}
	default:
		return fmt.Errorf("task %s has unknown status %q", t.ID, t.Status)
	}
	return nil
}
