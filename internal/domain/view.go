package domain

// ReviewView is what a reviewer screen shows for one task.
type ReviewView struct {
	TaskID         string          `json:"taskId"`
	TaskType       TaskType        `json:"taskType"`
	Status         Status          `json:"status"`
	Description    string          `json:"description"`
	Inspector      string          `json:"inspector"`
	Department     string          `json:"department,omitempty"`
	DueDate        string          `json:"dueDate"`
	Asset          Asset           `json:"asset"`
	SubmittedAt    string          `json:"submittedAt,omitempty"`
	InspectedBy    string          `json:"inspectedBy,omitempty"`
	Inspection     *InspectionData `json:"inspection,omitempty"`
	Decidable      bool            `json:"decidable"`
	LastRejection  string          `json:"lastRejection,omitempty"`
	DefectiveItems []string        `json:"defectiveItems,omitempty"`
}

// NewReviewView projects a task onto the reviewer screen model.
func NewReviewView(t Task) ReviewView {
	asset, _ := t.Asset()
	inspector := t.AssignedToName
	if inspector == "" {
		inspector = t.AssignedTo
	}
	v := ReviewView{
		TaskID:        t.ID,
		TaskType:      t.TaskType,
		Status:        t.Status,
		Description:   t.Description,
		Inspector:     inspector,
		Department:    t.AssignedToDept,
		DueDate:       t.DueDate,
		Asset:         asset,
		SubmittedAt:   t.SubmittedAt,
		InspectedBy:   t.InspectedBy,
		Decidable:     t.Status == StatusPendingForApproval,
		LastRejection: t.RejectionReason,
	}
	if t.InspectionData != nil {
		d := t.InspectionData.Clone()
		v.Inspection = &d
		for _, item := range BAChecklistItems {
			if d.Checklist[item] == CheckNotOK {
				v.DefectiveItems = append(v.DefectiveItems, item)
			}
		}
	}
	return v
}
