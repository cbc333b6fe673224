package repo

import "inspectline/internal/domain"

// Patch lists the fields an update overwrites; nil fields keep their value.
type Patch struct {
	Description     *string
	AssignedTo      *string
	AssignedToName  *string
	AssignedToDept  *string
	DueDate         *string
	TaskType        *domain.TaskType
	Status          *domain.Status
	BASets          *[]domain.Asset
	SafetyKits      *[]domain.Asset
	InspectionData  *domain.InspectionData
	SubmittedAt     *string
	InspectedBy     *string
	ApprovedAt      *string
	RejectedAt      *string
	RejectionReason *string
}

// Apply returns t with the patch fields overwritten.
func (p Patch) Apply(t domain.Task) domain.Task {
	out := t.Clone()
	setString(&out.Description, p.Description)
	setString(&out.AssignedTo, p.AssignedTo)
	setString(&out.AssignedToName, p.AssignedToName)
	setString(&out.AssignedToDept, p.AssignedToDept)
	setString(&out.DueDate, p.DueDate)
	if p.TaskType != nil {
		out.TaskType = *p.TaskType
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.BASets != nil {
		out.BASets = append([]domain.Asset(nil), (*p.BASets)...)
	}
	if p.SafetyKits != nil {
		out.SafetyKits = append([]domain.Asset(nil), (*p.SafetyKits)...)
	}
	if p.InspectionData != nil {
		d := p.InspectionData.Clone()
		out.InspectionData = &d
	}
	setString(&out.SubmittedAt, p.SubmittedAt)
	setString(&out.InspectedBy, p.InspectedBy)
	setString(&out.ApprovedAt, p.ApprovedAt)
	setString(&out.RejectedAt, p.RejectedAt)
	setString(&out.RejectionReason, p.RejectionReason)
	return out
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
