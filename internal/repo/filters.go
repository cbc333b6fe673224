package repo

import "inspectline/internal/domain"

type TaskFilters struct {
	Status     domain.Status
	AssignedTo string
	TaskType   domain.TaskType
}

// Filter keeps the tasks matching every non-empty field of f, preserving order.
func Filter(tasks []domain.Task, f TaskFilters) []domain.Task {
	var out []domain.Task
	for _, t := range tasks {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.AssignedTo != "" && t.AssignedTo != f.AssignedTo {
			continue
		}
		if f.TaskType != "" && t.TaskType != f.TaskType {
			continue
		}
		out = append(out, t)
	}
	return out
}

// InspectorInbox returns the tasks an inspector still has to (re)submit.
func InspectorInbox(tasks []domain.Task, userID string) []domain.Task {
	var out []domain.Task
	for _, t := range tasks {
		if t.AssignedTo != userID {
			continue
		}
		switch t.Status {
		case domain.StatusPending, domain.StatusRejected:
			out = append(out, t)
		case domain.StatusPendingForApproval, domain.StatusApproved:
		}
	}
	return out
}

// ReviewQueue returns the tasks awaiting a reviewer decision.
func ReviewQueue(tasks []domain.Task) []domain.Task {
	return Filter(tasks, TaskFilters{Status: domain.StatusPendingForApproval})
}

// CountByStatus counts tasks per status; every known status has an entry.
func CountByStatus(tasks []domain.Task) map[domain.Status]int {
	counts := make(map[domain.Status]int, len(domain.Statuses()))
	for _, st := range domain.Statuses() {
		counts[st] = 0
	}
	for _, t := range tasks {
		counts[t.Status]++
	}
	return counts
}
