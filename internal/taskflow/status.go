package taskflow

import (
	"errors"

	"interiorerp/internal/models"
)

var (
	ErrTaskFrozen            = errors.New("task is frozen")
	ErrCompletionNotApproved = errors.New("completion requires start and completion approvals from client and admin")
)

// DeriveStatus computes the lifecycle status of t from its subtasks and
// approvals. It is pure and idempotent: frozen and subtask-less tasks keep
// current, everything else follows subtask completion and the four gating
// approvals.
func DeriveStatus(t *models.Task, current models.TaskStatus) models.TaskStatus {
	if current.IsFrozen() {
		return current
	}
	if t == nil || len(t.SubTasks) == 0 {
		return current
	}
	done := completedSubTasks(t)
	switch {
	case done == 0:
		return models.StatusTodo
	case done == len(t.SubTasks):
		if GatesApproved(t) {
			return models.StatusDone
		}
		return models.StatusReview
	}
	return models.StatusInProgress
}

// CompleteTransitions is the "complete" action keyed by current status.
// The first press moves work into REVIEW, a second press from REVIEW confirms
// DONE. Frozen statuses have no entry.
var CompleteTransitions = map[models.TaskStatus]models.TaskStatus{
	models.StatusTodo:       models.StatusReview,
	models.StatusInProgress: models.StatusReview,
	models.StatusOverdue:    models.StatusReview,
	models.StatusReview:     models.StatusDone,
	models.StatusDone:       models.StatusDone,
}

// Complete applies the complete action to t: every subtask is marked done and
// the next status comes from CompleteTransitions. t.Status is updated only
// when the transition is allowed.
func Complete(t *models.Task) (models.TaskStatus, error) {
	next, ok := CompleteTransitions[t.Status]
	if !ok {
		return t.Status, ErrTaskFrozen
	}
	if next == models.StatusDone && !GatesApproved(t) {
		return t.Status, ErrCompletionNotApproved
	}
	for i := range t.SubTasks {
		t.SubTasks[i].Completed = true
	}
	t.Status = next
	return next, nil
}

// View decorates t with its derived progress, blocking and status.
func View(t models.Task, tasks []models.Task) models.TaskView {
	blocking := BlockingTasks(&t, tasks)
	ids := make([]string, 0, len(blocking))
	for _, b := range blocking {
		ids = append(ids, b.ID)
	}
	return models.TaskView{
		Task:          t,
		Completion:    CalculateProgress(&t),
		Blocked:       t.Status.IsFrozen() || len(blocking) > 0,
		BlockedBy:     ids,
		DerivedStatus: DeriveStatus(&t, t.Status),
	}
}

// Board returns the views of every task in the project.
func Board(tasks []models.Task) []models.TaskView {
	out := make([]models.TaskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, View(t, tasks))
	}
	return out
}
