package taskflow

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"interiorerp/internal/models"
)

func intPtr(v int) *int { return &v }

func subtasks(done ...bool) []models.SubTask {
	out := make([]models.SubTask, len(done))
	for i, d := range done {
		out[i] = models.SubTask{ID: string(rune('a' + i)), Title: "step", Completed: d}
	}
	return out
}

func approvedTask() models.Task {
	t := models.Task{ID: "t1", Status: models.StatusReview, SubTasks: subtasks(true, true), Approvals: models.NewTaskApprovals()}
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for _, g := range []models.Gate{models.GateStart, models.GateCompletion} {
		for _, p := range []models.Party{models.PartyClient, models.PartyAdmin} {
			if err := SetApproval(&t, g, p, models.ApprovalApproved, "u", at); err != nil {
				panic(err)
			}
		}
	}
	return t
}

func TestCalculateProgress(t *testing.T) {
	tests := []struct {
		name string
		task *models.Task
		want int
	}{
		{"nil task", nil, 0},
		{"explicit wins over subtasks", &models.Task{Progress: intPtr(30), SubTasks: subtasks(true, true)}, 30},
		{"explicit clamped high", &models.Task{Progress: intPtr(140)}, 100},
		{"explicit clamped low", &models.Task{Progress: intPtr(-5)}, 0},
		{"subtask ratio rounds", &models.Task{SubTasks: subtasks(true, false, false)}, 33},
		{"subtask ratio rounds up", &models.Task{SubTasks: subtasks(true, true, false)}, 67},
		{"all subtasks", &models.Task{SubTasks: subtasks(true, true)}, 100},
		{"done status", &models.Task{Status: models.StatusDone}, 100},
		{"review status", &models.Task{Status: models.StatusReview}, 100},
		{"in progress status", &models.Task{Status: models.StatusInProgress}, 50},
		{"todo status", &models.Task{Status: models.StatusTodo}, 0},
		{"on hold status", &models.Task{Status: models.StatusOnHold}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateProgress(tt.task); got != tt.want {
				t.Fatalf("CalculateProgress = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsBlocked(t *testing.T) {
	a := models.Task{ID: "A", Status: models.StatusInProgress}
	b := models.Task{ID: "B", Status: models.StatusTodo, Dependencies: []string{"A"}}

	if !IsBlocked(&b, []models.Task{a, b}) {
		t.Fatalf("expected B blocked while A is IN_PROGRESS")
	}

	a.Status = models.StatusDone
	if IsBlocked(&b, []models.Task{a, b}) {
		t.Fatalf("expected B unblocked once A is DONE")
	}

	frozen := models.Task{ID: "C", Status: models.StatusOnHold}
	if !IsBlocked(&frozen, nil) {
		t.Fatalf("frozen task must be blocked")
	}

	dangling := models.Task{ID: "D", Status: models.StatusTodo, Dependencies: []string{"missing"}}
	if IsBlocked(&dangling, []models.Task{dangling}) {
		t.Fatalf("dangling dependency must not block")
	}
}

func TestBlockingTasks(t *testing.T) {
	tasks := []models.Task{
		{ID: "A", Status: models.StatusDone},
		{ID: "B", Status: models.StatusReview},
		{ID: "C", Status: models.StatusTodo},
		{ID: "D", Dependencies: []string{"A", "B", "C", "X"}},
	}
	got := BlockingTasks(&tasks[3], tasks)
	if len(got) != 2 || got[0].ID != "B" || got[1].ID != "C" {
		t.Fatalf("unexpected blocking set: %+v", got)
	}
}

func TestValidateDependencies(t *testing.T) {
	tasks := []models.Task{
		{ID: "A"},
		{ID: "B", Dependencies: []string{"A"}},
		{ID: "C", Dependencies: []string{"B"}},
	}
	if err := ValidateDependencies("C", []string{"A", "B"}, tasks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateDependencies("A", []string{"C"}, tasks); !errors.Is(err, ErrDependencyCycle) {
		t.Fatalf("expected cycle, got %v", err)
	}
	if err := ValidateDependencies("A", []string{"A"}, tasks); !errors.Is(err, ErrSelfDependency) {
		t.Fatalf("expected self dependency, got %v", err)
	}
	if err := ValidateDependencies("A", []string{"Z"}, tasks); !errors.Is(err, ErrUnknownDependency) {
		t.Fatalf("expected unknown dependency, got %v", err)
	}
	// new task not yet in the set
	if err := ValidateDependencies("N", []string{"C"}, tasks); err != nil {
		t.Fatalf("unexpected error for new task: %v", err)
	}
}

func TestSetApprovalTouchesOneCell(t *testing.T) {
	task := models.Task{Approvals: models.NewTaskApprovals()}
	task.Approvals.Completion.Designer = &models.TaskApproval{Status: models.ApprovalRejected}
	before := task.Approvals

	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := SetApproval(&task, models.GateCompletion, models.PartyClient, models.ApprovalApproved, "client-1", at); err != nil {
		t.Fatalf("SetApproval: %v", err)
	}

	if task.Approvals.Completion.Client.Status != models.ApprovalApproved {
		t.Fatalf("completion.client not approved")
	}
	if task.Approvals.Completion.Client.ApproverID != "client-1" || !task.Approvals.Completion.Client.UpdatedAt.Equal(at) {
		t.Fatalf("cell not stamped: %+v", task.Approvals.Completion.Client)
	}
	if !reflect.DeepEqual(task.Approvals.Start, before.Start) {
		t.Fatalf("start gate changed")
	}
	if !reflect.DeepEqual(task.Approvals.Completion.Admin, before.Completion.Admin) {
		t.Fatalf("completion.admin changed")
	}
	if task.Approvals.Completion.Designer.Status != models.ApprovalRejected {
		t.Fatalf("completion.designer changed")
	}
}

func TestSetApprovalReapproveAndValidation(t *testing.T) {
	task := models.Task{Approvals: models.NewTaskApprovals()}
	now := time.Now()
	if err := SetApproval(&task, models.GateStart, models.PartyAdmin, models.ApprovalRejected, "a", now); err != nil {
		t.Fatal(err)
	}
	if err := SetApproval(&task, models.GateStart, models.PartyAdmin, models.ApprovalApproved, "a", now); err != nil {
		t.Fatal(err)
	}
	if task.Approvals.Start.Admin.Status != models.ApprovalApproved {
		t.Fatalf("re-approval not applied")
	}
	if task.Approvals.Start.Client.Status != models.ApprovalPending {
		t.Fatalf("rejection cascaded to client")
	}

	if err := SetApproval(&task, "middle", models.PartyAdmin, models.ApprovalApproved, "a", now); !errors.Is(err, ErrInvalidGate) {
		t.Fatalf("expected invalid gate, got %v", err)
	}
	if err := SetApproval(&task, models.GateStart, "vendor", models.ApprovalApproved, "a", now); !errors.Is(err, ErrInvalidParty) {
		t.Fatalf("expected invalid party, got %v", err)
	}
	if err := SetApproval(&task, models.GateStart, models.PartyAdmin, "maybe", "a", now); !errors.Is(err, ErrInvalidApprovalStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
}

func TestDeriveStatus(t *testing.T) {
	full := approvedTask()

	missingAdmin := approvedTask()
	missingAdmin.Approvals.Completion.Admin.Status = models.ApprovalPending

	designerRejected := approvedTask()
	designerRejected.Approvals.Completion.Designer = &models.TaskApproval{Status: models.ApprovalRejected}

	tests := []struct {
		name    string
		task    models.Task
		current models.TaskStatus
		want    models.TaskStatus
	}{
		{"no subtasks keeps current", models.Task{}, models.StatusInProgress, models.StatusInProgress},
		{"none completed", models.Task{SubTasks: subtasks(false, false)}, models.StatusReview, models.StatusTodo},
		{"some completed", models.Task{SubTasks: subtasks(true, false)}, models.StatusTodo, models.StatusInProgress},
		{"all completed without approvals", models.Task{SubTasks: subtasks(true, true), Approvals: models.NewTaskApprovals()}, models.StatusInProgress, models.StatusReview},
		{"all completed with approvals", full, models.StatusReview, models.StatusDone},
		{"completion admin pending", missingAdmin, models.StatusReview, models.StatusReview},
		{"designer never gates", designerRejected, models.StatusReview, models.StatusDone},
		{"aborted is sticky", full, models.StatusAborted, models.StatusAborted},
		{"on hold is sticky", models.Task{SubTasks: subtasks(false)}, models.StatusOnHold, models.StatusOnHold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveStatus(&tt.task, tt.current); got != tt.want {
				t.Fatalf("DeriveStatus = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDeriveStatusScenario(t *testing.T) {
	task := approvedTask()
	task.Approvals.Completion.Admin.Status = models.ApprovalPending

	if got := DeriveStatus(&task, task.Status); got != models.StatusReview {
		t.Fatalf("DeriveStatus = %s, want REVIEW", got)
	}
	if got := CalculateProgress(&task); got != 100 {
		t.Fatalf("CalculateProgress = %d, want 100", got)
	}
}

func TestDeriveStatusIdempotent(t *testing.T) {
	task := models.Task{SubTasks: subtasks(true, false, true), Approvals: models.NewTaskApprovals()}
	snapshot := task
	snapshot.SubTasks = append([]models.SubTask(nil), task.SubTasks...)

	first := DeriveStatus(&task, models.StatusTodo)
	second := DeriveStatus(&task, models.StatusTodo)
	if first != second {
		t.Fatalf("not idempotent: %s vs %s", first, second)
	}
	if CalculateProgress(&task) != CalculateProgress(&task) {
		t.Fatalf("progress not idempotent")
	}
	if !reflect.DeepEqual(task, snapshot) {
		t.Fatalf("input mutated")
	}
}

func TestCompleteTwoPress(t *testing.T) {
	task := approvedTask()
	task.Status = models.StatusInProgress
	task.SubTasks = subtasks(true, false)

	next, err := Complete(&task)
	if err != nil || next != models.StatusReview {
		t.Fatalf("first press: got %s, %v", next, err)
	}
	for _, st := range task.SubTasks {
		if !st.Completed {
			t.Fatalf("subtask %s not completed", st.ID)
		}
	}

	next, err = Complete(&task)
	if err != nil || next != models.StatusDone {
		t.Fatalf("second press: got %s, %v", next, err)
	}
}

func TestCompleteRefusals(t *testing.T) {
	pending := models.Task{Status: models.StatusReview, SubTasks: subtasks(true), Approvals: models.NewTaskApprovals()}
	if _, err := Complete(&pending); !errors.Is(err, ErrCompletionNotApproved) {
		t.Fatalf("expected ErrCompletionNotApproved, got %v", err)
	}
	if pending.Status != models.StatusReview {
		t.Fatalf("status changed on refusal")
	}

	frozen := models.Task{Status: models.StatusAborted}
	if _, err := Complete(&frozen); !errors.Is(err, ErrTaskFrozen) {
		t.Fatalf("expected ErrTaskFrozen, got %v", err)
	}
}

func TestBoard(t *testing.T) {
	tasks := []models.Task{
		{ID: "A", Status: models.StatusInProgress, SubTasks: subtasks(true, false)},
		{ID: "B", Status: models.StatusTodo, Dependencies: []string{"A"}},
	}
	board := Board(tasks)
	if len(board) != 2 {
		t.Fatalf("expected 2 views, got %d", len(board))
	}
	if board[0].Completion != 50 || board[0].Blocked {
		t.Fatalf("unexpected view for A: %+v", board[0])
	}
	if !board[1].Blocked || len(board[1].BlockedBy) != 1 || board[1].BlockedBy[0] != "A" {
		t.Fatalf("unexpected view for B: %+v", board[1])
	}
}
