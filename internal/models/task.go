// internal/models/task.go
package models

import "time"

// TaskStatus defines the lifecycle statuses of a project task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusReview     TaskStatus = "REVIEW"
	StatusDone       TaskStatus = "DONE"
	StatusOverdue    TaskStatus = "OVERDUE"
	StatusAborted    TaskStatus = "ABORTED"
	StatusOnHold     TaskStatus = "ON_HOLD"
)

// IsValid reports whether s is one of the known statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone,
		StatusOverdue, StatusAborted, StatusOnHold:
		return true
	}
	return false
}

// IsFrozen reports whether automatic derivation is suspended for s.
func (s TaskStatus) IsFrozen() bool {
	return s == StatusAborted || s == StatusOnHold
}

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) IsValid() bool {
	return s == ApprovalPending || s == ApprovalApproved || s == ApprovalRejected
}

// Gate is an approval checkpoint on a task.
type Gate string

const (
	GateStart      Gate = "start"
	GateCompletion Gate = "completion"
)

// Party is an approver at a gate.
type Party string

const (
	PartyClient   Party = "client"
	PartyAdmin    Party = "admin"
	PartyDesigner Party = "designer"
)

// TaskApproval is a single (gate, party) cell.
type TaskApproval struct {
	Status     ApprovalStatus `json:"status" bson:"status"`
	ApproverID string         `json:"approver_id,omitempty" bson:"approverId,omitempty"`
	UpdatedAt  *time.Time     `json:"updated_at,omitempty" bson:"updatedAt,omitempty"`
}

// ApprovalFlow holds the independent approvals of one gate.
// Designer is optional and never gates a status transition.
type ApprovalFlow struct {
	Client   TaskApproval  `json:"client" bson:"client"`
	Admin    TaskApproval  `json:"admin" bson:"admin"`
	Designer *TaskApproval `json:"designer,omitempty" bson:"designer,omitempty"`
}

type TaskApprovals struct {
	Start      ApprovalFlow `json:"start" bson:"start"`
	Completion ApprovalFlow `json:"completion" bson:"completion"`
}

// NewTaskApprovals returns a ledger with every mandatory cell pending.
func NewTaskApprovals() TaskApprovals {
	pending := TaskApproval{Status: ApprovalPending}
	return TaskApprovals{
		Start:      ApprovalFlow{Client: pending, Admin: pending},
		Completion: ApprovalFlow{Client: pending, Admin: pending},
	}
}

type SubTask struct {
	ID        string `json:"id" bson:"id"`
	Title     string `json:"title" bson:"title"`
	Completed bool   `json:"completed" bson:"completed"`
}

// Task belongs to exactly one project.
type Task struct {
	ID           string        `json:"id" bson:"_id"`
	ProjectID    string        `json:"project_id" bson:"projectId"`
	Title        string        `json:"title" bson:"title"`
	Description  string        `json:"description,omitempty" bson:"description,omitempty"`
	Status       TaskStatus    `json:"status" bson:"status"`
	Progress     *int          `json:"progress,omitempty" bson:"progress,omitempty"`
	SubTasks     []SubTask     `json:"subtasks" bson:"subtasks"`
	Dependencies []string      `json:"dependencies" bson:"dependencies"`
	AssigneeID   string        `json:"assignee_id,omitempty" bson:"assigneeId,omitempty"`
	Approvals    TaskApprovals `json:"approvals" bson:"approvals"`
	DueDate      *time.Time    `json:"due_date,omitempty" bson:"dueDate,omitempty"`
	CreatedAt    time.Time     `json:"created_at" bson:"createdAt"`
	UpdatedAt    time.Time     `json:"updated_at" bson:"updatedAt"`
}

// TaskView is a task together with the values derived from it on read.
type TaskView struct {
	Task
	Completion    int        `json:"completion"`
	Blocked       bool       `json:"blocked"`
	BlockedBy     []string   `json:"blocked_by,omitempty"`
	DerivedStatus TaskStatus `json:"derived_status"`
}
