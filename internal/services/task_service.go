package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"interiorerp/internal/authz"
	"interiorerp/internal/models"
	"interiorerp/internal/repositories"
	"interiorerp/internal/taskflow"
)

type TaskInput struct {
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	SubTasks     []models.SubTask `json:"subtasks"`
	Dependencies []string         `json:"dependencies"`
	AssigneeID   string           `json:"assignee_id"`
	Progress     *int             `json:"progress"`
	DueDate      *time.Time       `json:"due_date"`
}

// TaskPatch carries the fields to change; nil means keep.
// SubTasks and Progress only need progress rights, the rest need edit rights.
type TaskPatch struct {
	Title         *string           `json:"title"`
	Description   *string           `json:"description"`
	SubTasks      *[]models.SubTask `json:"subtasks"`
	Dependencies  *[]string         `json:"dependencies"`
	AssigneeID    *string           `json:"assignee_id"`
	Progress      *int              `json:"progress"`
	ClearProgress bool              `json:"clear_progress"`
	DueDate       *time.Time        `json:"due_date"`
}

type TaskService interface {
	List(ctx context.Context, u *models.User, projectID string) ([]models.TaskView, error)
	Get(ctx context.Context, u *models.User, taskID string) (*models.TaskView, error)
	Create(ctx context.Context, u *models.User, projectID string, in TaskInput) (*models.TaskView, error)
	Update(ctx context.Context, u *models.User, taskID string, patch TaskPatch) (*models.TaskView, error)
	Delete(ctx context.Context, u *models.User, taskID string) error

	SetApproval(ctx context.Context, u *models.User, taskID string, gate models.Gate, party models.Party, status models.ApprovalStatus) (*models.TaskView, error)
	Complete(ctx context.Context, u *models.User, taskID string) (*models.TaskView, error)
	// SetStatus is the manual override. Only Admin may take a task out of a frozen status.
	SetStatus(ctx context.Context, u *models.User, taskID string, to models.TaskStatus) (*models.TaskView, error)
}

type taskService struct {
	projects repositories.ProjectRepository
	tasks    repositories.TaskRepository
	users    repositories.UserRepository
	notifier Notifier
	log      *logrus.Logger
	now      func() time.Time
}

func NewTaskService(
	projects repositories.ProjectRepository,
	tasks repositories.TaskRepository,
	users repositories.UserRepository,
	notifier Notifier,
	log *logrus.Logger,
) TaskService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &taskService{projects: projects, tasks: tasks, users: users, notifier: notifier, log: log, now: time.Now}
}

// loadTask resolves the task, its project and u's rights on both.
func (s *taskService) loadTask(ctx context.Context, u *models.User, taskID string) (*models.Task, *ProjectAccess, authz.TaskCapabilities, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, authz.TaskCapabilities{}, err
	}
	pa, err := loadProject(ctx, s.projects, s.tasks, u, t.ProjectID)
	if err != nil {
		return nil, nil, authz.TaskCapabilities{}, err
	}
	caps := authz.GetTaskAccess(u, pa.Project, pa.Tasks, t)
	if !caps.CanView {
		return nil, nil, caps, ErrForbidden
	}
	return t, pa, caps, nil
}

func (s *taskService) List(ctx context.Context, u *models.User, projectID string) ([]models.TaskView, error) {
	pa, err := loadProject(ctx, s.projects, s.tasks, u, projectID)
	if err != nil {
		return nil, err
	}
	board := taskflow.Board(pa.Tasks)
	if u.Role != models.RoleVendor {
		return board, nil
	}
	own := make([]models.TaskView, 0, len(board))
	for _, v := range board {
		if v.AssigneeID == u.ID {
			own = append(own, v)
		}
	}
	return own, nil
}

func (s *taskService) Get(ctx context.Context, u *models.User, taskID string) (*models.TaskView, error) {
	t, pa, _, err := s.loadTask(ctx, u, taskID)
	if err != nil {
		return nil, err
	}
	v := taskflow.View(*t, pa.Tasks)
	return &v, nil
}

func (s *taskService) Create(ctx context.Context, u *models.User, projectID string, in TaskInput) (*models.TaskView, error) {
	pa, err := loadProject(ctx, s.projects, s.tasks, u, projectID)
	if err != nil {
		return nil, err
	}
	if !pa.Capabilities.CanManageTasks {
		return nil, ErrForbidden
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	now := s.now()
	t := &models.Task{
		ID:           uuid.NewString(),
		ProjectID:    projectID,
		Title:        title,
		Description:  in.Description,
		Status:       models.StatusTodo,
		SubTasks:     normalizeSubTasks(in.SubTasks),
		Dependencies: dedupe(in.Dependencies),
		AssigneeID:   in.AssigneeID,
		Approvals:    models.NewTaskApprovals(),
		DueDate:      in.DueDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Progress != nil {
		p := *in.Progress
		t.Progress = &p
	}
	if err := taskflow.ValidateDependencies(t.ID, t.Dependencies, pa.Tasks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	t.Status = taskflow.DeriveStatus(t, t.Status)

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	s.log.Infof("[task][create][ok] id=%s project=%s assignee=%q by=%s", t.ID, projectID, t.AssigneeID, u.ID)

	s.onAssigned(ctx, pa.Project, t)
	v := taskflow.View(*t, append(pa.Tasks, *t))
	return &v, nil
}

func (s *taskService) Update(ctx context.Context, u *models.User, taskID string, patch TaskPatch) (*models.TaskView, error) {
	t, pa, caps, err := s.loadTask(ctx, u, taskID)
	if err != nil {
		return nil, err
	}

	editsStructure := patch.Title != nil || patch.Description != nil || patch.Dependencies != nil ||
		patch.AssigneeID != nil || patch.DueDate != nil
	editsProgress := patch.SubTasks != nil || patch.Progress != nil || patch.ClearProgress
	if (editsStructure && !caps.CanEdit) || (editsProgress && !caps.CanUpdateProgress) {
		return nil, ErrForbidden
	}

	prevAssignee := t.AssigneeID
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		t.Title = title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Dependencies != nil {
		deps := dedupe(*patch.Dependencies)
		if err := taskflow.ValidateDependencies(t.ID, deps, pa.Tasks); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		t.Dependencies = deps
	}
	if patch.AssigneeID != nil {
		t.AssigneeID = *patch.AssigneeID
	}
	if patch.DueDate != nil {
		t.DueDate = patch.DueDate
	}
	if patch.SubTasks != nil {
		t.SubTasks = normalizeSubTasks(*patch.SubTasks)
	}
	switch {
	case patch.ClearProgress:
		t.Progress = nil
	case patch.Progress != nil:
		p := *patch.Progress
		t.Progress = &p
	}
	t.UpdatedAt = s.now()

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	if err := s.recompute(ctx, pa.Project, t); err != nil {
		return nil, err
	}
	s.log.Infof("[task][update][ok] id=%s by=%s status=%s", t.ID, u.ID, t.Status)

	if t.AssigneeID != prevAssignee {
		s.onAssigned(ctx, pa.Project, t)
	}
	return s.view(t, pa.Tasks), nil
}

func (s *taskService) Delete(ctx context.Context, u *models.User, taskID string) error {
	_, _, caps, err := s.loadTask(ctx, u, taskID)
	if err != nil {
		return err
	}
	if !caps.CanDelete {
		return ErrForbidden
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return err
	}
	s.log.Infof("[task][delete][ok] id=%s by=%s", taskID, u.ID)
	return nil
}

func (s *taskService) SetApproval(ctx context.Context, u *models.User, taskID string, gate models.Gate, party models.Party, status models.ApprovalStatus) (*models.TaskView, error) {
	t, pa, _, err := s.loadTask(ctx, u, taskID)
	if err != nil {
		return nil, err
	}
	if !authz.CanApprove(u, pa.Project, pa.Tasks, party) {
		s.log.Warnf("[task][approve][deny] id=%s user=%s role=%s party=%s", taskID, u.ID, u.Role, party)
		return nil, ErrForbidden
	}
	if err := taskflow.SetApproval(t, gate, party, status, u.ID, s.now()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	cell := taskflow.ApprovalCell(t, gate, party)
	if err := s.tasks.SetApproval(ctx, t.ID, gate, party, *cell); err != nil {
		return nil, err
	}

	// other parties may have written their own cells meanwhile
	fresh, err := s.tasks.GetByID(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if err := s.recompute(ctx, pa.Project, fresh); err != nil {
		return nil, err
	}
	s.log.Infof("[task][approve][ok] id=%s gate=%s party=%s status=%s by=%s -> %s",
		t.ID, gate, party, status, u.ID, fresh.Status)
	return s.view(fresh, pa.Tasks), nil
}

func (s *taskService) Complete(ctx context.Context, u *models.User, taskID string) (*models.TaskView, error) {
	t, pa, caps, err := s.loadTask(ctx, u, taskID)
	if err != nil {
		return nil, err
	}
	if !caps.CanUpdateProgress {
		return nil, ErrForbidden
	}
	from := t.Status
	next, err := taskflow.Complete(t)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt = s.now()
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	if next != from {
		if err := s.tasks.UpdateStatus(ctx, t.ID, next); err != nil {
			return nil, err
		}
		s.onStatusChanged(ctx, pa.Project, t, from)
	}
	s.log.Infof("[task][complete][ok] id=%s %s -> %s by=%s", t.ID, from, next, u.ID)
	return s.view(t, pa.Tasks), nil
}

func (s *taskService) SetStatus(ctx context.Context, u *models.User, taskID string, to models.TaskStatus) (*models.TaskView, error) {
	if !to.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, to)
	}
	t, pa, caps, err := s.loadTask(ctx, u, taskID)
	if err != nil {
		return nil, err
	}
	if !caps.CanEdit {
		return nil, ErrForbidden
	}
	from := t.Status
	if from.IsFrozen() && !to.IsFrozen() && u.Role != models.RoleAdmin {
		s.log.Warnf("[task][status][deny] id=%s user=%s role=%s leaving %s", taskID, u.ID, u.Role, from)
		return nil, ErrForbidden
	}
	if to == models.StatusDone && !taskflow.GatesApproved(t) {
		return nil, taskflow.ErrCompletionNotApproved
	}

	next := to
	if !to.IsFrozen() {
		next = taskflow.DeriveStatus(t, to)
	}
	if next != from {
		if err := s.tasks.UpdateStatus(ctx, t.ID, next); err != nil {
			return nil, err
		}
		t.Status = next
		s.onStatusChanged(ctx, pa.Project, t, from)
	}
	s.log.Infof("[task][status][ok] id=%s %s -> %s (asked %s) by=%s", t.ID, from, next, to, u.ID)
	return s.view(t, pa.Tasks), nil
}

// recompute runs the derivation engine on t and persists a changed status.
func (s *taskService) recompute(ctx context.Context, p *models.Project, t *models.Task) error {
	from := t.Status
	next := taskflow.DeriveStatus(t, from)
	if next == from {
		return nil
	}
	if err := s.tasks.UpdateStatus(ctx, t.ID, next); err != nil {
		return err
	}
	t.Status = next
	s.onStatusChanged(ctx, p, t, from)
	return nil
}

// view derives t against the project task set, with t's latest state swapped in.
func (s *taskService) view(t *models.Task, tasks []models.Task) *models.TaskView {
	merged := make([]models.Task, 0, len(tasks))
	for _, other := range tasks {
		if other.ID == t.ID {
			merged = append(merged, *t)
			continue
		}
		merged = append(merged, other)
	}
	v := taskflow.View(*t, merged)
	return &v
}

// onAssigned adds a vendor assignee to the project's vendor list and tells them.
// The membership write is separate from the task write; a failure is logged only.
func (s *taskService) onAssigned(ctx context.Context, p *models.Project, t *models.Task) {
	if t.AssigneeID == "" {
		return
	}
	assignee, err := s.users.GetByID(ctx, t.AssigneeID)
	if err != nil {
		s.log.Warnf("[task][assign][err] task=%s assignee=%s: %v", t.ID, t.AssigneeID, err)
		return
	}
	if assignee.Role == models.RoleVendor && !p.HasVendor(assignee.ID) {
		if err := s.projects.AddMember(ctx, p.ID, repositories.FieldVendorIDs, assignee.ID); err != nil {
			s.log.Warnf("[task][assign][err] vendor union project=%s vendor=%s: %v", p.ID, assignee.ID, err)
		}
	}
	s.notifier.Notify(ctx, assignee, "New task: "+t.Title,
		fmt.Sprintf("You were assigned %q in project %s.", t.Title, p.Name))
}

func (s *taskService) onStatusChanged(ctx context.Context, p *models.Project, t *models.Task, from models.TaskStatus) {
	if t.AssigneeID != "" {
		if assignee, err := s.users.GetByID(ctx, t.AssigneeID); err == nil {
			s.notifier.Notify(ctx, assignee, "Task status changed",
				fmt.Sprintf("%q moved from %s to %s.", t.Title, from, t.Status))
		} else if !errors.Is(err, repositories.ErrNotFound) {
			s.log.Warnf("[task][notify][err] assignee=%s: %v", t.AssigneeID, err)
		}
	}
	if t.Status != models.StatusReview {
		return
	}
	approvers := append([]string{p.ClientID}, p.ClientIDs...)
	approvers = append(approvers, p.LeadDesignerID)
	for _, id := range dedupe(approvers) {
		approver, err := s.users.GetByID(ctx, id)
		if err != nil {
			continue
		}
		s.notifier.Notify(ctx, approver, "Approval requested",
			fmt.Sprintf("%q in project %s is ready for review.", t.Title, p.Name))
	}
}

func normalizeSubTasks(in []models.SubTask) []models.SubTask {
	out := make([]models.SubTask, 0, len(in))
	for _, st := range in {
		if strings.TrimSpace(st.Title) == "" {
			continue
		}
		if st.ID == "" {
			st.ID = uuid.NewString()
		}
		out = append(out, st)
	}
	return out
}

// dedupe drops empty and repeated ids, keeping first occurrence order.
func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
