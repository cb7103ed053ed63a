package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"interiorerp/internal/authz"
	"interiorerp/internal/models"
	"interiorerp/internal/repositories"
)

// ProjectAccess is a project loaded together with the task set its
// capabilities were computed from.
type ProjectAccess struct {
	Project      *models.Project           `json:"project"`
	Tasks        []models.Task             `json:"-"`
	Capabilities authz.ProjectCapabilities `json:"capabilities"`
}

type ProjectService interface {
	List(ctx context.Context, u *models.User) ([]ProjectAccess, error)
	Get(ctx context.Context, u *models.User, projectID string) (*ProjectAccess, error)
	Create(ctx context.Context, u *models.User, p *models.Project) (*models.Project, error)
	AddMember(ctx context.Context, u *models.User, projectID string, field repositories.MemberField, memberID string) error
	RemoveMember(ctx context.Context, u *models.User, projectID string, field repositories.MemberField, memberID string) error
	// Snapshot is the project state filtered to what u may see.
	Snapshot(ctx context.Context, u *models.User, projectID string) (*models.ProjectSnapshot, error)
	PendingActions(ctx context.Context, u *models.User) ([]authz.PendingAction, error)
}

type projectService struct {
	projects   repositories.ProjectRepository
	tasks      repositories.TaskRepository
	documents  repositories.DocumentRepository
	financials repositories.FinancialRepository
	log        *logrus.Logger
}

func NewProjectService(
	projects repositories.ProjectRepository,
	tasks repositories.TaskRepository,
	documents repositories.DocumentRepository,
	financials repositories.FinancialRepository,
	log *logrus.Logger,
) ProjectService {
	return &projectService{projects: projects, tasks: tasks, documents: documents, financials: financials, log: log}
}

// loadProject reads a project and its tasks and evaluates u's capabilities on it.
// A project outside u's view yields ErrForbidden.
func loadProject(ctx context.Context, projects repositories.ProjectRepository, tasks repositories.TaskRepository, u *models.User, projectID string) (*ProjectAccess, error) {
	p, err := projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	list, err := tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	caps := authz.GetProjectAccess(u, p, list)
	if !caps.CanView {
		return nil, ErrForbidden
	}
	return &ProjectAccess{Project: p, Tasks: list, Capabilities: caps}, nil
}

func (s *projectService) List(ctx context.Context, u *models.User) ([]ProjectAccess, error) {
	tenants := append([]string{u.TenantID}, u.TenantIDs...)
	seen := map[string]bool{}
	out := []ProjectAccess{}
	for _, tenantID := range tenants {
		if tenantID == "" || seen[tenantID] {
			continue
		}
		seen[tenantID] = true
		projects, err := s.projects.ListByTenant(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		for i := range projects {
			p := &projects[i]
			tasks, err := s.tasks.ListByProject(ctx, p.ID)
			if err != nil {
				return nil, err
			}
			caps := authz.GetProjectAccess(u, p, tasks)
			if !caps.CanView {
				continue
			}
			out = append(out, ProjectAccess{Project: p, Tasks: tasks, Capabilities: caps})
		}
	}
	return out, nil
}

func (s *projectService) Get(ctx context.Context, u *models.User, projectID string) (*ProjectAccess, error) {
	return loadProject(ctx, s.projects, s.tasks, u, projectID)
}

func (s *projectService) Create(ctx context.Context, u *models.User, p *models.Project) (*models.Project, error) {
	if u.Role != models.RoleAdmin && u.Role != models.RoleDesigner {
		return nil, ErrForbidden
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	p.ID = uuid.NewString()
	p.TenantID = u.TenantID
	if p.LeadDesignerID == "" && u.Role == models.RoleDesigner {
		p.LeadDesignerID = u.ID
	}
	if p.Status == "" {
		p.Status = models.ProjectPlanning
	}
	p.CreatedAt = time.Now()
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Infof("[project][create][ok] id=%s tenant=%s by=%s", p.ID, p.TenantID, u.ID)
	return p, nil
}

func (s *projectService) AddMember(ctx context.Context, u *models.User, projectID string, field repositories.MemberField, memberID string) error {
	return s.changeMember(ctx, u, projectID, field, memberID, s.projects.AddMember)
}

func (s *projectService) RemoveMember(ctx context.Context, u *models.User, projectID string, field repositories.MemberField, memberID string) error {
	return s.changeMember(ctx, u, projectID, field, memberID, s.projects.RemoveMember)
}

func (s *projectService) changeMember(
	ctx context.Context, u *models.User, projectID string, field repositories.MemberField, memberID string,
	write func(context.Context, string, repositories.MemberField, string) error,
) error {
	if !field.IsValid() {
		return fmt.Errorf("%w: unknown member list %q", ErrInvalidInput, field)
	}
	if strings.TrimSpace(memberID) == "" {
		return fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}
	pa, err := loadProject(ctx, s.projects, s.tasks, u, projectID)
	if err != nil {
		return err
	}
	if !pa.Capabilities.CanManageTeam {
		return ErrForbidden
	}
	return write(ctx, projectID, field, memberID)
}

func (s *projectService) Snapshot(ctx context.Context, u *models.User, projectID string) (*models.ProjectSnapshot, error) {
	pa, err := loadProject(ctx, s.projects, s.tasks, u, projectID)
	if err != nil {
		return nil, err
	}
	snap, err := s.fill(ctx, pa.Project, pa.Tasks)
	if err != nil {
		return nil, err
	}

	docs := make([]models.Document, 0, len(snap.Documents))
	for i := range snap.Documents {
		if authz.GetDocumentAccess(u, pa.Project, pa.Tasks, &snap.Documents[i]).CanView {
			docs = append(docs, snap.Documents[i])
		}
	}
	snap.Documents = docs
	if !pa.Capabilities.CanViewFinancials {
		snap.Financials = []models.FinancialRecord{}
	}
	if u.Role == models.RoleVendor {
		own := make([]models.Task, 0, len(snap.Tasks))
		for _, t := range snap.Tasks {
			if t.AssigneeID == u.ID {
				own = append(own, t)
			}
		}
		snap.Tasks = own
	}
	return snap, nil
}

func (s *projectService) fill(ctx context.Context, p *models.Project, tasks []models.Task) (*models.ProjectSnapshot, error) {
	docs, err := s.documents.ListByProject(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	fin, err := s.financials.ListByProject(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &models.ProjectSnapshot{Project: *p, Tasks: tasks, Documents: docs, Financials: fin}, nil
}

func (s *projectService) PendingActions(ctx context.Context, u *models.User) ([]authz.PendingAction, error) {
	if u.Role == models.RoleVendor {
		return []authz.PendingAction{}, nil
	}
	visible, err := s.List(ctx, u)
	if err != nil {
		return nil, err
	}
	snapshots := make([]models.ProjectSnapshot, 0, len(visible))
	for _, pa := range visible {
		snap, err := s.fill(ctx, pa.Project, pa.Tasks)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *snap)
	}
	actions := authz.PendingActions(u, snapshots)
	if actions == nil {
		actions = []authz.PendingAction{}
	}
	s.log.Debugf("[pending][list][ok] user=%s projects=%d actions=%d", u.ID, len(snapshots), len(actions))
	return actions, nil
}
