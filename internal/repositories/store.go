package repositories

import (
	"context"
	"errors"

	"interiorerp/internal/models"
)

// ErrNotFound is returned by point reads and writes whose target document is missing.
var ErrNotFound = errors.New("not found")

type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*models.Project, error)
	ListByTenant(ctx context.Context, tenantID string) ([]models.Project, error)
	ListAll(ctx context.Context) ([]models.Project, error)
	Create(ctx context.Context, p *models.Project) error
	// AddMember and RemoveMember are array-union / array-remove on one list field.
	AddMember(ctx context.Context, projectID string, field MemberField, userID string) error
	RemoveMember(ctx context.Context, projectID string, field MemberField, userID string) error
}

// MemberField names a membership list on a project.
type MemberField string

const (
	FieldTeamMembers MemberField = "teamMembers"
	FieldVendorIDs   MemberField = "vendorIds"
	FieldClientIDs   MemberField = "clientIds"
)

func (f MemberField) IsValid() bool {
	return f == FieldTeamMembers || f == FieldVendorIDs || f == FieldClientIDs
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*models.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]models.Task, error)
	Create(ctx context.Context, t *models.Task) error
	// Update replaces the task's editable fields (title, subtasks, dependencies,
	// progress, assignee, due date). Approvals and status have their own writers.
	Update(ctx context.Context, t *models.Task) error
	UpdateStatus(ctx context.Context, id string, status models.TaskStatus) error
	// SetApproval writes exactly one (gate, party) cell; last write wins.
	SetApproval(ctx context.Context, id string, gate models.Gate, party models.Party, cell models.TaskApproval) error
	Delete(ctx context.Context, id string) error
}

type DocumentRepository interface {
	GetByID(ctx context.Context, id string) (*models.Document, error)
	ListByProject(ctx context.Context, projectID string) ([]models.Document, error)
	Create(ctx context.Context, d *models.Document) error
	SetApproval(ctx context.Context, id string, party models.Party, status models.ApprovalStatus) error
	Delete(ctx context.Context, id string) error
}

type FinancialRepository interface {
	GetByID(ctx context.Context, id string) (*models.FinancialRecord, error)
	ListByProject(ctx context.Context, projectID string) ([]models.FinancialRecord, error)
	Create(ctx context.Context, r *models.FinancialRecord) error
	SetApproval(ctx context.Context, id string, party models.Party, approved bool) error
}

type MeetingRepository interface {
	ListByProject(ctx context.Context, projectID string) ([]models.Meeting, error)
	Create(ctx context.Context, m *models.Meeting) error
}

// UserRepository is the profile side of the auth collaborator.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	UpdateTenant(ctx context.Context, id, tenantID string) error
	// SetProjectMetrics overwrites the materialized vendor summary wholesale.
	SetProjectMetrics(ctx context.Context, id string, metrics map[string]models.ProjectMetric) error
	// ListMetricHolders returns ids of vendors whose stored summary is not empty.
	ListMetricHolders(ctx context.Context) ([]string, error)
}

type TenantRepository interface {
	GetByID(ctx context.Context, id string) (*models.Tenant, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Tenant, error)
}
