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

type DocumentInput struct {
	Name       string        `json:"name"`
	URL        string        `json:"url"`
	SharedWith []models.Role `json:"shared_with"`
}

type DocumentService interface {
	List(ctx context.Context, u *models.User, projectID string) ([]models.Document, error)
	Create(ctx context.Context, u *models.User, projectID string, in DocumentInput) (*models.Document, error)
	SetApproval(ctx context.Context, u *models.User, documentID string, party models.Party, status models.ApprovalStatus) (*models.Document, error)
	Delete(ctx context.Context, u *models.User, documentID string) error
}

type documentService struct {
	projects  repositories.ProjectRepository
	tasks     repositories.TaskRepository
	documents repositories.DocumentRepository
	log       *logrus.Logger
}

func NewDocumentService(
	projects repositories.ProjectRepository,
	tasks repositories.TaskRepository,
	documents repositories.DocumentRepository,
	log *logrus.Logger,
) DocumentService {
	return &documentService{projects: projects, tasks: tasks, documents: documents, log: log}
}

func (s *documentService) List(ctx context.Context, u *models.User, projectID string) ([]models.Document, error) {
	pa, err := loadProject(ctx, s.projects, s.tasks, u, projectID)
	if err != nil {
		return nil, err
	}
	docs, err := s.documents.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Document, 0, len(docs))
	for i := range docs {
		if authz.GetDocumentAccess(u, pa.Project, pa.Tasks, &docs[i]).CanView {
			out = append(out, docs[i])
		}
	}
	return out, nil
}

func (s *documentService) Create(ctx context.Context, u *models.User, projectID string, in DocumentInput) (*models.Document, error) {
	pa, err := loadProject(ctx, s.projects, s.tasks, u, projectID)
	if err != nil {
		return nil, err
	}
	if !pa.Capabilities.CanUploadDocuments {
		return nil, ErrForbidden
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || strings.TrimSpace(in.URL) == "" {
		return nil, fmt.Errorf("%w: name and url are required", ErrInvalidInput)
	}
	for _, r := range in.SharedWith {
		if !r.IsValid() {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, r)
		}
	}
	d := &models.Document{
		ID:             uuid.NewString(),
		ProjectID:      projectID,
		Name:           name,
		URL:            in.URL,
		UploadedBy:     u.ID,
		SharedWith:     in.SharedWith,
		AdminApproval:  models.ApprovalPending,
		ClientApproval: models.ApprovalPending,
		CreatedAt:      time.Now(),
	}
	if d.SharedWith == nil {
		d.SharedWith = []models.Role{}
	}
	if err := s.documents.Create(ctx, d); err != nil {
		return nil, err
	}
	s.log.Infof("[document][create][ok] id=%s project=%s by=%s", d.ID, projectID, u.ID)
	return d, nil
}

func (s *documentService) load(ctx context.Context, u *models.User, documentID string) (*models.Document, authz.DocumentCapabilities, error) {
	d, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, authz.DocumentCapabilities{}, err
	}
	pa, err := loadProject(ctx, s.projects, s.tasks, u, d.ProjectID)
	if err != nil {
		return nil, authz.DocumentCapabilities{}, err
	}
	caps := authz.GetDocumentAccess(u, pa.Project, pa.Tasks, d)
	if !caps.CanView {
		return nil, caps, ErrForbidden
	}
	return d, caps, nil
}

func (s *documentService) SetApproval(ctx context.Context, u *models.User, documentID string, party models.Party, status models.ApprovalStatus) (*models.Document, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown approval status %q", ErrInvalidInput, status)
	}
	d, caps, err := s.load(ctx, u, documentID)
	if err != nil {
		return nil, err
	}
	switch party {
	case models.PartyAdmin:
		if !caps.CanApproveAdmin {
			return nil, ErrForbidden
		}
		d.AdminApproval = status
	case models.PartyClient:
		if !caps.CanApproveClient {
			return nil, ErrForbidden
		}
		d.ClientApproval = status
	default:
		return nil, fmt.Errorf("%w: documents are approved by admin or client", ErrInvalidInput)
	}
	if err := s.documents.SetApproval(ctx, d.ID, party, status); err != nil {
		return nil, err
	}
	s.log.Infof("[document][approve][ok] id=%s party=%s status=%s by=%s", d.ID, party, status, u.ID)
	return d, nil
}

func (s *documentService) Delete(ctx context.Context, u *models.User, documentID string) error {
	_, caps, err := s.load(ctx, u, documentID)
	if err != nil {
		return err
	}
	if !caps.CanDelete {
		return ErrForbidden
	}
	return s.documents.Delete(ctx, documentID)
}
