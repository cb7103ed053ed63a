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

type FinancialInput struct {
	Title    string               `json:"title"`
	Amount   float64              `json:"amount"`
	Type     models.FinancialType `json:"type"`
	Kind     models.FinancialKind `json:"kind"`
	VendorID string               `json:"vendor_id"`
	PaidTo   string               `json:"paid_to"`
	PaidBy   string               `json:"paid_by"`
}

type FinancialService interface {
	List(ctx context.Context, u *models.User, projectID string) ([]models.FinancialRecord, error)
	Create(ctx context.Context, u *models.User, projectID string, in FinancialInput) (*models.FinancialRecord, error)
	SetApproval(ctx context.Context, u *models.User, recordID string, party models.Party, approved bool) (*models.FinancialRecord, error)
}

type financialService struct {
	projects   repositories.ProjectRepository
	tasks      repositories.TaskRepository
	financials repositories.FinancialRepository
	log        *logrus.Logger
}

func NewFinancialService(
	projects repositories.ProjectRepository,
	tasks repositories.TaskRepository,
	financials repositories.FinancialRepository,
	log *logrus.Logger,
) FinancialService {
	return &financialService{projects: projects, tasks: tasks, financials: financials, log: log}
}

func (s *financialService) access(ctx context.Context, u *models.User, projectID string) (authz.FinancialCapabilities, error) {
	pa, err := loadProject(ctx, s.projects, s.tasks, u, projectID)
	if err != nil {
		return authz.FinancialCapabilities{}, err
	}
	caps := authz.GetFinancialAccess(u, pa.Project, pa.Tasks)
	if !caps.CanView {
		return caps, ErrForbidden
	}
	return caps, nil
}

func (s *financialService) List(ctx context.Context, u *models.User, projectID string) ([]models.FinancialRecord, error) {
	if _, err := s.access(ctx, u, projectID); err != nil {
		return nil, err
	}
	return s.financials.ListByProject(ctx, projectID)
}

func (s *financialService) Create(ctx context.Context, u *models.User, projectID string, in FinancialInput) (*models.FinancialRecord, error) {
	caps, err := s.access(ctx, u, projectID)
	if err != nil {
		return nil, err
	}
	if !caps.CanManage {
		return nil, ErrForbidden
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.Amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}
	switch in.Type {
	case models.FinancialIncome, models.FinancialExpense, models.FinancialDesignerCharge:
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidInput, in.Type)
	}
	switch in.Kind {
	case models.KindRegular, models.KindAdditionalBudget, models.KindClientPayment:
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, in.Kind)
	}

	rec := &models.FinancialRecord{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Title:     title,
		Amount:    in.Amount,
		Type:      in.Type,
		Kind:      in.Kind,
		VendorID:  in.VendorID,
		PaidTo:    in.PaidTo,
		PaidBy:    in.PaidBy,
		CreatedAt: time.Now(),
	}
	if err := s.financials.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.log.Infof("[financial][create][ok] id=%s project=%s amount=%.2f kind=%q by=%s", rec.ID, projectID, rec.Amount, rec.Kind, u.ID)
	return rec, nil
}

func (s *financialService) SetApproval(ctx context.Context, u *models.User, recordID string, party models.Party, approved bool) (*models.FinancialRecord, error) {
	rec, err := s.financials.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	caps, err := s.access(ctx, u, rec.ProjectID)
	if err != nil {
		return nil, err
	}
	switch party {
	case models.PartyAdmin:
		if !caps.CanApproveAdmin {
			return nil, ErrForbidden
		}
		rec.AdminApproved = approved
	case models.PartyClient:
		if !caps.CanApproveClient {
			return nil, ErrForbidden
		}
		rec.ClientApproved = approved
	default:
		return nil, fmt.Errorf("%w: financial records are approved by admin or client", ErrInvalidInput)
	}
	if err := s.financials.SetApproval(ctx, rec.ID, party, approved); err != nil {
		return nil, err
	}
	s.log.Infof("[financial][approve][ok] id=%s party=%s approved=%v by=%s", rec.ID, party, approved, u.ID)
	return rec, nil
}
