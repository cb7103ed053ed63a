package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"interiorerp/internal/authz"
	"interiorerp/internal/models"
	"interiorerp/internal/repositories"
)

type MeetingInput struct {
	Title     string    `json:"title"`
	StartsAt  time.Time `json:"starts_at"`
	Attendees []string  `json:"attendees"`
}

type MeetingService interface {
	List(ctx context.Context, u *models.User, projectID string) ([]models.Meeting, error)
	Create(ctx context.Context, u *models.User, projectID string, in MeetingInput) (*models.Meeting, error)
}

type meetingService struct {
	projects repositories.ProjectRepository
	tasks    repositories.TaskRepository
	meetings repositories.MeetingRepository
}

func NewMeetingService(projects repositories.ProjectRepository, tasks repositories.TaskRepository, meetings repositories.MeetingRepository) MeetingService {
	return &meetingService{projects: projects, tasks: tasks, meetings: meetings}
}

func (s *meetingService) List(ctx context.Context, u *models.User, projectID string) ([]models.Meeting, error) {
	pa, err := loadProject(ctx, s.projects, s.tasks, u, projectID)
	if err != nil {
		return nil, err
	}
	all, err := s.meetings.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Meeting, 0, len(all))
	for i := range all {
		if authz.GetMeetingAccess(u, pa.Project, pa.Tasks, &all[i]).CanView {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (s *meetingService) Create(ctx context.Context, u *models.User, projectID string, in MeetingInput) (*models.Meeting, error) {
	pa, err := loadProject(ctx, s.projects, s.tasks, u, projectID)
	if err != nil {
		return nil, err
	}
	if !pa.Capabilities.CanManageMeetings {
		return nil, ErrForbidden
	}
	title := strings.TrimSpace(in.Title)
	if title == "" || in.StartsAt.IsZero() {
		return nil, fmt.Errorf("%w: title and starts_at are required", ErrInvalidInput)
	}
	m := &models.Meeting{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Title:     title,
		StartsAt:  in.StartsAt,
		Attendees: dedupe(in.Attendees),
		CreatedBy: u.ID,
	}
	if err := s.meetings.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
