package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"interiorerp/internal/models"
	"interiorerp/internal/repositories"
)

// VendorMetrics maps vendor id to its per-project summary.
type VendorMetrics map[string]map[string]models.ProjectMetric

type RecomputeReport struct {
	Projects int       `json:"projects"`
	Written  []string  `json:"written"`
	Skipped  []string  `json:"skipped"`
	Cleared  []string  `json:"cleared"`
	Duration string    `json:"duration"`
	RanAt    time.Time `json:"ran_at"`
}

// VendorMetricsService materializes ProjectMetrics on vendor profiles.
// The values are only as fresh as the last Recompute run.
type VendorMetricsService interface {
	Recompute(ctx context.Context) (RecomputeReport, error)
	// Vendor returns the vendor profile behind a statement. Admins read vendors
	// of their tenant, vendors read themselves.
	Vendor(ctx context.Context, actor *models.User, vendorID string) (*models.User, error)
}

type vendorMetricsService struct {
	projects   repositories.ProjectRepository
	tasks      repositories.TaskRepository
	financials repositories.FinancialRepository
	users      repositories.UserRepository
	log        *logrus.Logger
}

func NewVendorMetricsService(
	projects repositories.ProjectRepository,
	tasks repositories.TaskRepository,
	financials repositories.FinancialRepository,
	users repositories.UserRepository,
	log *logrus.Logger,
) VendorMetricsService {
	return &vendorMetricsService{projects: projects, tasks: tasks, financials: financials, users: users, log: log}
}

// ComputeVendorMetrics summarizes, for every distinct task assignee of every
// project, the number of tasks assigned and the net amount of fully approved
// records: paid to the vendor minus paid by the vendor. Deterministic in its inputs.
func ComputeVendorMetrics(projects []models.Project, tasks []models.Task, records []models.FinancialRecord) VendorMetrics {
	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}

	out := VendorMetrics{}
	for _, t := range tasks {
		if t.AssigneeID == "" {
			continue
		}
		name, ok := names[t.ProjectID]
		if !ok {
			continue
		}
		perProject, ok := out[t.AssigneeID]
		if !ok {
			perProject = map[string]models.ProjectMetric{}
			out[t.AssigneeID] = perProject
		}
		m := perProject[t.ProjectID]
		m.ProjectName = name
		m.TaskCount++
		perProject[t.ProjectID] = m
	}

	for _, r := range records {
		if !r.FullyApproved() {
			continue
		}
		out.add(r.PaidTo, r.ProjectID, r.Amount)
		out.add(r.PaidBy, r.ProjectID, -r.Amount)
	}
	return out
}

// add books amount on an existing (vendor, project) entry. Records of vendors
// without tasks in the project are not summarized.
func (vm VendorMetrics) add(vendorID, projectID string, amount float64) {
	if vendorID == "" {
		return
	}
	m, ok := vm[vendorID][projectID]
	if !ok {
		return
	}
	m.NetAmount += amount
	vm[vendorID][projectID] = m
}

func (s *vendorMetricsService) Recompute(ctx context.Context) (RecomputeReport, error) {
	start := time.Now()
	report := RecomputeReport{RanAt: start, Written: []string{}, Skipped: []string{}, Cleared: []string{}}

	projects, err := s.projects.ListAll(ctx)
	if err != nil {
		return report, err
	}
	var (
		tasks   []models.Task
		records []models.FinancialRecord
	)
	for _, p := range projects {
		pt, err := s.tasks.ListByProject(ctx, p.ID)
		if err != nil {
			return report, err
		}
		pr, err := s.financials.ListByProject(ctx, p.ID)
		if err != nil {
			return report, err
		}
		tasks = append(tasks, pt...)
		records = append(records, pr...)
	}
	report.Projects = len(projects)

	metrics := ComputeVendorMetrics(projects, tasks, records)
	vendors := make([]string, 0, len(metrics))
	for id := range metrics {
		vendors = append(vendors, id)
	}
	sort.Strings(vendors)

	for _, id := range vendors {
		if err := s.write(ctx, id, metrics[id]); err != nil {
			s.log.Warnf("[metrics][write][skip] vendor=%s: %v", id, err)
			report.Skipped = append(report.Skipped, id)
			continue
		}
		report.Written = append(report.Written, id)
	}

	// Vendors that dropped out of every project still carry the previous run.
	holders, err := s.users.ListMetricHolders(ctx)
	if err != nil {
		return report, err
	}
	for _, id := range holders {
		if _, ok := metrics[id]; ok {
			continue
		}
		if err := s.users.SetProjectMetrics(ctx, id, map[string]models.ProjectMetric{}); err != nil {
			s.log.Warnf("[metrics][clear][skip] vendor=%s: %v", id, err)
			report.Skipped = append(report.Skipped, id)
			continue
		}
		report.Cleared = append(report.Cleared, id)
	}

	report.Duration = time.Since(start).String()
	s.log.Infof("[metrics][recompute][ok] projects=%d written=%d cleared=%d skipped=%d in %s",
		report.Projects, len(report.Written), len(report.Cleared), len(report.Skipped), report.Duration)
	return report, nil
}

var errNotVendor = errors.New("assignee is not a vendor")

func (s *vendorMetricsService) write(ctx context.Context, vendorID string, metrics map[string]models.ProjectMetric) error {
	profile, err := s.users.GetByID(ctx, vendorID)
	if err != nil {
		return err
	}
	if profile.Role != models.RoleVendor {
		return errNotVendor
	}
	return s.users.SetProjectMetrics(ctx, vendorID, metrics)
}

func (s *vendorMetricsService) Vendor(ctx context.Context, actor *models.User, vendorID string) (*models.User, error) {
	v, err := s.users.GetByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if v.Role != models.RoleVendor {
		return nil, repositories.ErrNotFound
	}
	switch {
	case actor.ID == v.ID:
	case actor.Role == models.RoleAdmin && v.InTenant(actor.TenantID):
	default:
		return nil, ErrForbidden
	}
	return v, nil
}
