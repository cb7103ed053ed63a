package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"interiorerp/internal/models"
	"interiorerp/internal/repositories"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type memStore struct {
	mu         sync.Mutex
	projects   map[string]models.Project
	tasks      map[string]models.Task
	documents  map[string]models.Document
	financials map[string]models.FinancialRecord
	meetings   []models.Meeting
	users      map[string]models.User
	tenants    map[string]models.Tenant

	failMetricsFor map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		projects:       map[string]models.Project{},
		tasks:          map[string]models.Task{},
		documents:      map[string]models.Document{},
		financials:     map[string]models.FinancialRecord{},
		users:          map[string]models.User{},
		tenants:        map[string]models.Tenant{},
		failMetricsFor: map[string]bool{},
	}
}

type (
	memProjects   struct{ *memStore }
	memTasks      struct{ *memStore }
	memDocuments  struct{ *memStore }
	memFinancials struct{ *memStore }
	memMeetings   struct{ *memStore }
	memUsers      struct{ *memStore }
	memTenants    struct{ *memStore }
)

func (m memProjects) GetByID(_ context.Context, id string) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (m memProjects) ListByTenant(_ context.Context, tenantID string) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Project
	for _, p := range m.projects {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m memProjects) ListAll(context.Context) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Project
	for _, p := range m.projects {
		out = append(out, p)
	}
	return out, nil
}

func (m memProjects) Create(_ context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = *p
	return nil
}

func (m memProjects) AddMember(_ context.Context, projectID string, field repositories.MemberField, userID string) error {
	return m.editMembers(projectID, field, func(list []string) []string {
		for _, id := range list {
			if id == userID {
				return list
			}
		}
		return append(list, userID)
	})
}

func (m memProjects) RemoveMember(_ context.Context, projectID string, field repositories.MemberField, userID string) error {
	return m.editMembers(projectID, field, func(list []string) []string {
		out := list[:0:0]
		for _, id := range list {
			if id != userID {
				out = append(out, id)
			}
		}
		return out
	})
}

func (m memProjects) editMembers(projectID string, field repositories.MemberField, edit func([]string) []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[projectID]
	if !ok {
		return repositories.ErrNotFound
	}
	switch field {
	case repositories.FieldTeamMembers:
		p.TeamMembers = edit(p.TeamMembers)
	case repositories.FieldVendorIDs:
		p.VendorIDs = edit(p.VendorIDs)
	case repositories.FieldClientIDs:
		p.ClientIDs = edit(p.ClientIDs)
	}
	m.projects[projectID] = p
	return nil
}

func (m memTasks) GetByID(_ context.Context, id string) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	t.SubTasks = append([]models.SubTask(nil), t.SubTasks...)
	return &t, nil
}

func (m memTasks) ListByProject(_ context.Context, projectID string) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Task{}
	for _, t := range m.tasks {
		if t.ProjectID == projectID {
			t.SubTasks = append([]models.SubTask(nil), t.SubTasks...)
			out = append(out, t)
		}
	}
	return out, nil
}

func (m memTasks) Create(_ context.Context, t *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = *t
	return nil
}

func (m memTasks) Update(_ context.Context, t *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tasks[t.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	cur.Title = t.Title
	cur.Description = t.Description
	cur.SubTasks = append([]models.SubTask(nil), t.SubTasks...)
	cur.Dependencies = t.Dependencies
	cur.AssigneeID = t.AssigneeID
	cur.DueDate = t.DueDate
	cur.Progress = t.Progress
	m.tasks[t.ID] = cur
	return nil
}

func (m memTasks) UpdateStatus(_ context.Context, id string, status models.TaskStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tasks[id]
	if !ok {
		return repositories.ErrNotFound
	}
	cur.Status = status
	m.tasks[id] = cur
	return nil
}

func (m memTasks) SetApproval(_ context.Context, id string, gate models.Gate, party models.Party, cell models.TaskApproval) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tasks[id]
	if !ok {
		return repositories.ErrNotFound
	}
	flow := &cur.Approvals.Start
	if gate == models.GateCompletion {
		flow = &cur.Approvals.Completion
	}
	switch party {
	case models.PartyClient:
		flow.Client = cell
	case models.PartyAdmin:
		flow.Admin = cell
	case models.PartyDesigner:
		c := cell
		flow.Designer = &c
	}
	m.tasks[id] = cur
	return nil
}

func (m memTasks) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m memDocuments) GetByID(_ context.Context, id string) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.documents[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &d, nil
}

func (m memDocuments) ListByProject(_ context.Context, projectID string) ([]models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Document{}
	for _, d := range m.documents {
		if d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m memDocuments) Create(_ context.Context, d *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[d.ID] = *d
	return nil
}

func (m memDocuments) SetApproval(_ context.Context, id string, party models.Party, status models.ApprovalStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.documents[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if party == models.PartyAdmin {
		d.AdminApproval = status
	} else {
		d.ClientApproval = status
	}
	m.documents[id] = d
	return nil
}

func (m memDocuments) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.documents, id)
	return nil
}

func (m memFinancials) GetByID(_ context.Context, id string) (*models.FinancialRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.financials[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &r, nil
}

func (m memFinancials) ListByProject(_ context.Context, projectID string) ([]models.FinancialRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.FinancialRecord{}
	for _, r := range m.financials {
		if r.ProjectID == projectID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m memFinancials) Create(_ context.Context, r *models.FinancialRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.financials[r.ID] = *r
	return nil
}

func (m memFinancials) SetApproval(_ context.Context, id string, party models.Party, approved bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.financials[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if party == models.PartyAdmin {
		r.AdminApproved = approved
	} else {
		r.ClientApproved = approved
	}
	m.financials[id] = r
	return nil
}

func (m memMeetings) ListByProject(_ context.Context, projectID string) ([]models.Meeting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Meeting{}
	for _, mt := range m.meetings {
		if mt.ProjectID == projectID {
			out = append(out, mt)
		}
	}
	return out, nil
}

func (m memMeetings) Create(_ context.Context, mt *models.Meeting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meetings = append(m.meetings, *mt)
	return nil
}

func (m memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (m memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = *u
	return nil
}

func (m memUsers) UpdateTenant(_ context.Context, id, tenantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.TenantID = tenantID
	m.users[id] = u
	return nil
}

var errWriteFailed = errors.New("write failed")

func (m memUsers) SetProjectMetrics(_ context.Context, id string, metrics map[string]models.ProjectMetric) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failMetricsFor[id] {
		return errWriteFailed
	}
	u, ok := m.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.ProjectMetrics = metrics
	m.users[id] = u
	return nil
}

func (m memUsers) ListMetricHolders(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, u := range m.users {
		if u.Role == models.RoleVendor && len(u.ProjectMetrics) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m memTenants) GetByID(_ context.Context, id string) (*models.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenants[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &t, nil
}

func (m memTenants) ListByOwner(_ context.Context, ownerID string) ([]models.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Tenant
	for _, t := range m.tenants {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

type sentNote struct {
	To      string
	Subject string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNote
}

func (r *recordingNotifier) Notify(_ context.Context, to *models.User, subject, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNote{To: to.ID, Subject: subject})
}

func (r *recordingNotifier) count(subject string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sent {
		if s.Subject == subject {
			n++
		}
	}
	return n
}

// seed builds a tenant "t1" with one project "p1" and the four role users.
func seed() *memStore {
	m := newMemStore()
	for _, u := range []models.User{
		{ID: "admin", Email: "admin@studio.test", Role: models.RoleAdmin, TenantID: "t1"},
		{ID: "designer", Email: "designer@studio.test", Role: models.RoleDesigner, TenantID: "t1"},
		{ID: "client", Email: "client@studio.test", Role: models.RoleClient, TenantID: "t1"},
		{ID: "vendor", Email: "vendor@studio.test", Role: models.RoleVendor, TenantID: "t1"},
	} {
		m.users[u.ID] = u
	}
	m.projects["p1"] = models.Project{
		ID: "p1", TenantID: "t1", Name: "Sharma Residence",
		ClientID: "client", LeadDesignerID: "designer", Status: models.ProjectActive,
	}
	return m
}

func (m *memStore) user(id string) *models.User {
	u := m.users[id]
	return &u
}
