package authz

import (
	"testing"

	"interiorerp/internal/models"
)

func testProject() *models.Project {
	return &models.Project{
		ID:             "p1",
		TenantID:       "t1",
		ClientID:       "client-1",
		ClientIDs:      []string{"client-2"},
		LeadDesignerID: "designer-1",
		TeamMembers:    []string{"designer-2", "vendor-team"},
		VendorIDs:      []string{"vendor-listed"},
	}
}

func user(id string, role models.Role) *models.User {
	return &models.User{ID: id, Role: role, TenantID: "t1"}
}

func TestGetProjectAccessByRole(t *testing.T) {
	p := testProject()
	tasks := []models.Task{{ID: "x", ProjectID: "p1", AssigneeID: "vendor-assigned"}}

	tests := []struct {
		name string
		user *models.User
		want ProjectCapabilities
	}{
		{
			name: "admin gets everything",
			user: user("admin-1", models.RoleAdmin),
			want: ProjectCapabilities{true, true, true, true, true, true, true, true, true, true},
		},
		{
			name: "lead designer",
			user: user("designer-1", models.RoleDesigner),
			want: ProjectCapabilities{CanView: true, CanEdit: true, CanManageTasks: true, CanManageMeetings: true,
				CanViewFinancials: true, CanUploadDocuments: true, CanManageTeam: true},
		},
		{
			name: "team designer",
			user: user("designer-2", models.RoleDesigner),
			want: ProjectCapabilities{CanView: true, CanEdit: true, CanManageTasks: true, CanManageMeetings: true,
				CanViewFinancials: true, CanUploadDocuments: true, CanManageTeam: true},
		},
		{
			name: "outside designer",
			user: user("designer-9", models.RoleDesigner),
			want: ProjectCapabilities{},
		},
		{
			name: "primary client",
			user: user("client-1", models.RoleClient),
			want: ProjectCapabilities{CanView: true, CanManageMeetings: true, CanViewFinancials: true, CanApproveCompletion: true},
		},
		{
			name: "additional client",
			user: user("client-2", models.RoleClient),
			want: ProjectCapabilities{CanView: true, CanManageMeetings: true, CanViewFinancials: true, CanApproveCompletion: true},
		},
		{
			name: "foreign client",
			user: user("client-9", models.RoleClient),
			want: ProjectCapabilities{},
		},
		{
			name: "vendor by assignment",
			user: user("vendor-assigned", models.RoleVendor),
			want: ProjectCapabilities{CanView: true, CanUploadDocuments: true},
		},
		{
			name: "vendor by vendor ids",
			user: user("vendor-listed", models.RoleVendor),
			want: ProjectCapabilities{CanView: true, CanUploadDocuments: true},
		},
		{
			name: "vendor by team membership",
			user: user("vendor-team", models.RoleVendor),
			want: ProjectCapabilities{CanView: true, CanUploadDocuments: true},
		},
		{
			name: "unknown role",
			user: user("ghost", models.Role("Auditor")),
			want: ProjectCapabilities{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetProjectAccess(tt.user, p, tasks)
			if got != tt.want {
				t.Fatalf("GetProjectAccess = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestVendorWithoutAssignmentSeesNothing(t *testing.T) {
	p := testProject()
	tasks := []models.Task{{ID: "x", ProjectID: "p1", AssigneeID: "someone-else"}}
	got := GetProjectAccess(user("vendor-x", models.RoleVendor), p, tasks)
	if got.CanView || got.CanViewFinancials {
		t.Fatalf("vendor without relation must not view: %+v", got)
	}
}

func TestVendorNeverSeesFinancials(t *testing.T) {
	p := testProject()
	got := GetProjectAccess(user("vendor-listed", models.RoleVendor), p, nil)
	if got.CanViewFinancials || got.CanManageFinancials {
		t.Fatalf("vendor must not see financials: %+v", got)
	}
	if GetFinancialAccess(user("vendor-listed", models.RoleVendor), p, nil).CanView {
		t.Fatalf("vendor financial access must be empty")
	}
}

func TestTenantIsolation(t *testing.T) {
	p := testProject()
	admin := &models.User{ID: "admin-2", Role: models.RoleAdmin, TenantID: "t2"}
	if GetProjectAccess(admin, p, nil).CanView {
		t.Fatalf("admin of another tenant must not see project")
	}

	admin.TenantIDs = []string{"t1"}
	if !GetProjectAccess(admin, p, nil).CanEdit {
		t.Fatalf("admin owning tenant t1 must have access")
	}

	roaming := &models.User{ID: "designer-1", Role: models.RoleDesigner, TenantID: "t9", TenantIDs: []string{"t1"}}
	if !GetProjectAccess(roaming, p, nil).CanView {
		t.Fatalf("roaming designer with grant must have access")
	}
}

func TestClientNeverEdits(t *testing.T) {
	got := GetProjectAccess(user("client-1", models.RoleClient), testProject(), nil)
	if got.CanEdit || got.CanDelete || got.CanManageFinancials || got.CanManageTeam {
		t.Fatalf("client got a staff capability: %+v", got)
	}
}

func TestGetTaskAccess(t *testing.T) {
	p := testProject()
	own := models.Task{ID: "a", ProjectID: "p1", AssigneeID: "vendor-listed"}
	other := models.Task{ID: "b", ProjectID: "p1", AssigneeID: "vendor-other"}
	tasks := []models.Task{own, other}

	vendor := user("vendor-listed", models.RoleVendor)
	if caps := GetTaskAccess(vendor, p, tasks, &own); !caps.CanView || !caps.CanUpdateProgress || caps.CanEdit {
		t.Fatalf("vendor on own task: %+v", caps)
	}
	if caps := GetTaskAccess(vendor, p, tasks, &other); caps.CanView {
		t.Fatalf("vendor must not see other tasks: %+v", caps)
	}

	client := user("client-1", models.RoleClient)
	caps := GetTaskAccess(client, p, tasks, &own)
	if !caps.CanView || caps.CanEdit || !caps.CanApproveAs(models.PartyClient) || caps.CanApproveAs(models.PartyAdmin) {
		t.Fatalf("client task caps: %+v", caps)
	}

	admin := user("admin-1", models.RoleAdmin)
	if caps := GetTaskAccess(admin, p, tasks, &own); !caps.CanDelete || !caps.CanApproveAs(models.PartyAdmin) {
		t.Fatalf("admin task caps: %+v", caps)
	}
}

func TestCanApprove(t *testing.T) {
	p := testProject()
	if !CanApprove(user("client-1", models.RoleClient), p, nil, models.PartyClient) {
		t.Fatalf("client should approve client cell")
	}
	if CanApprove(user("client-1", models.RoleClient), p, nil, models.PartyAdmin) {
		t.Fatalf("client must not approve admin cell")
	}
	if CanApprove(user("client-9", models.RoleClient), p, nil, models.PartyClient) {
		t.Fatalf("foreign client must not approve")
	}
	if !CanApprove(user("designer-2", models.RoleDesigner), p, nil, models.PartyDesigner) {
		t.Fatalf("team designer should approve designer cell")
	}
	if CanApprove(user("vendor-listed", models.RoleVendor), p, nil, models.PartyClient) {
		t.Fatalf("vendor has no approval party")
	}
}

func TestGetDocumentAccess(t *testing.T) {
	p := testProject()
	doc := &models.Document{ID: "d1", ProjectID: "p1", SharedWith: []models.Role{models.RoleClient},
		AdminApproval: models.ApprovalApproved, ClientApproval: models.ApprovalPending}

	if caps := GetDocumentAccess(user("client-1", models.RoleClient), p, nil, doc); !caps.CanView || !caps.CanApproveClient {
		t.Fatalf("client doc caps: %+v", caps)
	}
	if caps := GetDocumentAccess(user("designer-1", models.RoleDesigner), p, nil, doc); caps.CanView {
		t.Fatalf("designer should not see doc not shared with designers: %+v", caps)
	}
	if caps := GetDocumentAccess(user("admin-1", models.RoleAdmin), p, nil, doc); !caps.CanView || !caps.CanApproveAdmin {
		t.Fatalf("admin doc caps: %+v", caps)
	}

	doc.AdminApproval = models.ApprovalPending
	if caps := GetDocumentAccess(user("client-1", models.RoleClient), p, nil, doc); caps.CanApproveClient {
		t.Fatalf("client cannot approve before admin")
	}
}

func TestGetMeetingAccess(t *testing.T) {
	p := testProject()
	m := &models.Meeting{ID: "m1", Attendees: []string{"vendor-listed"}}
	if caps := GetMeetingAccess(user("vendor-listed", models.RoleVendor), p, nil, m); !caps.CanView || caps.CanManage {
		t.Fatalf("attending vendor caps: %+v", caps)
	}
	if caps := GetMeetingAccess(user("vendor-team", models.RoleVendor), p, nil, m); caps.CanView {
		t.Fatalf("non-attending vendor caps: %+v", caps)
	}
	if caps := GetMeetingAccess(user("client-2", models.RoleClient), p, nil, m); !caps.CanManage {
		t.Fatalf("client manages meetings: %+v", caps)
	}
}
