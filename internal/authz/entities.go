package authz

import (
	"interiorerp/internal/models"
	"interiorerp/internal/taskflow"
)

type TaskCapabilities struct {
	CanView           bool           `json:"can_view"`
	CanUpdateProgress bool           `json:"can_update_progress"`
	CanEdit           bool           `json:"can_edit"`
	CanDelete         bool           `json:"can_delete"`
	ApproveAs         []models.Party `json:"approve_as,omitempty"`
}

// CanApproveAs reports whether the capability set lets its holder sign for party.
func (c TaskCapabilities) CanApproveAs(party models.Party) bool {
	for _, p := range c.ApproveAs {
		if p == party {
			return true
		}
	}
	return false
}

// GetTaskAccess scopes the project predicates to a single task. Vendors only
// see and update tasks assigned to them.
func GetTaskAccess(u *models.User, p *models.Project, tasks []models.Task, t *models.Task) TaskCapabilities {
	if t == nil {
		return TaskCapabilities{}
	}
	pc := GetProjectAccess(u, p, tasks)
	if !pc.CanView {
		return TaskCapabilities{}
	}
	assignee := t.AssigneeID != "" && t.AssigneeID == u.ID
	caps := TaskCapabilities{
		CanView:           true,
		CanUpdateProgress: pc.CanManageTasks || assignee,
		CanEdit:           pc.CanManageTasks,
		CanDelete:         pc.CanManageTasks && pc.CanDelete,
	}
	if u.Role == models.RoleVendor {
		caps.CanView = assignee
		caps.CanUpdateProgress = assignee
	}
	if party, ok := taskflow.PartyForRole(u.Role); ok {
		caps.ApproveAs = []models.Party{party}
	}
	return caps
}

// CanApprove reports whether u may write the party cell of any task on p:
// the party must be the user's own and the project must be visible to them.
func CanApprove(u *models.User, p *models.Project, tasks []models.Task, party models.Party) bool {
	own, ok := taskflow.PartyForRole(roleOf(u))
	if !ok || own != party {
		return false
	}
	return GetProjectAccess(u, p, tasks).CanView
}

type DocumentCapabilities struct {
	CanView          bool `json:"can_view"`
	CanDelete        bool `json:"can_delete"`
	CanApproveAdmin  bool `json:"can_approve_admin"`
	CanApproveClient bool `json:"can_approve_client"`
}

// GetDocumentAccess applies the project predicates scoped to the document's
// sharedWith role list. Admins see every document of their tenant; uploaders
// always see their own files.
func GetDocumentAccess(u *models.User, p *models.Project, tasks []models.Task, d *models.Document) DocumentCapabilities {
	if d == nil {
		return DocumentCapabilities{}
	}
	pc := GetProjectAccess(u, p, tasks)
	if !pc.CanView {
		return DocumentCapabilities{}
	}
	if u.Role == models.RoleAdmin {
		return DocumentCapabilities{CanView: true, CanDelete: true, CanApproveAdmin: true}
	}
	own := d.UploadedBy != "" && d.UploadedBy == u.ID
	caps := DocumentCapabilities{
		CanView:   own || d.SharedWithRole(u.Role),
		CanDelete: own,
	}
	if u.Role == models.RoleClient && caps.CanView {
		caps.CanApproveClient = d.AdminApproval == models.ApprovalApproved
	}
	return caps
}

type FinancialCapabilities struct {
	CanView          bool `json:"can_view"`
	CanManage        bool `json:"can_manage"`
	CanApproveAdmin  bool `json:"can_approve_admin"`
	CanApproveClient bool `json:"can_approve_client"`
}

func GetFinancialAccess(u *models.User, p *models.Project, tasks []models.Task) FinancialCapabilities {
	pc := GetProjectAccess(u, p, tasks)
	if !pc.CanViewFinancials || !SeesFinancials(u.Role) {
		return FinancialCapabilities{}
	}
	return FinancialCapabilities{
		CanView:          true,
		CanManage:        pc.CanManageFinancials,
		CanApproveAdmin:  u.Role == models.RoleAdmin,
		CanApproveClient: u.Role == models.RoleClient,
	}
}

type MeetingCapabilities struct {
	CanView   bool `json:"can_view"`
	CanManage bool `json:"can_manage"`
}

// GetMeetingAccess lets every project viewer read the schedule; non-managers
// only see meetings they attend.
func GetMeetingAccess(u *models.User, p *models.Project, tasks []models.Task, m *models.Meeting) MeetingCapabilities {
	pc := GetProjectAccess(u, p, tasks)
	if !pc.CanView {
		return MeetingCapabilities{}
	}
	if pc.CanManageMeetings {
		return MeetingCapabilities{CanView: true, CanManage: true}
	}
	if m == nil {
		return MeetingCapabilities{CanView: true}
	}
	for _, a := range m.Attendees {
		if a == u.ID {
			return MeetingCapabilities{CanView: true}
		}
	}
	return MeetingCapabilities{}
}

func roleOf(u *models.User) models.Role {
	if u == nil {
		return ""
	}
	return u.Role
}
