// Package authz computes what a user may see and do on a project and its
// entities. Capability sets are plain values recomputed from the current
// role and membership state on every request; nothing is cached.
package authz

import "interiorerp/internal/models"

// ProjectCapabilities is the immutable capability set of one (user, project) pair.
type ProjectCapabilities struct {
	CanView              bool `json:"can_view_project"`
	CanEdit              bool `json:"can_edit_project"`
	CanDelete            bool `json:"can_delete_project"`
	CanManageTasks       bool `json:"can_manage_tasks"`
	CanManageMeetings    bool `json:"can_manage_meetings"`
	CanViewFinancials    bool `json:"can_view_financials"`
	CanManageFinancials  bool `json:"can_manage_financials"`
	CanUploadDocuments   bool `json:"can_upload_documents"`
	CanManageTeam        bool `json:"can_manage_team"`
	CanApproveCompletion bool `json:"can_approve_completion"`
}

// AccessPolicy evaluates a role's membership predicates.
type AccessPolicy interface {
	Role() models.Role
	// Project returns the capability set for a project whose tenant the user may enter.
	Project(u *models.User, p *models.Project, tasks []models.Task) ProjectCapabilities
}

// PolicyFor selects the policy variant for the user's role.
// Unknown roles get a policy that grants nothing.
func PolicyFor(u *models.User) AccessPolicy {
	if u == nil {
		return denyPolicy{}
	}
	switch u.Role {
	case models.RoleAdmin:
		return adminPolicy{}
	case models.RoleDesigner:
		return designerPolicy{}
	case models.RoleClient:
		return clientPolicy{}
	case models.RoleVendor:
		return vendorPolicy{}
	}
	return denyPolicy{}
}

// GetProjectAccess is the single entry point for project capabilities.
// tasks is the project's current task set; it feeds the vendor assignment predicate.
func GetProjectAccess(u *models.User, p *models.Project, tasks []models.Task) ProjectCapabilities {
	if u == nil || p == nil || !u.InTenant(p.TenantID) {
		return ProjectCapabilities{}
	}
	return PolicyFor(u).Project(u, p, tasks)
}

type adminPolicy struct{}

func (adminPolicy) Role() models.Role { return models.RoleAdmin }

func (adminPolicy) Project(*models.User, *models.Project, []models.Task) ProjectCapabilities {
	return ProjectCapabilities{
		CanView:              true,
		CanEdit:              true,
		CanDelete:            true,
		CanManageTasks:       true,
		CanManageMeetings:    true,
		CanViewFinancials:    true,
		CanManageFinancials:  true,
		CanUploadDocuments:   true,
		CanManageTeam:        true,
		CanApproveCompletion: true,
	}
}

type designerPolicy struct{}

func (designerPolicy) Role() models.Role { return models.RoleDesigner }

func (designerPolicy) Project(u *models.User, p *models.Project, _ []models.Task) ProjectCapabilities {
	if p.LeadDesignerID != u.ID && !p.HasTeamMember(u.ID) {
		return ProjectCapabilities{}
	}
	return ProjectCapabilities{
		CanView:            true,
		CanEdit:            true,
		CanManageTasks:     true,
		CanManageMeetings:  true,
		CanViewFinancials:  true,
		CanUploadDocuments: true,
		CanManageTeam:      true,
	}
}

type clientPolicy struct{}

func (clientPolicy) Role() models.Role { return models.RoleClient }

func (clientPolicy) Project(u *models.User, p *models.Project, _ []models.Task) ProjectCapabilities {
	if !p.HasClient(u.ID) {
		return ProjectCapabilities{}
	}
	return ProjectCapabilities{
		CanView:              true,
		CanManageMeetings:    true,
		CanViewFinancials:    true,
		CanApproveCompletion: true,
	}
}

type vendorPolicy struct{}

func (vendorPolicy) Role() models.Role { return models.RoleVendor }

func (vendorPolicy) Project(u *models.User, p *models.Project, tasks []models.Task) ProjectCapabilities {
	if !p.HasVendor(u.ID) && !p.HasTeamMember(u.ID) && !hasAssignedTask(u.ID, p.ID, tasks) {
		return ProjectCapabilities{}
	}
	return ProjectCapabilities{
		CanView:            true,
		CanUploadDocuments: true,
	}
}

type denyPolicy struct{}

func (denyPolicy) Role() models.Role { return "" }

func (denyPolicy) Project(*models.User, *models.Project, []models.Task) ProjectCapabilities {
	return ProjectCapabilities{}
}

func hasAssignedTask(userID, projectID string, tasks []models.Task) bool {
	if userID == "" {
		return false
	}
	for i := range tasks {
		if tasks[i].AssigneeID != userID {
			continue
		}
		if tasks[i].ProjectID == "" || tasks[i].ProjectID == projectID {
			return true
		}
	}
	return false
}
