package models

import "time"

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
)

// Project owns its tasks, documents, meetings and financial records.
type Project struct {
	ID             string        `json:"id" bson:"_id"`
	TenantID       string        `json:"tenant_id" bson:"tenantId"`
	Name           string        `json:"name" bson:"name"`
	ClientID       string        `json:"client_id" bson:"clientId"`
	ClientIDs      []string      `json:"client_ids,omitempty" bson:"clientIds,omitempty"`
	LeadDesignerID string        `json:"lead_designer_id" bson:"leadDesignerId"`
	TeamMembers    []string      `json:"team_members,omitempty" bson:"teamMembers,omitempty"`
	VendorIDs      []string      `json:"vendor_ids,omitempty" bson:"vendorIds,omitempty"`
	Status         ProjectStatus `json:"status" bson:"status"`
	Budget         float64       `json:"budget" bson:"budget"`
	CreatedAt      time.Time     `json:"created_at" bson:"createdAt"`
}

// HasClient reports whether userID is the primary or an additional client.
func (p *Project) HasClient(userID string) bool {
	if userID == "" {
		return false
	}
	return p.ClientID == userID || contains(p.ClientIDs, userID)
}

func (p *Project) HasTeamMember(userID string) bool {
	return userID != "" && contains(p.TeamMembers, userID)
}

func (p *Project) HasVendor(userID string) bool {
	return userID != "" && contains(p.VendorIDs, userID)
}

// ProjectSnapshot is the full current state of one project as observed by a reader.
type ProjectSnapshot struct {
	Project    Project           `json:"project"`
	Tasks      []Task            `json:"tasks"`
	Documents  []Document        `json:"documents"`
	Financials []FinancialRecord `json:"financials"`
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
