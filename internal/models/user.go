package models

type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleDesigner Role = "Designer"
	RoleClient   Role = "Client"
	RoleVendor   Role = "Vendor"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDesigner, RoleClient, RoleVendor:
		return true
	}
	return false
}

// ProjectMetric is the materialized per-project vendor summary.
// Derived from tasks and financial records; never authoritative.
type ProjectMetric struct {
	ProjectName string  `json:"project_name"`
	TaskCount   int     `json:"task_count"`
	NetAmount   float64 `json:"net_amount"`
}

type User struct {
	ID             string                   `json:"id"`
	Name           string                   `json:"name"`
	Email          string                   `json:"email"`
	Phone          string                   `json:"phone,omitempty"`
	Role           Role                     `json:"role"`
	TenantID       string                   `json:"tenant_id"`
	TenantIDs      []string                 `json:"tenant_ids,omitempty"`
	PasswordHash   string                   `json:"-"`
	TelegramChatID int64                    `json:"-"`
	ProjectMetrics map[string]ProjectMetric `json:"project_metrics,omitempty"`
}

// InTenant reports whether the user may act inside tenantID,
// either as home tenant or through a cross-tenant grant.
func (u *User) InTenant(tenantID string) bool {
	if tenantID == "" {
		return false
	}
	return u.TenantID == tenantID || contains(u.TenantIDs, tenantID)
}

type Tenant struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
