package authz

import "interiorerp/internal/models"

// SeesFinancials reports whether the role can ever be granted financial visibility.
func SeesFinancials(role models.Role) bool {
	return role != models.RoleVendor
}
