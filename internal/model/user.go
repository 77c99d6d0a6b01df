package model

// Roles.
const (
	RoleAdmin     = "admin"
	RoleStaff     = "staff"
	RoleVolunteer = "volunteer"
)

// DefaultRole is assigned when a user draft omits a role.
const DefaultRole = RoleVolunteer

// Roles lists the allowed roles.
var Roles = []string{RoleAdmin, RoleStaff, RoleVolunteer}

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin:     3,
		RoleStaff:     2,
		RoleVolunteer: 1,
	}
	return levels[role] >= levels[minimum]
}
