package enums

import "fmt"

// ActorRole identifies what a terminal session is allowed to do.
type ActorRole string

const (
	RoleCashier ActorRole = "cashier"
	RoleAdmin   ActorRole = "admin"
)

var validActorRoles = []ActorRole{
	RoleCashier,
	RoleAdmin,
}

// String implements fmt.Stringer.
func (r ActorRole) String() string {
	return string(r)
}

// IsValid reports whether the role is recognized.
func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseActorRole converts a raw string into an ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
