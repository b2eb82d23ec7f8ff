package enums

import "fmt"

// MemberRole identifies the kind of principal carried in an access token.
type MemberRole string

const (
	MemberRoleAdmin    MemberRole = "admin"
	MemberRoleStaff    MemberRole = "staff"
	MemberRoleCustomer MemberRole = "customer"
)

var validMemberRoles = []MemberRole{
	MemberRoleAdmin,
	MemberRoleStaff,
	MemberRoleCustomer,
}

// String implements fmt.Stringer.
func (m MemberRole) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MemberRole.
func (m MemberRole) IsValid() bool {
	for _, candidate := range validMemberRoles {
		if candidate == m {
			return true
		}
	}
	return false
}

// IsStoreStaff reports whether the role acts through the admin surface.
func (m MemberRole) IsStoreStaff() bool {
	return m == MemberRoleAdmin || m == MemberRoleStaff
}

// ParseMemberRole converts raw input into a MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	for _, candidate := range validMemberRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member role %q", value)
}
