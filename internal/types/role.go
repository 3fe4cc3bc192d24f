package types

import "fmt"

// Role is the role a user holds inside a single project.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Roles lists every role, in descending order of privilege.
var Roles = []Role{RoleAdmin, RoleUser}

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	}

	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// CanManage reports whether the role may mutate the project, its tasks and its
// members.
func (r Role) CanManage() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleUser:
		return false
	}

	return false
}

func (r Role) String() string {
	return string(r)
}
