package service

import (
	"flaggate/internal/model"
	"flaggate/pkg/constraints"
)

// permission marks what a role may do; modifyProtected gates mutations in
// production-class environments.
type permission struct {
	read            bool
	modify          bool
	modifyProtected bool
	delete          bool
	manageUsers     bool
}

// roleTable is the whole authorization policy. An explicit lookup table plus
// a single enforcement call-site before every mutation, no middleware magic.
var roleTable = map[string]permission{
	constraints.RoleViewer:    {read: true},
	constraints.RoleDeveloper: {read: true, modify: true},
	constraints.RoleAdmin:     {read: true, modify: true, modifyProtected: true, delete: true, manageUsers: true},
}

// CheckPermission is a pure function mapping (role, action, environment) to
// allow/deny. Unknown roles and unknown actions deny.
func CheckPermission(role, action string, env *model.Environment) bool {
	perm, ok := roleTable[role]
	if !ok {
		return false
	}

	switch action {
	case constraints.ActionRead:
		return perm.read
	case constraints.ActionModify:
		if env != nil && env.Protected {
			return perm.modifyProtected
		}
		return perm.modify
	case constraints.ActionDelete:
		return perm.delete
	case constraints.ActionManageUsers:
		return perm.manageUsers
	default:
		return false
	}
}
