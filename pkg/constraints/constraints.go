package constraints

// Flag types supported by the evaluation engine.
const (
	TypeBoolean    = "boolean"
	TypePercentage = "percentage"
)

// Roles carried by an authenticated principal.
const (
	RoleViewer    = "viewer"
	RoleDeveloper = "developer"
	RoleAdmin     = "admin"
)

// Actions checked by the authorization guard before any mutation.
const (
	ActionRead        = "read"
	ActionModify      = "modify"
	ActionDelete      = "delete"
	ActionManageUsers = "manage_users"
)

// Audit actions, one per committed mutation.
const (
	AuditCreate = "create"
	AuditUpdate = "update"
	AuditDelete = "delete"
)

// Evaluation reasons explain why a decision was made.
const (
	ReasonNotFound    = "not_found"
	ReasonDisabled    = "disabled"
	ReasonBooleanOn   = "boolean_on"
	ReasonBucketed    = "bucketed"
	ReasonMissingUser = "missing_user"
)

func ValidFlagType(t string) bool {
	return t == TypeBoolean || t == TypePercentage
}
