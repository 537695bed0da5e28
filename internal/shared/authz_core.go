package shared

// Capabilities granted through roles.
const (
	CapRead          = "read"
	CapManageOptions = "manage_options"
)

// Role names created by the install hook.
const (
	RoleAdministrator = "administrator"
	RoleOwner         = "owner"
)
