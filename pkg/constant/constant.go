package constant

// Roles recognised by the API. Stored verbatim on the users table.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleUser     = "user"
	RoleReadonly = "readonly"
)

// HeaderSessionKey carries an externally minted session key for requests
// embedded inside the Zoho host application.
const HeaderSessionKey = "x-session-key"

// Audit action names.
const (
	ActionLogin           = "login"
	ActionLoginFailed     = "login_failed"
	ActionAccountLocked   = "account_locked"
	ActionLogout          = "logout"
	ActionTokenRefresh    = "refresh"
	ActionUserCreated     = "user_created"
	ActionUserUpdated     = "user_updated"
	ActionUserDeactivated = "user_deactivated"
	ActionPasswordChanged = "password_changed"
	ActionPasswordReset   = "password_reset"
	ActionSessionKeyBound = "session_key_bound"
)

// ValidRole reports whether role is one of the closed role set.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleUser, RoleReadonly:
		return true
	}
	return false
}
