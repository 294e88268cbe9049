package globals

// Context keys
type ContextKey string

const (
	RoleKey   ContextKey = "role"
	UserIDKey ContextKey = "userId"
)

// RoleAdmin is the role claim carried by staff tokens.
const RoleAdmin = "admin"
