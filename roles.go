package landmark

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is a standard shopper account
	RoleUser UserRole = "user"
	// RoleSeller may manage its own catalog entries
	RoleSeller UserRole = "seller"
	// RoleAdministrator may manage everything
	RoleAdministrator UserRole = "administrator"
)

// ParseRole returns the role matching the given string and whether it is one
// of the known roles.
func ParseRole(role string) (UserRole, bool) {
	switch role {
	case RoleUser, RoleSeller, RoleAdministrator:
		return role, true
	default:
		return "", false
	}
}

// IsValidRole checks if the role is one of the predefined valid roles
func IsValidRole(role UserRole) bool {
	_, ok := ParseRole(role)
	return ok
}

// RoleAllowed is the pure authorization check: it reports whether role is in
// the allowed set. An empty allowed set denies everything.
func RoleAllowed(role UserRole, allowed ...UserRole) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// CanManageProduct reports whether the identity may modify the given product:
// administrators always, sellers only for their own entries.
func CanManageProduct(user *User, product *Product) bool {
	if user == nil || product == nil {
		return false
	}
	if user.Role == RoleAdministrator {
		return true
	}
	return user.Role == RoleSeller && product.SellerID == user.ID
}
