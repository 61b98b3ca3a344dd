// internal/domain/user/principal.go
package user

// Principal is the authenticated caller, passed explicitly into every core
// operation instead of living in ambient request state.
type Principal struct {
	UserID   int64
	Role     Role
	SellerID int64 // zero unless the user has a seller profile
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsSeller() bool {
	return p.Role == RoleSeller
}
