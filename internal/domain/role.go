package domain

import (
	"fmt"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCustomer   Role = "customer"
	RoleMerchant   Role = "merchant"
	RoleSuperAdmin Role = "super_admin"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleMerchant, RoleSuperAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// MatchRole dispatches on the closed set of roles. Every caller supplies a
// branch for each role, so introducing a new role breaks the build at every
// dispatch site until it is handled.
func MatchRole[T any](r Role, customer, merchant, superAdmin func() T) T {
	switch r {
	case RoleMerchant:
		return merchant()
	case RoleSuperAdmin:
		return superAdmin()
	case RoleCustomer:
		return customer()
	}
	panic(fmt.Sprintf("unhandled role %q", r))
}

// Actor is the authenticated caller supplied by the identity layer.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

func (a *Actor) IsSuperAdmin() bool {
	return a != nil && a.Role == RoleSuperAdmin
}

// UnlimitedRedemptions reports whether the actor is exempt from the
// one-redemption-per-offer limit.
func (a *Actor) UnlimitedRedemptions() bool {
	return MatchRole(a.Role,
		func() bool { return false },
		func() bool { return true },
		func() bool { return false },
	)
}

// CanManageOffer reports whether the actor may mutate an offer owned by merchantID.
func (a *Actor) CanManageOffer(merchantID uuid.UUID) bool {
	return MatchRole(a.Role,
		func() bool { return false },
		func() bool { return a.UserID == merchantID },
		func() bool { return true },
	)
}
