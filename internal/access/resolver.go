// Package access answers boolean capability queries for an identity and
// provides the pure gate predicate used to show or hide protected features.
package access

import "github.com/ukydev/eco-monitor/internal/models"

// Resolver resolves capability checks against one identity. A nil identity
// (permission data still loading, or logged out) denies everything:
// fail-closed during load.
type Resolver struct {
	user *models.User
}

// NewResolver creates a resolver for the given identity. user may be nil.
func NewResolver(user *models.User) *Resolver {
	return &Resolver{user: user}
}

// HasAccess reports whether the identity holds the named capability.
// Administrators bypass all checks. When no access-rights record is
// attached, the single documented fallback applies: the owner role gets
// access, everyone else is denied. A present record always wins over the
// fallback.
func (r *Resolver) HasAccess(capability models.Capability) bool {
	if r.user == nil {
		return false
	}
	if r.user.Role == models.RoleAdmin {
		return true
	}
	rights := r.user.Rights()
	if rights == nil {
		return r.user.Role == models.RoleOwner
	}
	return rights.Has(capability)
}

// HasAnyAccess reports whether the identity holds at least one of the
// capabilities. False for an empty list.
func (r *Resolver) HasAnyAccess(capabilities []models.Capability) bool {
	for _, c := range capabilities {
		if r.HasAccess(c) {
			return true
		}
	}
	return false
}

// HasAllAccess reports whether the identity holds every capability. True
// for an empty list.
func (r *Resolver) HasAllAccess(capabilities []models.Capability) bool {
	for _, c := range capabilities {
		if !r.HasAccess(c) {
			return false
		}
	}
	return true
}

// Allowed is the gate predicate: render the protected content only when it
// returns true, the fallback otherwise. The resolver performs no cascading
// inference; hierarchy between capabilities is an editing-surface concern
// (see Normalize).
func (r *Resolver) Allowed(capabilities []models.Capability, requireAll bool) bool {
	if requireAll {
		return r.HasAllAccess(capabilities)
	}
	return r.HasAnyAccess(capabilities)
}

// Normalize applies the editing-surface capability hierarchy to a rights
// record being edited: disabling a parent capability force-disables its
// children. This is a form convenience, not a resolver rule.
func Normalize(rights models.AccessRights) models.AccessRights {
	if !rights.CanViewAdmin {
		rights.CanManageUsers = false
		rights.CanManageCompanies = false
		rights.CanViewSecurity = false
		rights.CanManageNotifications = false
	}
	if !rights.CanManageUsers {
		rights.CanViewSecurity = false
	}
	return rights
}
