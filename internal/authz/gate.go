package authz

import "github.com/eIIka/tour-agency/internal/domain"

// Capability is a named permission checked before showing or entering a
// protected surface. Denial is a normal boolean, not an error; callers
// redirect or hide the action.
type Capability int

const (
	// CapEnterBookingFlow admits a user into the checkout sequence.
	CapEnterBookingFlow Capability = iota + 1
	// CapManageTour allows creating and editing tours. Per-tour ownership
	// for guides is checked separately via AuthorizeTourManagement.
	CapManageTour
	// CapManageUsers allows access to the user administration surface.
	CapManageUsers
)

// Authorize reports whether the identity may exercise the capability.
// Pure: no state, no network, and an expired identity never passes.
func Authorize(id domain.Identity, cap Capability) bool {
	if id.IsAnonymous() {
		return false
	}
	switch cap {
	case CapEnterBookingFlow:
		return id.Role == domain.RoleClient
	case CapManageTour:
		return id.Role == domain.RoleGuide || id.Role == domain.RoleAdmin
	case CapManageUsers:
		return id.Role == domain.RoleAdmin
	}
	return false
}

// AuthorizeTourManagement checks CapManageTour against a concrete tour:
// admins manage any tour, guides only their own. guideID is the caller's
// guide profile id (from GET /guide/me), zero for non-guides.
func AuthorizeTourManagement(id domain.Identity, guideID int64, tour domain.Tour) bool {
	if !Authorize(id, CapManageTour) {
		return false
	}
	if id.Role == domain.RoleAdmin {
		return true
	}
	return guideID != 0 && guideID == tour.GuideID
}
