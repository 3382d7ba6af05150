package domain

import "time"

// Role is the closed set of account roles the backend issues. The wire
// literals match the backend's Spring-style authority names.
type Role string

const (
	RoleAnonymous Role = ""
	RoleClient    Role = "ROLE_CLIENT"
	RoleGuide     Role = "ROLE_GUIDE"
	RoleAdmin     Role = "ROLE_ADMIN"
)

// ParseRole maps a wire literal onto the role enum. Unknown literals are
// rejected rather than carried around as unchecked strings.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleClient, RoleGuide, RoleAdmin:
		return Role(s), true
	}
	return RoleAnonymous, false
}

// Identity is the decoded, time-bounded representation of the current user.
// It is derived from the bearer credential and replaced wholesale on
// login/logout, never mutated in place.
type Identity struct {
	UserID    int64
	Subject   string // email
	Role      Role
	ExpiresAt time.Time
}

// Anonymous is the zero identity used for unauthenticated sessions.
func Anonymous() Identity { return Identity{} }

func (id Identity) IsAnonymous() bool {
	return id.Subject == "" || id.Role == RoleAnonymous
}

// ExpiredAt reports whether the identity's credential lifetime has elapsed.
// An expired identity must never be treated as authenticated.
func (id Identity) ExpiredAt(now time.Time) bool {
	return !id.ExpiresAt.IsZero() && !id.ExpiresAt.After(now)
}

// ClientProfile is the client record returned by GET /client/me. It seeds
// the passenger details draft at the start of a booking flow.
type ClientProfile struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	PassportNumber string `json:"passportNumber"`
	Phone          string `json:"phone"`
}

// GuideProfile is the guide record returned by GET /guide/me.
type GuideProfile struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Language string `json:"language"`
}
