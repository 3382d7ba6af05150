package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eIIka/tour-agency/internal/domain"
)

// Decode derives an Identity from a bearer credential without any network
// call. The client holds no key material, so the signature is not verified;
// the backend re-validates the token on every request. Expiry is the only
// check performed locally.
//
// An empty credential yields the anonymous identity. Malformed credentials
// fail with domain.ErrInvalidCredential, expired ones with
// domain.ErrCredentialExpired; callers are expected to downgrade to
// anonymous and discard the stored credential in both cases.
func Decode(credential string, now time.Time) (domain.Identity, error) {
	if credential == "" {
		return domain.Anonymous(), nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return domain.Anonymous(), fmt.Errorf("%w: %v", domain.ErrInvalidCredential, err)
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return domain.Anonymous(), fmt.Errorf("%w: missing subject", domain.ErrInvalidCredential)
	}

	role, ok := roleFromClaims(claims)
	if !ok {
		return domain.Anonymous(), fmt.Errorf("%w: missing or unknown role", domain.ErrInvalidCredential)
	}

	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return domain.Anonymous(), fmt.Errorf("%w: missing expiry", domain.ErrInvalidCredential)
	}

	id := domain.Identity{
		UserID:    userIDFromClaims(claims),
		Subject:   subject,
		Role:      role,
		ExpiresAt: expiry.Time,
	}
	if id.ExpiredAt(now) {
		return domain.Anonymous(), domain.ErrCredentialExpired
	}
	return id, nil
}

// roleFromClaims takes the first entry of the "roles" list claim, falling
// back to the singular "role" claim.
func roleFromClaims(claims jwt.MapClaims) (domain.Role, bool) {
	if raw, ok := claims["roles"]; ok {
		if list, ok := raw.([]interface{}); ok && len(list) > 0 {
			if s, ok := list[0].(string); ok {
				return domain.ParseRole(s)
			}
		}
	}
	if s, ok := claims["role"].(string); ok {
		return domain.ParseRole(s)
	}
	return domain.RoleAnonymous, false
}

// userIDFromClaims reads the numeric user id the backend stores in the jti
// claim. Zero when absent or unparsable; the id is informational only.
func userIDFromClaims(claims jwt.MapClaims) int64 {
	s, ok := claims["jti"].(string)
	if !ok {
		return 0
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
