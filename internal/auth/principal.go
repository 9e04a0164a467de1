package auth

import "github.com/cafeflow/backend/internal/core/domain"

// RoleAnonymous marks sessions that never presented a credential. It is a
// connection-level role, never issued inside a token.
const RoleAnonymous domain.Role = "anonymous"

// Principal is a verified identity and role resolved from a credential, or
// the anonymous principal for the public order-tracking channel.
type Principal struct {
	ID   string
	Role domain.Role
}

// Anonymous returns the principal used for unauthenticated sessions.
func Anonymous() Principal {
	return Principal{Role: RoleAnonymous}
}

// FromClaims derives a principal from verified access token claims.
func FromClaims(claims *Claims) Principal {
	return Principal{
		ID:   claims.UserID(),
		Role: claims.Role,
	}
}
