// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of the identity service's token the fleet map reads.
type Claims struct {
	IdentityID     int64    `json:"identity_id"`
	Roles          []string `json:"roles,omitempty"`
	IsTemp         bool     `json:"is_temp"`
	SessionPurpose string   `json:"session_purpose"`
	jwt.RegisteredClaims
}
