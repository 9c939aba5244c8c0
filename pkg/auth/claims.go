package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/pkg/enums"
)

// AccessTokenClaims represents the typed JWT presented by the admin panel.
// Token issuance lives in the identity service; this backend only parses.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
