package service

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stemsi/edulink/internal/config"
	"github.com/stemsi/edulink/internal/model"
)

// ErrInvalidToken is returned for tokens that fail parsing, signature or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims extends JWT standard claims with the operator's tenant scope and permissions.
type Claims struct {
	jwt.RegisteredClaims
	OperatorID  string   `json:"operator_id"`
	SchoolIDs   []string `json:"school_ids"`
	Permissions []string `json:"permissions,omitempty"`
}

// CanAccessSchool reports whether the operator may act within schoolID.
func (c *Claims) CanAccessSchool(schoolID string) bool {
	return slices.Contains(c.SchoolIDs, model.AllSchools) || slices.Contains(c.SchoolIDs, schoolID)
}

// HasPermission reports whether the token grants code.
func (c *Claims) HasPermission(code string) bool {
	return slices.Contains(c.Permissions, code)
}

// AuthService validates operator tokens. Tokens are issued by the school platform's
// auth service; GenerateOperatorToken exists for local tooling and tests.
type AuthService struct {
	cfg *config.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// GenerateOperatorToken signs an HS256 token for an operator.
func (s *AuthService) GenerateOperatorToken(operatorID string, schoolIDs, permissions []string) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   operatorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		OperatorID:  operatorID,
		SchoolIDs:   schoolIDs,
		Permissions: permissions,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.OperatorID == "" {
		return nil, fmt.Errorf("%w: missing operator_id", ErrInvalidToken)
	}

	return claims, nil
}
