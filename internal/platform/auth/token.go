package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/medrec/medrec/internal/platform/apperr"
)

// Role tags embedded in access tokens. The set is closed.
const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
)

// Claims is the payload of an issued access token: subject = user id, plus a
// snapshot of the user's roles at issuance time. There is no revocation; a
// token stays valid until it expires regardless of later role changes.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// Identity is the verified caller extracted from a token.
type Identity struct {
	UserID string
	Roles  []string
}

// TokenService issues and verifies stateless HS256-signed access tokens.
// Validity is determined solely by signature and expiry.
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
}

func NewTokenService(signingKey []byte, ttl time.Duration) *TokenService {
	return &TokenService{signingKey: signingKey, ttl: ttl}
}

// Issue signs a token for the given user carrying the role snapshot.
func (s *TokenService) Issue(userID string, roles []string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Roles: roles,
	})
	return token.SignedString(s.signingKey)
}

// Verify checks signature and expiry and returns the caller identity. Every
// verification failure (bad signature, parse error, expiry) collapses into
// apperr.ErrUnauthenticated; callers cannot distinguish the causes. A missing
// or malformed roles claim yields an empty role list, never an error.
func (s *TokenService) Verify(tokenStr string) (*Identity, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, apperr.ErrUnauthenticated
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, apperr.ErrUnauthenticated
	}

	return &Identity{UserID: sub, Roles: rolesFromClaims(claims)}, nil
}

func rolesFromClaims(claims jwt.MapClaims) []string {
	raw, ok := claims["roles"].([]interface{})
	if !ok {
		return nil
	}
	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}
