// Package security implements session-token issuance/validation and
// password hashing, adapted from clients_portal/shared/security/jwt.go:
// the same golang-jwt/v5 + bcrypt stack, generalised from the portal's
// {uid, cid, role} claims to the Agency {agency_id, role} claims names.
package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/doualaexpress/deligate/auth/domain"
	tenant "github.com/doualaexpress/deligate/tenant/domain"
)

type sessionClaims struct {
	AgencyID int64 `json:"agency_id"`
	Role tenant.Role `json:"role"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret []byte
	ttl time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Generate issues a signed session token encoding {agency_id, role,
// expires_at}.
func (i *TokenIssuer) Generate(agencyID int64, role tenant.Role) (string, time.Time, error) {
	expiresAt := time.Now().Add(i.ttl)
	claims := &sessionClaims{
		AgencyID: agencyID,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Issuer: "deligate",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	return signed, expiresAt, err
}

// Validate parses and validates a session token, returning domain.Claims.
func (i *TokenIssuer) Validate(tokenString string) (domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Claims{}, domain.ErrSessionExpired
		}
		return domain.Claims{}, err
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return domain.Claims{}, errors.New("invalid token")
	}

	return domain.Claims{
		AgencyID: claims.AgencyID,
		Role: claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
