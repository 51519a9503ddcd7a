package auth

import (
	"context"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Role is the caller's authorization level, as asserted by the identity
// service that issued the token.
type Role string

const (
	RoleMember  Role = "member"
	RoleCoach   Role = "coach"
	RoleManager Role = "manager"
)

// Identity is the authenticated caller for one request. It is carried in the
// request context and passed explicitly into services; nothing holds it as
// process-global state.
type Identity struct {
	MemberID string
	Role     Role
	Email    string
}

var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenParser validates HS256 bearer tokens issued by the identity service.
type TokenParser struct {
	secret []byte
}

func NewTokenParser(secret string) *TokenParser {
	return &TokenParser{secret: []byte(secret)}
}

// Parse validates the token and extracts the caller identity. The subject
// claim is the member id.
func (p *TokenParser) Parse(token string) (Identity, error) {
	t, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return p.secret, nil
	})
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	c, ok := t.Claims.(*claims)
	if !ok || !t.Valid || c.Subject == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{MemberID: c.Subject, Role: Role(c.Role), Email: c.Email}, nil
}

// Sign issues a token for the given identity. The service never issues tokens
// in production (the identity service owns that); this exists for tests and
// local tooling.
func Sign(secret string, id Identity, ttl time.Duration, now time.Time) (string, error) {
	c := claims{
		Role:  string(id.Role),
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.MemberID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

type identityKey struct{}

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext extracts the authenticated identity, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
