package auth

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const issuer = "member-api"

var ErrInvalidToken = errors.New("invalid system token")

// Claims is the payload of a system token.
type Claims struct {
	SystemID int `json:"sys"`
	jwtlib.RegisteredClaims
}

// Authenticator validates system tokens and produces the caller's system id.
type Authenticator struct {
	secret []byte
	now    func() time.Time
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret), now: time.Now}
}

// Issue signs a token for systemID. A zero ttl yields a token without expiry.
func (a *Authenticator) Issue(systemID int, ttl time.Duration) (string, error) {
	if systemID <= 0 {
		return "", errors.New("system id must be positive")
	}
	now := a.now()
	claims := Claims{
		SystemID: systemID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:   issuer,
			IssuedAt: jwtlib.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwtlib.NewNumericDate(now.Add(ttl))
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Authenticate returns the system id carried by a valid token.
func (a *Authenticator) Authenticate(token string) (int, error) {
	parsed, err := jwtlib.ParseWithClaims(token, &Claims{}, func(*jwtlib.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Name}),
		jwtlib.WithIssuer(issuer),
		jwtlib.WithTimeFunc(a.now),
	)
	if err != nil {
		return 0, errors.Join(ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.SystemID <= 0 {
		return 0, ErrInvalidToken
	}
	return claims.SystemID, nil
}

// TokenFromHeader accepts "Bearer <token>" as well as a bare token. Any other
// non-empty header is returned whole so that it fails verification.
func TokenFromHeader(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	parts := strings.Fields(header)
	switch {
	case len(parts) == 2 && strings.EqualFold(parts[0], "Bearer"):
		return parts[1], true
	case len(parts) == 1:
		return parts[0], true
	default:
		return header, true
	}
}
