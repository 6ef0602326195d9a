package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for tokens that fail signature, issuer or
// expiry checks, or that carry no subject.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the bearer token claims. The subject names the officer or
// clerk recorded as the actor of every write made with the token.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 bearer tokens.
type Tokens struct {
	key    []byte
	issuer string
	now    func() time.Time
}

// NewTokens returns a token service signing with key.
func NewTokens(key, issuer string) *Tokens {
	return &Tokens{key: []byte(key), issuer: issuer, now: time.Now}
}

// Issue signs a token for subject valid for ttl.
func (t *Tokens) Issue(subject, email string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}

	now := t.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	})

	signed, err := tok.SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// Verify parses raw and returns the authenticated principal it names.
func (t *Tokens) Verify(raw string) (Principal, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}

		return t.key, nil
	},
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Anonymous, fmt.Errorf("%w: expired", ErrInvalidToken)
		}

		return Anonymous, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return Anonymous, ErrInvalidToken
	}

	return User(claims.Subject), nil
}
