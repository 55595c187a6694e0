package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"hrportal/internal/platform/crypto"
)

var (
	ErrNoSession      = errors.New("no session")
	ErrInvalidSession = errors.New("invalid session")
)

// Session is the signed-in portal user. BackendToken is forwarded to both
// backends and never leaves the server in clear text.
type Session struct {
	UserID       string
	EmployeeID   string
	Email        string
	FullName     string
	Role         Role
	BackendToken string
	ExpiresAt    time.Time
}

// Subject scopes per-user cache entries.
func (s Session) Subject() string {
	return s.UserID
}

type Claims struct {
	UserID     string `json:"uid"`
	EmployeeID string `json:"eid,omitempty"`
	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
	Role       string `json:"role"`
	Token      string `json:"tok"`
	jwt.RegisteredClaims
}

// SessionCodec turns a Session into the cookie value and back.
type SessionCodec struct {
	secret []byte
	sealer *crypto.Sealer
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionCodec(secret string, sealer *crypto.Sealer, ttl time.Duration) *SessionCodec {
	return &SessionCodec{secret: []byte(secret), sealer: sealer, ttl: ttl, now: time.Now}
}

func (c *SessionCodec) TTL() time.Duration {
	return c.ttl
}

func (c *SessionCodec) Encode(s Session) (string, time.Time, error) {
	sealed, err := c.sealer.SealString(s.BackendToken)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "seal backend token")
	}
	now := c.now()
	expires := now.Add(c.ttl)
	claims := Claims{
		UserID:     s.UserID,
		EmployeeID: s.EmployeeID,
		Email:      s.Email,
		Name:       s.FullName,
		Role:       string(s.Role),
		Token:      sealed,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign session")
	}
	return signed, expires, nil
}

func (c *SessionCodec) Decode(value string) (Session, error) {
	if value == "" {
		return Session{}, ErrNoSession
	}
	token, err := jwt.ParseWithClaims(value, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now), jwt.WithExpirationRequired())
	if err != nil {
		return Session{}, errors.Wrap(ErrInvalidSession, err.Error())
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return Session{}, ErrInvalidSession
	}
	backendToken, err := c.sealer.OpenString(claims.Token)
	if err != nil {
		return Session{}, errors.Wrap(ErrInvalidSession, "open backend token")
	}
	return Session{
		UserID:       claims.UserID,
		EmployeeID:   claims.EmployeeID,
		Email:        claims.Email,
		FullName:     claims.Name,
		Role:         ParseRole(claims.Role),
		BackendToken: backendToken,
		ExpiresAt:    claims.ExpiresAt.Time,
	}, nil
}
