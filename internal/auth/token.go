package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken signals a missing, expired or forged session token.
var ErrInvalidToken = errors.New("auth: invalid token")

// Session is what a verified token grants: read and update access to one office.
type Session struct {
	Office    string    `json:"office"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Tokens issues and verifies HS256 session tokens carrying the authorized office.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token issuer. An empty secret is replaced by a random one,
// which invalidates sessions on restart.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("auth: generate secret: %w", err)
		}
	}
	return &Tokens{secret: key, ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for office.
func (t *Tokens) Issue(office string) (string, Session, error) {
	now := t.now()
	sess := Session{Office: office, ExpiresAt: now.Add(t.ttl).Truncate(time.Second)}
	claims := jwt.MapClaims{
		"office": office,
		"exp":    sess.ExpiresAt.Unix(),
		"iat":    now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, sess, nil
}

// Verify validates a token and returns its session.
func (t *Tokens) Verify(tokenString string) (Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Session{}, ErrInvalidToken
	}
	office, ok := claims["office"].(string)
	if !ok || office == "" {
		return Session{}, fmt.Errorf("%w: missing office", ErrInvalidToken)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return Session{}, fmt.Errorf("%w: missing expiry", ErrInvalidToken)
	}
	return Session{Office: office, ExpiresAt: exp.Time}, nil
}
