package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const sessionIssuer = "vortex"

// SessionClaims is the payload of a session token.
type SessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Session is the verified identity carried by a request.
type Session struct {
	Email     string
	ExpiresAt time.Time
}

// SessionIssuer signs and verifies HS256 session tokens.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionIssuer builds an issuer. ttl <= 0 defaults to 24h.
func NewSessionIssuer(secret string, ttl time.Duration, now func() time.Time) (*SessionIssuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("auth: session secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &SessionIssuer{secret: []byte(secret), ttl: ttl, now: now}, nil
}

// TTL reports how long issued tokens stay valid.
func (s *SessionIssuer) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for email.
func (s *SessionIssuer) Issue(email string) (string, error) {
	now := s.now()
	claims := SessionClaims{
		Email: NormalizeEmail(email),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    sessionIssuer,
			Subject:   NormalizeEmail(email),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign session: %w", err)
	}
	return token, nil
}

// Parse verifies token and returns the session it carries.
func (s *SessionIssuer) Parse(token string) (Session, error) {
	var claims SessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Session{}, mapJWTError(err)
	}
	session := Session{Email: claims.Email}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return fmt.Errorf("%w: expired", ErrInvalidToken)
	}
	return fmt.Errorf("%w: %v", ErrInvalidToken, err)
}

type sessionKey struct{}
type challengeKey struct{}

// WithSession attaches a verified session to ctx.
func WithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the session attached to ctx, if any.
func SessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(Session)
	return session, ok
}

// WithChallenge attaches the open two-factor challenge id to ctx.
func WithChallenge(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, challengeKey{}, id)
}

// ChallengeFromContext returns the challenge id attached to ctx.
func ChallengeFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(challengeKey{}).(string)
	return id, ok && id != ""
}
