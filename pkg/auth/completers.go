package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-vortex/pkg/flow"
	"github.com/goliatone/go-vortex/pkg/validation"
)

const (
	msgEmailTaken         = "An account with this email already exists"
	msgInvalidCredentials = "Invalid email or password"
	msgInvalidCode        = "Invalid verification code"
	msgChallengeExpired   = "Code expired, request a new one"
	msgTooManyAttempts    = "Too many attempts, request a new code"
	msgNoChallenge        = "Your login session expired, please log in again"
)

// SignupCompleter creates an account from a finished signup record.
type SignupCompleter struct {
	Store    AccountStore
	Redirect string
	Now      func() time.Time
	Logger   *zap.Logger
}

func (c SignupCompleter) Complete(ctx context.Context, _ string, record flow.Record) (flow.Completion, error) {
	hash, err := HashPassword(record["password"])
	if err != nil {
		return flow.Completion{}, err
	}
	account := Account{
		ID:           uuid.NewString(),
		FullName:     record["fullName"],
		Email:        NormalizeEmail(record["email"]),
		PasswordHash: hash,
		CreatedAt:    nowOr(c.Now),
	}
	if err := c.Store.Create(ctx, account); err != nil {
		if errors.Is(err, ErrAccountExists) {
			return flow.Completion{}, validation.Errors{"email": {msgEmailTaken}}
		}
		return flow.Completion{}, err
	}
	loggerOr(c.Logger).Info("account created", zap.String("account", account.ID))
	return flow.Completion{
		Redirect: c.Redirect,
		Data:     map[string]string{"account": account.ID, "email": account.Email},
	}, nil
}

// LoginCompleter checks credentials and opens a two-factor challenge.
type LoginCompleter struct {
	Store     AccountStore
	TwoFactor *TwoFactor
	Redirect  string
	// AllowUnknown lets addresses with no account through, as the demo site
	// has no backend to check against.
	AllowUnknown bool
	Logger       *zap.Logger
}

func (c LoginCompleter) Complete(ctx context.Context, _ string, record flow.Record) (flow.Completion, error) {
	email := NormalizeEmail(record["email"])
	account, err := c.Store.ByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		if !c.AllowUnknown {
			return flow.Completion{}, validation.Errors{"password": {msgInvalidCredentials}}
		}
	case err != nil:
		return flow.Completion{}, err
	case !CheckPassword(account.PasswordHash, record["password"]):
		return flow.Completion{}, validation.Errors{"password": {msgInvalidCredentials}}
	}

	challenge := c.TwoFactor.Issue(email)
	loggerOr(c.Logger).Info("two factor challenge issued", zap.String("challenge", challenge.ID))
	return flow.Completion{
		Redirect: c.Redirect,
		Data:     map[string]string{"challenge": challenge.ID, "email": email},
	}, nil
}

// TwoFactorCompleter verifies the code against the challenge attached to the
// request context and issues a session token on success.
type TwoFactorCompleter struct {
	TwoFactor *TwoFactor
	Sessions  *SessionIssuer
	Redirect  string
	Logger    *zap.Logger
}

func (c TwoFactorCompleter) Complete(ctx context.Context, _ string, record flow.Record) (flow.Completion, error) {
	id, ok := ChallengeFromContext(ctx)
	if !ok {
		return flow.Completion{}, validation.Errors{"code": {msgNoChallenge}}
	}

	challenge, err := c.TwoFactor.Verify(id, record["code"])
	switch {
	case errors.Is(err, ErrChallengeNotFound):
		return flow.Completion{}, validation.Errors{"code": {msgNoChallenge}}
	case errors.Is(err, ErrChallengeExpired):
		return flow.Completion{}, validation.Errors{"code": {msgChallengeExpired}}
	case errors.Is(err, ErrTooManyAttempts):
		return flow.Completion{}, validation.Errors{"code": {msgTooManyAttempts}}
	case errors.Is(err, ErrInvalidCode):
		return flow.Completion{}, validation.Errors{"code": {msgInvalidCode}}
	case err != nil:
		return flow.Completion{}, err
	}

	token, err := c.Sessions.Issue(challenge.Email)
	if err != nil {
		return flow.Completion{}, err
	}
	loggerOr(c.Logger).Info("two factor verified", zap.String("challenge", challenge.ID))
	return flow.Completion{
		Redirect: c.Redirect,
		Data:     map[string]string{"token": token, "email": challenge.Email},
	}, nil
}

// Profile is a completed profile record.
type Profile struct {
	Owner       string
	Record      flow.Record
	CompletedAt time.Time
}

// ProfileStore keeps completed profiles in memory, keyed by owner email.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewProfileStore returns an empty store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[string]Profile)}
}

// Save stores p, replacing any earlier profile of the same owner.
func (s *ProfileStore) Save(p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.Owner] = p
}

// Get returns the profile of owner.
func (s *ProfileStore) Get(owner string) (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[owner]
	return p, ok
}

// AnonymousOwner keys profiles completed without a session.
const AnonymousOwner = "anonymous"

// ProfileCompleter stores the finished profile record for the session owner.
type ProfileCompleter struct {
	Profiles       *ProfileStore
	Redirect       string
	RequireSession bool
	Now            func() time.Time
	Logger         *zap.Logger
}

func (c ProfileCompleter) Complete(ctx context.Context, _ string, record flow.Record) (flow.Completion, error) {
	owner := AnonymousOwner
	if session, ok := SessionFromContext(ctx); ok {
		owner = session.Email
	} else if c.RequireSession {
		return flow.Completion{}, fmt.Errorf("auth: complete profile: %w", ErrInvalidToken)
	}

	c.Profiles.Save(Profile{Owner: owner, Record: record.Clone(), CompletedAt: nowOr(c.Now)})
	loggerOr(c.Logger).Info("profile completed", zap.String("owner", owner), zap.Int("fields", len(record)))
	return flow.Completion{Redirect: c.Redirect}, nil
}

func nowOr(now func() time.Time) time.Time {
	if now != nil {
		return now()
	}
	return time.Now()
}

func loggerOr(logger *zap.Logger) *zap.Logger {
	if logger != nil {
		return logger
	}
	return zap.NewNop()
}
