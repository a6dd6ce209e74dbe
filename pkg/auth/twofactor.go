package auth

import (
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Policy bounds two-factor verification. Zero values mean no limit: any
// number of attempts and challenges that never expire.
type Policy struct {
	MaxAttempts int
	TTL         time.Duration
	// Code is the expected code. Empty accepts any well-formed code, which is
	// how the demo login behaves.
	Code string
}

// Challenge is an open two-factor verification for one login.
type Challenge struct {
	ID       string
	Email    string
	Attempts int
	IssuedAt time.Time
}

// TwoFactor tracks open challenges. It is safe for concurrent use.
type TwoFactor struct {
	mu         sync.Mutex
	policy     Policy
	now        func() time.Time
	challenges map[string]*Challenge
}

// NewTwoFactor builds a verifier enforcing policy.
func NewTwoFactor(policy Policy, now func() time.Time) *TwoFactor {
	if now == nil {
		now = time.Now
	}
	return &TwoFactor{
		policy:     policy,
		now:        now,
		challenges: make(map[string]*Challenge),
	}
}

// Policy returns the active policy.
func (t *TwoFactor) Policy() Policy {
	return t.policy
}

// Issue opens a challenge for email.
func (t *TwoFactor) Issue(email string) Challenge {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch := &Challenge{
		ID:       uuid.NewString(),
		Email:    NormalizeEmail(email),
		IssuedAt: t.now(),
	}
	t.challenges[ch.ID] = ch
	return *ch
}

// Resend restarts a challenge: the attempt counter and expiry clock reset.
func (t *TwoFactor) Resend(id string) (Challenge, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch, ok := t.challenges[id]
	if !ok {
		return Challenge{}, ErrChallengeNotFound
	}
	ch.Attempts = 0
	ch.IssuedAt = t.now()
	return *ch, nil
}

// Lookup returns a copy of the challenge.
func (t *TwoFactor) Lookup(id string) (Challenge, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch, ok := t.challenges[id]
	if !ok {
		return Challenge{}, false
	}
	return *ch, true
}

// Verify checks code against challenge id. A successful verification closes
// the challenge. Failed attempts count towards Policy.MaxAttempts.
func (t *TwoFactor) Verify(id, code string) (Challenge, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch, ok := t.challenges[id]
	if !ok {
		return Challenge{}, ErrChallengeNotFound
	}
	if t.policy.TTL > 0 && t.now().Sub(ch.IssuedAt) > t.policy.TTL {
		return *ch, ErrChallengeExpired
	}
	if t.policy.MaxAttempts > 0 && ch.Attempts >= t.policy.MaxAttempts {
		return *ch, ErrTooManyAttempts
	}

	ch.Attempts++
	if t.policy.Code != "" && subtle.ConstantTimeCompare([]byte(t.policy.Code), []byte(code)) != 1 {
		return *ch, fmt.Errorf("%w (attempt %d)", ErrInvalidCode, ch.Attempts)
	}

	delete(t.challenges, id)
	return *ch, nil
}
