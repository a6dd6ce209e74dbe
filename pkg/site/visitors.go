package site

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-vortex/pkg/flow"
)

const (
	visitorCookieName = "vortex_visitor"
	sessionCookieName = "vortex_session"
)

// visitor is the server side state of one browser. Flow states are keyed by
// flow id so a visitor can hold the login and profile flows at once.
type visitor struct {
	flows        map[string]flow.State
	challenge    string
	conversation string
	email        string
	seen         time.Time
}

// visitorStore keeps visitors in memory and forgets those idle past ttl.
type visitorStore struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	ttl      time.Duration
	now      func() time.Time
}

func newVisitorStore(ttl time.Duration, now func() time.Time) *visitorStore {
	if now == nil {
		now = time.Now
	}
	return &visitorStore{
		visitors: make(map[string]*visitor),
		ttl:      ttl,
		now:      now,
	}
}

// identify returns the visitor id of r, issuing a new one (and its cookie)
// when the request has none or the old one expired.
func (s *visitorStore) identify(w http.ResponseWriter, r *http.Request, secure bool) string {
	if cookie, err := r.Cookie(visitorCookieName); err == nil && cookie.Value != "" {
		if s.touch(cookie.Value) {
			return cookie.Value
		}
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.visitors[id] = &visitor{flows: make(map[string]flow.State), seen: s.now()}
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// open registers an entry without a cookie holding state. The JSON API keeps
// its flow instances this way.
func (s *visitorStore) open(state flow.State) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.visitors[id] = &visitor{
		flows: map[string]flow.State{state.Flow: state.Clone()},
		seen:  s.now(),
	}
	s.mu.Unlock()
	return id
}

// lookup returns the state of flowID held by id without creating entries for
// unknown or expired ids.
func (s *visitorStore) lookup(id, flowID string) (flow.State, bool) {
	if id == "" || !s.touch(id) {
		return flow.State{}, false
	}
	return s.flowState(id, flowID)
}

func (s *visitorStore) touch(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.visitors[id]
	if !ok {
		return false
	}
	now := s.now()
	if s.expired(v, now) {
		delete(s.visitors, id)
		return false
	}
	v.seen = now
	return true
}

func (s *visitorStore) expired(v *visitor, now time.Time) bool {
	return s.ttl > 0 && now.Sub(v.seen) > s.ttl
}

// with runs fn on visitor id under the store lock. Unknown ids are created.
func (s *visitorStore) with(id string, fn func(v *visitor)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.visitors[id]
	if !ok {
		v = &visitor{flows: make(map[string]flow.State)}
		s.visitors[id] = v
	}
	v.seen = s.now()
	fn(v)
}

func (s *visitorStore) flowState(id, flowID string) (flow.State, bool) {
	var (
		state flow.State
		ok    bool
	)
	s.with(id, func(v *visitor) {
		state, ok = v.flows[flowID]
		state = state.Clone()
	})
	return state, ok
}

func (s *visitorStore) setFlowState(id string, state flow.State) {
	s.with(id, func(v *visitor) { v.flows[state.Flow] = state.Clone() })
}

func (s *visitorStore) clearFlow(id, flowID string) {
	s.with(id, func(v *visitor) { delete(v.flows, flowID) })
}

// challenge returns the open two-factor challenge and the address it was
// issued for.
func (s *visitorStore) challenge(id string) (challenge, email string) {
	s.with(id, func(v *visitor) {
		challenge = v.challenge
		email = v.email
	})
	return challenge, email
}

func (s *visitorStore) setChallenge(id, challenge, email string) {
	s.with(id, func(v *visitor) {
		v.challenge = challenge
		v.email = email
	})
}

func (s *visitorStore) conversation(id string) string {
	var out string
	s.with(id, func(v *visitor) { out = v.conversation })
	return out
}

func (s *visitorStore) setConversation(id, conversation string) {
	s.with(id, func(v *visitor) { v.conversation = conversation })
}

// forget drops everything known about visitor id.
func (s *visitorStore) forget(id string) {
	s.mu.Lock()
	delete(s.visitors, id)
	s.mu.Unlock()
}

// sweep removes idle visitors and reports how many were dropped.
func (s *visitorStore) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, v := range s.visitors {
		if s.expired(v, now) {
			delete(s.visitors, id)
			removed++
		}
	}
	return removed
}

func (s *visitorStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visitors)
}

func setSessionCookie(w http.ResponseWriter, token string, maxAge time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
