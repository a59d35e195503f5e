// Package session keeps per-browser state (the sub-category registry) between requests.
package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/activitylog/internal/domain"
)

// CookieName identifies the session cookie.
const CookieName = "activitylog_session"

// Manager holds live sessions keyed by their uuid and expires idle ones after ttl.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	seed     []string
	ttl      time.Duration
	now      func() time.Time
}

type entry struct {
	session  *domain.Session
	lastSeen time.Time
}

// NewManager constructs a Manager. seed replaces the default sub-category list when non-empty.
func NewManager(ttl time.Duration, seed []string) *Manager {
	return &Manager{
		sessions: make(map[string]*entry),
		seed:     append([]string(nil), seed...),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the live session for id, or false when it is unknown or expired.
func (m *Manager) Get(id string) (*domain.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked()
	e, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = m.now()
	return e.session, true
}

// Create starts a fresh session with a new id.
func (m *Manager) Create() *domain.Session {
	sess := domain.NewSession(uuid.NewString(), m.seed)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked()
	m.sessions[sess.ID] = &entry{session: sess, lastSeen: m.now()}
	return sess
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked()
	return len(m.sessions)
}

// FromRequest resolves the session named by the request cookie, creating one and setting the cookie
// on w when the request has none or it has expired.
func (m *Manager) FromRequest(w http.ResponseWriter, r *http.Request) *domain.Session {
	if cookie, err := r.Cookie(CookieName); err == nil {
		if sess, ok := m.Get(cookie.Value); ok {
			return sess
		}
	}
	sess := m.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.ttl.Seconds()),
	})
	return sess
}

func (m *Manager) pruneLocked() {
	if m.ttl <= 0 {
		return
	}
	cutoff := m.now().Add(-m.ttl)
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
		}
	}
}
