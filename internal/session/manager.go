package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"medrecord/internal/model"
)

// CookieName carries the opaque session id. The id is the only thing the
// browser holds; everything else lives server-side.
const CookieName = "medrecord_session"

const (
	sessionIDBytes = 16
	csrfTokenBytes = 32
)

// Session snapshots the identity established at login. It is the sole owner
// of the CSRF token's validity for that browser.
type Session struct {
	ID        string
	UserID    string
	Username  string
	Role      string
	CSRFToken string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// VerifyCSRF compares a supplied token against the session-bound one in
// constant time. A missing token on either side is a failure, never a pass.
func (s Session) VerifyCSRF(supplied string) bool {
	if s.CSRFToken == "" || supplied == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.CSRFToken), []byte(supplied)) == 1
}

// Manager is an in-memory server-side session store addressed by the cookie
// value. Sessions are not shared across processes.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
	secure   bool
	now      func() time.Time
}

func NewManager(ttl time.Duration, secureCookies bool) *Manager {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}

	return &Manager{
		sessions: map[string]Session{},
		ttl:      ttl,
		secure:   secureCookies,
		now:      time.Now,
	}
}

// Create establishes a session for user and sets the cookie. Any session the
// request already carries is discarded first, so the id the client held
// before authenticating never survives login.
func (m *Manager) Create(w http.ResponseWriter, r *http.Request, user model.AuthUser) (Session, error) {
	id, err := randomHex(sessionIDBytes)
	if err != nil {
		return Session{}, fmt.Errorf("generate session id: %w", err)
	}

	csrf, err := randomHex(csrfTokenBytes)
	if err != nil {
		return Session{}, fmt.Errorf("generate csrf token: %w", err)
	}

	now := m.now()
	sess := Session{
		ID:        id,
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CSRFToken: csrf,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	m.mu.Lock()
	if cookie, cookieErr := r.Cookie(CookieName); cookieErr == nil {
		delete(m.sessions, cookie.Value)
	}
	m.sessions[id] = sess
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return sess, nil
}

// Get resolves the request's cookie to a live session. Expired sessions are
// dropped on sight.
func (m *Manager) Get(r *http.Request) (Session, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return Session{}, false
	}

	m.mu.RLock()
	sess, exists := m.sessions[cookie.Value]
	m.mu.RUnlock()
	if !exists {
		return Session{}, false
	}

	if m.now().After(sess.ExpiresAt) {
		m.mu.Lock()
		delete(m.sessions, cookie.Value)
		m.mu.Unlock()
		return Session{}, false
	}

	return sess, true
}

// Destroy removes the request's session, if any, and expires the cookie.
// Safe to call when no session exists.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(CookieName); err == nil {
		m.mu.Lock()
		delete(m.sessions, cookie.Value)
		m.mu.Unlock()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
