package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"dashboard/internal/config"
	"dashboard/internal/models"
)

var ErrInvalidToken = errors.New("invalid session token")

// Manager binds sessions to browsers through a signed cookie. The cookie only carries
// the session id as the subject of an HS256 JWT; all state stays in the Store.
type Manager struct {
	store      Store
	secret     []byte
	cookieName string
	lifetime   time.Duration
	secure     bool
	now        func() time.Time
}

func NewManager(store Store, cfg config.SessionConfig) *Manager {
	return &Manager{
		store:      store,
		secret:     []byte(cfg.Secret),
		cookieName: cfg.CookieName,
		lifetime:   cfg.Lifetime,
		secure:     cfg.Secure,
		now:        time.Now,
	}
}

func (m *Manager) CookieName() string { return m.cookieName }

func (m *Manager) New() *Session {
	return &Session{ID: uuid.NewString()}
}

// Load resolves a cookie value to its session. A missing, forged, expired or unknown token
// yields a fresh unsaved session and isNew=true.
func (m *Manager) Load(ctx context.Context, token string) (s *Session, isNew bool, err error) {
	if token == "" {
		return m.New(), true, nil
	}
	sid, err := m.parse(token)
	if err != nil {
		return m.New(), true, nil
	}
	s, err = m.store.Get(ctx, sid)
	if err != nil {
		return nil, false, fmt.Errorf("load session: %w", err)
	}
	if s == nil {
		return m.New(), true, nil
	}
	return s, false, nil
}

// Update applies fn to the stored copy of session id and (re)issues its cookie. Only the
// fields fn touches change, so a request working on a stale copy cannot undo a concurrent
// write. It must run before the response body is written.
func (m *Manager) Update(ctx context.Context, w http.ResponseWriter, id string, fn func(s *Session)) (*Session, error) {
	s, err := m.store.Update(ctx, id, fn)
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	if err := m.WriteCookie(w, s); err != nil {
		return nil, err
	}
	return s, nil
}

// ReplaceCredential swaps in a refreshed credential, but only while the session still holds
// the credential it was refreshed from. A revoke or a new sign-in in the meantime wins.
func (m *Manager) ReplaceCredential(ctx context.Context, w http.ResponseWriter, id string, used, next *models.OAuthCredential) (bool, error) {
	var replaced bool
	_, err := m.Update(ctx, w, id, func(s *Session) {
		if s.Credential == nil || used == nil || s.Credential.AccessToken != used.AccessToken {
			return
		}
		s.Credential = next
		replaced = true
	})
	return replaced, err
}

// WriteCookie renews the cookie for s without touching the store.
func (m *Manager) WriteCookie(w http.ResponseWriter, s *Session) error {
	token, err := m.issue(s.ID)
	if err != nil {
		return err
	}
	cookie := &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if s.Permanent {
		cookie.MaxAge = int(m.lifetime.Seconds())
	}
	dropCookie(w.Header(), m.cookieName)
	http.SetCookie(w, cookie)
	return nil
}

// dropCookie removes an earlier Set-Cookie for name so a renewed cookie replaces it.
func dropCookie(h http.Header, name string) {
	prefix := name + "="
	var kept []string
	for _, v := range h.Values("Set-Cookie") {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	h.Del("Set-Cookie")
	for _, v := range kept {
		h.Add("Set-Cookie", v)
	}
}

func (m *Manager) issue(sid string) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   sid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.lifetime)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

func (m *Manager) parse(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
