package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dashboard/internal/config"
	"dashboard/internal/logger"
	"dashboard/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000/"}))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	cases := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{"allowed origin", http.MethodGet, "http://localhost:3000", http.StatusOK, "http://localhost:3000"},
		{"foreign origin", http.MethodGet, "http://evil.test", http.StatusOK, ""},
		{"no origin", http.MethodGet, "", http.StatusOK, ""},
		{"preflight", http.MethodOptions, "http://localhost:3000", http.StatusNoContent, "http://localhost:3000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/ping", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tc.wantAllow {
				t.Fatalf("Allow-Origin = %q, want %q", got, tc.wantAllow)
			}
			if tc.wantAllow != "" && w.Header().Get("Access-Control-Allow-Credentials") != "true" {
				t.Fatal("credentials must be allowed for a known origin")
			}
		})
	}
}

func newSessionRouter(t *testing.T) (*gin.Engine, *session.Manager, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore(time.Hour)
	m := session.NewManager(store, config.SessionConfig{
		Secret:     "secret",
		CookieName: "sid",
		Lifetime:   time.Hour,
	})
	r := gin.New()
	r.Use(Sessions(m, logger.Discard()))
	r.GET("/peek", func(c *gin.Context) {
		c.String(http.StatusOK, CurrentSession(c).ID)
	})
	r.GET("/save", func(c *gin.Context) {
		s, err := m.Update(c.Request.Context(), c.Writer, CurrentSession(c).ID, func(s *session.Session) { s.State = "pending" })
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, s.ID)
	})
	return r, m, store
}

func TestSessions_NewSessionIsNotPersistedUntilSaved(t *testing.T) {
	r, _, store := newSessionRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/peek", nil))
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("expected a session id, got %d %q", w.Code, w.Body.String())
	}
	if len(w.Result().Cookies()) != 0 {
		t.Fatal("an unsaved session must not set a cookie")
	}
	if store.Len() != 0 {
		t.Fatalf("store holds %d sessions, want 0", store.Len())
	}
}

func TestSessions_KnownSessionIsRenewed(t *testing.T) {
	r, _, store := newSessionRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/save", nil))
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "sid" {
		t.Fatalf("expected one sid cookie, got %v", cookies)
	}
	id := w.Body.String()
	if store.Len() != 1 {
		t.Fatalf("store holds %d sessions, want 1", store.Len())
	}

	req := httptest.NewRequest(http.MethodGet, "/peek", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != id {
		t.Fatalf("session id = %q, want %q", w.Body.String(), id)
	}
	if len(w.Result().Cookies()) != 1 {
		t.Fatalf("expected the cookie to be renewed once, got %v", w.Header().Values("Set-Cookie"))
	}

	// Saving on a renewed request still yields a single Set-Cookie.
	req = httptest.NewRequest(http.MethodGet, "/save", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if n := len(w.Header().Values("Set-Cookie")); n != 1 {
		t.Fatalf("Set-Cookie headers = %d, want 1", n)
	}
}

func TestSessions_ForgedCookieStartsFresh(t *testing.T) {
	r, _, _ := newSessionRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/peek", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "not-a-jwt"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("expected a fresh session, got %d %q", w.Code, w.Body.String())
	}
	if len(w.Result().Cookies()) != 0 {
		t.Fatal("a forged cookie must not be renewed")
	}
}

func TestRequestLoggerOmitsQuery(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/api/youtube/oauth/callback", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/youtube/oauth/callback?code=secret-code", nil))
	if strings.Contains(buf.String(), "secret-code") {
		t.Fatalf("query string leaked into the log: %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"path":"/api/youtube/oauth/callback"`) {
		t.Fatalf("expected the path to be logged: %s", buf.String())
	}

	buf.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("expected an error-level line for a 500: %s", buf.String())
	}
}
