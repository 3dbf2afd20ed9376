package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/keenmind_auth/config"
	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/models/enums"
	"github.com/Xushengqwer/keenmind_auth/models/ids"
	"github.com/Xushengqwer/keenmind_auth/service/strategy"
	"github.com/Xushengqwer/keenmind_auth/service/token"
	"github.com/Xushengqwer/keenmind_auth/testkit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeHandlers 以 Cookie 值为键返回预置会话
type fakeHandlers struct {
	cfg      strategy.Config
	sessions map[string]*strategy.Current
	errs     map[string]error
}

func (f *fakeHandlers) Config() strategy.Config { return f.cfg }

func (f *fakeHandlers) Establish(context.Context, *dto.AdapterUser, strategy.ClientMeta) (*strategy.Issued, error) {
	return nil, errors.New("not used")
}

func (f *fakeHandlers) Resolve(_ context.Context, value string) (*strategy.Current, error) {
	if err, ok := f.errs[value]; ok {
		return nil, err
	}
	if cur, ok := f.sessions[value]; ok {
		return cur, nil
	}
	return nil, strategy.ErrNoSession
}

func (f *fakeHandlers) SignOut(context.Context, string) error { return nil }

func newFake(t *testing.T, s strategy.Strategy) *fakeHandlers {
	t.Helper()
	cfg, err := strategy.NewConfig(s, &config.CookieConfig{}, &config.AuthConfig{})
	require.NoError(t, err)
	return &fakeHandlers{cfg: cfg, sessions: map[string]*strategy.Current{}, errs: map[string]error{}}
}

func currentFor(id ids.ID, status enums.UserStatus) *strategy.Current {
	return &strategy.Current{User: dto.AdapterUser{ID: id, Status: status}, Expires: time.Now().Add(time.Hour)}
}

func okHandler(c *gin.Context) {
	u, _ := CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u.ID.String()})
}

func TestSessionAuth(t *testing.T) {
	h := newFake(t, strategy.Database)
	h.sessions["active"] = currentFor(1, enums.UserStatusActive)
	h.sessions["locked"] = currentFor(2, enums.UserStatusLocked)
	refreshed := currentFor(3, enums.UserStatusActive)
	refreshed.Refreshed = &strategy.Issued{Value: "refreshed", Expires: time.Now().Add(14 * 24 * time.Hour)}
	h.sessions["refreshed"] = refreshed

	r := gin.New()
	r.Use(SessionAuth(h, testkit.NewLogger(t)))
	r.GET("/*path", okHandler)

	cases := []struct {
		name     string
		target   string
		cookie   string
		status   int
		location string
	}{
		{"anonymous protected", "/profile", "", http.StatusTemporaryRedirect, "/login"},
		{"anonymous public", "/", "", http.StatusOK, ""},
		{"active protected", "/profile", "active", http.StatusOK, ""},
		{"logged in on login page", "/login?error=OAuthCallback&redirectTo=/x", "active", http.StatusTemporaryRedirect, "/profile?error=OAuthCallback"},
		{"locked user", "/profile", "locked", http.StatusTemporaryRedirect, "/login?error=AccountLocked"},
		{"force login", "/profile?forceLogin=true", "active", http.StatusTemporaryRedirect, "/login"},
		{"unknown cookie", "/profile", "stale", http.StatusTemporaryRedirect, "/login"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: h.cfg.CookieName, Value: tc.cookie})
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.location != "" {
				assert.Equal(t, tc.location, rec.Header().Get("Location"))
			}
		})
	}

	t.Run("refresh rewrites cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		req.AddCookie(&http.Cookie{Name: h.cfg.CookieName, Value: "refreshed"})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, h.cfg.CookieName, cookies[0].Name)
		assert.Equal(t, "refreshed", cookies[0].Value)
	})
}

func TestTokenAuth(t *testing.T) {
	h := newFake(t, strategy.Token)
	h.sessions["good"] = currentFor(7, enums.UserStatusActive)
	h.errs["old"] = token.ErrTokenExpired
	h.errs["revoked"] = token.ErrTokenRevoked
	h.errs["garbage"] = token.ErrTokenInvalid
	h.errs["redis-down"] = errors.New("redis down")

	r := gin.New()
	r.Use(TokenAuth(h, testkit.NewLogger(t)))
	r.GET("/mapi/*path", okHandler)

	do := func(path, cookie, bearer string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: h.cfg.CookieName, Value: cookie})
		}
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := do("/mapi/login", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do("/mapi/me", "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())

	rec = do("/mapi/me", "old", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Token expired"}`, rec.Body.String())

	rec = do("/mapi/me", "", "revoked")
	assert.JSONEq(t, `{"error":"Token revoked"}`, rec.Body.String())

	rec = do("/mapi/me", "garbage", "")
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())

	rec = do("/mapi/me", "redis-down", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do("/mapi/me", "", "good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":"7"}`, rec.Body.String())

	// Cookie 优先于 Bearer
	rec = do("/mapi/me", "good", "old")
	assert.Equal(t, http.StatusOK, rec.Code)
}

type staticChecker struct {
	admins map[ids.ID]bool
	err    error
}

func (s staticChecker) IsAdmin(_ context.Context, id ids.ID) (bool, error) {
	return s.admins[id], s.err
}

func TestAdminGuard(t *testing.T) {
	h := newFake(t, strategy.Database)
	h.sessions["admin"] = currentFor(872817149208, enums.UserStatusActive)
	h.sessions["user"] = currentFor(5, enums.UserStatusActive)
	logger := testkit.NewLogger(t)

	build := func(checker staticChecker) *gin.Engine {
		r := gin.New()
		g := r.Group("/admin", SessionAuth(h, logger), AdminGuard(checker, logger))
		g.GET("/api/users", okHandler)
		return r
	}
	do := func(r *gin.Engine, cookie string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/admin/api/users", nil)
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: h.cfg.CookieName, Value: cookie})
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	r := build(staticChecker{admins: map[ids.ID]bool{872817149208: true}})
	assert.Equal(t, http.StatusOK, do(r, "admin").Code)

	rec := do(r, "user")
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/profile", rec.Header().Get("Location"))

	rec = do(r, "")
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	failing := build(staticChecker{admins: map[ids.ID]bool{872817149208: true}, err: errors.New("boom")})
	rec = do(failing, "admin")
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/profile", rec.Header().Get("Location"))
}

type countingRecorder struct {
	limited int
}

func (c *countingRecorder) RecordSignIn(string, string, string) {}
func (c *countingRecorder) RecordSessionCache(bool)             {}
func (c *countingRecorder) RecordMagicLinkSent()                {}
func (c *countingRecorder) RecordRateLimited(string)            { c.limited++ }

func TestRateLimiter(t *testing.T) {
	rec := &countingRecorder{}
	rl := NewRateLimiter(NewRateLimiterConfig(1, 2), rec, testkit.NewLogger(t))
	t.Cleanup(rl.Stop)

	r := gin.New()
	r.POST("/api/auth/signin/email", rl.Middleware("signin_email"), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/signin/email", nil)
		req.Header.Set("X-Forwarded-For", ip)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.1"))
	assert.Equal(t, http.StatusOK, send("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.1"))
	assert.Equal(t, http.StatusOK, send("203.0.113.2"), "不同 IP 互不影响")
	assert.Equal(t, 1, rec.limited)
	assert.Equal(t, 2, rl.Size())

	rl.cleanup(time.Now().Add(time.Hour))
	assert.Zero(t, rl.Size())
}
