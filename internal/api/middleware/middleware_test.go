package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gysagsohn/game-tracker-server/internal/api/apierr"
	"github.com/gysagsohn/game-tracker-server/internal/dependencies/mocks"
	"github.com/gysagsohn/game-tracker-server/internal/model"
	"github.com/gysagsohn/game-tracker-server/internal/services/auth"
	"github.com/gysagsohn/game-tracker-server/internal/testutil"
)

type fakeValidator struct {
	users map[string]*model.User
	err   error
}

func (f *fakeValidator) ValidateToken(_ context.Context, token string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return u, nil
}

type memCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (c *memCounter) IncrementCounter(_ context.Context, key string, _ time.Duration) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[string]int64)
	}
	c.counts[key]++
	return c.counts[key], nil
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	if u := GetUser(r.Context()); u != nil {
		_, _ = w.Write([]byte(u.ID))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func code(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestAuth(t *testing.T) {
	alice := &model.User{ID: "u1", Role: model.RoleUser}
	h := Auth(&fakeValidator{users: map[string]*model.User{"good": alice}})(http.HandlerFunc(okHandler))

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
		code   string
	}{
		{"no token", func(*http.Request) {}, http.StatusUnauthorized, apierr.CodeUnauthorized},
		{"bad token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized, apierr.CodeInvalidToken},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, http.StatusOK, ""},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: "good"}) }, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, code(t, rec))
			} else {
				assert.Equal(t, "u1", rec.Body.String())
			}
		})
	}
}

func TestAuthSuspended(t *testing.T) {
	h := Auth(&fakeValidator{err: model.ErrUserSuspended})(http.HandlerFunc(okHandler))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer any")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, apierr.CodeAccountSuspended, code(t, rec))
}

func TestOptionalAuth(t *testing.T) {
	alice := &model.User{ID: "u1"}
	h := OptionalAuth(&fakeValidator{users: map[string]*model.User{"good": alice}})(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	req.Header.Set("Authorization", "Bearer good")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "u1", rec.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	h := RequireAdmin(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithUser(req.Context(), &model.User{ID: "u1", Role: model.RoleUser})))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, apierr.CodeAdminRequired, code(t, rec))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithUser(req.Context(), &model.User{ID: "a1", Role: model.RoleAdmin})))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMustGetUserPanicsWithoutAuth(t *testing.T) {
	assert.Panics(t, func() { MustGetUser(context.Background()) })
}

func TestRateLimitFixedWindow(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2025, 3, 1, 18, 0, 30, 0, time.UTC))
	limit := WindowLimit{Name: "auth", Max: 2, Window: time.Minute}
	h := RateLimit(&memCounter{}, clk, limit, ByIP, testutil.NopLogger())(http.HandlerFunc(okHandler))

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1111").Code)
	rec := send("10.0.0.1:2222")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("RateLimit-Remaining"))

	rec = send("10.0.0.1:3333")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, apierr.CodeRateLimited, code(t, rec))
	assert.Equal(t, "31", rec.Header().Get("Retry-After"))

	// Other clients keep their own budget
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1111").Code)

	clk.Advance(30 * time.Second)
	assert.Equal(t, http.StatusOK, send("10.0.0.1:4444").Code)
}

func TestRateLimitFailsOpen(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC))
	counter := &memCounter{err: errors.New("redis down")}
	h := RateLimit(counter, clk, WindowLimit{Name: "auth", Max: 1, Window: time.Minute}, ByIP, testutil.NopLogger())(http.HandlerFunc(okHandler))

	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestByUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	assert.Equal(t, "192.0.2.7", ByUser(req))

	req = req.WithContext(WithUser(req.Context(), &model.User{ID: "u9"}))
	assert.Equal(t, "user:u9", ByUser(req))
}

func TestBurstLimiter(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC))
	b := NewBurstLimiter(1, 2, clk)

	assert.True(t, b.Allow("a"))
	assert.True(t, b.Allow("a"))
	assert.False(t, b.Allow("a"))
	assert.True(t, b.Allow("b"))

	clk.Advance(time.Second)
	assert.True(t, b.Allow("a"))

	clk.Advance(10 * time.Minute)
	b.Allow("b")
	assert.Equal(t, 1, b.Prune(5*time.Minute))
	assert.Equal(t, 0, b.Prune(5*time.Minute))
}

func TestBurstLimiterHandler(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC))
	h := NewBurstLimiter(1, 1, clk).Handler(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, apierr.CodeRateLimited, code(t, rec))
}
