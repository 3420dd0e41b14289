package auth

import (
	"Gateway/internal/repo"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newEnv() *Authenv {
	return &Authenv{JWTkey: []byte("test-key"), Repo: repo.NewMemoryUserDB()}
}

func post(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	t.Fatalf("response has no %s cookie", cookieName)
	return nil
}

func TestRegisterAndLogin(t *testing.T) {
	env := newEnv()

	rec := post(t, env.RegisterHandler, `{"login":"ada","email":"ada@example.org","password":"secret1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body)
	}
	sessionCookie(t, rec)

	rec = post(t, env.RegisterHandler, `{"login":"ada","email":"ada@example.org","password":"secret1"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want %d", rec.Code, http.StatusConflict)
	}

	rec = post(t, env.AuthHandler, `{"login":"ada","password":"secret1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	sessionCookie(t, rec)
}

func TestLoginFailure(t *testing.T) {
	env := newEnv()
	post(t, env.RegisterHandler, `{"login":"ada","email":"ada@example.org","password":"secret1"}`)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"empty password", `{"login":"ada"}`, http.StatusBadRequest},
		{"wrong password", `{"login":"ada","password":"nope123"}`, http.StatusUnauthorized},
		{"unknown login", `{"login":"bob","password":"secret1"}`, http.StatusUnauthorized},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if rec := post(t, env.AuthHandler, test.body); rec.Code != test.code {
				t.Errorf("status = %d, want %d", rec.Code, test.code)
			}
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newEnv()
	tests := []struct {
		name string
		body string
	}{
		{"missing email", `{"login":"ada","password":"secret1"}`},
		{"short password", `{"login":"ada","email":"a@b.c","password":"123"}`},
		{"blank login", `{"login":"  ","email":"a@b.c","password":"secret1"}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if rec := post(t, env.RegisterHandler, test.body); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestAPIMiddleware(t *testing.T) {
	env := newEnv()
	rec := post(t, env.RegisterHandler, `{"login":"ada","email":"ada@example.org","password":"secret1"}`)
	cookie := sessionCookie(t, rec)

	var gotID int
	var gotLogin string
	h := env.APIMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = UserID(r.Context())
		gotLogin = Login(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/h2s", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || gotID != 1 || gotLogin != "ada" {
		t.Errorf("with cookie: status %d, user (%d, %q), want 200, (1, ada)", rec.Code, gotID, gotLogin)
	}

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1, "login": "ada", "exp": time.Now().Add(time.Hour).Unix(),
	})
	forgedToken, _ := forged.SignedString([]byte("other-key"))
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1, "login": "ada", "exp": time.Now().Add(-time.Hour).Unix(),
	})
	expiredToken, _ := expired.SignedString(env.JWTkey)

	for name, value := range map[string]string{"forged": forgedToken, "expired": expiredToken, "garbage": "x.y.z"} {
		req := httptest.NewRequest(http.MethodGet, "/api/h2s", nil)
		req.AddCookie(&http.Cookie{Name: cookieName, Value: value})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s token: status = %d, want %d", name, rec.Code, http.StatusUnauthorized)
		}
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/h2s", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no cookie: status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareRedirects(t *testing.T) {
	env := newEnv()
	h := env.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile/", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/auth/" {
		t.Errorf("status %d location %q, want 303 /auth/", rec.Code, rec.Header().Get("Location"))
	}
}

func TestRequireApproved(t *testing.T) {
	env := newEnv()
	ctx := context.Background()
	id, _ := env.Repo.CreateUser(ctx, "ada", "ada@example.org", "hash")

	h := env.RequireApproved(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := CurrentUser(r.Context()); !ok || u.ID != id {
			t.Errorf("CurrentUser = %+v, %v", u, ok)
		}
	}))
	serve := func() int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithUser(req.Context(), id, "ada"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := serve(); code != http.StatusForbidden {
		t.Errorf("pending user: status = %d, want %d", code, http.StatusForbidden)
	}
	yes := true
	env.Repo.UpdateUser(ctx, id, repo.UserUpdate{Approved: &yes})
	if code := serve(); code != http.StatusOK {
		t.Errorf("approved user: status = %d, want %d", code, http.StatusOK)
	}
	env.Repo.UpdateUser(ctx, id, repo.UserUpdate{Archived: &yes})
	if code := serve(); code != http.StatusForbidden {
		t.Errorf("archived user: status = %d, want %d", code, http.StatusForbidden)
	}
}

func TestLimitMiddleware(t *testing.T) {
	limiter := NewIPRateLimiter(0, 2)
	h := limiter.LimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes[i] = rec.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [200 200 429]", codes)
	}
}
