package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/model"
)

func TestAuthMiddleware_WithValidCookie(t *testing.T) {
	m := NewAuthMiddleware("test-secret")

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		p, ok := GetPrincipalFromContext(r.Context())
		require.True(t, ok, "principal not in context")
		assert.Equal(t, "student-42", p.ID)
		assert.Equal(t, model.RoleStudent, p.Role)
	})

	w := httptest.NewRecorder()
	_, err := m.SetAuthCookie(w, "student-42", model.RoleStudent)
	require.NoError(t, err)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "no cookies set by SetAuthCookie")
	assert.True(t, cookies[0].HttpOnly)

	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.AddCookie(cookies[0])

	m.Middleware(next).ServeHTTP(httptest.NewRecorder(), r)
	assert.True(t, nextCalled, "next handler was not called")
}

func TestAuthMiddleware_WithBearerHeader(t *testing.T) {
	m := NewAuthMiddleware("test-secret")

	token, err := m.IssueToken("admin-1", model.RoleAdmin)
	require.NoError(t, err)

	var got Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetPrincipalFromContext(r.Context())
	})

	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	m.Middleware(next).ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, Principal{ID: "admin-1", Role: model.RoleAdmin}, got)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	m := NewAuthMiddleware("test-secret")
	other := NewAuthMiddleware("other-secret")

	foreign, err := other.IssueToken("student-1", model.RoleStudent)
	require.NoError(t, err)

	expiredIssuer := NewAuthMiddleware("test-secret")
	expiredIssuer.now = func() time.Time { return time.Now().Add(-30 * 24 * time.Hour) }
	expired, err := expiredIssuer.IssueToken("student-1", model.RoleStudent)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x", "role": "admin", "iss": tokenIssuer}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"no token", ""},
		{"garbage", "not-a-jwt"},
		{"foreign secret", foreign},
		{"expired", expired},
		{"unsigned", none},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatalf("next handler should not be called")
			})

			r := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.token != "" {
				r.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			m.Middleware(next).ServeHTTP(w, r)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := RequireRole(model.RoleAdmin)(next)

	tests := []struct {
		name      string
		principal *Principal
		want      int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"student on admin route", &Principal{ID: "s1", Role: model.RoleStudent}, http.StatusForbidden},
		{"admin", &Principal{ID: "a1", Role: model.RoleAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
			if tt.principal != nil {
				r = r.WithContext(WithPrincipal(r.Context(), *tt.principal))
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestClearAuthCookie(t *testing.T) {
	m := NewAuthMiddleware("")
	w := httptest.NewRecorder()
	m.ClearAuthCookie(w)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, authCookieName, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}
