package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func contextWithRoles(ctx context.Context, roles []string) context.Context {
	return context.WithValue(ctx, UserRolesKey, roles)
}

func signToken(t *testing.T, key []byte, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	key := []byte("test-signing-key")
	signed := signToken(t, key, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: []string{RolePharmacist},
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotUser string
	var gotRoles []string
	handler := JWTMiddleware(JWTConfig{SigningKey: key})(func(c echo.Context) error {
		gotUser = UserIDFromContext(c.Request().Context())
		gotRoles = RolesFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if gotUser != "user-1" {
		t.Errorf("user id = %q, want user-1", gotUser)
	}
	if len(gotRoles) != 1 || gotRoles[0] != RolePharmacist {
		t.Errorf("roles = %v, want [pharmacist]", gotRoles)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	handler := JWTMiddleware(JWTConfig{SigningKey: []byte("k")})(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	err := handler(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	key := []byte("test-signing-key")
	signed := signToken(t, key, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	c := e.NewContext(req, httptest.NewRecorder())

	handler := JWTMiddleware(JWTConfig{SigningKey: key})(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	err := handler(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestJWTMiddleware_WrongKey(t *testing.T) {
	signed := signToken(t, []byte("other-key"), Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	c := e.NewContext(req, httptest.NewRecorder())

	handler := JWTMiddleware(JWTConfig{SigningKey: []byte("right-key")})(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	err := handler(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name      string
		userRoles []string
		required  []string
		wantPass  bool
	}{
		{"has role", []string{RolePharmacist}, []string{RolePharmacist}, true},
		{"admin bypasses", []string{RoleAdmin}, []string{RolePharmacist}, true},
		{"missing role", []string{RolePatient}, []string{RolePharmacist}, false},
		{"no roles", nil, []string{RolePharmacist}, false},
		{"any of several", []string{RolePatient}, []string{RolePharmacist, RolePatient}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			ctx := req.Context()
			if tt.userRoles != nil {
				ctx = contextWithRoles(ctx, tt.userRoles)
			}
			c.SetRequest(req.WithContext(ctx))

			handler := RequireRole(tt.required...)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})
			err := handler(c)

			if tt.wantPass && err != nil {
				t.Errorf("expected pass, got %v", err)
			}
			if !tt.wantPass {
				he, ok := err.(*echo.HTTPError)
				if !ok || he.Code != http.StatusForbidden {
					t.Errorf("expected 403 HTTPError, got %v", err)
				}
			}
		})
	}
}

func TestDevAuthMiddleware(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	var gotRoles []string
	handler := DevAuthMiddleware()(func(c echo.Context) error {
		gotRoles = RolesFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(gotRoles) != 1 || gotRoles[0] != RoleAdmin {
		t.Errorf("roles = %v, want [admin]", gotRoles)
	}
}
