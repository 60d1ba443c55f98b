package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgauth "github.com/keranjangku/keranjangku-backend/pkg/auth"
	"github.com/keranjangku/keranjangku-backend/pkg/config"
	"github.com/keranjangku/keranjangku-backend/pkg/enums"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "keranjangku-test",
	ExpirationMinutes: 15,
}

type fakeSessionChecker struct {
	has bool
	err error
}

func (f *fakeSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return f.has, f.err
}

func mintToken(t *testing.T, userID uuid.UUID, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(testJWTConfig, time.Now(), pkgauth.AccessTokenPayload{
		UserID: userID,
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuthSetsIdentityOnContext(t *testing.T) {
	userID := uuid.New()
	var gotUser uuid.UUID
	var gotRole enums.UserRole
	handler := Auth(testJWTConfig, &fakeSessionChecker{has: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/baskets", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, userID, enums.UserRoleCustomer))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotUser != userID {
		t.Fatalf("expected user %s on context, got %s", userID, gotUser)
	}
	if gotRole != enums.UserRoleCustomer {
		t.Fatalf("expected customer role, got %s", gotRole)
	}
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	handler := Auth(testJWTConfig, &fakeSessionChecker{has: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/baskets", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	handler := Auth(testJWTConfig, &fakeSessionChecker{has: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/baskets", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	handler := Auth(testJWTConfig, &fakeSessionChecker{has: false}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/baskets", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, uuid.New(), enums.UserRoleCustomer))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	allowed := RequireRole(nil, enums.UserRoleStaff)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assigns", nil)
	req = req.WithContext(WithRole(req.Context(), enums.UserRoleStaff))
	rec := httptest.NewRecorder()
	allowed.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected staff allowed, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/assigns", nil)
	req = req.WithContext(WithRole(req.Context(), enums.UserRoleCustomer))
	rec = httptest.NewRecorder()
	allowed.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected customer forbidden, got %d", rec.Code)
	}
}
