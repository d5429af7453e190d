package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/calebquinn/packlist/internal/auth"
	"github.com/calebquinn/packlist/internal/database"
	"github.com/calebquinn/packlist/internal/store"
)

func setupAuthMiddleware(t *testing.T, jwtSecret string) (func(http.Handler) http.Handler, *store.UserStore, *store.SessionStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	us := store.NewUserStore(db)
	ss := store.NewSessionStore(db)
	return RequireAuth(ss, us, jwtSecret), us, ss
}

func echoUserID(t *testing.T, got *int64) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = auth.UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthSessionCookie(t *testing.T) {
	mw, us, ss := setupAuthMiddleware(t, "")
	user, _ := us.Create("hiker@example.com", "Hiker", "x")
	session, _ := ss.Create(user.ID, time.Hour)

	var gotUserID int64
	handler := mw(echoUserID(t, &gotUserID))

	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.Token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if gotUserID != user.ID {
		t.Errorf("user id = %d, want %d", gotUserID, user.ID)
	}
}

func TestRequireAuthBearerHeader(t *testing.T) {
	mw, us, ss := setupAuthMiddleware(t, "")
	user, _ := us.Create("hiker@example.com", "Hiker", "x")
	session, _ := ss.Create(user.ID, time.Hour)

	var gotUserID int64
	handler := mw(echoUserID(t, &gotUserID))

	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || gotUserID != user.ID {
		t.Errorf("status = %d, user id = %d", rec.Code, gotUserID)
	}
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	mw, _, _ := setupAuthMiddleware(t, "")

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthRejectsBogusToken(t *testing.T) {
	mw, _, _ := setupAuthMiddleware(t, "")

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "deadbeef"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthJWTPath(t *testing.T) {
	secret := "jwt-secret"
	mw, us, _ := setupAuthMiddleware(t, secret)
	user, _ := us.Create("hiker@example.com", "Hiker", "x")

	claims := auth.AccessClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	var gotUserID int64
	handler := mw(echoUserID(t, &gotUserID))

	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: signed})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if gotUserID != user.ID {
		t.Errorf("user id = %d, want %d", gotUserID, user.ID)
	}
}

func TestRequireAuthJWTUnknownUser(t *testing.T) {
	secret := "jwt-secret"
	mw, _, _ := setupAuthMiddleware(t, secret)

	claims := auth.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "999",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: signed})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
