package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/memoria/internal/auth"
	"github.com/mmynk/memoria/internal/models"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		err    error
	}{
		{"Bearer abc.def", "abc.def", nil},
		{"bearer abc.def", "abc.def", nil},
		{"", "", auth.ErrMissingToken},
		{"Basic dXNlcjpwYXNz", "", auth.ErrInvalidToken},
		{"Bearer", "", auth.ErrInvalidToken},
		{"Bearer   ", "", auth.ErrInvalidToken},
	}
	for _, tt := range tests {
		token, err := BearerToken(tt.header)
		if !errors.Is(err, tt.err) || token != tt.token {
			t.Errorf("BearerToken(%q) = %q, %v; want %q, %v", tt.header, token, err, tt.token, tt.err)
		}
	}
}

func TestAuthCode(t *testing.T) {
	for _, err := range []error{auth.ErrInvalidToken, auth.ErrExpiredToken, auth.ErrUnknownUser, auth.ErrInactiveUser} {
		if got := authCode(err); got != connect.CodeUnauthenticated {
			t.Errorf("authCode(%v) = %v, want unauthenticated", err, got)
		}
	}
	if got := authCode(errors.New("db is down")); got != connect.CodeInternal {
		t.Errorf("authCode(db error) = %v, want internal", got)
	}
}

func TestUserContext(t *testing.T) {
	ctx := context.Background()
	if User(ctx) != nil || GetUserID(ctx) != "" {
		t.Fatal("empty context should carry no user")
	}

	c := &call{}
	ctx = context.WithValue(ctx, callKey, c)
	user := &models.User{ID: "u1"}
	ctx = WithUser(ctx, user)

	if User(ctx) != user || GetUserID(ctx) != "u1" {
		t.Errorf("user not stored in context")
	}
	if c.userID != "u1" {
		t.Errorf("call slot userID = %q, want u1", c.userID)
	}
}

func TestCORS(t *testing.T) {
	called := false
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/memoria.v1.AuthService/Login", nil))
	if called {
		t.Error("preflight must not reach the handler")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/memoria.v1.AuthService/Login", nil))
	if !called {
		t.Error("POST should reach the handler")
	}
}
