package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/memoria/internal/apperr"
	"github.com/mmynk/memoria/internal/auth"
)

func TestToConnectError(t *testing.T) {
	tests := []struct {
		err     error
		code    connect.Code
		message string
	}{
		{apperr.NotFound("album not found"), connect.CodeNotFound, "album not found"},
		{apperr.Forbidden("album is private"), connect.CodePermissionDenied, "album is private"},
		{apperr.Conflict("email already registered"), connect.CodeAlreadyExists, "email already registered"},
		{apperr.Unauthorized("token expired", auth.ErrExpiredToken), connect.CodeUnauthenticated, "token expired"},
		{apperr.Validation("title is required"), connect.CodeInvalidArgument, "title is required"},
		{apperr.Internal("failed to list albums", errors.New("db is down")), connect.CodeInternal, "failed to list albums"},
		{errors.New("boom"), connect.CodeInternal, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := toConnectError(fmt.Errorf("wrapped: %w", tt.err))
			var connectErr *connect.Error
			if !errors.As(err, &connectErr) {
				t.Fatalf("expected *connect.Error, got %T", err)
			}
			if connectErr.Code() != tt.code {
				t.Errorf("code = %v, want %v", connectErr.Code(), tt.code)
			}
			if connectErr.Message() != tt.message {
				t.Errorf("message = %q, want %q", connectErr.Message(), tt.message)
			}
		})
	}
}

func TestAuthErrorKinds(t *testing.T) {
	tests := map[error]apperr.Kind{
		auth.ErrEmailExists:           apperr.KindConflict,
		auth.ErrInvalidInvitationCode: apperr.KindConflict,
		auth.ErrWeakPassword:          apperr.KindValidation,
		auth.ErrInvalidEmail:          apperr.KindValidation,
		auth.ErrMissingName:           apperr.KindValidation,
		auth.ErrInvalidCredentials:    apperr.KindUnauthorized,
		auth.ErrInactiveUser:          apperr.KindUnauthorized,
		errors.New("db is down"):      apperr.KindInternal,
	}
	for err, want := range tests {
		if got := apperr.KindOf(authError(err)); got != want {
			t.Errorf("authError(%v) kind = %v, want %v", err, got, want)
		}
	}
}

func TestUnaryLogsInternalCause(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	failing := func(ctx context.Context, _ *struct{}) (*struct{}, error) {
		return nil, apperr.Internal("failed to load album", errors.New("database is locked (SQLITE_BUSY)"))
	}
	rejecting := func(ctx context.Context, _ *struct{}) (*struct{}, error) {
		return nil, apperr.NotFound("album not found")
	}

	send := func(fn func(context.Context, *struct{}) (*struct{}, error)) *httptest.ResponseRecorder {
		procedure, handler := unary("/memoria.v1.AlbumService/GetAlbum", fn, []connect.HandlerOption{Codec()})
		req := httptest.NewRequest(http.MethodPost, procedure, strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	rec := send(failing)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "SQLITE_BUSY") {
		t.Errorf("cause leaked to client: %s", rec.Body.String())
	}
	if !strings.Contains(logs.String(), "SQLITE_BUSY") || !strings.Contains(logs.String(), "GetAlbum") {
		t.Errorf("cause missing from log: %s", logs.String())
	}

	logs.Reset()
	send(rejecting)
	if logs.Len() != 0 {
		t.Errorf("expected no log for client errors, got %s", logs.String())
	}
}
