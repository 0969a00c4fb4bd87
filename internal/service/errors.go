package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/memoria/internal/apperr"
	"github.com/mmynk/memoria/internal/auth"
)

// connectCode maps an application error kind to its Connect code.
func connectCode(kind apperr.Kind) connect.Code {
	switch kind {
	case apperr.KindNotFound:
		return connect.CodeNotFound
	case apperr.KindForbidden:
		return connect.CodePermissionDenied
	case apperr.KindConflict:
		return connect.CodeAlreadyExists
	case apperr.KindUnauthorized:
		return connect.CodeUnauthenticated
	case apperr.KindValidation:
		return connect.CodeInvalidArgument
	default:
		return connect.CodeInternal
	}
}

// toConnectError converts err for the wire. Internal causes are not exposed.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}
	kind := apperr.KindOf(err)
	return connect.NewError(connectCode(kind), errors.New(apperr.MessageOf(err)))
}

// logInternal records the full cause of an internal failure, which
// toConnectError drops from the wire.
func logInternal(ctx context.Context, procedure string, err error) {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) || apperr.KindOf(err) != apperr.KindInternal {
		return
	}
	slog.ErrorContext(ctx, "Internal error", "procedure", procedure, "error", err)
}

// authError classifies authenticator failures.
func authError(err error) error {
	switch {
	case errors.Is(err, auth.ErrEmailExists):
		return apperr.Conflict("email already registered")
	case errors.Is(err, auth.ErrInvalidInvitationCode):
		return apperr.Conflict("invalid invitation code")
	case errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrMissingName):
		return apperr.Validation("%s", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInactiveUser):
		return apperr.Unauthorized(err.Error(), err)
	default:
		return apperr.Internal("authentication failed", err)
	}
}
