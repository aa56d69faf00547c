// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Map converts core errors into gRPC-friendly status errors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return status.Error(codes.InvalidArgument, verr.Error())

	case errors.Is(err, ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, UserMessage(err))

	case errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, UserMessage(err))

	case errors.Is(err, ErrConstraint):
		return status.Error(codes.AlreadyExists, UserMessage(err))

	case errors.Is(err, ErrPermission):
		return status.Error(codes.PermissionDenied, UserMessage(err))

	case errors.Is(err, ErrSubscriptionDropped):
		return status.Error(codes.Unavailable, UserMessage(err))

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")

	case errors.Is(err, ErrTransport):
		return status.Error(codes.Unavailable, UserMessage(err))

	default:
		// ambiguous results and anything unclassified
		return status.Error(codes.Internal, UserMessage(err))
	}
}

// UserMessage is the generic text shown to end users for err.
// Store details stay in the logs.
func UserMessage(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, ErrUnauthenticated):
		return "please sign in again"
	case errors.Is(err, ErrNotFound):
		return "the requested record does not exist"
	case errors.Is(err, ErrConstraint):
		return "this action was already recorded"
	case errors.Is(err, ErrPermission):
		return "you are not allowed to do that"
	case errors.Is(err, ErrSubscriptionDropped):
		return "live updates stopped, reopen the conversation"
	case errors.Is(err, ErrTransport):
		return "the service is temporarily unavailable, please try again"
	default:
		return "something went wrong, please try again"
	}
}

// InvalidArgument creates a gRPC InvalidArgument error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) error {
	return status.Error(codes.InvalidArgument, msg)
}

// AlreadyExists creates a gRPC AlreadyExists error.
func AlreadyExists(msg string) error {
	return status.Error(codes.AlreadyExists, msg)
}

// Unauthenticated creates a gRPC Unauthenticated error.
func Unauthenticated(msg string) error {
	return status.Error(codes.Unauthenticated, msg)
}
