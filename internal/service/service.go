// Package service implements the façade operations used by the HTTP layer and the view containers.
//
// Every operation returns (data, error). Errors are *models.AppError values carrying one of the
// models.Code* constants; failures reported by the store are logged here with the operation's
// message and wrapped as REMOTE_FAILURE.
package service

import (
	"context"
	"errors"
	"log/slog"

	"studyhub/internal/middleware"
	"studyhub/internal/models"
)

// fail logs err under msg and returns it as an AppError. Errors that already carry a code pass through.
func fail(ctx context.Context, msg string, err error) error {
	middleware.Logger.ErrorContext(ctx, msg, slog.String("error", err.Error()))
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewRemoteError(msg, err)
}

// warn logs a failure that does not abort the operation.
func warn(ctx context.Context, msg string, err error, attrs ...any) {
	middleware.Logger.WarnContext(ctx, msg, append(attrs, slog.String("error", err.Error()))...)
}

func requireUser(userID uint) error {
	if userID == 0 {
		return models.NewNotAuthenticatedError()
	}
	return nil
}
