package apicontrollers

import (
	"net/http"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/errs"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorStatus maps a service error to the HTTP status reported to clients.
func ErrorStatus(err error) int {
	switch err.(type) {
	case *errs.ValidationError, *errs.SchemaError, *errs.UnsupportedTypeError,
		*errs.InvalidIndexedOutputTypeError, *errs.InvalidReferenceError, *errs.ParameterFormatError:
		return http.StatusBadRequest
	case *errs.AccessDeniedError:
		return http.StatusForbidden
	case *errs.NotFoundError:
		return http.StatusNotFound
	case *errs.DuplicateError:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err as {"error": message} with the status of its kind.
func WriteError(ctx echo.Context, logger *zap.Logger, err error) error {
	status := ErrorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Error occurred", zap.String("path", ctx.Path()), zap.Error(err))
	} else {
		logger.Debug("Request rejected", zap.String("path", ctx.Path()), zap.Int("status", status), zap.Error(err))
	}
	return ctx.JSON(status, map[string]interface{}{
		"error": err.Error(),
	})
}

func requireUser(user *entities.User) error {
	if user == nil {
		return errs.AccessDeniedErrorf("You must be logged in.")
	}
	return nil
}

func requireAdmin(user *entities.User) error {
	if user == nil || !user.Admin {
		return errs.AccessDeniedErrorf("Administrator access required.")
	}
	return nil
}
