package application

import (
	"errors"

	"github.com/oksasatya/taskmaster-api/internal/domain/apperror"
	"github.com/oksasatya/taskmaster-api/internal/domain/repository"
	"github.com/oksasatya/taskmaster-api/pkg/validation"
)

const msgValidationFailed = "Validation failed"

// storeError maps a repository failure: ErrNotFound becomes NotFound with
// notFoundMsg, anything else is Internal.
func storeError(err error, notFoundMsg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(notFoundMsg)
	}
	return apperror.Internal(err)
}

// invalid converts a validation.Errors into a Validation app error.
func invalid(err error, msg string) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return apperror.Validation(msg, verrs)
	}
	return apperror.Internal(err)
}
