package service

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	appErrors "github.com/noah-isme/faculty-leave-api/pkg/errors"
)

// notFoundOr maps sql.ErrNoRows to a NotFound error and anything else to an internal one.
func notFoundOr(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internal)
}

// validationError flattens validator output into a single readable message.
func validationError(err error, message string) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		parts := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			parts = append(parts, fe.Namespace()+" failed "+fe.Tag())
		}
		message = message + ": " + strings.Join(parts, ", ")
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
