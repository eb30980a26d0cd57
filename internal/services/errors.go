package services

import (
	"errors"
	"fmt"

	"salesdash/internal/analytics"
	"salesdash/internal/dataprocessing"
	apperrors "salesdash/internal/errors"
	"salesdash/internal/validation"
)

// Dashboard service errors
var (
	// ErrNoFile is returned by every selection operation of a session that
	// has no loaded table.
	ErrNoFile = errors.New("no file loaded")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)

// classify wraps domain errors in typed application errors. The domain
// error stays in the chain. Errors already classified, context errors and
// unknown errors pass through unchanged.
func classify(err error) error {
	var (
		appErr    *apperrors.AppError
		parseErr  *dataprocessing.ParseError
		formatErr *dataprocessing.FormatError
		uploadErr *validation.Error
	)

	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, ErrNoFile):
		return apperrors.NewStateError("no file loaded for session", err)
	case errors.As(err, &parseErr):
		return apperrors.NewParsingError(fmt.Sprintf("cannot parse column %s in row %d", parseErr.Column, parseErr.Row), err).
			WithContext("row", parseErr.Row).
			WithContext("column", parseErr.Column).
			WithContext("value", parseErr.Value)
	case errors.As(err, &formatErr):
		return apperrors.NewFormatError("file cannot be read as a sales table", err).
			WithContext("filename", formatErr.Filename)
	case errors.As(err, &uploadErr), errors.Is(err, ErrInvalidInput):
		return apperrors.NewAppValidationError("upload rejected", err)
	case errors.Is(err, analytics.ErrMetricUnavailable):
		return apperrors.NewNotFoundError("metric", err)
	default:
		return err
	}
}
