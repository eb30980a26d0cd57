package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"salesdash/internal/analytics"
	"salesdash/internal/dataprocessing"
	apierrors "salesdash/internal/errors"
	"salesdash/internal/exporter"
	"salesdash/internal/services"
	"salesdash/internal/validation"
)

// User-facing messages of the dashboard error codes
const (
	msgEmptySeries       = "No hay datos para graficar esta métrica."
	msgUnsupportedFormat = "Formato de archivo no soportado. Sube un archivo .xlsx, .xls o .csv."
	msgUnreadable        = "No se pudo leer el archivo como una tabla."
	msgNoRows            = "El archivo no tiene filas de datos."
	msgMissingFile       = "Selecciona un archivo para subir."
)

// toAPIError maps service and domain errors to API errors. Errors it does
// not recognize are returned unchanged for the ErrorHandler to treat as
// internal.
func toAPIError(err error, metric string) error {
	var (
		apiErr    *apierrors.APIError
		parseErr  *dataprocessing.ParseError
		formatErr *dataprocessing.FormatError
		uploadErr *validation.Error
		maxErr    *http.MaxBytesError
	)

	switch {
	case err == nil:
		return nil
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, services.ErrNoFile):
		return apierrors.Wrap(err, http.StatusConflict, apierrors.CodeNoFileLoaded, apierrors.ErrNoFileLoaded.Message)
	case errors.Is(err, analytics.ErrMetricUnavailable):
		return apierrors.MetricUnavailableError(err, metric)
	case errors.Is(err, exporter.ErrEmptySeries):
		return apierrors.UnprocessableError(err, apierrors.CodeEmptySeries, msgEmptySeries).
			WithDetails(map[string]string{"metric": metric})
	case errors.As(err, &parseErr):
		return apierrors.UnprocessableError(err, apierrors.CodeParseFailed,
			fmt.Sprintf("No se pudo interpretar %q en la columna %s (fila %d).", parseErr.Value, parseErr.Column, parseErr.Row)).
			WithDetails(map[string]interface{}{
				"row":    parseErr.Row,
				"column": parseErr.Column,
				"value":  parseErr.Value,
			})
	case errors.As(err, &formatErr):
		return formatToAPIError(formatErr)
	case errors.As(err, &uploadErr):
		return uploadToAPIError(uploadErr)
	case errors.As(err, &maxErr):
		return apierrors.PayloadTooLargeError(maxErr.Limit)
	case errors.Is(err, http.ErrMissingFile):
		return apierrors.NewWithDetails(http.StatusBadRequest, apierrors.CodeValidationFailed, msgMissingFile,
			apierrors.ValidationError{Field: formFileField, Message: msgMissingFile})
	default:
		return err
	}
}

func formatToAPIError(err *dataprocessing.FormatError) *apierrors.APIError {
	switch {
	case errors.Is(err, dataprocessing.ErrMissingColumns):
		return apierrors.UnprocessableError(err, apierrors.CodeMissingColumns,
			"Faltan columnas requeridas: "+strings.Join(err.Missing, ", ")).
			WithDetails(map[string][]string{"missing": err.Missing})
	case errors.Is(err, dataprocessing.ErrNoRows):
		return apierrors.UnprocessableError(err, apierrors.CodeUnsupportedFormat, msgNoRows)
	case errors.Is(err, dataprocessing.ErrUnreadable):
		return apierrors.UnprocessableError(err, apierrors.CodeUnsupportedFormat, msgUnreadable)
	default:
		return apierrors.UnprocessableError(err, apierrors.CodeUnsupportedFormat, msgUnsupportedFormat)
	}
}

func uploadToAPIError(err *validation.Error) *apierrors.APIError {
	switch {
	case errors.Is(err, validation.ErrTooLarge):
		return apierrors.PayloadTooLargeError(err.Limit)
	case errors.Is(err, validation.ErrExtensionNotAllowed):
		return apierrors.UnprocessableError(err, apierrors.CodeUnsupportedFormat, msgUnsupportedFormat)
	default:
		return apierrors.NewWithDetails(http.StatusBadRequest, apierrors.CodeValidationFailed,
			apierrors.ErrValidationFailed.Message, err.Fields)
	}
}
