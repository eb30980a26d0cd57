package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("metric not available")
	err := MetricUnavailableError(cause, "producto")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, map[string]string{"metric": "producto"}, err.Details)
	assert.Contains(t, err.Error(), "producto")
}

func TestPayloadTooLargeError(t *testing.T) {
	err := PayloadTooLargeError(1024)
	assert.Equal(t, http.StatusRequestEntityTooLarge, err.StatusCode)
	assert.Equal(t, map[string]int64{"max_bytes": 1024}, err.Details)
}

func TestProblemDetailsMarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusConflict, TypeNoFileLoaded, "Conflict", "", "/").
		WithExtension("error_code", CodeNoFileLoaded).
		WithExtension("status", "ignored")

	data, err := pd.MarshalJSON()
	assert.NoError(t, err)
	assert.JSONEq(t, `{"type":"/errors/session/no-file","title":"Conflict","status":409,"instance":"/","error_code":"NO_FILE_LOADED"}`, string(data))
	assert.Equal(t, CodeNoFileLoaded, pd.ErrorCode())
}

func TestAppError(t *testing.T) {
	cause := stderrors.New("bad date")
	err := NewParsingError("row 4", cause).WithContext("row", 4)

	assert.Equal(t, "[PARSING] row 4: bad date", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 4, err.Context["row"])
	assert.Equal(t, "[STATE] nothing loaded", NewStateError("nothing loaded", nil).Error())
	assert.Equal(t, "[NOT_FOUND] metric not found", NewNotFoundError("metric", nil).Error())
}

func TestTypeOf(t *testing.T) {
	cause := stderrors.New("bad sheet")
	wrapped := fmt.Errorf("upload: %w", NewFormatError("unreadable", cause))

	assert.Equal(t, ErrTypeFormat, TypeOf(wrapped))
	assert.Equal(t, ErrTypeConfig, TypeOf(NewConfigError("bad port", nil)))
	assert.Empty(t, TypeOf(cause))
	assert.Empty(t, TypeOf(nil))
}
