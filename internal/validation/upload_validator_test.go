package validation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/config"
)

func newTestValidator() *UploadValidator {
	return NewUploadValidator(config.UploadConfig{
		MaxBytes:          1024,
		AllowedExtensions: []string{".xlsx", ".xls", ".csv"},
	}, nil)
}

func TestUploadValidator_Validate(t *testing.T) {
	tests := []struct {
		name      string
		upload    Upload
		wantErr   error
		wantField string
	}{
		{
			name:   "valid xlsx",
			upload: Upload{Filename: "Listado_Caja.xlsx", Size: 512},
		},
		{
			name:   "extension case ignored",
			upload: Upload{Filename: "VENTAS.CSV", Size: 10},
		},
		{
			name:      "missing name",
			upload:    Upload{Size: 10},
			wantErr:   ErrInvalidUpload,
			wantField: "Filename",
		},
		{
			name:      "path traversal",
			upload:    Upload{Filename: "../secret.csv", Size: 10},
			wantErr:   ErrInvalidUpload,
			wantField: "Filename",
		},
		{
			name:      "disallowed extension",
			upload:    Upload{Filename: "notes.txt", Size: 10},
			wantErr:   ErrExtensionNotAllowed,
			wantField: "Filename",
		},
		{
			name:    "too large",
			upload:  Upload{Filename: "big.xlsx", Size: 2048},
			wantErr: ErrTooLarge,
		},
	}

	v := newTestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.upload)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			var verr *Error
			require.ErrorAs(t, err, &verr)
			if tt.wantField != "" {
				require.NotEmpty(t, verr.Fields)
				assert.Equal(t, tt.wantField, verr.Fields[0].Field)
			}
		})
	}
}

func TestUploadValidator_TooLargeCarriesLimit(t *testing.T) {
	err := newTestValidator().Validate(Upload{Filename: "big.csv", Size: 4096})

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.EqualValues(t, 1024, verr.Limit)
	assert.Equal(t, ErrTooLarge.Error(), verr.Error())
}

func TestUploadValidator_ValidateFile(t *testing.T) {
	dir := t.TempDir()
	v := newTestValidator()

	good := filepath.Join(dir, "ventas.csv")
	require.NoError(t, os.WriteFile(good, []byte("Fecha,Hora\n"), 0644))
	u, err := v.ValidateFile(good)
	require.NoError(t, err)
	assert.Equal(t, "ventas.csv", u.Filename)
	assert.EqualValues(t, 11, u.Size)

	temp := filepath.Join(dir, "~$ventas.xlsx")
	require.NoError(t, os.WriteFile(temp, []byte("x"), 0644))
	_, err = v.ValidateFile(temp)
	assert.ErrorContains(t, err, "temporary Excel file")

	_, err = v.ValidateFile(dir)
	assert.ErrorContains(t, err, "is a directory")

	_, err = v.ValidateFile(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMaxBytes(t *testing.T) {
	assert.EqualValues(t, 1024, newTestValidator().MaxBytes())
}
