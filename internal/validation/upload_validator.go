package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"salesdash/internal/config"
)

// Sentinels matched by callers with errors.Is.
var (
	ErrTooLarge            = errors.New("file exceeds the upload limit")
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
	ErrInvalidUpload       = errors.New("invalid upload")
)

// Upload describes a file offered for loading, either a multipart part or a
// local path handed to the CLI.
type Upload struct {
	Filename string `validate:"required,max=255,filename"`
	Size     int64  `validate:"gte=0"`
}

// FieldError is one failed rule on an Upload field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error carries the reason an upload was rejected and the failed fields.
type Error struct {
	Reason error
	Fields []FieldError
	Limit  int64
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Reason.Error()
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return fmt.Sprintf("%s: %s", e.Reason, strings.Join(msgs, "; "))
}

func (e *Error) Is(target error) bool {
	return target == e.Reason
}

// UploadValidator checks uploads against the configured size and extension
// limits.
type UploadValidator struct {
	validate *validator.Validate
	maxBytes int64
	allowed  map[string]bool
	logger   *slog.Logger
}

// NewUploadValidator creates a validator from the upload config section.
func NewUploadValidator(cfg config.UploadConfig, logger *slog.Logger) *UploadValidator {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New()
	_ = v.RegisterValidation("filename", isValidFilename)

	allowed := make(map[string]bool, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed[strings.ToLower(ext)] = true
	}

	return &UploadValidator{
		validate: v,
		maxBytes: cfg.MaxBytes,
		allowed:  allowed,
		logger:   logger.With(slog.String("component", "upload_validator")),
	}
}

// MaxBytes returns the configured upload limit.
func (v *UploadValidator) MaxBytes() int64 {
	return v.maxBytes
}

// Validate checks u. The size check comes last so a bad name is reported
// even for an oversized file.
func (v *UploadValidator) Validate(u Upload) error {
	if err := v.validate.Struct(u); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Field(), Message: formatValidationError(fe)})
		}
		v.logger.Warn("upload rejected",
			slog.String("filename", u.Filename),
			slog.Int("failed_fields", len(fields)))
		return &Error{Reason: ErrInvalidUpload, Fields: fields}
	}

	ext := strings.ToLower(filepath.Ext(u.Filename))
	if !v.allowed[ext] {
		v.logger.Warn("upload extension not allowed",
			slog.String("filename", u.Filename),
			slog.String("extension", ext))
		return &Error{
			Reason: ErrExtensionNotAllowed,
			Fields: []FieldError{{Field: "Filename", Message: fmt.Sprintf("extension %q is not one of %s", ext, v.allowedList())}},
		}
	}

	if v.maxBytes > 0 && u.Size > v.maxBytes {
		v.logger.Warn("upload too large",
			slog.String("filename", u.Filename),
			slog.Int64("size", u.Size),
			slog.Int64("max_bytes", v.maxBytes))
		return &Error{Reason: ErrTooLarge, Limit: v.maxBytes}
	}

	return nil
}

// ValidateFile stats a local file and validates it as an upload.
func (v *UploadValidator) ValidateFile(path string) (Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Upload{}, fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return Upload{}, fmt.Errorf("%s is a directory, not a file", path)
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		return Upload{}, fmt.Errorf("file %s is a temporary Excel file", path)
	}

	u := Upload{Filename: base, Size: info.Size()}
	return u, v.Validate(u)
}

func (v *UploadValidator) allowedList() string {
	exts := make([]string, 0, len(v.allowed))
	for ext := range v.allowed {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

// isValidFilename rejects path separators and traversal.
func isValidFilename(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" {
		return false
	}
	return !strings.Contains(name, "..") && !strings.ContainsAny(name, `/\`)
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, err.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, err.Param())
	case "filename":
		return fmt.Sprintf("%s must be a plain file name", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}
