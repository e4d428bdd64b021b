package middleware

import (
	"github.com/go-playground/validator/v10"

	"github.com/Nand2004/GeoConnect-sub000/internal/app/models/dto"
)

// FieldError is one failed binding rule
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationError turns binding failures into an error detail listing
// every offending field.
func FormatValidationError(errs validator.ValidationErrors) *dto.ErrorDetail {
	fields := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, FieldError{Field: e.Field(), Message: formatValidationError(e)})
	}

	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed").
		WithSeverity(dto.ErrorSeverityWarning).
		WithDetails(fields)
	if len(fields) == 1 {
		detail.WithField(fields[0].Field)
		detail.Message = fields[0].Message
	}
	return detail
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt", "gte":
		return e.Field() + " must be greater than " + e.Param()
	case "lt", "lte":
		return e.Field() + " must be at most " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "alphanum":
		return e.Field() + " must contain only letters and digits"
	case "objectid":
		return e.Field() + " must be a 24 character hex id"
	case "hobby":
		return e.Field() + " may contain only letters, digits, spaces, '-' and '&'"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
