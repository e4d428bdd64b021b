package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/Nand2004/GeoConnect-sub000/internal/app/models/dto"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/apperrors"
)

type errorCategory struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// Order matters: the first matching category wins.
var errorCategories = []errorCategory{
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},
	{apperrors.ErrVersionConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},
	{apperrors.ErrPartialMembershipUpdate, http.StatusInternalServerError, dto.ErrorCodePartialMembershipUpdate, "Membership update partially applied"},
}

// HandleAPIError writes the error response for err. Domain errors carry their
// own code and message; anything unrecognised becomes a 500 without details.
func HandleAPIError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(FormatValidationError(verrs)))
		return
	}

	for _, cat := range errorCategories {
		if !errors.Is(err, cat.target) {
			continue
		}

		detail := dto.NewErrorDetail(cat.code, cat.message)
		var ce *apperrors.CustomError
		if errors.As(err, &ce) {
			if ce.Code != "" {
				detail.Code = dto.ErrorCode(ce.Code)
			}
			if ce.Message != "" {
				detail.Message = ce.Message
			}
			if field, ok := ce.Details["field"].(string); ok {
				detail.WithField(field)
			} else if len(ce.Details) > 0 && cat.status < http.StatusInternalServerError {
				detail.WithDetails(ce.Details)
			}
		}

		if cat.status >= http.StatusInternalServerError {
			detail.WithSeverity(dto.ErrorSeverityCritical)
			log.Error().Err(err).
				Str("requestID", c.GetString(RequestIDKey)).
				Str("path", c.FullPath()).
				Msg("Request failed with partial update")
		} else {
			detail.WithSeverity(dto.ErrorSeverityWarning)
		}

		c.JSON(cat.status, dto.NewErrorResponse(detail))
		return
	}

	log.Error().Err(err).
		Str("requestID", c.GetString(RequestIDKey)).
		Str("path", c.FullPath()).
		Msg("Unhandled error")
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
		dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"),
	))
}

// HandleBindError answers a request whose body or query failed to bind
func HandleBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(FormatValidationError(verrs)))
		return
	}
	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
		WithDetails(err.Error()).
		WithSeverity(dto.ErrorSeverityWarning)
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
}
