package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	diarydomain "github.com/smallbiznis/lotworks/internal/diary/domain"
	itpdomain "github.com/smallbiznis/lotworks/internal/itp/domain"
	projectdomain "github.com/smallbiznis/lotworks/internal/project/domain"
	rateledgerdomain "github.com/smallbiznis/lotworks/internal/rateledger/domain"
	reportdomain "github.com/smallbiznis/lotworks/internal/report/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	switch {
	case isUnauthorizedError(err):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   "request",
					Code:    "invalid_request",
					Message: err.Error(),
				},
			},
		}
	case isConflictError(err):
		// Conflict messages carry the rule that was violated, counts
		// included, so the client can show them verbatim.
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isUnauthorizedError(err error) bool {
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, rateledgerdomain.ErrInvalidOrganization),
		errors.Is(err, projectdomain.ErrInvalidOrganization),
		errors.Is(err, diarydomain.ErrInvalidOrganization),
		errors.Is(err, itpdomain.ErrInvalidOrganization),
		errors.Is(err, reportdomain.ErrInvalidOrganization):
		return true
	default:
		return false
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isRateledgerValidationError(err),
		isProjectValidationError(err),
		isDiaryValidationError(err),
		isItpValidationError(err),
		isReportValidationError(err):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case isRateledgerConflictError(err),
		isProjectConflictError(err),
		isDiaryConflictError(err),
		isItpConflictError(err):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, rateledgerdomain.ErrVendorNotFound),
		errors.Is(err, rateledgerdomain.ErrRateCardNotFound),
		errors.Is(err, rateledgerdomain.ErrResourceNotFound),
		errors.Is(err, projectdomain.ErrProjectNotFound),
		errors.Is(err, projectdomain.ErrLotNotFound),
		errors.Is(err, diarydomain.ErrDiaryNotFound),
		errors.Is(err, diarydomain.ErrEntryNotFound),
		errors.Is(err, diarydomain.ErrLotNotFound),
		errors.Is(err, diarydomain.ErrResourceNotFound),
		errors.Is(err, itpdomain.ErrTemplateNotFound),
		errors.Is(err, itpdomain.ErrLotNotFound),
		errors.Is(err, itpdomain.ErrLotItpNotFound),
		errors.Is(err, itpdomain.ErrCheckNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}
