package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/AtSheen/efg/internal/middleware"
)

// Error code constants for standardized error responses
const (
	ErrNotFound                 = "NOT_FOUND"
	ErrBadRequest               = "BAD_REQUEST"
	ErrInternalServer           = "INTERNAL_SERVER_ERROR"
	ErrValidation               = "VALIDATION_ERROR"
	ErrReferenceDataUnavailable = "REFERENCE_DATA_UNAVAILABLE"
	ErrExternalService          = "EXTERNAL_SERVICE_ERROR"
)

// Client-facing messages for failures whose causes stay in the logs.
const (
	MessageInternalServer  = "Internal server error"
	MessageExternalService = "Error in external service request"
)

// ErrorResponse is the top-level error response structure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// NotFound returns a 404 Not Found error response.
func NotFound(c *gin.Context, message string) {
	if log := middleware.GetLogger(c); log != nil {
		log.Warn("Resource not found", requestFields(c, map[string]interface{}{"message": message}))
	}
	respond(c, http.StatusNotFound, ErrNotFound, message, nil)
}

// BadRequest returns a 400 Bad Request error response with optional details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	fields := map[string]interface{}{"message": message}
	if details != nil {
		fields["details"] = details
	}
	if log := middleware.GetLogger(c); log != nil {
		log.Warn("Bad request", requestFields(c, fields))
	}
	respond(c, http.StatusBadRequest, ErrBadRequest, message, details)
}

// InternalServerError returns a 500 Internal Server Error response.
// err is logged but never sent to the client.
func InternalServerError(c *gin.Context, message string, err error) {
	if log := middleware.GetLogger(c); log != nil {
		log.Error("Internal server error", err, requestFields(c, map[string]interface{}{"message": message}))
	}
	respond(c, http.StatusInternalServerError, ErrInternalServer, message, nil)
}

// ExternalServiceError returns a 500 response for a failed call to the
// prediction service. The client only sees MessageExternalService.
func ExternalServiceError(c *gin.Context, err error) {
	if log := middleware.GetLogger(c); log != nil {
		log.Error("External service request failed", err, requestFields(c, nil))
	}
	respond(c, http.StatusInternalServerError, ErrExternalService, MessageExternalService, nil)
}

// ServiceUnavailable returns a 503 response used while reference data cannot be loaded.
func ServiceUnavailable(c *gin.Context, message string, err error) {
	if log := middleware.GetLogger(c); log != nil {
		log.Error("Service unavailable", err, requestFields(c, map[string]interface{}{"message": message}))
	}
	respond(c, http.StatusServiceUnavailable, ErrReferenceDataUnavailable, message, nil)
}

// ValidationError returns a 400 Bad Request error response with field-specific validation errors.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	details := make(map[string]interface{})
	for _, err := range validationErrors {
		details[err.Field()] = formatValidationError(err)
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Warn("Validation error", requestFields(c, map[string]interface{}{"fields": details}))
	}

	respond(c, http.StatusBadRequest, ErrValidation, "Validation failed for one or more fields", details)
}

func respond(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: middleware.GetRequestID(c),
		},
	})
}

func requestFields(c *gin.Context, extra map[string]interface{}) map[string]interface{} {
	fields := map[string]interface{}{
		"request_id": middleware.GetRequestID(c),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
	}
	for k, v := range extra {
		fields[k] = v
	}
	return fields
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Value is too short or small (minimum: " + err.Param() + ")"
	case "max":
		return "Value is too long or large (maximum: " + err.Param() + ")"
	case "oneof":
		return "Must be one of: " + err.Param()
	case "numeric":
		return "Must be a numeric value"
	case "alphanum":
		return "Must contain only letters and digits"
	case "uuid":
		return "Must be a valid UUID"
	default:
		return "Validation failed for tag: " + err.Tag()
	}
}
