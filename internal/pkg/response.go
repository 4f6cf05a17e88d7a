package pkg

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/blogapi/internal/domain"
)

// Response is the JSON envelope used by every non-list endpoint.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ValidationErrorResponse carries per-field messages keyed by JSON name.
type ValidationErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func writeJSON(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Code: status, Message: message, Data: data})
}

// Success writes a 200 envelope.
func Success(c *gin.Context, data any) {
	writeJSON(c, http.StatusOK, "success", data)
}

// Created writes a 201 envelope.
func Created(c *gin.Context, message string, data any) {
	writeJSON(c, http.StatusCreated, message, data)
}

// Error maps err to an HTTP status through its domain code. Messages of
// non-domain errors are never exposed.
func Error(c *gin.Context, err error) {
	message := domain.ErrInternal.Message
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	writeJSON(c, domain.HTTPStatusCode(err), message, nil)
}

// List writes a paginated result as the body itself, without the envelope.
// A nil result or nil content is rendered as an empty page.
func List[T any](c *gin.Context, result *domain.PaginatedResponse[T]) {
	if result == nil {
		result = &domain.PaginatedResponse[T]{}
	}
	if result.Content == nil {
		result.Content = []T{}
	}
	c.JSON(http.StatusOK, result)
}

// ValidationError writes a 400 response for err. Field names fall back to
// lower-cased Go names because no request type is known.
func ValidationError(c *gin.Context, err error) {
	writeValidationError(c, err, nil)
}

// BindAndValidate binds the request into obj. On failure it has already
// written the 400 response and returns false:
//
//	if !pkg.BindAndValidate(c, &req) { return }
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		writeValidationError(c, err, obj)
		return false
	}
	return true
}

func writeValidationError(c *gin.Context, err error, obj any) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		// Malformed body or type mismatch.
		writeJSON(c, http.StatusBadRequest, "bad request", nil)
		return
	}

	var structType reflect.Type
	if obj != nil {
		structType = reflect.TypeOf(obj)
		for structType.Kind() == reflect.Pointer {
			structType = structType.Elem()
		}
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[jsonFieldName(structType, fe)] = describeFieldError(fe)
	}

	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Code:    http.StatusBadRequest,
		Message: domain.ErrValidation.Message,
		Errors:  fields,
	})
}

// jsonFieldName resolves the JSON key of the failing field on t, falling
// back to the lower-cased Go field name.
func jsonFieldName(t reflect.Type, fe validator.FieldError) string {
	if t != nil && t.Kind() == reflect.Struct {
		if f, ok := t.FieldByName(fe.StructField()); ok {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name != "" && name != "-" {
				return name
			}
		}
	}
	return strings.ToLower(fe.Field())
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "oneof":
		return "Must be one of: " + fe.Param()
	}
	if fe.Param() == "" {
		return "Failed " + fe.Tag()
	}
	return fmt.Sprintf("Failed %s=%s", fe.Tag(), fe.Param())
}
