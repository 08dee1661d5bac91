package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/MikeMC777/mavunohub/internal/apperr"
)

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: not found
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// DetailResponse carries a single human-readable outcome.
// swagger:model
type DetailResponse struct {
	Detail string `json:"detail"`
}

func statusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation, apperr.KindStateConflict:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindPermission:
		return http.StatusForbidden
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindInUse:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as JSON with the status matching its kind. State
// conflicts are reported as {"detail": reason}; internal errors are logged
// and hidden from the caller.
func Error(c *gin.Context, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		slog.ErrorContext(c.Request.Context(), "internal error", "path", c.Request.URL.Path, "err", err)
		c.JSON(http.StatusInternalServerError, HTTPError{Error: "internal error"})
		return
	}
	code := statusFor(e.Kind)
	switch e.Kind {
	case apperr.KindStateConflict:
		c.JSON(code, DetailResponse{Detail: e.Message})
	case apperr.KindInternal:
		slog.ErrorContext(c.Request.Context(), "internal error", "path", c.Request.URL.Path, "err", err)
		c.JSON(code, HTTPError{Error: "internal error"})
	default:
		c.JSON(code, HTTPError{Error: e.Message, Fields: e.Fields})
	}
}

var registerTagName sync.Once

// BindJSON decodes the body into v and runs the binding validators. Failures
// are returned as validation errors keyed by JSON field path.
func BindJSON(c *gin.Context, v any) error {
	registerTagName.Do(func() {
		if ve, ok := binding.Validator.Engine().(*validator.Validate); ok {
			ve.RegisterTagNameFunc(jsonName)
		}
	})

	err := c.ShouldBindJSON(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := apperr.FieldErrors{}
		for _, fe := range verrs {
			fields.Add(fieldPath(fe.Namespace()), describe(fe))
		}
		return apperr.Validation("invalid request", fields)
	}
	return apperr.Validation("invalid json: "+err.Error(), nil)
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// fieldPath drops the top-level struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "uuid", "uuid4":
		return "Must be a valid UUID."
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value is at least %s.", fe.Param())
	default:
		return fmt.Sprintf("Failed on the '%s' rule.", fe.Tag())
	}
}
