// Package validation binds JSON request bodies and turns binding failures into
// field-level errors.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldError describes why one request field was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validatable is implemented by request DTOs whose rules cannot be expressed as struct tags.
type Validatable interface {
	Validate() []FieldError
}

var registerOnce sync.Once

// registerJSONNames makes validator report fields by their json name.
func registerJSONNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// BindJSON decodes the request body into req and validates it, first with the
// binding tags and then with req.Validate when req implements Validatable.
// It returns nil when the request is valid.
func BindJSON(c *gin.Context, req any) []FieldError {
	registerOnce.Do(registerJSONNames)

	if err := c.ShouldBindJSON(req); err != nil {
		return FromBindError(err)
	}
	if v, ok := req.(Validatable); ok {
		if errs := v.Validate(); len(errs) > 0 {
			return errs
		}
	}
	return nil
}

// FromBindError converts an error from gin's binding into field errors.
func FromBindError(err error) []FieldError {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		out := make([]FieldError, 0, len(ves))
		for _, fe := range ves {
			out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
		}
		return out
	}

	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) && ute.Field != "" {
		return []FieldError{{Field: ute.Field, Message: fmt.Sprintf("must be a %s", ute.Type)}}
	}

	var se *json.SyntaxError
	if errors.As(err, &se) || errors.Is(err, io.ErrUnexpectedEOF) {
		return []FieldError{{Field: "body", Message: "malformed JSON"}}
	}
	if errors.Is(err, io.EOF) {
		return []FieldError{{Field: "body", Message: "request body is required"}}
	}
	return []FieldError{{Field: "body", Message: err.Error()}}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}

// Blank reports whether s is empty after trimming white space.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
