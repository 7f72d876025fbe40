package common

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	validator "github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared struct validator. Field names in errors use json tags.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		validate = v
	})
	return validate
}

// ErrInvalidPayload is returned when a request body cannot be decoded.
var ErrInvalidPayload = NewAppError(KindInvalidArgument, "BAD_REQUEST", "invalid payload", nil)

// DecodeJSON decodes the request body into dst and validates it.
// Validation failures carry a field → rule map in Details.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrInvalidPayload.WithCause(errors.New("empty body"))
		}
		return ErrInvalidPayload.WithCause(err)
	}
	return ValidateStruct(dst)
}

// ValidateStruct runs the shared validator over v.
func ValidateStruct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ErrInvalidPayload.WithCause(err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	appErr := NewAppError(KindInvalidArgument, "VALIDATION_FAILED", "request validation failed", err)
	appErr.Details = map[string]any{"fields": fields}
	return appErr
}
