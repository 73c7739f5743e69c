package model

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const msgRequired = "is required"

// FieldError names one rejected input field by its JSON name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a single-field ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	// Repositories store strings trimmed, so lengths are checked the same way.
	if err := v.RegisterValidation("trimmin", trimmedLen(func(n, limit int) bool { return n >= limit })); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("trimmax", trimmedLen(func(n, limit int) bool { return n <= limit })); err != nil {
		panic(err)
	}
	return v
}

// trimmedLen compares the rune count of a string field, minus surrounding
// whitespace, against the tag parameter.
func trimmedLen(ok func(n, limit int) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return false
		}
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			panic(fmt.Sprintf("bad %s parameter %q", fl.GetTag(), fl.Param()))
		}
		return ok(utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())), limit)
	}
}

// Validate runs the struct tags on s and converts failures into a
// *ValidationError.  A nil return means s is valid.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fieldPath(fe), Message: message(fe)})
	}
	return out
}

// fieldPath drops the root struct name from the namespace, so nested
// failures read "malzemeListesi[0].malzemeAdi".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return msgRequired
	case "email":
		return "must be a valid email address"
	case "trimmin":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "trimmax":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		case reflect.Slice:
			return fmt.Sprintf("must have at most %s items", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be " + fe.Param() + " or more"
	}
	return "is invalid"
}

// merge folds extra field errors into err, which is nil or a
// *ValidationError.
func merge(err error, extra []FieldError) error {
	if len(extra) == 0 {
		return err
	}
	if err == nil {
		return &ValidationError{Fields: extra}
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	ve.Fields = append(ve.Fields, extra...)
	return ve
}
