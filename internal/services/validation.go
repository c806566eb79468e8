package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ahmedSabbahMohamed/police-app-v2/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report JSON names, which is what the front-end sends
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the validation tags of a request struct and returns a
// *ValidationError listing every failing field.
func Validate(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	issues := make([]FieldIssue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, FieldIssue{Field: fieldPath(fe.Namespace()), Message: issueMessage(fe)})
	}
	return &ValidationError{Issues: issues}
}

// fieldPath drops the Go type name that prefixes a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed the %q rule", fe.Tag())
	}
}

// validateCreate runs the tag rules plus the cross-entry rule that a national
// id appears once per request.
func validateCreate(req models.CreateCrimeRequest) error {
	if err := Validate(req); err != nil {
		return err
	}
	first := make(map[string]int, len(req.Criminals))
	var issues []FieldIssue
	for i, c := range req.Criminals {
		if j, ok := first[c.NationalID]; ok {
			issues = append(issues, FieldIssue{
				Field:   fmt.Sprintf("criminals[%d].nationalId", i),
				Message: fmt.Sprintf("duplicates criminals[%d].nationalId", j),
			})
			continue
		}
		first[c.NationalID] = i
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
