// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/carmatch/internal/recommend"
)

// ErrorCode is the API error code for request validation failures.
const ErrorCode = "VALIDATION_FAILED"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one failed rule on one request field.
type FieldError struct {
	field   string
	tag     string
	param   string
	value   any
	message string
}

// Field returns the JSON name of the offending field, e.g. "weights[speed]".
func (e *FieldError) Field() string { return e.field }

// Tag returns the rule that failed.
func (e *FieldError) Tag() string { return e.tag }

// Param returns the rule parameter ("50" for max=50).
func (e *FieldError) Param() string { return e.param }

// Value returns the rejected value.
func (e *FieldError) Value() any { return e.value }

func (e *FieldError) Error() string { return e.message }

// RequestValidationError collects every failed rule of one request.
type RequestValidationError struct {
	errors []FieldError
}

// NewFieldError builds a single-field validation error for checks the
// struct tags cannot express, such as a query parameter that is not a number.
func NewFieldError(field, tag, message string, value any) *RequestValidationError {
	return &RequestValidationError{errors: []FieldError{{
		field:   field,
		tag:     tag,
		value:   value,
		message: message,
	}}}
}

// Errors returns the individual field errors.
func (ve *RequestValidationError) Errors() []FieldError {
	return ve.errors
}

func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.errors))
	for i := range ve.errors {
		messages[i] = ve.errors[i].message
	}
	return strings.Join(messages, "; ")
}

// APIError is the error shape handed to the HTTP layer.
type APIError struct {
	Code    string
	Message string
	Details map[string]any
}

// ToAPIError converts the collected errors into a VALIDATION_FAILED error
// whose details list every field.
func (ve *RequestValidationError) ToAPIError() *APIError {
	if len(ve.errors) == 0 {
		return &APIError{Code: ErrorCode, Message: "Validation failed"}
	}

	fields := make([]map[string]any, len(ve.errors))
	for i := range ve.errors {
		e := &ve.errors[i]
		fields[i] = map[string]any{
			"field":   e.field,
			"tag":     e.tag,
			"message": e.message,
		}
	}

	return &APIError{
		Code:    ErrorCode,
		Message: ve.Error(),
		Details: map[string]any{"fields": fields},
	}
}

// FromRecommend adapts an engine-side validation error.
func FromRecommend(err *recommend.ValidationError) *RequestValidationError {
	return NewFieldError(err.Field, "invalid", err.Field+" "+err.Message, nil)
}

// GetValidator returns the process-wide validator, initializing it once.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			switch name {
			case "-":
				return ""
			case "":
				return fld.Name
			}
			return name
		})

		// Registration only fails for an empty tag or nil func.
		_ = v.RegisterValidation("criterion", func(fl validator.FieldLevel) bool {
			return recommend.IsCriterion(fl.Field().String())
		})

		validate = v
	})
	return validate
}

// ValidateStruct validates s and returns nil or the collected field errors.
func ValidateStruct(s any) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return NewFieldError("unknown", "unknown", err.Error(), nil)
	}

	fieldErrors := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		fieldErrors[i] = FieldError{
			field:   fe.Field(),
			tag:     fe.Tag(),
			param:   fe.Param(),
			value:   fe.Value(),
			message: translateError(fe),
		}
	}
	return &RequestValidationError{errors: fieldErrors}
}

var messageTemplates = map[string]string{
	"required":  "%s is required",
	"criterion": "%s is not a known criterion",
}

var messageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
}

func translateError(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()

	if tmpl, ok := messageTemplates[tag]; ok {
		return fmt.Sprintf(tmpl, field)
	}
	if tmpl, ok := messageWithParam[tag]; ok {
		return fmt.Sprintf(tmpl, field, param)
	}

	unit := ""
	switch fe.Kind() {
	case reflect.String:
		unit = " characters"
	case reflect.Slice, reflect.Map:
		unit = " items"
	}

	switch tag {
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, param, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, param, unit)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
