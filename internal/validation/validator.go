// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/tomtom215/marquee/internal/models"
)

// CodeValidation is the API error code for rejected request input.
const CodeValidation = "VALIDATION_ERROR"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError describes one rejected field, named by its JSON key.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// Errors is the set of field errors of one request.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e))
	for i := range e {
		msgs[i] = e[i].Message
	}
	return strings.Join(msgs, "; ")
}

// ToAPIError renders the errors as a VALIDATION_ERROR response body. The
// details always carry the field list; a single error also exposes its field
// and tag at the top level.
func (e Errors) ToAPIError() *models.APIError {
	apiErr := &models.APIError{Code: CodeValidation, Message: "Validation failed"}
	switch len(e) {
	case 0:
		return apiErr
	case 1:
		apiErr.Message = e[0].Message
		apiErr.Details = map[string]interface{}{
			"field":  e[0].Field,
			"tag":    e[0].Tag,
			"fields": []FieldError(e),
		}
		return apiErr
	}

	msgs := make([]string, len(e))
	for i := range e {
		msgs[i] = e[i].Field + ": " + e[i].Message
	}
	apiErr.Message = strings.Join(msgs, "; ")
	apiErr.Details = map[string]interface{}{"fields": []FieldError(e)}
	return apiErr
}

// GetValidator returns the shared validator. Fields are reported by JSON name.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			switch name {
			case "-":
				return ""
			case "":
				return fld.Name
			}
			return name
		})

		//nolint:errcheck // tag names are static
		validate.RegisterValidation("idlist", validateIDList)
		//nolint:errcheck // tag names are static
		validate.RegisterValidation("notblank", validators.NotBlank)
	})
	return validate
}

// ValidateStruct validates s and returns nil or the failing fields.
func ValidateStruct(s interface{}) Errors {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{{Field: "request", Tag: "invalid", Message: err.Error()}}
	}

	out := make(Errors, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: message(fe),
		}
	}
	return out
}

// message phrases a field error for API clients.
func message(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "notblank":
		return field + " must not be blank"
	case "idlist":
		return field + " must be a comma-separated list of positive integers"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, param, unit)
	case "max":
		if fe.Kind() == reflect.Slice {
			unit = " items"
		}
		return fmt.Sprintf("%s must be at most %s%s", field, param, unit)
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}

// validateIDList accepts "" or a comma-separated list of positive integers,
// the format of the exclude query parameter.
func validateIDList(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	_, err := ParseIDList(fl.Field().String())
	return err == nil
}

// ParseIDList parses a comma-separated list of positive integers. Blank
// elements are skipped.
func ParseIDList(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
