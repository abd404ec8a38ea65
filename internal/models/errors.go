package models

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a data validation error in dataset rows
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PredictionErrorKind classifies why a prediction request did not succeed
type PredictionErrorKind string

const (
	KindRouteUnsupported     PredictionErrorKind = "route_unsupported"
	KindCategoryUnrecognized PredictionErrorKind = "category_unrecognized"
	KindMalformedInput       PredictionErrorKind = "malformed_input"
	KindInferenceFailure     PredictionErrorKind = "inference_failure"
)

// PredictionError is the failure outcome of a prediction request.
// Message is the user-facing text rendered on the form page.
type PredictionError struct {
	Kind    PredictionErrorKind
	Field   string
	Value   string
	Message string
	Err     error
}

func (e *PredictionError) Error() string {
	return e.Message
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}


// NewRouteUnsupported builds the error for a route missing from the duration table
func NewRouteUnsupported(route string, supported []string) *PredictionError {
	return &PredictionError{
		Kind:    KindRouteUnsupported,
		Field:   FieldRoute,
		Value:   route,
		Message: fmt.Sprintf("⚠️ Maaf, rute %s belum didukung. Rute tersedia: %s", route, strings.Join(supported, ", ")),
	}
}

// NewCategoryUnrecognized builds the error for a label unknown to an encoder.
// field is one of FieldAirline, FieldRoute or FieldWeatherDescription.
func NewCategoryUnrecognized(field, value string, cause error) *PredictionError {
	var msg string
	switch field {
	case FieldAirline:
		msg = fmt.Sprintf("⚠️ Maaf, maskapai %s belum dikenali.", value)
	case FieldRoute:
		msg = fmt.Sprintf("⚠️ Maaf, rute %s belum dikenali oleh encoder.", value)
	case FieldWeatherDescription:
		msg = fmt.Sprintf("⚠️ Maaf, deskripsi cuaca '%s' belum dikenali.", value)
	default:
		msg = fmt.Sprintf("⚠️ Maaf, %s '%s' belum dikenali.", field, value)
	}

	return &PredictionError{
		Kind:    KindCategoryUnrecognized,
		Field:   field,
		Value:   value,
		Message: msg,
		Err:     cause,
	}
}

// NewMalformedInput builds the error for a field that failed to parse
func NewMalformedInput(field, value string, cause error) *PredictionError {
	return &PredictionError{
		Kind:    KindMalformedInput,
		Field:   field,
		Value:   value,
		Message: GenericErrorMessage(fmt.Errorf("nilai %s tidak valid: %q", field, value)),
		Err:     cause,
	}
}

// NewInferenceFailure wraps a model-side failure
func NewInferenceFailure(cause error) *PredictionError {
	return &PredictionError{
		Kind:    KindInferenceFailure,
		Message: GenericErrorMessage(cause),
		Err:     cause,
	}
}

// GenericErrorMessage renders any unexpected error for the form page
func GenericErrorMessage(err error) string {
	return fmt.Sprintf("⚠️ Terjadi kesalahan: %v", err)
}

// AsPredictionError extracts a *PredictionError from err's chain
func AsPredictionError(err error) (*PredictionError, bool) {
	var pe *PredictionError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
