package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "f1insights/internal/errors"
	"f1insights/pkg/contracts/domain"
)

// ValidationMiddleware validates analytics selections using struct tags
type ValidationMiddleware struct {
	validator    *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewValidationMiddleware creates a new validation middleware
func NewValidationMiddleware(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ValidationMiddleware {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ValidationMiddleware{
		validator:    v,
		logger:       logger.With(slog.String("component", "validation_middleware")),
		errorHandler: errorHandler,
	}
}

// ValidateStruct validates a struct and returns validation errors
func (m *ValidationMiddleware) ValidateStruct(v interface{}) error {
	err := m.validator.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return apierrors.InvalidRequestWithError(err)
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: m.formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

// ValidateParams checks an analytics selection against its bounds
func (m *ValidationMiddleware) ValidateParams(p domain.AnalyticsParams) error {
	var invalid []apierrors.ValidationError
	for field, v := range map[string]*float64{
		"grid":                &p.Grid,
		"laps":                &p.Laps,
		"milliseconds":        &p.Milliseconds,
		"qualifying_position": &p.QualifyingPosition,
		"stop_seconds":        p.StopSeconds,
	} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			invalid = append(invalid, apierrors.ValidationError{Field: field, Message: field + " must be a finite number"})
		}
	}
	if len(invalid) > 0 {
		return apierrors.NewValidationErrors(invalid)
	}
	return m.ValidateStruct(p)
}

// ParseParams reads an analytics selection from query parameters and
// validates it. Absent parameters stay at zero so the action default applies.
func (m *ValidationMiddleware) ParseParams(query url.Values) (domain.AnalyticsParams, error) {
	var (
		p       domain.AnalyticsParams
		invalid []apierrors.ValidationError
	)

	parseInt := func(field string, dst *int) bool {
		raw := strings.TrimSpace(query.Get(field))
		if raw == "" {
			return false
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			invalid = append(invalid, apierrors.ValidationError{Field: field, Message: field + " must be a valid integer"})
			return false
		}
		*dst = v
		return true
	}
	parseFloat := func(field string, dst *float64) bool {
		raw := strings.TrimSpace(query.Get(field))
		if raw == "" {
			return false
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			invalid = append(invalid, apierrors.ValidationError{Field: field, Message: field + " must be a valid number"})
			return false
		}
		*dst = v
		return true
	}

	parseInt("driver_id", &p.DriverID)
	parseInt("driver_b", &p.DriverB)
	parseInt("constructor_id", &p.ConstructorID)
	parseFloat("grid", &p.Grid)
	parseFloat("laps", &p.Laps)
	parseFloat("milliseconds", &p.Milliseconds)
	parseFloat("qualifying_position", &p.QualifyingPosition)
	parseInt("target_year", &p.TargetYear)
	parseInt("top_n", &p.TopN)

	var stops int
	if parseInt("stops", &stops) {
		p.Stops = &stops
	}
	var stopSeconds float64
	if parseFloat("stop_seconds", &stopSeconds) {
		p.StopSeconds = &stopSeconds
	}

	if len(invalid) > 0 {
		return p, apierrors.NewValidationErrors(invalid)
	}
	return p, m.ValidateStruct(p)
}

// formatValidationError formats validation error messages
func (m *ValidationMiddleware) formatValidationError(err validator.FieldError) string {
	field := err.Field()
	tag := err.Tag()
	param := err.Param()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}

// QueryParamValidator validates query parameters
type QueryParamValidator struct {
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewQueryParamValidator creates a new query parameter validator
func NewQueryParamValidator(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *QueryParamValidator {
	return &QueryParamValidator{
		logger:       logger.With(slog.String("component", "query_validator")),
		errorHandler: errorHandler,
	}
}

// ValidateEnum validates an enum query parameter
func (v *QueryParamValidator) ValidateEnum(w http.ResponseWriter, r *http.Request, param string, allowed []string, defaultValue string) (string, bool) {
	value := strings.ToLower(r.URL.Query().Get(param))
	if value == "" {
		return defaultValue, true
	}

	for _, a := range allowed {
		if value == a {
			return value, true
		}
	}

	v.logger.DebugContext(r.Context(), "rejected query parameter",
		slog.String("param", param),
		slog.String("value", value))
	v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be one of: %s", param, strings.Join(allowed, ", "))))
	return "", false
}
