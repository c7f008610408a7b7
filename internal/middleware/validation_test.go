package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "f1insights/internal/errors"
	"f1insights/internal/shared/testutil"
	"f1insights/pkg/contracts/domain"
)

func newValidator(t *testing.T) *ValidationMiddleware {
	logger, _ := testutil.NewTestLogger(t)
	return NewValidationMiddleware(logger, apierrors.NewErrorHandler(logger, false))
}

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	details, ok := apiErr.Details.(apierrors.ValidationErrors)
	require.True(t, ok)

	fields := make(map[string]string)
	for _, e := range details.Errors {
		fields[e.Field] = e.Message
	}
	return fields
}

func TestParseParams(t *testing.T) {
	v := newValidator(t)

	p, err := v.ParseParams(url.Values{
		"driver_id":    {"44"},
		"grid":         {"3"},
		"stops":        {"0"},
		"stop_seconds": {"21.5"},
		"target_year":  {"2026"},
	})
	require.NoError(t, err)

	assert.Equal(t, 44, p.DriverID)
	assert.Equal(t, 3.0, p.Grid)
	require.NotNil(t, p.Stops)
	assert.Equal(t, 0, *p.Stops)
	require.NotNil(t, p.StopSeconds)
	assert.Equal(t, 21.5, *p.StopSeconds)
	assert.Equal(t, 2026, p.TargetYear)
	assert.Zero(t, p.TopN)
}

func TestParseParamsEmpty(t *testing.T) {
	p, err := newValidator(t).ParseParams(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, domain.AnalyticsParams{}, p)
}

func TestParseParamsRejectsMalformed(t *testing.T) {
	_, err := newValidator(t).ParseParams(url.Values{
		"driver_id":    {"lewis"},
		"milliseconds": {"NaN"},
	})

	fields := validationFields(t, err)
	assert.Equal(t, "driver_id must be a valid integer", fields["driver_id"])
	assert.Equal(t, "milliseconds must be a valid number", fields["milliseconds"])
}

func TestParseParamsRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name    string
		query   url.Values
		field   string
		message string
	}{
		{name: "grid above 20", query: url.Values{"grid": {"21"}}, field: "grid", message: "grid must be at most 20"},
		{name: "laps below 30", query: url.Values{"laps": {"12"}}, field: "laps", message: "laps must be at least 30"},
		{name: "negative driver", query: url.Values{"driver_id": {"-1"}}, field: "driver_id", message: "driver_id must be at least 1"},
		{name: "too many stops", query: url.Values{"stops": {"11"}}, field: "stops", message: "stops must be at most 10"},
		{name: "target year", query: url.Values{"target_year": {"1900"}}, field: "target_year", message: "target_year must be at least 1950"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newValidator(t).ParseParams(tt.query)
			assert.Equal(t, tt.message, validationFields(t, err)[tt.field])
		})
	}
}

func TestValidateParams(t *testing.T) {
	v := newValidator(t)

	assert.NoError(t, v.ValidateParams(domain.AnalyticsParams{Grid: 5, TopN: 10}))

	fields := validationFields(t, v.ValidateParams(domain.AnalyticsParams{TopN: 501}))
	assert.Contains(t, fields, "top_n")
}

func TestValidateEnum(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	qv := NewQueryParamValidator(logger, apierrors.NewErrorHandler(logger, false))
	allowed := []string{"xlsx", "csv"}

	r := httptest.NewRequest(http.MethodGet, "/export?format=CSV", nil)
	got, ok := qv.ValidateEnum(httptest.NewRecorder(), r, "format", allowed, "xlsx")
	assert.True(t, ok)
	assert.Equal(t, "csv", got)

	r = httptest.NewRequest(http.MethodGet, "/export", nil)
	got, ok = qv.ValidateEnum(httptest.NewRecorder(), r, "format", allowed, "xlsx")
	assert.True(t, ok)
	assert.Equal(t, "xlsx", got)

	w := httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/export?format=pdf", nil)
	_, ok = qv.ValidateEnum(w, r, "format", allowed, "xlsx")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
