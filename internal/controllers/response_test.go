package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ahmedSabbahMohamed/police-app-v2/internal/repository"
	"github.com/ahmedSabbahMohamed/police-app-v2/internal/services"
)

func TestFailStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "validation issues",
			err:    &services.ValidationError{Issues: []services.FieldIssue{{Field: "id", Message: "is required"}}},
			status: http.StatusBadRequest,
			body:   `{"success":false,"message":"Validation failed","error":"validation failed: id is required","issues":[{"field":"id","message":"is required"}]}`,
		},
		{
			name:   "not found",
			err:    repository.ErrNotFound,
			status: http.StatusNotFound,
			body:   `{"success":false,"error":"record not found"}`,
		},
		{
			name:   "wrapped constraint",
			err:    fmt.Errorf("link: %w", repository.ErrConstraintViolation),
			status: http.StatusConflict,
			body:   `{"success":false,"error":"link: constraint violation"}`,
		},
		{
			name:   "internal",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			body:   `{"success":false,"message":"Internal server error","error":"Something went wrong"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			assert.NoError(t, Options{}.fail(c, tt.err))
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestFailLogsInternalErrors(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	opts := Options{Debug: true, Logger: zap.New(core)}

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/crimes", nil), rec)

	assert.NoError(t, opts.fail(c, errors.New("database is locked")))
	assert.JSONEq(t, `{"success":false,"message":"Internal server error","error":"database is locked"}`, rec.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("unhandled api error").Len())
}

func TestStoreUnavailable(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/search", nil), rec)

	called := false
	h := StoreUnavailable(func(echo.Context) error {
		called = true
		return nil
	})
	assert.NoError(t, h(c))
	assert.False(t, called)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
