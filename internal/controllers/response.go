package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ahmedSabbahMohamed/police-app-v2/internal/services"
)

// Envelope is the body of every /api response.
type Envelope struct {
	Success bool                  `json:"success"`
	Data    interface{}           `json:"data,omitempty"`
	Message string                `json:"message,omitempty"`
	Error   string                `json:"error,omitempty"`
	Issues  []services.FieldIssue `json:"issues,omitempty"`
}

// Options are shared by the controllers.
type Options struct {
	// Debug exposes the underlying message of internal errors.
	Debug  bool
	Logger *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func ok(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Envelope{Success: true, Data: data})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, Envelope{Success: false, Error: msg})
}

// fail maps an engine error to its status code and envelope.
func (o Options) fail(c echo.Context, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, Envelope{
			Success: false,
			Message: "Validation failed",
			Error:   verr.Error(),
			Issues:  verr.Issues,
		})
	case errors.Is(err, services.ErrNotFound):
		return c.JSON(http.StatusNotFound, Envelope{Success: false, Error: err.Error()})
	case errors.Is(err, services.ErrConstraintViolation):
		o.logger().Warn("constraint violation", zap.String("path", c.Path()), zap.Error(err))
		return c.JSON(http.StatusConflict, Envelope{Success: false, Error: err.Error()})
	}

	o.logger().Error("unhandled api error",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	detail := "Something went wrong"
	if o.Debug {
		detail = err.Error()
	}
	return c.JSON(http.StatusInternalServerError, Envelope{
		Success: false,
		Message: "Internal server error",
		Error:   detail,
	})
}

// StoreUnavailable answers every request with 503. It stands in for the data
// routes when the process runs without a database.
func StoreUnavailable(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusServiceUnavailable, Envelope{
			Success: false,
			Error:   "Database is not initialised",
		})
	}
}
