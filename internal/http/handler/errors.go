package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roguepikachu/roster/internal/domain"
	"github.com/roguepikachu/roster/internal/service"
	"github.com/roguepikachu/roster/pkg"
	"github.com/roguepikachu/roster/pkg/logger"
)

const internalErrorMessage = "internal server error"

// ErrorTranslator turns lookup misses, validation failures and faults into
// the client-facing error body. Fault details are logged, never returned.
type ErrorTranslator struct {
	clock service.Clock
}

// NewErrorTranslator creates an ErrorTranslator stamping errors with clock.
func NewErrorTranslator(clock service.Clock) *ErrorTranslator {
	if clock == nil {
		clock = service.RealClock{}
	}
	return &ErrorTranslator{clock: clock}
}

// NotFound writes 404 for a student id that resolved to nothing.
func (t *ErrorTranslator) NotFound(c *gin.Context, id int) {
	t.write(c, http.StatusNotFound, fmt.Sprintf("Student id not found - %d", id))
}

// BadRequest writes 400 with message.
func (t *ErrorTranslator) BadRequest(c *gin.Context, message string) {
	t.write(c, http.StatusBadRequest, message)
}

// Error writes 400 for validation errors and a generic 500 for anything else.
func (t *ErrorTranslator) Error(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrValidation) {
		t.BadRequest(c, err.Error())
		return
	}
	logger.Error(c.Request.Context(), "unhandled fault: %v", err)
	_ = c.Error(err)
	t.write(c, http.StatusInternalServerError, internalErrorMessage)
}

// RouteNotFound writes 404 for paths no route matches.
func (t *ErrorTranslator) RouteNotFound(c *gin.Context) {
	t.write(c, http.StatusNotFound, fmt.Sprintf("no route for %s %s", c.Request.Method, c.Request.URL.Path))
}

// MethodNotAllowed writes 405 for known paths used with the wrong method.
func (t *ErrorTranslator) MethodNotAllowed(c *gin.Context) {
	t.write(c, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", c.Request.Method))
}

// Now exposes the translator clock for middleware that builds the same body.
func (t *ErrorTranslator) Now() int64 { return t.clock.Now().UnixMilli() }

func (t *ErrorTranslator) write(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, pkg.NewErrorResponse(status, message, t.Now()))
}
