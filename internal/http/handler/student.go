// Package handler provides HTTP handler functions for the Roster API.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/roguepikachu/roster/internal/domain"
	"github.com/roguepikachu/roster/pkg/logger"
)

// StudentService defines the handler's dependency contract.
type StudentService interface {
	ListStudents(ctx context.Context) ([]domain.Student, error)
	GetStudent(ctx context.Context, id int) (domain.Lookup, error)
	CreateStudent(ctx context.Context, s domain.Student) (domain.Student, error)
	UpdateStudent(ctx context.Context, id int, patch domain.StudentPatch) (domain.Lookup, error)
	DeleteStudent(ctx context.Context, id int) (domain.Lookup, error)
}

// Handler handles HTTP requests for students.
type Handler struct {
	svc  StudentService
	errs *ErrorTranslator
}

// NewHandler constructs a Handler with the given StudentService and ErrorTranslator.
func NewHandler(svc StudentService, errs *ErrorTranslator) *Handler {
	useJSONFieldNames()
	return &Handler{svc: svc, errs: errs}
}

// List handles listing all students in insertion order.
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	items, err := h.svc.ListStudents(ctx)
	if err != nil {
		h.errs.Error(c, err)
		return
	}
	logger.With(ctx, map[string]any{"count": len(items)}).Debug("students listed")
	out := make([]domain.Student, 0, len(items))
	for _, s := range items {
		out = append(out, normalize(s))
	}
	c.JSON(http.StatusOK, out)
}

// Get handles fetching a student by ID.
func (h *Handler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	l, err := h.svc.GetStudent(ctx, id)
	if err != nil {
		h.errs.Error(c, err)
		return
	}
	s, found := l.Student()
	if !found {
		h.errs.NotFound(c, l.ID())
		return
	}
	logger.With(ctx, map[string]any{"id": id}).Debug("student retrieved")
	c.JSON(http.StatusOK, normalize(s))
}

// Create handles the creation of a new student.
func (h *Handler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	var req domain.CreateStudentRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(ctx, "invalid create payload: %s", err.Error())
		h.errs.BadRequest(c, describeBindError(err))
		return
	}
	s, err := h.svc.CreateStudent(ctx, req.ToStudent())
	if err != nil {
		h.errs.Error(c, err)
		return
	}
	logger.With(ctx, map[string]any{"id": s.ID}).Info("student created")
	c.JSON(http.StatusCreated, normalize(s))
}

// Update merges the provided fields into an existing student.
func (h *Handler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req domain.UpdateStudentRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(ctx, "invalid update payload: %s", err.Error())
		h.errs.BadRequest(c, describeBindError(err))
		return
	}
	l, err := h.svc.UpdateStudent(ctx, id, req.ToPatch())
	if err != nil {
		h.errs.Error(c, err)
		return
	}
	s, found := l.Student()
	if !found {
		h.errs.NotFound(c, l.ID())
		return
	}
	logger.With(ctx, map[string]any{"id": id}).Info("student updated")
	c.JSON(http.StatusOK, normalize(s))
}

// Delete removes a student. Absent ids answer 404, so a repeated delete is 404.
func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	l, err := h.svc.DeleteStudent(ctx, id)
	if err != nil {
		h.errs.Error(c, err)
		return
	}
	if !l.IsFound() {
		h.errs.NotFound(c, l.ID())
		return
	}
	logger.With(ctx, map[string]any{"id": id}).Info("student deleted")
	c.Status(http.StatusNoContent)
}

// pathID parses the :id parameter, writing a 400 when it is not an integer.
func (h *Handler) pathID(c *gin.Context) (int, bool) {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		h.errs.BadRequest(c, "invalid student id - "+raw)
		return 0, false
	}
	return id, true
}

// normalize guarantees languages serialize as [] rather than null.
func normalize(s domain.Student) domain.Student {
	if s.Languages == nil {
		s.Languages = []string{}
	}
	return s
}
