package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/classpoint/engage-backend/internal/middleware"
	"github.com/classpoint/engage-backend/internal/model"
	"github.com/classpoint/engage-backend/internal/response"
	"github.com/classpoint/engage-backend/internal/service"
	"github.com/classpoint/engage-backend/internal/validator"
)

// ClassHandler handles teacher-facing class management endpoints.
type ClassHandler struct {
	classService *service.ClassService
}

// NewClassHandler creates a new ClassHandler.
func NewClassHandler(classService *service.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

// CreateClass godoc
// POST /api/v1/classes
// Creates a class with a generated share code, owned by the caller.
func (h *ClassHandler) CreateClass(c *gin.Context) {
	var req model.CreateClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	class, err := h.classService.Create(c.Request.Context(), req.Name, claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"class": class})
}

// ListClasses godoc
// GET /api/v1/classes
// Lists the caller's classes, newest first.
func (h *ClassHandler) ListClasses(c *gin.Context) {
	claims := middleware.GetClaims(c)
	classes, err := h.classService.ListByTeacher(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"classes": classes})
}

// GetClass godoc
// GET /api/v1/classes/:id
func (h *ClassHandler) GetClass(c *gin.Context) {
	class, ok := h.loadOwnClass(c)
	if !ok {
		return
	}

	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// UpdateClass godoc
// PATCH /api/v1/classes/:id
// Renames a class or toggles whether it accepts joins.
func (h *ClassHandler) UpdateClass(c *gin.Context) {
	class, ok := h.loadOwnClass(c)
	if !ok {
		return
	}

	var req model.UpdateClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if req.Name != "" {
		class.Name = req.Name
	}
	if req.Active != nil {
		class.Active = *req.Active
	}

	if err := h.classService.Update(c.Request.Context(), class); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// loadOwnClass resolves the :id param to a class owned by the caller. On
// failure it writes the error response and returns ok=false.
func (h *ClassHandler) loadOwnClass(c *gin.Context) (*model.Class, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, false
	}

	class, err := h.classService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return nil, false
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return nil, false
	}

	claims := middleware.GetClaims(c)
	if class.TeacherID == nil || *class.TeacherID != claims.UserID {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return nil, false
	}

	return class, true
}
