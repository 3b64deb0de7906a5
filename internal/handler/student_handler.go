package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classpoint/engage-backend/internal/config"
	"github.com/classpoint/engage-backend/internal/model"
	"github.com/classpoint/engage-backend/internal/response"
	"github.com/classpoint/engage-backend/internal/service"
	"github.com/classpoint/engage-backend/internal/validator"
)

// StudentHandler handles class-joining and student directory endpoints.
type StudentHandler struct {
	studentService *service.StudentService
	authService    *service.AuthService
	cfg            *config.Config
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(studentService *service.StudentService, authService *service.AuthService, cfg *config.Config) *StudentHandler {
	return &StudentHandler{
		studentService: studentService,
		authService:    authService,
		cfg:            cfg,
	}
}

// JoinClass godoc
// POST /api/v1/classes/join
// Enrolls a student into the class behind the given code, creating the
// student record on first contact. Returns a bearer token either way;
// joining twice reports the existing enrollment.
func (h *StudentHandler) JoinClass(c *gin.Context) {
	var req model.JoinClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.studentService.JoinClass(c.Request.Context(), req.FullName, req.Email, req.ClassCode)
	if err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrClassNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	token, err := h.authService.GenerateStudentToken(c.Request.Context(), result.Student.ID, result.Class.ID, result.Enrollment.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	message := "Joined class."
	status := http.StatusCreated
	if result.AlreadyEnrolled {
		message = "Already enrolled in this class."
		status = http.StatusOK
	}

	response.Success(c, status, model.JoinClassResponse{
		Message:      message,
		StudentID:    result.Student.ID,
		ClassID:      result.Class.ID,
		EnrollmentID: result.Enrollment.ID,
		AccessToken:  token,
		TokenType:    "Bearer",
		ExpiresIn:    int(h.cfg.JWTExpiry.Seconds()),
	})
}

// ListStudents godoc
// GET /api/v1/students
// Teacher-facing roster of all registered students.
func (h *StudentHandler) ListStudents(c *gin.Context) {
	students, err := h.studentService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"students": students})
}
