package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/classpoint/engage-backend/internal/middleware"
	"github.com/classpoint/engage-backend/internal/model"
	"github.com/classpoint/engage-backend/internal/response"
	"github.com/classpoint/engage-backend/internal/service"
	"github.com/classpoint/engage-backend/internal/validator"
)

// QuizHandler handles quiz authoring and listing endpoints.
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// CreateQuiz godoc
// POST /api/v1/quizzes
// Creates a quiz. Passing a multi_question_id attaches it as one question
// of a multi-quiz at the given question_order.
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req model.CreateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"quiz": quiz})
}

// GetQuiz godoc
// GET /api/v1/quizzes/:id
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quiz, ok := h.loadQuiz(c)
	if !ok {
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// UpdateQuiz godoc
// PATCH /api/v1/quizzes/:id
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	quiz, ok := h.loadQuiz(c)
	if !ok {
		return
	}

	var req model.UpdateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.quizService.Update(c.Request.Context(), quiz, &req); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// DeleteQuiz godoc
// DELETE /api/v1/quizzes/:id
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	quiz, ok := h.loadQuiz(c)
	if !ok {
		return
	}

	if err := h.quizService.Delete(c.Request.Context(), quiz.ID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ListClassQuizzes godoc
// GET /api/v1/classes/:id/quizzes?view=all|standalone|multi
// Lists a class's quizzes. The multi view groups questions by multi-quiz
// in explicit order.
//
// A student token is scoped to the class it was issued for: the join flow
// stamps the class ID into the claims, and a student asking for any other
// class's quizzes gets a 403. Identity-login tokens carry no class and are
// rejected here too; the student has to join first. Teacher tokens see every
// class.
func (h *QuizHandler) ListClassQuizzes(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	claims := middleware.GetClaims(c)
	if claims != nil && claims.TokenType == service.TokenTypeStudent && claims.ClassID != classID {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	ctx := c.Request.Context()
	switch c.DefaultQuery("view", "all") {
	case "all":
		quizzes, err := h.quizService.ListForClass(ctx, classID)
		if err != nil {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"quizzes": quizzes})
	case "standalone":
		quizzes, err := h.quizService.ListStandaloneForClass(ctx, classID)
		if err != nil {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"quizzes": quizzes})
	case "multi":
		groups, err := h.quizService.ListMultiQuizzes(ctx, classID)
		if err != nil {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"multi_quizzes": groups})
	default:
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"view": "view must be all, standalone or multi",
		})
	}
}

// GetMultiQuiz godoc
// GET /api/v1/multi-quizzes/:id
// Returns the questions of one multi-quiz in their question order.
func (h *QuizHandler) GetMultiQuiz(c *gin.Context) {
	multiID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	questions, err := h.quizService.GetMultiQuiz(c.Request.Context(), multiID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if len(questions) == 0 {
		response.Fail(c, http.StatusNotFound, response.ErrQuizNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"multi_question_id": multiID,
		"questions":         questions,
	})
}

// ListSubmissions godoc
// GET /api/v1/quizzes/:id/submissions
// Teacher-facing list of a quiz's submissions with student names and scores.
func (h *QuizHandler) ListSubmissions(c *gin.Context) {
	quiz, ok := h.loadQuiz(c)
	if !ok {
		return
	}

	submissions, err := h.quizService.ListSubmissions(c.Request.Context(), quiz.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submissions": submissions})
}

func (h *QuizHandler) loadQuiz(c *gin.Context) (*model.Quiz, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, false
	}

	quiz, err := h.quizService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrQuizNotFound)
			return nil, false
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return nil, false
	}

	return quiz, true
}
