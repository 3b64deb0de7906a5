package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classpoint/engage-backend/internal/middleware"
	"github.com/classpoint/engage-backend/internal/model"
	"github.com/classpoint/engage-backend/internal/repository"
	"github.com/classpoint/engage-backend/internal/response"
	"github.com/classpoint/engage-backend/internal/service"
	"github.com/classpoint/engage-backend/internal/validator"
)

// AnswerHandler handles student answer submission endpoints.
type AnswerHandler struct {
	answerService *service.AnswerService
}

// NewAnswerHandler creates a new AnswerHandler.
func NewAnswerHandler(answerService *service.AnswerService) *AnswerHandler {
	return &AnswerHandler{answerService: answerService}
}

// SubmitAnswer godoc
// POST /api/v1/answers
// Records the authenticated student's answer to a quiz. One answer per
// student per quiz; a repeat submission is rejected as a conflict.
func (h *AnswerHandler) SubmitAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	submission, answer, err := h.answerService.Submit(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuizNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrQuizNotFound)
		case errors.Is(err, service.ErrAnswerRequired):
			response.Fail(c, http.StatusBadRequest, response.ErrAnswerRequired)
		case errors.Is(err, service.ErrUnsupportedQuizType):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedQuizType)
		case errors.Is(err, service.ErrAnswerRejected):
			response.FailWithFields(c, http.StatusBadRequest, response.ErrAnswerRejected, map[string]string{
				"detail": err.Error(),
			})
		case errors.Is(err, repository.ErrAnswerExists):
			response.Fail(c, http.StatusConflict, response.ErrAnswerSubmitted)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"submission": submission,
		"answer":     answer,
	})
}

// GetMyAnswer godoc
// GET /api/v1/quizzes/:id/my-answer
// Returns the authenticated student's submission and answer for a quiz.
// Both are null when the student has not answered yet; looking never
// creates a submission.
func (h *AnswerHandler) GetMyAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	submission, answer, err := h.answerService.GetAnswer(c.Request.Context(), claims.UserID, quizID)
	if err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrQuizNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"submission": submission,
		"answer":     answer,
	})
}
