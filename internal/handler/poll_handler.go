package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classpoint/engage-backend/internal/middleware"
	"github.com/classpoint/engage-backend/internal/model"
	"github.com/classpoint/engage-backend/internal/repository"
	"github.com/classpoint/engage-backend/internal/response"
	"github.com/classpoint/engage-backend/internal/service"
	"github.com/classpoint/engage-backend/internal/validator"
)

// PollHandler handles quick-poll endpoints.
type PollHandler struct {
	pollService *service.PollService
}

// NewPollHandler creates a new PollHandler.
func NewPollHandler(pollService *service.PollService) *PollHandler {
	return &PollHandler{pollService: pollService}
}

// CreatePoll godoc
// POST /api/v1/quickpolls
// Creates a poll with a fresh 4-digit code and its default options.
// Works with or without a teacher token; authenticated creators are recorded.
func (h *PollHandler) CreatePoll(c *gin.Context) {
	var req model.CreatePollRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	var creatorID *int
	if claims := middleware.GetClaims(c); claims != nil && claims.TokenType == service.TokenTypeTeacher {
		creatorID = &claims.UserID
	}

	poll, options, err := h.pollService.Create(c.Request.Context(), req.Name, model.PollQuestionType(req.QuestionType), req.OptionCount, creatorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownQuestionType), errors.Is(err, service.ErrInvalidOptionCount):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"poll":    poll,
		"options": options,
	})
}

// GetPollDetails godoc
// GET /api/v1/quickpolls/:code
// Student-facing view of an active poll: name, type and options without
// vote counts.
func (h *PollHandler) GetPollDetails(c *gin.Context) {
	details, err := h.pollService.GetPollDetails(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrPollNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrPollNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, details)
}

// SubmitVote godoc
// POST /api/v1/quickpolls/:code/vote
// Casts one vote for a registered student. Every admission failure maps to
// its own status so clients can react precisely.
func (h *PollHandler) SubmitVote(c *gin.Context) {
	var req model.SubmitVoteRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	err := h.pollService.SubmitVote(c.Request.Context(), c.Param("code"), req.OptionID, req.StudentName, req.StudentEmail)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPollNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrPollNotFound)
		case errors.Is(err, service.ErrPollClosed):
			response.Fail(c, http.StatusGone, response.ErrPollClosed)
		case errors.Is(err, service.ErrInvalidOption):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidOption)
		case errors.Is(err, service.ErrStudentNotRegistered):
			response.Fail(c, http.StatusForbidden, response.ErrStudentNotRegistered)
		case errors.Is(err, repository.ErrDuplicateVote):
			response.Fail(c, http.StatusConflict, response.ErrDuplicateVote)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Vote recorded."})
}

// GetPollResults godoc
// GET /api/v1/quickpolls/:code/results
// Full tally for one poll, including voter names per option. Available for
// active and closed polls alike.
func (h *PollHandler) GetPollResults(c *gin.Context) {
	results, err := h.pollService.GetResults(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrPollNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrPollNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, results)
}

// SearchPollResults godoc
// GET /api/v1/quickpolls?name=...&match=exact|partial
// Finds polls by name and returns each one's tally, newest first. A name
// with no matches yields an empty list, not an error.
func (h *PollHandler) SearchPollResults(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"name": "name query parameter is required",
		})
		return
	}

	match := c.DefaultQuery("match", "partial")
	if match != "exact" && match != "partial" {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"match": "match must be exact or partial",
		})
		return
	}

	results, err := h.pollService.GetResultsByName(c.Request.Context(), name, match == "exact")
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"polls": results})
}

// ClosePoll godoc
// POST /api/v1/quickpolls/:code/close
// Ends voting on a poll. Closing an already-closed poll succeeds without
// effect; results remain readable afterwards.
func (h *PollHandler) ClosePoll(c *gin.Context) {
	if err := h.pollService.Close(c.Request.Context(), c.Param("code")); err != nil {
		if errors.Is(err, service.ErrPollNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrPollNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Poll closed."})
}
