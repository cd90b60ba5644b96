package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/certprep/internal/controller"
	"github.com/lshigami/certprep/internal/dto"
	"github.com/lshigami/certprep/internal/service"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func sessionIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("session_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid session ID format"})
		return 0, false
	}
	return uint(id), true
}

// StartSessionHandler godoc
// @Summary Start an adaptive practice session
// @Description Open a practice sitting for a certification; questions are then fetched one at a time
// @Tags sessions
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller identity (UUID)"
// @Param session body dto.StartSessionRequest true "Certification to practice"
// @Success 201 {object} dto.SessionDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "Certification not found"
// @Router /exam/sessions [post]
func (ctrl *Controller) StartSessionHandler(c *gin.Context) {
	var req dto.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}

	session, err := ctrl.sessionSvc.StartPractice(controller.CurrentUserID(c), req.CertificationCode)
	if err != nil {
		log.Error().Err(err).Str("cert", req.CertificationCode).Msg("Failed to start practice session")
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, session)
}

// NextQuestionHandler godoc
// @Summary Get the next adaptive question
// @Description Serve the next question for the session, biased toward weak domains near the user's level
// @Tags sessions
// @Produce json
// @Param X-User-ID header string true "Caller identity (UUID)"
// @Param session_id path int true "Session ID"
// @Success 200 {object} dto.ServedQuestionDTO
// @Failure 404 {object} dto.ErrorResponse "Session unknown or question pool exhausted"
// @Failure 409 {object} dto.ErrorResponse "Session is no longer active"
// @Router /exam/sessions/{session_id}/next-question [post]
func (ctrl *Controller) NextQuestionHandler(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	question, err := ctrl.sessionSvc.NextQuestion(controller.CurrentUserID(c), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotActive):
			c.JSON(http.StatusConflict, dto.ErrorResponse{Message: "Session is not active"})
		case errors.Is(err, service.ErrNoCandidate):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "No more questions available for this session"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Session not found"})
		default:
			log.Error().Err(err).Uint("sessionID", sessionID).Msg("Failed to select next question")
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to select next question"})
		}
		return
	}
	c.JSON(http.StatusOK, question)
}

// SubmitAnswerHandler godoc
// @Summary Submit a practice answer
// @Description Grade one answer, move the ratings and return immediate feedback
// @Tags sessions
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller identity (UUID)"
// @Param session_id path int true "Session ID"
// @Param answer body dto.SubmitAnswerRequest true "Answer"
// @Success 200 {object} dto.AnswerFeedbackDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid body or answer index"
// @Failure 404 {object} dto.ErrorResponse "Session or question not found"
// @Failure 409 {object} dto.ErrorResponse "Session ended or concurrent submission"
// @Router /exam/sessions/{session_id}/answers [post]
func (ctrl *Controller) SubmitAnswerHandler(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	var req dto.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}

	feedback, err := ctrl.sessionSvc.SubmitAnswer(controller.CurrentUserID(c), sessionID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAnswerIndex):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Selected answer index is out of bounds"})
		case errors.Is(err, service.ErrSessionNotActive):
			c.JSON(http.StatusConflict, dto.ErrorResponse{Message: "Session is not active"})
		case errors.Is(err, service.ErrConcurrentModification):
			c.JSON(http.StatusConflict, dto.ErrorResponse{Message: "Conflicting submission, please retry"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Session or question not found"})
		default:
			log.Error().Err(err).Uint("sessionID", sessionID).Msg("Failed to submit answer")
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to submit answer"})
		}
		return
	}
	c.JSON(http.StatusOK, feedback)
}

// EndSessionHandler godoc
// @Summary End a practice session
// @Description Close the sitting and freeze its summary; ending twice is a no-op
// @Tags sessions
// @Produce json
// @Param X-User-ID header string true "Caller identity (UUID)"
// @Param session_id path int true "Session ID"
// @Success 200 {object} dto.SessionDTO
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /exam/sessions/{session_id}/end [post]
func (ctrl *Controller) EndSessionHandler(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	session, err := ctrl.sessionSvc.EndSession(controller.CurrentUserID(c), sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Session not found"})
			return
		}
		log.Error().Err(err).Uint("sessionID", sessionID).Msg("Failed to end session")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to end session"})
		return
	}
	c.JSON(http.StatusOK, session)
}
