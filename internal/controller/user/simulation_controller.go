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

// StartSimulationHandler godoc
// @Summary Start a timed exam simulation
// @Description Draw a full weighted question set and start the clock
// @Tags simulations
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller identity (UUID)"
// @Param simulation body dto.StartSimulationRequest true "Certification to simulate"
// @Success 201 {object} dto.SimulationDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "Certification not found or question pool empty"
// @Router /simulate/start [post]
func (ctrl *Controller) StartSimulationHandler(c *gin.Context) {
	var req dto.StartSimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}

	sim, err := ctrl.simSvc.Start(controller.CurrentUserID(c), req.CertificationCode)
	if err != nil {
		if errors.Is(err, service.ErrNoCandidate) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Not enough questions to build a simulation"})
			return
		}
		log.Error().Err(err).Str("cert", req.CertificationCode).Msg("Failed to start simulation")
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sim)
}

// SubmitSimAnswerHandler godoc
// @Summary Submit a simulation answer
// @Description Record one answer; feedback is withheld until the simulation completes
// @Tags simulations
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller identity (UUID)"
// @Param answer body dto.SubmitSimAnswerRequest true "Answer"
// @Success 204 "No Content"
// @Failure 400 {object} dto.ErrorResponse "Invalid body, repeated answer or foreign question"
// @Failure 409 {object} dto.ErrorResponse "Simulation ended or time expired"
// @Router /simulate/answer [post]
func (ctrl *Controller) SubmitSimAnswerHandler(c *gin.Context) {
	var req dto.SubmitSimAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}

	err := ctrl.simSvc.SubmitAnswer(controller.CurrentUserID(c), req.SessionID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotActive):
			c.JSON(http.StatusConflict, dto.ErrorResponse{Message: "Simulation is not active"})
		case errors.Is(err, service.ErrInvalidAnswerIndex):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Selected answer index is out of bounds"})
		case errors.Is(err, service.ErrConcurrentModification):
			c.JSON(http.StatusConflict, dto.ErrorResponse{Message: "Conflicting submission, please retry"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Simulation not found"})
		default:
			log.Error().Err(err).Uint("sessionID", req.SessionID).Msg("Failed to record simulation answer")
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// CompleteSimulationHandler godoc
// @Summary Complete a simulation
// @Description Score the sitting; unanswered questions count as wrong
// @Tags simulations
// @Produce json
// @Param X-User-ID header string true "Caller identity (UUID)"
// @Param session_id path int true "Session ID"
// @Success 200 {object} dto.SimulationResultDTO
// @Failure 404 {object} dto.ErrorResponse "Simulation not found"
// @Router /simulate/complete/{session_id} [post]
func (ctrl *Controller) CompleteSimulationHandler(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	result, err := ctrl.simSvc.Complete(controller.CurrentUserID(c), sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Simulation not found"})
			return
		}
		log.Error().Err(err).Uint("sessionID", sessionID).Msg("Failed to complete simulation")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to complete simulation"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// SimulationResultsHandler godoc
// @Summary Get simulation results
// @Description Full per-domain and per-question breakdown of a finished simulation
// @Tags simulations
// @Produce json
// @Param X-User-ID header string true "Caller identity (UUID)"
// @Param session_id path int true "Session ID"
// @Success 200 {object} dto.SimulationResultDTO
// @Failure 404 {object} dto.ErrorResponse "Simulation not found"
// @Failure 409 {object} dto.ErrorResponse "Simulation still in progress"
// @Router /simulate/results/{session_id} [get]
func (ctrl *Controller) SimulationResultsHandler(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	result, err := ctrl.simSvc.Results(controller.CurrentUserID(c), sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Simulation not found"})
			return
		}
		c.JSON(http.StatusConflict, dto.ErrorResponse{Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// SimulationHistoryHandler godoc
// @Summary List past simulations
// @Tags simulations
// @Produce json
// @Param X-User-ID header string true "Caller identity (UUID)"
// @Param limit query int false "Maximum entries to return (default 10)"
// @Success 200 {array} dto.SimulationSummaryDTO
// @Router /simulate/history [get]
func (ctrl *Controller) SimulationHistoryHandler(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		limit = 10
	}

	history, err := ctrl.simSvc.History(controller.CurrentUserID(c), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load simulation history")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to load simulation history"})
		return
	}
	c.JSON(http.StatusOK, history)
}
