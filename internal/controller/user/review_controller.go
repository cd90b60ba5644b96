package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/certprep/internal/controller"
	"github.com/lshigami/certprep/internal/dto"
	"github.com/rs/zerolog/log"
)

// ReviewDueHandler godoc
// @Summary Get the due review queue
// @Description Questions whose spaced-repetition interval has elapsed, most overdue first
// @Tags review
// @Produce json
// @Param X-User-ID header string true "Caller identity (UUID)"
// @Param limit query int false "Maximum items to return (default 20)"
// @Success 200 {array} dto.ReviewItemDTO
// @Router /review/queue [get]
func (ctrl *Controller) ReviewDueHandler(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	items, err := ctrl.reviewSvc.DueQueue(controller.CurrentUserID(c), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load review queue")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to load review queue"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// FlagForReviewHandler godoc
// @Summary Flag a question for review
// @Description Manually add a question to the spaced-repetition queue
// @Tags review
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller identity (UUID)"
// @Param flag body dto.FlagForReviewRequest true "Question to flag"
// @Success 201 {object} dto.ReviewItemDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /review/queue [post]
func (ctrl *Controller) FlagForReviewHandler(c *gin.Context) {
	var req dto.FlagForReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}

	item, err := ctrl.reviewSvc.Flag(controller.CurrentUserID(c), &req)
	if err != nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, item)
}

// RemoveReviewItemHandler godoc
// @Summary Remove a question from the review queue
// @Tags review
// @Param X-User-ID header string true "Caller identity (UUID)"
// @Param question_id path int true "Question ID"
// @Success 204 "No Content"
// @Failure 400 {object} dto.ErrorResponse "Invalid question ID"
// @Router /review/queue/{question_id} [delete]
func (ctrl *Controller) RemoveReviewItemHandler(c *gin.Context) {
	questionID, err := strconv.ParseUint(c.Param("question_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid question ID format"})
		return
	}

	if err := ctrl.reviewSvc.Remove(controller.CurrentUserID(c), uint(questionID)); err != nil {
		log.Error().Err(err).Uint64("questionID", questionID).Msg("Failed to remove review item")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to remove review item"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ConceptMasteryHandler godoc
// @Summary Get concept mastery breakdown
// @Description Review-queue mastery grouped by concept tag, weakest first
// @Tags review
// @Produce json
// @Param X-User-ID header string true "Caller identity (UUID)"
// @Success 200 {array} dto.ConceptMasteryDTO
// @Router /review/concepts [get]
func (ctrl *Controller) ConceptMasteryHandler(c *gin.Context) {
	concepts, err := ctrl.reviewSvc.ConceptMastery(controller.CurrentUserID(c))
	if err != nil {
		log.Error().Err(err).Msg("Failed to aggregate concept mastery")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to aggregate concept mastery"})
		return
	}
	c.JSON(http.StatusOK, concepts)
}
