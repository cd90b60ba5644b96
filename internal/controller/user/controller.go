package user

import (
	"github.com/gin-gonic/gin"
	"github.com/lshigami/certprep/internal/controller"
	"github.com/lshigami/certprep/internal/service"
)

// Controller wires the learner-facing API. All routes require the caller's
// identity via the X-User-ID header.
type Controller struct {
	certSvc     service.CertificationService
	sessionSvc  service.SessionService
	simSvc      service.SimulationService
	progressSvc service.ProgressService
	reviewSvc   service.ReviewService
}

func NewController(
	certSvc service.CertificationService,
	sessionSvc service.SessionService,
	simSvc service.SimulationService,
	progressSvc service.ProgressService,
	reviewSvc service.ReviewService,
) *Controller {
	return &Controller{
		certSvc:     certSvc,
		sessionSvc:  sessionSvc,
		simSvc:      simSvc,
		progressSvc: progressSvc,
		reviewSvc:   reviewSvc,
	}
}

func (ctrl *Controller) RegisterRoutes(router *gin.Engine) {
	apiV1 := router.Group("/api/v1", controller.RequireUserID())
	{
		certs := apiV1.Group("/certifications")
		certs.GET("", ctrl.ListCertificationsHandler)
		certs.GET("/:code", ctrl.GetCertificationHandler)

		exam := apiV1.Group("/exam/sessions")
		exam.POST("", ctrl.StartSessionHandler)
		exam.POST("/:session_id/next-question", ctrl.NextQuestionHandler)
		exam.POST("/:session_id/answers", ctrl.SubmitAnswerHandler)
		exam.POST("/:session_id/end", ctrl.EndSessionHandler)

		simulate := apiV1.Group("/simulate")
		simulate.POST("/start", ctrl.StartSimulationHandler)
		simulate.POST("/answer", ctrl.SubmitSimAnswerHandler)
		simulate.POST("/complete/:session_id", ctrl.CompleteSimulationHandler)
		simulate.GET("/results/:session_id", ctrl.SimulationResultsHandler)
		simulate.GET("/history", ctrl.SimulationHistoryHandler)

		progress := apiV1.Group("/progress")
		progress.GET("/user", ctrl.UserProgressHandler)
		progress.GET("/domains", ctrl.DomainProgressHandler)

		review := apiV1.Group("/review")
		review.GET("/queue", ctrl.ReviewDueHandler)
		review.POST("/queue", ctrl.FlagForReviewHandler)
		review.DELETE("/queue/:question_id", ctrl.RemoveReviewItemHandler)
		review.GET("/concepts", ctrl.ConceptMasteryHandler)
	}
}
