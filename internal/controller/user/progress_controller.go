package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/certprep/internal/controller"
	"github.com/lshigami/certprep/internal/dto"
	"github.com/rs/zerolog/log"
)

// UserProgressHandler godoc
// @Summary Get the progress dashboard
// @Description Global and per-domain skill, pass probability with confidence, streaks and volatility
// @Tags progress
// @Produce json
// @Param X-User-ID header string true "Caller identity (UUID)"
// @Param certification_code query string true "Certification code"
// @Success 200 {object} dto.UserProgressDTO
// @Failure 400 {object} dto.ErrorResponse "Missing certification code"
// @Failure 404 {object} dto.ErrorResponse "Certification not found"
// @Router /progress/user [get]
func (ctrl *Controller) UserProgressHandler(c *gin.Context) {
	code := c.Query("certification_code")
	if code == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "certification_code query parameter is required"})
		return
	}

	progress, err := ctrl.progressSvc.UserProgress(controller.CurrentUserID(c), code)
	if err != nil {
		log.Error().Err(err).Str("cert", code).Msg("Failed to build progress")
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, progress)
}

// DomainProgressHandler godoc
// @Summary Get per-domain progress
// @Description Per-domain skill, accuracy and proficiency for one certification
// @Tags progress
// @Produce json
// @Param X-User-ID header string true "Caller identity (UUID)"
// @Param certification_code query string true "Certification code"
// @Success 200 {array} dto.DomainSkillDTO
// @Failure 400 {object} dto.ErrorResponse "Missing certification code"
// @Failure 404 {object} dto.ErrorResponse "Certification not found"
// @Router /progress/domains [get]
func (ctrl *Controller) DomainProgressHandler(c *gin.Context) {
	code := c.Query("certification_code")
	if code == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "certification_code query parameter is required"})
		return
	}

	progress, err := ctrl.progressSvc.UserProgress(controller.CurrentUserID(c), code)
	if err != nil {
		log.Error().Err(err).Str("cert", code).Msg("Failed to build domain progress")
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, progress.DomainSkills)
}

// ListCertificationsHandler godoc
// @Summary List certifications
// @Tags certifications
// @Produce json
// @Param X-User-ID header string true "Caller identity (UUID)"
// @Success 200 {array} dto.CertificationDTO
// @Router /certifications [get]
func (ctrl *Controller) ListCertificationsHandler(c *gin.Context) {
	certs, err := ctrl.certSvc.List()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list certifications")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to list certifications"})
		return
	}
	c.JSON(http.StatusOK, certs)
}

// GetCertificationHandler godoc
// @Summary Get one certification with its domains
// @Tags certifications
// @Produce json
// @Param X-User-ID header string true "Caller identity (UUID)"
// @Param code path string true "Certification code"
// @Success 200 {object} dto.CertificationDTO
// @Failure 404 {object} dto.ErrorResponse "Certification not found"
// @Router /certifications/{code} [get]
func (ctrl *Controller) GetCertificationHandler(c *gin.Context) {
	code := c.Param("code")

	cert, err := ctrl.certSvc.GetByCode(code)
	if err != nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, cert)
}
