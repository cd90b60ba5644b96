package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/certprep/internal/dto"
	"github.com/lshigami/certprep/internal/service"
	"github.com/rs/zerolog/log"
)

// Controller is the content-management API. It is expected to sit behind an
// operator-only gateway route; there is no per-user identity here.
type Controller struct {
	adminSvc service.AdminService
}

func NewController(adminSvc service.AdminService) *Controller {
	return &Controller{adminSvc: adminSvc}
}

func (ctrl *Controller) RegisterRoutes(router *gin.Engine) {
	adminV1 := router.Group("/api/v1/admin")
	{
		adminV1.POST("/certifications", ctrl.CreateCertificationHandler)
		adminV1.POST("/questions", ctrl.CreateQuestionHandler)
		adminV1.POST("/questions/import", ctrl.ImportQuestionsHandler)
	}
}

// CreateCertificationHandler godoc
// @Summary Register a certification
// @Description Create a certification with its weighted syllabus domains; weights must sum to 1.0
// @Tags admin
// @Accept json
// @Produce json
// @Param certification body dto.CertificationCreateDTO true "Certification with domains"
// @Success 201 {object} dto.CertificationDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid body or weights"
// @Router /admin/certifications [post]
func (ctrl *Controller) CreateCertificationHandler(c *gin.Context) {
	var req dto.CertificationCreateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}

	cert, err := ctrl.adminSvc.CreateCertification(&req)
	if err != nil {
		log.Error().Err(err).Str("code", req.Code).Msg("Failed to create certification")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, cert)
}

// CreateQuestionHandler godoc
// @Summary Add a question
// @Description Add a single question to a certification domain
// @Tags admin
// @Accept json
// @Produce json
// @Param question body dto.QuestionCreateDTO true "Question"
// @Success 201 {object} model.Question
// @Failure 400 {object} dto.ErrorResponse "Invalid body, unknown domain or duplicate text"
// @Router /admin/questions [post]
func (ctrl *Controller) CreateQuestionHandler(c *gin.Context) {
	var req dto.QuestionCreateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}

	question, err := ctrl.adminSvc.CreateQuestion(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, question)
}

// ImportQuestionsHandler godoc
// @Summary Bulk-import questions from a spreadsheet
// @Description Upload an .xlsx question bank; duplicate question texts are skipped
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param certification_code formData string true "Certification code"
// @Param file formData file true "Workbook (.xlsx)"
// @Success 200 {object} dto.ImportResultDTO
// @Failure 400 {object} dto.ErrorResponse "Missing code, missing file or unreadable workbook"
// @Router /admin/questions/import [post]
func (ctrl *Controller) ImportQuestionsHandler(c *gin.Context) {
	code := c.PostForm("certification_code")
	if code == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "A 'certification_code' form field is required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "A 'file' form field with an .xlsx workbook is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	result, err := ctrl.adminSvc.ImportQuestionsXLSX(code, file)
	if err != nil {
		log.Error().Err(err).Str("cert", code).Msg("Question import failed")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
