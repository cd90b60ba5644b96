package service

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lshigami/certprep/internal/dto"
	"github.com/lshigami/certprep/internal/model"
	"github.com/lshigami/certprep/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdminService covers the content-management surface: registering
// certifications with their weighted syllabus, adding single questions and
// bulk-importing question banks from spreadsheets.
type AdminService interface {
	CreateCertification(req *dto.CertificationCreateDTO) (*dto.CertificationDTO, error)
	CreateQuestion(req *dto.QuestionCreateDTO) (*model.Question, error)
	// ImportQuestionsXLSX reads the first sheet of an .xlsx workbook. Expected
	// columns: domain, scenario, question, option_a..option_d, correct_index,
	// explanation, concept_tag, difficulty.
	ImportQuestionsXLSX(certCode string, file io.Reader) (*dto.ImportResultDTO, error)
}

type adminService struct {
	certRepo     repository.CertificationRepository
	questionRepo repository.QuestionRepository
}

func NewAdminService(certRepo repository.CertificationRepository, questionRepo repository.QuestionRepository) AdminService {
	return &adminService{certRepo: certRepo, questionRepo: questionRepo}
}

func (s *adminService) CreateCertification(req *dto.CertificationCreateDTO) (*dto.CertificationDTO, error) {
	weightSum := 0.0
	for _, d := range req.Domains {
		weightSum += d.Weight
	}
	if weightSum < 0.99 || weightSum > 1.01 {
		return nil, fmt.Errorf("domain weights must sum to 1.0, got %.3f", weightSum)
	}

	cert := &model.Certification{
		Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
		Title:       req.Title,
		Description: req.Description,
		IsActive:    true,
	}
	if req.PassScore > 0 {
		cert.PassScore = req.PassScore
	}
	if req.PassSkillRating > 0 {
		cert.PassSkillRating = req.PassSkillRating
	}
	for i, d := range req.Domains {
		sortOrder := d.SortOrder
		if sortOrder == 0 {
			sortOrder = i + 1
		}
		cert.Domains = append(cert.Domains, model.Domain{
			Name:      d.Name,
			Weight:    d.Weight,
			SortOrder: sortOrder,
		})
	}

	if err := s.certRepo.Create(cert); err != nil {
		return nil, err
	}
	log.Info().Str("code", cert.Code).Int("domains", len(cert.Domains)).Msg("Certification created")

	result := &dto.CertificationDTO{
		ID:          cert.ID,
		Code:        cert.Code,
		Title:       cert.Title,
		Description: cert.Description,
		IsActive:    cert.IsActive,
	}
	for _, d := range cert.Domains {
		result.Domains = append(result.Domains, dto.DomainDTO{
			ID:        d.ID,
			Name:      d.Name,
			Weight:    d.Weight,
			SortOrder: d.SortOrder,
		})
	}
	return result, nil
}

func (s *adminService) CreateQuestion(req *dto.QuestionCreateDTO) (*model.Question, error) {
	cert, err := s.certRepo.FindActiveByCode(req.CertificationCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("certification %s not found", req.CertificationCode)
		}
		return nil, err
	}
	domain, err := s.certRepo.FindDomainByName(cert.ID, req.DomainName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("domain %q not found in %s", req.DomainName, cert.Code)
		}
		return nil, err
	}

	exists, err := s.questionRepo.ExistsByText(cert.ID, req.QuestionText)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("question already exists for %s", cert.Code)
	}

	difficulty := req.DifficultyRating
	if difficulty <= 0 {
		difficulty = model.DefaultRating
	}
	question := &model.Question{
		CertificationID:  cert.ID,
		DomainID:         domain.ID,
		ScenarioText:     req.ScenarioText,
		QuestionText:     req.QuestionText,
		Options:          datatypes.NewJSONSlice(req.Options),
		CorrectIndex:     req.CorrectIndex,
		Explanation:      req.Explanation,
		ConceptTag:       req.ConceptTag,
		DifficultyRating: difficulty,
	}
	if err := s.questionRepo.Create(question); err != nil {
		return nil, err
	}
	question.Domain = *domain
	return question, nil
}

func (s *adminService) ImportQuestionsXLSX(certCode string, file io.Reader) (*dto.ImportResultDTO, error) {
	cert, err := s.certRepo.FindActiveByCode(certCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("certification %s not found", certCode)
		}
		return nil, err
	}
	domains, err := s.certRepo.FindDomains(cert.ID)
	if err != nil {
		return nil, err
	}
	domainByName := make(map[string]model.Domain, len(domains))
	for _, d := range domains {
		domainByName[strings.ToLower(d.Name)] = d
	}

	workbook, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %s has no data rows", sheets[0])
	}

	result := &dto.ImportResultDTO{}
	for i, row := range rows[1:] {
		rowNum := i + 2
		result.TotalProcessed++

		question, err := s.parseQuestionRow(cert, domainByName, row)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", rowNum, err.Error()))
			continue
		}

		exists, err := s.questionRepo.ExistsByText(cert.ID, question.QuestionText)
		if err != nil {
			return nil, err
		}
		if exists {
			result.Skipped++
			continue
		}
		if err := s.questionRepo.Create(question); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", rowNum, err.Error()))
			continue
		}
		result.Created++
	}

	log.Info().Str("cert", cert.Code).Int("created", result.Created).Int("skipped", result.Skipped).
		Int("failed", len(result.Errors)).Msg("Question import finished")
	return result, nil
}

func (s *adminService) parseQuestionRow(cert *model.Certification, domainByName map[string]model.Domain, row []string) (*model.Question, error) {
	cell := func(idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	domain, ok := domainByName[strings.ToLower(cell(0))]
	if !ok {
		return nil, fmt.Errorf("unknown domain %q", cell(0))
	}
	questionText := cell(2)
	if questionText == "" {
		return nil, fmt.Errorf("question text is empty")
	}
	options := []string{cell(3), cell(4), cell(5), cell(6)}
	for i, opt := range options {
		if opt == "" {
			return nil, fmt.Errorf("option %d is empty", i)
		}
	}
	correctIndex, err := strconv.Atoi(cell(7))
	if err != nil || correctIndex < 0 || correctIndex > 3 {
		return nil, fmt.Errorf("correct_index must be 0-3, got %q", cell(7))
	}

	difficulty := model.DefaultRating
	if raw := cell(10); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid difficulty %q", raw)
		}
		difficulty = parsed
	}

	return &model.Question{
		CertificationID:  cert.ID,
		DomainID:         domain.ID,
		ScenarioText:     cell(1),
		QuestionText:     questionText,
		Options:          datatypes.NewJSONSlice(options),
		CorrectIndex:     correctIndex,
		Explanation:      cell(8),
		ConceptTag:       cell(9),
		DifficultyRating: difficulty,
	}, nil
}
