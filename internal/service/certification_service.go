package service

import (
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lshigami/certprep/internal/dto"
	"github.com/lshigami/certprep/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CertificationService is the read side of the catalog.
type CertificationService interface {
	List() ([]dto.CertificationDTO, error)
	GetByCode(code string) (*dto.CertificationDTO, error)
}

type certificationService struct {
	certRepo repository.CertificationRepository
}

func NewCertificationService(certRepo repository.CertificationRepository) CertificationService {
	return &certificationService{certRepo: certRepo}
}

func (s *certificationService) List() ([]dto.CertificationDTO, error) {
	certs, err := s.certRepo.FindAllWithQuestionCount()
	if err != nil {
		return nil, err
	}
	out := make([]dto.CertificationDTO, len(certs))
	for i, c := range certs {
		out[i] = dto.CertificationDTO{
			ID:            c.ID,
			Code:          c.Code,
			Title:         c.Title,
			Description:   c.Description,
			IsActive:      c.IsActive,
			QuestionCount: c.QuestionCount,
		}
	}
	return out, nil
}

func (s *certificationService) GetByCode(code string) (*dto.CertificationDTO, error) {
	cert, err := s.certRepo.FindActiveByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("certification %s not found", code)
		}
		return nil, err
	}
	var out dto.CertificationDTO
	if err := copier.Copy(&out, cert); err != nil {
		log.Error().Err(err).Str("code", code).Msg("Failed to map certification to DTO")
		return nil, err
	}
	return &out, nil
}
