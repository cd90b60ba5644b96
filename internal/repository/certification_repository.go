package repository

import (
	"github.com/lshigami/certprep/internal/model"
	"gorm.io/gorm"
)

type CertificationRepository interface {
	Create(cert *model.Certification) error
	FindByID(id uint) (*model.Certification, error)
	FindActiveByCode(code string) (*model.Certification, error)
	FindAllWithQuestionCount() ([]struct {
		model.Certification
		QuestionCount int64
	}, error)
	FindDomains(certificationID uint) ([]model.Domain, error)
	FindDomainByName(certificationID uint, name string) (*model.Domain, error)
}

type certificationRepository struct {
	db *gorm.DB
}

func NewCertificationRepository(db *gorm.DB) CertificationRepository {
	return &certificationRepository{db: db}
}

func (r *certificationRepository) Create(cert *model.Certification) error {
	// GORM creates the associated Domains together with the certification.
	return r.db.Create(cert).Error
}

func (r *certificationRepository) FindByID(id uint) (*model.Certification, error) {
	var cert model.Certification
	err := r.db.Preload("Domains", func(db *gorm.DB) *gorm.DB {
		return db.Order("domains.sort_order ASC")
	}).First(&cert, id).Error
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *certificationRepository) FindActiveByCode(code string) (*model.Certification, error) {
	var cert model.Certification
	err := r.db.Preload("Domains", func(db *gorm.DB) *gorm.DB {
		return db.Order("domains.sort_order ASC")
	}).Where("code = ? AND is_active = ?", code, true).First(&cert).Error
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *certificationRepository) FindAllWithQuestionCount() ([]struct {
	model.Certification
	QuestionCount int64
}, error) {
	var results []struct {
		model.Certification
		QuestionCount int64
	}
	err := r.db.Model(&model.Certification{}).
		Select("certifications.*, (SELECT COUNT(*) FROM questions WHERE questions.certification_id = certifications.id AND questions.deleted_at IS NULL) as question_count").
		Where("certifications.deleted_at IS NULL").
		Order("certifications.code ASC").
		Scan(&results).Error
	return results, err
}

func (r *certificationRepository) FindDomains(certificationID uint) ([]model.Domain, error) {
	var domains []model.Domain
	err := r.db.Where("certification_id = ?", certificationID).Order("sort_order ASC").Find(&domains).Error
	return domains, err
}

func (r *certificationRepository) FindDomainByName(certificationID uint, name string) (*model.Domain, error) {
	var domain model.Domain
	err := r.db.Where("certification_id = ? AND name = ?", certificationID, name).First(&domain).Error
	if err != nil {
		return nil, err
	}
	return &domain, nil
}
