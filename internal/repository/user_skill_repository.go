package repository

import (
	"errors"

	"github.com/lshigami/certprep/internal/model"
	"gorm.io/gorm"
)

type UserSkillRepository interface {
	// GetOrCreate returns the user's skill record, creating it at the
	// default rating on first contact.
	GetOrCreate(userID string) (*model.UserSkill, error)
	FindDomainSkills(userID string) ([]model.UserDomainSkill, error)
	FindDomainSkill(userID string, domainID uint) (*model.UserDomainSkill, error)
}

type userSkillRepository struct {
	db *gorm.DB
}

func NewUserSkillRepository(db *gorm.DB) UserSkillRepository {
	return &userSkillRepository{db: db}
}

func (r *userSkillRepository) GetOrCreate(userID string) (*model.UserSkill, error) {
	var skill model.UserSkill
	err := r.db.First(&skill, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		skill = model.UserSkill{UserID: userID, GlobalRating: model.DefaultRating}
		if err := r.db.Create(&skill).Error; err != nil {
			return nil, err
		}
		return &skill, nil
	}
	if err != nil {
		return nil, err
	}
	return &skill, nil
}

func (r *userSkillRepository) FindDomainSkills(userID string) ([]model.UserDomainSkill, error) {
	var skills []model.UserDomainSkill
	err := r.db.Preload("Domain").Where("user_id = ?", userID).Find(&skills).Error
	return skills, err
}

func (r *userSkillRepository) FindDomainSkill(userID string, domainID uint) (*model.UserDomainSkill, error) {
	var skill model.UserDomainSkill
	err := r.db.Where("user_id = ? AND domain_id = ?", userID, domainID).First(&skill).Error
	if err != nil {
		return nil, err
	}
	return &skill, nil
}
