package repository

import (
	"fmt"

	"github.com/lshigami/certprep/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	Create(question *model.Question) error
	FindByID(id uint) (*model.Question, error)
	FindByIDs(ids []uint) ([]model.Question, error)
	// FindCandidates returns questions of a domain whose difficulty lies in
	// [low, high], excluding the given IDs, ordered by closeness to target.
	FindCandidates(domainID uint, low, high, target float64, excludeIDs []uint, limit int) ([]model.Question, error)
	ExistsByText(certificationID uint, questionText string) (bool, error)
	Update(question *model.Question) error
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(question *model.Question) error {
	return r.db.Create(question).Error
}

func (r *questionRepository) FindByID(id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.Preload("Domain").First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindByIDs(ids []uint) ([]model.Question, error) {
	var questions []model.Question
	if len(ids) == 0 {
		return questions, nil
	}
	err := r.db.Preload("Domain").Where("id IN ?", ids).Find(&questions).Error
	return questions, err
}

func (r *questionRepository) FindCandidates(domainID uint, low, high, target float64, excludeIDs []uint, limit int) ([]model.Question, error) {
	var questions []model.Question
	query := r.db.Where("domain_id = ? AND difficulty_rating >= ? AND difficulty_rating <= ?", domainID, low, high)
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}
	err := query.Order(fmt.Sprintf("ABS(difficulty_rating - %f)", target)).
		Limit(limit).
		Find(&questions).Error
	return questions, err
}

func (r *questionRepository) ExistsByText(certificationID uint, questionText string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Question{}).
		Where("certification_id = ? AND question_text = ?", certificationID, questionText).
		Count(&count).Error
	return count > 0, err
}

func (r *questionRepository) Update(question *model.Question) error {
	return r.db.Save(question).Error
}
