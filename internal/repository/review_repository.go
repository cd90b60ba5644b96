package repository

import (
	"time"

	"github.com/lshigami/certprep/internal/model"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(item *model.ReviewItem) error
	Update(item *model.ReviewItem) error
	Delete(userID string, questionID uint) error
	FindByUserAndQuestion(userID string, questionID uint) (*model.ReviewItem, error)
	// FindDue returns items whose next review time has passed, most overdue
	// first.
	FindDue(userID string, now time.Time, limit int) ([]model.ReviewItem, error)
	FindAllByUser(userID string) ([]model.ReviewItem, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(item *model.ReviewItem) error {
	return r.db.Create(item).Error
}

func (r *reviewRepository) Update(item *model.ReviewItem) error {
	return r.db.Save(item).Error
}

func (r *reviewRepository) Delete(userID string, questionID uint) error {
	return r.db.Where("user_id = ? AND question_id = ?", userID, questionID).
		Delete(&model.ReviewItem{}).Error
}

func (r *reviewRepository) FindByUserAndQuestion(userID string, questionID uint) (*model.ReviewItem, error) {
	var item model.ReviewItem
	err := r.db.Where("user_id = ? AND question_id = ?", userID, questionID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *reviewRepository) FindDue(userID string, now time.Time, limit int) ([]model.ReviewItem, error) {
	var items []model.ReviewItem
	err := r.db.Preload("Question").Preload("Question.Domain").
		Where("user_id = ? AND next_review_at <= ?", userID, now).
		Order("next_review_at ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *reviewRepository) FindAllByUser(userID string) ([]model.ReviewItem, error) {
	var items []model.ReviewItem
	err := r.db.Where("user_id = ?", userID).Find(&items).Error
	return items, err
}
