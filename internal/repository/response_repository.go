package repository

import (
	"time"

	"github.com/lshigami/certprep/internal/model"
	"gorm.io/gorm"
)

type ResponseRepository interface {
	// FindAnsweredQuestionIDsSince returns IDs of questions the user has
	// answered since the given time. A zero time means all time.
	FindAnsweredQuestionIDsSince(userID string, since time.Time) ([]uint, error)
	FindBySession(sessionID uint) ([]model.Response, error)
	FindSince(userID string, since time.Time) ([]model.Response, error)
	FindLastN(userID string, n int) ([]model.Response, error)
	CountByUser(userID string) (int64, error)
}

type responseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) FindAnsweredQuestionIDsSince(userID string, since time.Time) ([]uint, error) {
	var ids []uint
	query := r.db.Model(&model.Response{}).Where("user_id = ?", userID)
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}
	err := query.Distinct().Pluck("question_id", &ids).Error
	return ids, err
}

func (r *responseRepository) FindBySession(sessionID uint) ([]model.Response, error) {
	var responses []model.Response
	err := r.db.Where("session_id = ?", sessionID).Order("created_at ASC").Find(&responses).Error
	return responses, err
}

func (r *responseRepository) FindSince(userID string, since time.Time) ([]model.Response, error) {
	var responses []model.Response
	err := r.db.Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at ASC").Find(&responses).Error
	return responses, err
}

func (r *responseRepository) FindLastN(userID string, n int) ([]model.Response, error) {
	var responses []model.Response
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(n).Find(&responses).Error
	return responses, err
}

func (r *responseRepository) CountByUser(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Response{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
