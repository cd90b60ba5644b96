package repository

import (
	"errors"
	"time"

	"github.com/lshigami/certprep/internal/model"
	"gorm.io/gorm"
)

// ErrVersionConflict is returned by UpdateWithVersion when the session row
// changed under us; callers translate it into the service-level
// concurrent-modification error.
var ErrVersionConflict = errors.New("session version conflict")

type SessionRepository interface {
	Create(session *model.Session) error
	FindByIDForUser(id uint, userID string) (*model.Session, error)
	Update(session *model.Session) error
	// UpdateWithVersion saves the session only if no concurrent write bumped
	// its version since it was read. On success the in-memory version is
	// incremented to match the row.
	UpdateWithVersion(session *model.Session) error
	FindRecentByUser(userID string, limit int) ([]model.Session, error)
	FindCompletedSimulations(userID string, limit int) ([]model.Session, error)
	// FindIncompleteSimulationsStartedBefore supports the janitor job.
	FindIncompleteSimulationsStartedBefore(cutoff time.Time) ([]model.Session, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *model.Session) error {
	return r.db.Create(session).Error
}

func (r *sessionRepository) FindByIDForUser(id uint, userID string) (*model.Session, error) {
	var session model.Session
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Update(session *model.Session) error {
	return r.db.Save(session).Error
}

func (r *sessionRepository) UpdateWithVersion(session *model.Session) error {
	currentVersion := session.Version
	session.Version = currentVersion + 1
	result := r.db.Model(&model.Session{}).
		Where("id = ? AND version = ?", session.ID, currentVersion).
		Select("*").Omit("created_at").
		Updates(session)
	if result.Error != nil {
		session.Version = currentVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		session.Version = currentVersion
		return ErrVersionConflict
	}
	return nil
}

func (r *sessionRepository) FindRecentByUser(userID string, limit int) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.Where("user_id = ?", userID).Order("started_at DESC").Limit(limit).Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepository) FindCompletedSimulations(userID string, limit int) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.Where("user_id = ? AND mode = ? AND is_complete = ?", userID, model.SessionModeSimulation, true).
		Order("started_at DESC").Limit(limit).Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepository) FindIncompleteSimulationsStartedBefore(cutoff time.Time) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.Where("mode = ? AND is_complete = ? AND started_at < ?", model.SessionModeSimulation, false, cutoff).
		Find(&sessions).Error
	return sessions, err
}
