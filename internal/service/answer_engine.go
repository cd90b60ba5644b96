package service

import (
	"errors"
	"time"

	"github.com/lshigami/certprep/config"
	"github.com/lshigami/certprep/internal/elo"
	"github.com/lshigami/certprep/internal/model"
	"github.com/lshigami/certprep/internal/repository"
	"github.com/lshigami/certprep/internal/srs"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AnswerEngine is the single write path for answers. Every submitted answer,
// practice or simulation, goes through Process: the rating mutations, the
// Response row, the session counters and the review-queue side effects commit
// in one transaction or not at all. One engine is shared by every answer
// path so the per-user lock spans practice and simulation submissions.
type AnswerEngine struct {
	db    *gorm.DB
	cfg   *config.Config
	locks keyedMutex
}

func NewAnswerEngine(db *gorm.DB, cfg *config.Config) *AnswerEngine {
	return &AnswerEngine{db: db, cfg: cfg}
}

// answerOutcome is what Process derived while committing the answer. The
// caller decides how much of it to surface (practice returns everything,
// simulations withhold feedback until completion).
type answerOutcome struct {
	Question         *model.Question
	IsCorrect        bool
	SkillBefore      float64
	SkillAfter       float64
	DomainSkillAfter float64
	AutoQueued       bool
}

func (e *AnswerEngine) updater() elo.Updater {
	return elo.Updater{
		UserK:          e.cfg.Elo.UserK,
		QuestionK:      e.cfg.Elo.QuestionK,
		StabilizeAfter: e.cfg.Elo.StabilizeAfter,
	}
}

// Process records one answer against an active session. The per-user lock
// serializes submissions from the same user; the version check on the session
// row catches writers that slipped past it (another instance, for example).
// One conflicting write is retried against fresh state before giving up with
// ErrConcurrentModification.
func (e *AnswerEngine) Process(userID string, session *model.Session, questionID uint, selectedIndex int, timeSpent *int) (*answerOutcome, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	var question model.Question
	if err := e.db.Preload("Domain").First(&question, questionID).Error; err != nil {
		return nil, err
	}
	if selectedIndex < 0 || selectedIndex >= len(question.Options) {
		return nil, ErrInvalidAnswerIndex
	}
	if !session.Active() {
		return nil, ErrSessionNotActive
	}

	outcome, err := e.commit(userID, session, &question, selectedIndex, timeSpent)
	if errors.Is(err, repository.ErrVersionConflict) {
		log.Warn().Uint("sessionID", session.ID).Str("userID", userID).Msg("Session version conflict, retrying against fresh state")
		var fresh model.Session
		if err := e.db.Where("id = ? AND user_id = ?", session.ID, userID).First(&fresh).Error; err != nil {
			return nil, err
		}
		if !fresh.Active() {
			return nil, ErrSessionNotActive
		}
		*session = fresh
		outcome, err = e.commit(userID, session, &question, selectedIndex, timeSpent)
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, ErrConcurrentModification
		}
	}
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (e *AnswerEngine) commit(userID string, session *model.Session, question *model.Question, selectedIndex int, timeSpent *int) (*answerOutcome, error) {
	isCorrect := selectedIndex == question.CorrectIndex
	now := time.Now()
	outcome := &answerOutcome{Question: question, IsCorrect: isCorrect}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var skill model.UserSkill
		if err := tx.Where("user_id = ?", userID).First(&skill).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			skill = model.UserSkill{UserID: userID, GlobalRating: model.DefaultRating}
			if err := tx.Create(&skill).Error; err != nil {
				return err
			}
		}

		var domainSkill model.UserDomainSkill
		if err := tx.Where("user_id = ? AND domain_id = ?", userID, question.DomainID).First(&domainSkill).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			domainSkill = model.UserDomainSkill{UserID: userID, DomainID: question.DomainID, Rating: model.DefaultRating}
			if err := tx.Create(&domainSkill).Error; err != nil {
				return err
			}
		}

		updater := e.updater()
		newGlobal, newDifficulty := updater.UpdatePair(skill.GlobalRating, question.DifficultyRating, isCorrect, question.TimesAnswered)

		result := elo.Loss
		if isCorrect {
			result = elo.Win
		}
		newDomainRating := elo.Update(domainSkill.Rating, question.DifficultyRating, result, updater.UserK)

		outcome.SkillBefore = skill.GlobalRating
		outcome.SkillAfter = newGlobal
		outcome.DomainSkillAfter = newDomainRating

		skill.GlobalRating = newGlobal
		if err := tx.Save(&skill).Error; err != nil {
			return err
		}

		domainSkill.Rating = newDomainRating
		domainSkill.QuestionsAnswered++
		if isCorrect {
			domainSkill.QuestionsCorrect++
		}
		if err := tx.Save(&domainSkill).Error; err != nil {
			return err
		}

		question.DifficultyRating = newDifficulty
		question.TimesAnswered++
		if isCorrect {
			question.TimesCorrect++
		}
		if err := tx.Omit("Domain").Save(question).Error; err != nil {
			return err
		}

		response := model.Response{
			UserID:           userID,
			QuestionID:       question.ID,
			SessionID:        &session.ID,
			SelectedIndex:    selectedIndex,
			IsCorrect:        isCorrect,
			TimeSpentSeconds: timeSpent,
			SkillBefore:      outcome.SkillBefore,
			SkillAfter:       outcome.SkillAfter,
		}
		if err := tx.Create(&response).Error; err != nil {
			return err
		}

		queued, err := e.maintainReviewItem(tx, userID, question, isCorrect, now)
		if err != nil {
			return err
		}
		outcome.AutoQueued = queued

		session.TotalQuestions++
		if isCorrect {
			session.CorrectAnswers++
		}
		if !containsID(session.ServedQuestionIDs, question.ID) {
			session.ServedQuestionIDs = append(session.ServedQuestionIDs, question.ID)
		}
		return updateSessionWithVersion(tx, session)
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// maintainReviewItem keeps the spaced-repetition queue in step with answers
// given outside the review flow. A wrong answer queues (or reschedules) the
// question; a correct answer advances the schedule, and clears items the user
// had flagged manually.
func (e *AnswerEngine) maintainReviewItem(tx *gorm.DB, userID string, question *model.Question, isCorrect bool, now time.Time) (bool, error) {
	var item model.ReviewItem
	err := tx.Where("user_id = ? AND question_id = ?", userID, question.ID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if isCorrect {
			return false, nil
		}
		fresh := srs.NewItem(userID, question.ID, question.ConceptTag, model.ReviewSourceAuto, now)
		if err := tx.Create(&fresh).Error; err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	if isCorrect && item.Source == model.ReviewSourceManual {
		return false, tx.Delete(&item).Error
	}
	srs.Apply(&item, isCorrect, now)
	return false, tx.Save(&item).Error
}

// updateSessionWithVersion mirrors the repository's optimistic update inside
// the answer transaction so the session write rolls back with everything
// else.
func updateSessionWithVersion(tx *gorm.DB, session *model.Session) error {
	currentVersion := session.Version
	session.Version = currentVersion + 1
	result := tx.Model(&model.Session{}).
		Where("id = ? AND version = ?", session.ID, currentVersion).
		Select("*").Omit("created_at").
		Updates(session)
	if result.Error != nil {
		session.Version = currentVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		session.Version = currentVersion
		return repository.ErrVersionConflict
	}
	return nil
}

func containsID(ids []uint, id uint) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
