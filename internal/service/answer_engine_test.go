package service

import (
	"testing"
	"time"

	"github.com/lshigami/certprep/internal/dto"
	"github.com/lshigami/certprep/internal/model"
	"github.com/lshigami/certprep/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// registerVersionBump makes the next n session-row updates lose the
// optimistic version check, as if another writer had slipped in between the
// read and the write.
func registerVersionBump(t *testing.T, db *gorm.DB, sessionID uint, n int) {
	t.Helper()
	remaining := n
	err := db.Callback().Update().Before("gorm:update").Register("version_bump", func(d *gorm.DB) {
		if _, ok := d.Statement.Model.(*model.Session); !ok {
			return
		}
		if remaining == 0 {
			return
		}
		remaining--
		if _, err := d.Statement.ConnPool.ExecContext(d.Statement.Context,
			"UPDATE sessions SET version = version + 1 WHERE id = ?", sessionID); err != nil {
			d.AddError(err)
		}
	})
	require.NoError(t, err)
}

func newEngineSession(t *testing.T, db *gorm.DB, cert *model.Certification) *model.Session {
	t.Helper()
	session := &model.Session{
		UserID:          testUserID,
		CertificationID: cert.ID,
		Mode:            model.SessionModePractice,
		StartedAt:       time.Now(),
		SkillBefore:     model.DefaultRating,
	}
	require.NoError(t, db.Create(session).Error)
	return session
}

func TestProcessRetriesOnceOnVersionConflict(t *testing.T) {
	db := openTestDB(t)
	cert := seedCertification(t, db)
	question := seedQuestion(t, db, cert, 0, 1000)
	engine := NewAnswerEngine(db, selectorTestConfig())
	session := newEngineSession(t, db, cert)

	registerVersionBump(t, db, session.ID, 1)

	outcome, err := engine.Process(testUserID, session, question.ID, 1, nil)
	require.NoError(t, err)
	assert.True(t, outcome.IsCorrect)

	// The first attempt rolled back whole; the retry committed exactly once.
	var fresh model.Session
	require.NoError(t, db.First(&fresh, session.ID).Error)
	assert.Equal(t, 1, fresh.TotalQuestions)
	assert.Equal(t, 1, fresh.CorrectAnswers)
	assert.Equal(t, 1, fresh.Version)

	var responses int64
	require.NoError(t, db.Model(&model.Response{}).Where("session_id = ?", session.ID).Count(&responses).Error)
	assert.Equal(t, int64(1), responses)

	var skill model.UserSkill
	require.NoError(t, db.First(&skill, "user_id = ?", testUserID).Error)
	assert.InDelta(t, 1016, skill.GlobalRating, 0.001)
}

func TestProcessGivesUpAfterSecondConflict(t *testing.T) {
	db := openTestDB(t)
	cert := seedCertification(t, db)
	question := seedQuestion(t, db, cert, 0, 1000)
	engine := NewAnswerEngine(db, selectorTestConfig())
	session := newEngineSession(t, db, cert)

	registerVersionBump(t, db, session.ID, 2)

	_, err := engine.Process(testUserID, session, question.ID, 1, nil)
	assert.ErrorIs(t, err, ErrConcurrentModification)

	// Both attempts rolled back: no response, no rating row, untouched session.
	var responses int64
	require.NoError(t, db.Model(&model.Response{}).Where("session_id = ?", session.ID).Count(&responses).Error)
	assert.Zero(t, responses)

	var skill model.UserSkill
	assert.ErrorIs(t, db.First(&skill, "user_id = ?", testUserID).Error, gorm.ErrRecordNotFound)

	var fresh model.Session
	require.NoError(t, db.First(&fresh, session.ID).Error)
	assert.Zero(t, fresh.TotalQuestions)
	assert.Zero(t, fresh.Version)
}

func TestAnswerLockSpansPracticeAndSimulation(t *testing.T) {
	db := openTestDB(t)
	cert := seedCertification(t, db)
	question := seedQuestion(t, db, cert, 0, 1000)

	cfg := selectorTestConfig()
	sessionRepo := repository.NewSessionRepository(db)
	certRepo := repository.NewCertificationRepository(db)
	userSkillRepo := repository.NewUserSkillRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	selector := NewQuestionSelectorService(userSkillRepo, questionRepo, responseRepo, &fakeGenerator{err: ErrGenerationUnavailable}, cfg)
	engine := NewAnswerEngine(db, cfg)
	practiceSvc := NewSessionService(sessionRepo, certRepo, userSkillRepo, selector, engine, cfg)
	simSvc := NewSimulationService(sessionRepo, certRepo, questionRepo, responseRepo, userSkillRepo, selector, engine, cfg)

	// Both modes hold the same engine, so a user's submissions serialize on
	// one lock map no matter which path they arrive through.
	require.Same(t, practiceSvc.(*sessionService).engine, simSvc.(*simulationService).engine)

	started, err := practiceSvc.StartPractice(testUserID, "PL-300")
	require.NoError(t, err)

	unlock := simSvc.(*simulationService).engine.locks.Lock(testUserID)
	done := make(chan error, 1)
	go func() {
		_, err := practiceSvc.SubmitAnswer(testUserID, started.SessionID, &dto.SubmitAnswerRequest{
			QuestionID:    question.ID,
			SelectedIndex: 1,
		})
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("practice answer committed while the user's lock was held through the simulation path")
	case <-time.After(100 * time.Millisecond):
	}

	unlock()
	require.NoError(t, <-done)
}
