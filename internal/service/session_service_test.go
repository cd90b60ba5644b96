package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lshigami/certprep/internal/dto"
	"github.com/lshigami/certprep/internal/model"
	"github.com/lshigami/certprep/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testUserID = "7f2c1a9e-0000-4000-8000-000000000001"

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Certification{},
		&model.Domain{},
		&model.Question{},
		&model.UserSkill{},
		&model.UserDomainSkill{},
		&model.Session{},
		&model.Response{},
		&model.ReviewItem{},
	))
	return db
}

func seedCertification(t *testing.T, db *gorm.DB) *model.Certification {
	t.Helper()
	cert := &model.Certification{
		Code:            "PL-300",
		Title:           "Microsoft Power BI Data Analyst",
		PassScore:       700,
		PassSkillRating: 1100,
		IsActive:        true,
		Domains: []model.Domain{
			{Name: "Prepare the data", Weight: 0.5, SortOrder: 1},
			{Name: "Model the data", Weight: 0.5, SortOrder: 2},
		},
	}
	require.NoError(t, db.Create(cert).Error)
	return cert
}

func seedQuestion(t *testing.T, db *gorm.DB, cert *model.Certification, domainIdx int, difficulty float64) *model.Question {
	t.Helper()
	q := &model.Question{
		CertificationID:  cert.ID,
		DomainID:         cert.Domains[domainIdx].ID,
		QuestionText:     fmt.Sprintf("question at %.0f", difficulty),
		Options:          datatypes.NewJSONSlice([]string{"A", "B", "C", "D"}),
		CorrectIndex:     1,
		Explanation:      "B is right",
		ConceptTag:       "dax-basics",
		DifficultyRating: difficulty,
	}
	require.NoError(t, db.Create(q).Error)
	return q
}

func newTestSessionService(t *testing.T, db *gorm.DB) SessionService {
	t.Helper()
	cfg := selectorTestConfig()
	sessionRepo := repository.NewSessionRepository(db)
	certRepo := repository.NewCertificationRepository(db)
	userSkillRepo := repository.NewUserSkillRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	selector := NewQuestionSelectorService(userSkillRepo, questionRepo, responseRepo, &fakeGenerator{err: ErrGenerationUnavailable}, cfg)
	return NewSessionService(sessionRepo, certRepo, userSkillRepo, selector, NewAnswerEngine(db, cfg), cfg)
}

func TestStartPracticeSnapshotsSkill(t *testing.T) {
	db := openTestDB(t)
	seedCertification(t, db)
	svc := newTestSessionService(t, db)

	session, err := svc.StartPractice(testUserID, "PL-300")
	require.NoError(t, err)
	assert.Equal(t, model.SessionModePractice, session.Mode)
	assert.Equal(t, model.DefaultRating, session.SkillBefore)
	assert.False(t, session.IsComplete)
	assert.NotZero(t, session.SessionID)
}

func TestSubmitCorrectAnswerMovesRatingsAtomically(t *testing.T) {
	db := openTestDB(t)
	cert := seedCertification(t, db)
	question := seedQuestion(t, db, cert, 0, 1000)
	svc := newTestSessionService(t, db)

	started, err := svc.StartPractice(testUserID, "PL-300")
	require.NoError(t, err)

	feedback, err := svc.SubmitAnswer(testUserID, started.SessionID, &dto.SubmitAnswerRequest{
		QuestionID:    question.ID,
		SelectedIndex: 1,
	})
	require.NoError(t, err)

	assert.True(t, feedback.IsCorrect)
	assert.Equal(t, 1, feedback.CorrectIndex)
	assert.Equal(t, "B is right", feedback.Explanation)
	// Equal ratings, K=32: the user gains exactly 16.
	assert.InDelta(t, 1000, feedback.SkillBefore, 0.001)
	assert.InDelta(t, 1016, feedback.SkillAfter, 0.001)
	assert.InDelta(t, 1016, feedback.DomainSkillAfter, 0.001)
	assert.False(t, feedback.AutoQueuedForReview)

	var skill model.UserSkill
	require.NoError(t, db.First(&skill, "user_id = ?", testUserID).Error)
	assert.InDelta(t, 1016, skill.GlobalRating, 0.001)

	var updated model.Question
	require.NoError(t, db.First(&updated, question.ID).Error)
	assert.InDelta(t, 996, updated.DifficultyRating, 0.001)
	assert.Equal(t, 1, updated.TimesAnswered)
	assert.Equal(t, 1, updated.TimesCorrect)

	var responses []model.Response
	require.NoError(t, db.Where("user_id = ?", testUserID).Find(&responses).Error)
	require.Len(t, responses, 1)
	assert.InDelta(t, 1000, responses[0].SkillBefore, 0.001)
	assert.InDelta(t, 1016, responses[0].SkillAfter, 0.001)
	require.NotNil(t, responses[0].SessionID)
	assert.Equal(t, started.SessionID, *responses[0].SessionID)

	var session model.Session
	require.NoError(t, db.First(&session, started.SessionID).Error)
	assert.Equal(t, 1, session.TotalQuestions)
	assert.Equal(t, 1, session.CorrectAnswers)
	assert.Equal(t, 1, session.Version)
}

func TestSubmitWrongAnswerQueuesReviewItem(t *testing.T) {
	db := openTestDB(t)
	cert := seedCertification(t, db)
	question := seedQuestion(t, db, cert, 0, 1000)
	svc := newTestSessionService(t, db)

	started, err := svc.StartPractice(testUserID, "PL-300")
	require.NoError(t, err)

	feedback, err := svc.SubmitAnswer(testUserID, started.SessionID, &dto.SubmitAnswerRequest{
		QuestionID:    question.ID,
		SelectedIndex: 0,
	})
	require.NoError(t, err)
	assert.False(t, feedback.IsCorrect)
	assert.True(t, feedback.AutoQueuedForReview)
	assert.Less(t, feedback.SkillAfter, feedback.SkillBefore)

	var item model.ReviewItem
	require.NoError(t, db.First(&item, "user_id = ? AND question_id = ?", testUserID, question.ID).Error)
	assert.Equal(t, model.ReviewSourceAuto, item.Source)
	assert.Equal(t, "dax-basics", item.ConceptTag)
	assert.Equal(t, 24, item.IntervalHours)
}

func TestCorrectAnswerClearsManualFlag(t *testing.T) {
	db := openTestDB(t)
	cert := seedCertification(t, db)
	question := seedQuestion(t, db, cert, 0, 1000)
	svc := newTestSessionService(t, db)

	manual := model.ReviewItem{
		UserID:        testUserID,
		QuestionID:    question.ID,
		Source:        model.ReviewSourceManual,
		NextReviewAt:  time.Now().Add(24 * time.Hour),
		IntervalHours: 24,
		EaseFactor:    2.5,
	}
	require.NoError(t, db.Create(&manual).Error)

	started, err := svc.StartPractice(testUserID, "PL-300")
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(testUserID, started.SessionID, &dto.SubmitAnswerRequest{
		QuestionID:    question.ID,
		SelectedIndex: 1,
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&model.ReviewItem{}).
		Where("user_id = ? AND question_id = ?", testUserID, question.ID).
		Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitAnswerRejectsBadIndexAndEndedSession(t *testing.T) {
	db := openTestDB(t)
	cert := seedCertification(t, db)
	question := seedQuestion(t, db, cert, 0, 1000)
	svc := newTestSessionService(t, db)

	started, err := svc.StartPractice(testUserID, "PL-300")
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(testUserID, started.SessionID, &dto.SubmitAnswerRequest{
		QuestionID:    question.ID,
		SelectedIndex: 7,
	})
	assert.ErrorIs(t, err, ErrInvalidAnswerIndex)

	_, err = svc.EndSession(testUserID, started.SessionID)
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(testUserID, started.SessionID, &dto.SubmitAnswerRequest{
		QuestionID:    question.ID,
		SelectedIndex: 1,
	})
	assert.ErrorIs(t, err, ErrSessionNotActive)
}

func TestNextQuestionDoesNotRepeatWithinSession(t *testing.T) {
	db := openTestDB(t)
	cert := seedCertification(t, db)
	first := seedQuestion(t, db, cert, 0, 1000)
	second := seedQuestion(t, db, cert, 1, 1000)
	svc := newTestSessionService(t, db)

	started, err := svc.StartPractice(testUserID, "PL-300")
	require.NoError(t, err)

	servedA, err := svc.NextQuestion(testUserID, started.SessionID)
	require.NoError(t, err)
	servedB, err := svc.NextQuestion(testUserID, started.SessionID)
	require.NoError(t, err)

	assert.NotEqual(t, servedA.QuestionID, servedB.QuestionID)
	ids := []uint{servedA.QuestionID, servedB.QuestionID}
	assert.ElementsMatch(t, []uint{first.ID, second.ID}, ids)

	// Pool exhausted and generation down.
	_, err = svc.NextQuestion(testUserID, started.SessionID)
	assert.ErrorIs(t, err, ErrNoCandidate)
}

func TestEndSessionIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	cert := seedCertification(t, db)
	question := seedQuestion(t, db, cert, 0, 1000)
	svc := newTestSessionService(t, db)

	started, err := svc.StartPractice(testUserID, "PL-300")
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(testUserID, started.SessionID, &dto.SubmitAnswerRequest{
		QuestionID:    question.ID,
		SelectedIndex: 1,
	})
	require.NoError(t, err)

	ended, err := svc.EndSession(testUserID, started.SessionID)
	require.NoError(t, err)
	assert.True(t, ended.IsComplete)
	require.NotNil(t, ended.SkillAfter)
	assert.InDelta(t, 1016, *ended.SkillAfter, 0.001)
	require.NotNil(t, ended.EndedAt)

	again, err := svc.EndSession(testUserID, started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, ended.TotalQuestions, again.TotalQuestions)
	assert.True(t, again.IsComplete)
}
