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

func newTestReviewService(t *testing.T, db *gorm.DB) ReviewService {
	t.Helper()
	return NewReviewService(repository.NewReviewRepository(db), repository.NewQuestionRepository(db))
}

func TestFlagCreatesManualItem(t *testing.T) {
	db := openTestDB(t)
	cert := seedCertification(t, db)
	q := seedQuestion(t, db, cert, 0, 1000)
	svc := newTestReviewService(t, db)

	item, err := svc.Flag(testUserID, &dto.FlagForReviewRequest{QuestionID: q.ID})
	require.NoError(t, err)
	assert.Equal(t, model.ReviewSourceManual, item.Source)
	assert.Equal(t, "dax-basics", item.ConceptTag, "concept tag falls back to the question's")
	assert.Zero(t, item.Repetitions)

	// Flagging twice keeps the original schedule.
	again, err := svc.Flag(testUserID, &dto.FlagForReviewRequest{QuestionID: q.ID})
	require.NoError(t, err)
	assert.Equal(t, item.NextReviewAt.Unix(), again.NextReviewAt.Unix())

	var count int64
	require.NoError(t, db.Model(&model.ReviewItem{}).Where("user_id = ?", testUserID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDueQueueOrdersMostOverdueFirst(t *testing.T) {
	db := openTestDB(t)
	cert := seedCertification(t, db)
	qa := seedQuestion(t, db, cert, 0, 1000)
	qb := seedQuestion(t, db, cert, 0, 1050)
	qc := seedQuestion(t, db, cert, 1, 1100)
	svc := newTestReviewService(t, db)

	now := time.Now()
	for _, seed := range []struct {
		questionID uint
		nextReview time.Time
	}{
		{qa.ID, now.Add(-1 * time.Hour)},
		{qb.ID, now.Add(-48 * time.Hour)},
		{qc.ID, now.Add(12 * time.Hour)}, // not due yet
	} {
		require.NoError(t, db.Create(&model.ReviewItem{
			UserID:        testUserID,
			QuestionID:    seed.questionID,
			NextReviewAt:  seed.nextReview,
			IntervalHours: 24,
			EaseFactor:    2.5,
			Source:        model.ReviewSourceAuto,
		}).Error)
	}

	due, err := svc.DueQueue(testUserID, 0)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, qb.ID, due[0].QuestionID)
	assert.Equal(t, qa.ID, due[1].QuestionID)
	assert.NotEmpty(t, due[0].QuestionText)
	assert.NotEmpty(t, due[0].Domain)
}

func TestReviewRescheduleThroughAnswerPath(t *testing.T) {
	db := openTestDB(t)
	cert := seedCertification(t, db)
	q := seedQuestion(t, db, cert, 0, 1000)
	sessions := newTestSessionService(t, db)

	started, err := sessions.StartPractice(testUserID, "PL-300")
	require.NoError(t, err)

	// Miss once: the item is queued at the base interval.
	_, err = sessions.SubmitAnswer(testUserID, started.SessionID, &dto.SubmitAnswerRequest{
		QuestionID:    q.ID,
		SelectedIndex: 0,
	})
	require.NoError(t, err)

	var item model.ReviewItem
	require.NoError(t, db.First(&item, "user_id = ? AND question_id = ?", testUserID, q.ID).Error)
	assert.Equal(t, 24, item.IntervalHours)
	assert.Zero(t, item.Repetitions)

	// Answer it correctly: the interval grows by the ease factor.
	_, err = sessions.SubmitAnswer(testUserID, started.SessionID, &dto.SubmitAnswerRequest{
		QuestionID:    q.ID,
		SelectedIndex: 1,
	})
	require.NoError(t, err)

	require.NoError(t, db.First(&item, "user_id = ? AND question_id = ?", testUserID, q.ID).Error)
	assert.Equal(t, 1, item.Repetitions)
	assert.Greater(t, item.IntervalHours, 24)
	assert.Greater(t, item.MasteryScore, 0.0)

	// Miss again: back to the base interval with a lower ease.
	_, err = sessions.SubmitAnswer(testUserID, started.SessionID, &dto.SubmitAnswerRequest{
		QuestionID:    q.ID,
		SelectedIndex: 2,
	})
	require.NoError(t, err)

	require.NoError(t, db.First(&item, "user_id = ? AND question_id = ?", testUserID, q.ID).Error)
	assert.Equal(t, 24, item.IntervalHours)
	assert.Less(t, item.EaseFactor, 2.5)
}

func TestRemoveDeletesItem(t *testing.T) {
	db := openTestDB(t)
	cert := seedCertification(t, db)
	q := seedQuestion(t, db, cert, 0, 1000)
	svc := newTestReviewService(t, db)

	_, err := svc.Flag(testUserID, &dto.FlagForReviewRequest{QuestionID: q.ID})
	require.NoError(t, err)
	require.NoError(t, svc.Remove(testUserID, q.ID))

	var count int64
	require.NoError(t, db.Model(&model.ReviewItem{}).Where("user_id = ?", testUserID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestConceptMasteryGroupsWeakestFirst(t *testing.T) {
	db := openTestDB(t)
	cert := seedCertification(t, db)
	svc := newTestReviewService(t, db)

	qa := seedQuestion(t, db, cert, 0, 1000)
	qb := seedQuestion(t, db, cert, 0, 1000)
	qc := seedQuestion(t, db, cert, 1, 1000)

	now := time.Now()
	for _, seed := range []struct {
		questionID uint
		tag        string
		mastery    float64
	}{
		{qa.ID, "dax-basics", 0.9},
		{qb.ID, "dax-basics", 0.5},
		{qc.ID, "data-modeling", 0.2},
	} {
		require.NoError(t, db.Create(&model.ReviewItem{
			UserID:        testUserID,
			QuestionID:    seed.questionID,
			ConceptTag:    seed.tag,
			NextReviewAt:  now,
			IntervalHours: 24,
			EaseFactor:    2.5,
			MasteryScore:  seed.mastery,
			Source:        model.ReviewSourceAuto,
		}).Error)
	}

	concepts, err := svc.ConceptMastery(testUserID)
	require.NoError(t, err)
	require.Len(t, concepts, 2)
	assert.Equal(t, "data-modeling", concepts[0].ConceptTag)
	assert.InDelta(t, 0.2, concepts[0].MasteryScore, 0.001)
	assert.Equal(t, "dax-basics", concepts[1].ConceptTag)
	assert.InDelta(t, 0.7, concepts[1].MasteryScore, 0.001)
	assert.Equal(t, 2, concepts[1].QuestionCount)
}
