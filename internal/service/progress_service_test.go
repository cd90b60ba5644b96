package service

import (
	"testing"
	"time"

	"github.com/lshigami/certprep/internal/model"
	"github.com/lshigami/certprep/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestProgressService(t *testing.T, db *gorm.DB) ProgressService {
	t.Helper()
	cfg := selectorTestConfig()
	return NewProgressService(
		repository.NewCertificationRepository(db),
		repository.NewUserSkillRepository(db),
		repository.NewResponseRepository(db),
		repository.NewSessionRepository(db),
		cfg,
	)
}

func seedResponseAt(t *testing.T, db *gorm.DB, questionID uint, createdAt time.Time, before, after float64) {
	t.Helper()
	r := model.Response{
		UserID:        testUserID,
		QuestionID:    questionID,
		SelectedIndex: 0,
		IsCorrect:     after > before,
		SkillBefore:   before,
		SkillAfter:    after,
		CreatedAt:     createdAt,
	}
	require.NoError(t, db.Create(&r).Error)
}

func TestConfidenceTiers(t *testing.T) {
	assert.Equal(t, "low", confidenceTier(0))
	assert.Equal(t, "low", confidenceTier(19))
	assert.Equal(t, "medium", confidenceTier(20))
	assert.Equal(t, "medium", confidenceTier(59))
	assert.Equal(t, "high", confidenceTier(60))
}

func TestProficiencyPercentClamps(t *testing.T) {
	svc := &progressService{cfg: selectorTestConfig()}
	assert.InDelta(t, 0, svc.proficiencyPercent(400), 0.001)
	assert.InDelta(t, 0, svc.proficiencyPercent(600), 0.001)
	assert.InDelta(t, 50, svc.proficiencyPercent(1000), 0.001)
	assert.InDelta(t, 100, svc.proficiencyPercent(1400), 0.001)
	assert.InDelta(t, 100, svc.proficiencyPercent(1800), 0.001)
}

func TestStreaksRunAndGap(t *testing.T) {
	db := openTestDB(t)
	cert := seedCertification(t, db)
	q := seedQuestion(t, db, cert, 0, 1000)
	svc := newTestProgressService(t, db)

	// A three-day run, a gap, then a single answer today.
	now := time.Now().UTC()
	for _, daysAgo := range []int{4, 3, 2, 0} {
		seedResponseAt(t, db, q.ID, now.AddDate(0, 0, -daysAgo), 1000, 1016)
	}

	progress, err := svc.UserProgress(testUserID, "PL-300")
	require.NoError(t, err)
	assert.Equal(t, 1, progress.CurrentStreak)
	assert.Equal(t, 3, progress.LongestStreak)
}

func TestStreakExpiresAfterMissedDay(t *testing.T) {
	db := openTestDB(t)
	cert := seedCertification(t, db)
	q := seedQuestion(t, db, cert, 0, 1000)
	svc := newTestProgressService(t, db)

	now := time.Now().UTC()
	for _, daysAgo := range []int{4, 3, 2} {
		seedResponseAt(t, db, q.ID, now.AddDate(0, 0, -daysAgo), 1000, 1016)
	}

	progress, err := svc.UserProgress(testUserID, "PL-300")
	require.NoError(t, err)
	assert.Equal(t, 0, progress.CurrentStreak)
	assert.Equal(t, 3, progress.LongestStreak)
}

func TestUserProgressAggregatesDomains(t *testing.T) {
	db := openTestDB(t)
	cert := seedCertification(t, db)
	svc := newTestProgressService(t, db)

	require.NoError(t, db.Create(&model.UserSkill{UserID: testUserID, GlobalRating: 1080}).Error)
	require.NoError(t, db.Create(&model.UserDomainSkill{
		UserID: testUserID, DomainID: cert.Domains[0].ID,
		Rating: 1000, QuestionsAnswered: 12, QuestionsCorrect: 9,
	}).Error)
	require.NoError(t, db.Create(&model.UserDomainSkill{
		UserID: testUserID, DomainID: cert.Domains[1].ID,
		Rating: 800, QuestionsAnswered: 8, QuestionsCorrect: 2,
	}).Error)

	progress, err := svc.UserProgress(testUserID, "PL-300")
	require.NoError(t, err)

	assert.InDelta(t, 1080, progress.GlobalRating, 0.001)
	assert.Equal(t, 20, progress.TotalQuestions)
	assert.Equal(t, 11, progress.TotalCorrect)
	assert.InDelta(t, 0.55, progress.Accuracy, 0.001)
	assert.Equal(t, "medium", progress.Confidence)

	// Weighted rating (equal weights) is 900; pass-equivalent rating minus
	// the margin is 1100-200=900, so the estimate sits at 50%.
	assert.InDelta(t, 50, progress.PassProbability, 0.001)

	require.Len(t, progress.DomainSkills, 2)
	assert.Equal(t, "Prepare the data", progress.DomainSkills[0].DomainName)
	assert.InDelta(t, 50, progress.DomainSkills[0].ProficiencyPercent, 0.001)
	assert.InDelta(t, 0.75, progress.DomainSkills[0].Accuracy, 0.001)
	assert.InDelta(t, 25, progress.DomainSkills[1].ProficiencyPercent, 0.001)
}

func TestUserProgressIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	cert := seedCertification(t, db)
	q := seedQuestion(t, db, cert, 0, 1000)
	svc := newTestProgressService(t, db)

	now := time.Now().UTC()
	seedResponseAt(t, db, q.ID, now.Add(-2*time.Hour), 1000, 1016)
	seedResponseAt(t, db, q.ID, now.Add(-1*time.Hour), 1016, 1002)

	first, err := svc.UserProgress(testUserID, "PL-300")
	require.NoError(t, err)
	second, err := svc.UserProgress(testUserID, "PL-300")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Greater(t, first.Volatility, 0.0)
}

func TestUserProgressFreshUser(t *testing.T) {
	db := openTestDB(t)
	seedCertification(t, db)
	svc := newTestProgressService(t, db)

	progress, err := svc.UserProgress(testUserID, "PL-300")
	require.NoError(t, err)
	assert.InDelta(t, model.DefaultRating, progress.GlobalRating, 0.001)
	assert.Zero(t, progress.TotalQuestions)
	assert.Equal(t, "low", progress.Confidence)
	assert.Zero(t, progress.CurrentStreak)
	assert.Zero(t, progress.LongestStreak)
	assert.Zero(t, progress.Volatility)
	require.Len(t, progress.DomainSkills, 2)
	for _, ds := range progress.DomainSkills {
		assert.InDelta(t, model.DefaultRating, ds.Rating, 0.001)
	}
}
