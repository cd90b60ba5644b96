package service

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/lshigami/certprep/config"
	"github.com/lshigami/certprep/internal/dto"
	"github.com/lshigami/certprep/internal/elo"
	"github.com/lshigami/certprep/internal/model"
	"github.com/lshigami/certprep/internal/repository"
	"gorm.io/gorm"
)

const (
	// Confidence tiers on the response count backing the estimate.
	confidenceMediumAt = 20
	confidenceHighAt   = 60
	// passMargin softens the pass-probability comparison: the rating
	// equivalent of passing is an upper bound, not the break-even point.
	passMargin = 200.0
	// volatilityWindow is how many recent answers feed the volatility
	// figure.
	volatilityWindow = 20

	recentSessionsLimit = 5
)

// ProgressService derives everything shown on the progress dashboard from the
// response log and the skill tables. It holds no state of its own; calling it
// twice in a row returns the same numbers.
type ProgressService interface {
	UserProgress(userID, certCode string) (*dto.UserProgressDTO, error)
}

type progressService struct {
	certRepo      repository.CertificationRepository
	userSkillRepo repository.UserSkillRepository
	responseRepo  repository.ResponseRepository
	sessionRepo   repository.SessionRepository
	cfg           *config.Config
}

func NewProgressService(
	certRepo repository.CertificationRepository,
	userSkillRepo repository.UserSkillRepository,
	responseRepo repository.ResponseRepository,
	sessionRepo repository.SessionRepository,
	cfg *config.Config,
) ProgressService {
	return &progressService{
		certRepo:      certRepo,
		userSkillRepo: userSkillRepo,
		responseRepo:  responseRepo,
		sessionRepo:   sessionRepo,
		cfg:           cfg,
	}
}

func (s *progressService) UserProgress(userID, certCode string) (*dto.UserProgressDTO, error) {
	cert, err := s.certRepo.FindActiveByCode(certCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("certification %s not found", certCode)
		}
		return nil, err
	}

	skill, err := s.userSkillRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	domainSkills, err := s.userSkillRepo.FindDomainSkills(userID)
	if err != nil {
		return nil, err
	}
	byDomain := make(map[uint]model.UserDomainSkill, len(domainSkills))
	for _, ds := range domainSkills {
		byDomain[ds.DomainID] = ds
	}

	totalAnswered := 0
	totalCorrect := 0
	domainDTOs := make([]dto.DomainSkillDTO, 0, len(cert.Domains))
	weightedRating := 0.0
	weightTotal := 0.0
	for _, domain := range cert.Domains {
		rating := model.DefaultRating
		answered := 0
		correct := 0
		if ds, ok := byDomain[domain.ID]; ok {
			rating = ds.Rating
			answered = ds.QuestionsAnswered
			correct = ds.QuestionsCorrect
		}
		totalAnswered += answered
		totalCorrect += correct
		weightedRating += domain.Weight * rating
		weightTotal += domain.Weight

		accuracy := 0.0
		if answered > 0 {
			accuracy = float64(correct) / float64(answered)
		}
		domainDTOs = append(domainDTOs, dto.DomainSkillDTO{
			DomainID:           domain.ID,
			DomainName:         domain.Name,
			Rating:             rating,
			ProficiencyPercent: s.proficiencyPercent(rating),
			QuestionsAnswered:  answered,
			QuestionsCorrect:   correct,
			Accuracy:           accuracy,
		})
	}
	if weightTotal > 0 {
		weightedRating /= weightTotal
	} else {
		weightedRating = skill.GlobalRating
	}

	accuracy := 0.0
	if totalAnswered > 0 {
		accuracy = float64(totalCorrect) / float64(totalAnswered)
	}

	passRating := cert.PassSkillRating
	if passRating <= 0 {
		passRating = s.cfg.Elo.PassSkillRating
	}
	passProbability := elo.PassProbability(weightedRating, passRating-passMargin) * 100

	current, longest, err := s.streaks(userID)
	if err != nil {
		return nil, err
	}

	volatility, err := s.volatility(userID)
	if err != nil {
		return nil, err
	}

	recent, err := s.recentSessions(userID, cert)
	if err != nil {
		return nil, err
	}

	return &dto.UserProgressDTO{
		GlobalRating:    skill.GlobalRating,
		TotalQuestions:  totalAnswered,
		TotalCorrect:    totalCorrect,
		Accuracy:        accuracy,
		PassProbability: passProbability,
		Confidence:      confidenceTier(totalAnswered),
		CurrentStreak:   current,
		LongestStreak:   longest,
		Volatility:      volatility,
		DomainSkills:    domainDTOs,
		RecentSessions:  recent,
	}, nil
}

func confidenceTier(responses int) string {
	switch {
	case responses >= confidenceHighAt:
		return "high"
	case responses >= confidenceMediumAt:
		return "medium"
	default:
		return "low"
	}
}

// proficiencyPercent maps a rating onto the 0-100 scale linearly between the
// configured floor and ceiling.
func (s *progressService) proficiencyPercent(rating float64) float64 {
	floor := s.cfg.Elo.ProficiencyFloor
	ceil := s.cfg.Elo.ProficiencyCeil
	if ceil <= floor {
		return 0
	}
	percent := (rating - floor) / (ceil - floor) * 100
	return math.Max(0, math.Min(100, percent))
}

// streaks counts consecutive UTC calendar days with at least one answer. The
// current streak only counts if the user answered today or yesterday.
func (s *progressService) streaks(userID string) (current, longest int, err error) {
	responses, err := s.responseRepo.FindSince(userID, time.Time{})
	if err != nil {
		return 0, 0, err
	}
	if len(responses) == 0 {
		return 0, 0, nil
	}

	daySet := make(map[string]bool)
	var days []time.Time
	for _, r := range responses {
		day := r.CreatedAt.UTC().Truncate(24 * time.Hour)
		key := day.Format("2006-01-02")
		if !daySet[key] {
			daySet[key] = true
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	run := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	last := days[len(days)-1]
	gap := today.Sub(last)
	if gap > 24*time.Hour {
		return 0, longest, nil
	}
	return run, longest, nil
}

// volatility is the standard deviation of the user's recent per-answer rating
// deltas. A high figure means the estimate has not settled yet.
func (s *progressService) volatility(userID string) (float64, error) {
	responses, err := s.responseRepo.FindLastN(userID, volatilityWindow)
	if err != nil {
		return 0, err
	}
	if len(responses) < 2 {
		return 0, nil
	}
	deltas := make([]float64, len(responses))
	mean := 0.0
	for i, r := range responses {
		deltas[i] = r.SkillAfter - r.SkillBefore
		mean += deltas[i]
	}
	mean /= float64(len(deltas))
	variance := 0.0
	for _, d := range deltas {
		variance += (d - mean) * (d - mean)
	}
	variance /= float64(len(deltas))
	return math.Sqrt(variance), nil
}

func (s *progressService) recentSessions(userID string, cert *model.Certification) ([]dto.SessionDTO, error) {
	sessions, err := s.sessionRepo.FindRecentByUser(userID, recentSessionsLimit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SessionDTO, len(sessions))
	for i := range sessions {
		code := cert.Code
		if sessions[i].CertificationID != cert.ID {
			code = ""
		}
		out[i] = *sessionToDTO(&sessions[i], code)
	}
	return out, nil
}
