package service

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/lshigami/certprep/config"
	"github.com/lshigami/certprep/internal/model"
	"github.com/lshigami/certprep/internal/repository"
	"github.com/rs/zerolog/log"
)

// QuestionSelectorService chooses what the user sees next. Selection is
// biased toward weak domains, filtered to a difficulty window around the
// user's domain rating, and falls back to AI generation when the cached pool
// is exhausted.
type QuestionSelectorService interface {
	// SelectNextQuestion picks one question for an adaptive practice
	// session. excludeIDs is the session seen-set; the selector additionally
	// excludes questions answered recently. The bool result reports whether
	// the question came from the cached pool (false = freshly generated).
	SelectNextQuestion(userID string, cert *model.Certification, excludeIDs []uint) (*model.Question, bool, error)
	// DrawExamSet pre-draws a full simulation set distributed by syllabus
	// weight, generating questions where the pool falls short.
	DrawExamSet(userID string, cert *model.Certification, globalRating float64, count int) ([]model.Question, error)
}

type questionSelectorService struct {
	userSkillRepo repository.UserSkillRepository
	questionRepo  repository.QuestionRepository
	responseRepo  repository.ResponseRepository
	generator     QuestionGeneratorService
	cfg           *config.Config
	rng           *rand.Rand
}

func NewQuestionSelectorService(
	userSkillRepo repository.UserSkillRepository,
	questionRepo repository.QuestionRepository,
	responseRepo repository.ResponseRepository,
	generator QuestionGeneratorService,
	cfg *config.Config,
) QuestionSelectorService {
	return &questionSelectorService{
		userSkillRepo: userSkillRepo,
		questionRepo:  questionRepo,
		responseRepo:  responseRepo,
		generator:     generator,
		cfg:           cfg,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

const (
	candidateBatchSize = 10
	// minDeficit keeps every domain selectable even once the user's rating
	// reaches the proficiency ceiling.
	minDeficit = 50.0
	// unattemptedBias ranks never-practiced domains slightly below the
	// default rating so they get prioritized early on.
	unattemptedBias = 100.0
)

func (s *questionSelectorService) SelectNextQuestion(userID string, cert *model.Certification, excludeIDs []uint) (*model.Question, bool, error) {
	if len(cert.Domains) == 0 {
		return nil, false, fmt.Errorf("certification %s has no domains", cert.Code)
	}

	ratings, err := s.domainRatings(userID, cert.Domains)
	if err != nil {
		return nil, false, err
	}

	exclude, err := s.buildExcludeSet(userID, excludeIDs)
	if err != nil {
		return nil, false, err
	}

	target := s.pickTargetDomain(cert.Domains, ratings)
	targetRating := ratings[target.ID]

	// Primary: the chosen domain, widening the difficulty window until
	// something matches.
	if q := s.findCached(target.ID, targetRating, exclude); q != nil {
		return q, true, nil
	}

	// Pool exhausted for this domain: ask the content source.
	certName := fmt.Sprintf("%s %s", cert.Code, cert.Title)
	generated, genErr := s.generator.GenerateQuestion(certName, &target, targetRating)
	if genErr == nil {
		if err := s.questionRepo.Create(generated); err != nil {
			return nil, false, fmt.Errorf("failed to store generated question: %w", err)
		}
		generated.Domain = target
		log.Info().Uint("domainID", target.ID).Float64("difficulty", targetRating).Msg("Generated fresh question for exhausted pool")
		return generated, false, nil
	}
	log.Warn().Err(genErr).Str("domain", target.Name).Msg("Question generation failed, falling back to other domains")

	// Fallback: any other domain, weakest first.
	for _, domain := range orderByDeficit(cert.Domains, ratings) {
		if domain.ID == target.ID {
			continue
		}
		if q := s.findCached(domain.ID, ratings[domain.ID], exclude); q != nil {
			return q, true, nil
		}
	}

	if errors.Is(genErr, ErrGenerationUnavailable) {
		return nil, false, fmt.Errorf("%w: %s", ErrNoCandidate, genErr.Error())
	}
	return nil, false, ErrNoCandidate
}

// findCached searches one domain with a progressively widened window:
// ±window, ±2w, ±4w, then unbounded.
func (s *questionSelectorService) findCached(domainID uint, rating float64, exclude []uint) *model.Question {
	window := s.cfg.Selector.DifficultyWindow
	for _, w := range []float64{window, window * 2, window * 4} {
		candidates, err := s.questionRepo.FindCandidates(domainID, rating-w, rating+w, rating, exclude, candidateBatchSize)
		if err != nil {
			log.Error().Err(err).Uint("domainID", domainID).Msg("Candidate query failed")
			return nil
		}
		if len(candidates) > 0 {
			return &candidates[0]
		}
	}
	candidates, err := s.questionRepo.FindCandidates(domainID, -1e9, 1e9, rating, exclude, candidateBatchSize)
	if err != nil || len(candidates) == 0 {
		return nil
	}
	return &candidates[0]
}

func (s *questionSelectorService) domainRatings(userID string, domains []model.Domain) (map[uint]float64, error) {
	skills, err := s.userSkillRepo.FindDomainSkills(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load domain skills: %w", err)
	}
	byDomain := make(map[uint]float64, len(skills))
	for _, skill := range skills {
		byDomain[skill.DomainID] = skill.Rating
	}
	ratings := make(map[uint]float64, len(domains))
	for _, domain := range domains {
		if rating, ok := byDomain[domain.ID]; ok {
			ratings[domain.ID] = rating
		} else {
			ratings[domain.ID] = model.DefaultRating - unattemptedBias
		}
	}
	return ratings, nil
}

func (s *questionSelectorService) buildExcludeSet(userID string, excludeIDs []uint) ([]uint, error) {
	exclude := append([]uint(nil), excludeIDs...)
	if s.cfg.Selector.RecentDays > 0 {
		since := time.Now().AddDate(0, 0, -s.cfg.Selector.RecentDays)
		recent, err := s.responseRepo.FindAnsweredQuestionIDsSince(userID, since)
		if err != nil {
			return nil, fmt.Errorf("failed to load recent responses: %w", err)
		}
		exclude = append(exclude, recent...)
	}
	return exclude, nil
}

// pickTargetDomain draws a domain at random; the draw is biased toward
// domains where the user is weakest, scaled by syllabus weight.
func (s *questionSelectorService) pickTargetDomain(domains []model.Domain, ratings map[uint]float64) model.Domain {
	weights := make([]float64, len(domains))
	total := 0.0
	for i, domain := range domains {
		deficit := s.cfg.Elo.ProficiencyCeil - ratings[domain.ID]
		if deficit < minDeficit {
			deficit = minDeficit
		}
		weights[i] = domain.Weight * deficit
		total += weights[i]
	}
	roll := s.rng.Float64() * total
	for i, w := range weights {
		roll -= w
		if roll <= 0 {
			return domains[i]
		}
	}
	return domains[len(domains)-1]
}

func orderByDeficit(domains []model.Domain, ratings map[uint]float64) []model.Domain {
	ordered := append([]model.Domain(nil), domains...)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ratings[ordered[j].ID] < ratings[ordered[j-1].ID]; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	return ordered
}

func (s *questionSelectorService) DrawExamSet(userID string, cert *model.Certification, globalRating float64, count int) ([]model.Question, error) {
	if len(cert.Domains) == 0 {
		return nil, fmt.Errorf("certification %s has no domains", cert.Code)
	}

	// Distribute the question count by syllabus weight; the last domain
	// absorbs the rounding remainder.
	counts := make([]int, len(cert.Domains))
	remaining := count
	for i, domain := range cert.Domains {
		if i == len(cert.Domains)-1 {
			counts[i] = remaining
		} else {
			counts[i] = int(float64(count)*domain.Weight + 0.5)
			remaining -= counts[i]
		}
	}

	certName := fmt.Sprintf("%s %s", cert.Code, cert.Title)
	var drawn []model.Question
	for i, domain := range cert.Domains {
		needed := counts[i]
		if needed <= 0 {
			continue
		}
		candidates, err := s.questionRepo.FindCandidates(domain.ID, -1e9, 1e9, globalRating, nil, needed*2)
		if err != nil {
			return nil, fmt.Errorf("failed to load simulation candidates: %w", err)
		}
		s.rng.Shuffle(len(candidates), func(a, b int) {
			candidates[a], candidates[b] = candidates[b], candidates[a]
		})
		if len(candidates) > needed {
			candidates = candidates[:needed]
		}

		// Fill the shortfall with generated questions around the user's
		// level, varying difficulty for a realistic mix.
		for attempts := 0; len(candidates) < needed && attempts < needed; attempts++ {
			targetDifficulty := globalRating + float64(s.rng.Intn(401)-200)
			generated, genErr := s.generator.GenerateQuestion(certName, &cert.Domains[i], targetDifficulty)
			if genErr != nil {
				log.Warn().Err(genErr).Str("domain", domain.Name).Msg("Simulation fill generation failed")
				break
			}
			if err := s.questionRepo.Create(generated); err != nil {
				return nil, fmt.Errorf("failed to store generated question: %w", err)
			}
			generated.Domain = cert.Domains[i]
			candidates = append(candidates, *generated)
		}
		drawn = append(drawn, candidates...)
	}

	if len(drawn) == 0 {
		return nil, ErrNoCandidate
	}

	// Mixed-domain presentation.
	s.rng.Shuffle(len(drawn), func(a, b int) {
		drawn[a], drawn[b] = drawn[b], drawn[a]
	})
	return drawn, nil
}
