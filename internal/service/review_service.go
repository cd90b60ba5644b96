package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lshigami/certprep/internal/dto"
	"github.com/lshigami/certprep/internal/model"
	"github.com/lshigami/certprep/internal/repository"
	"github.com/lshigami/certprep/internal/srs"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const defaultDueLimit = 20

// ReviewService exposes the spaced-repetition queue. Items enter it
// automatically (the answer path queues every miss) or manually via Flag;
// rescheduling happens wherever the question gets re-answered.
type ReviewService interface {
	DueQueue(userID string, limit int) ([]dto.ReviewItemDTO, error)
	Flag(userID string, req *dto.FlagForReviewRequest) (*dto.ReviewItemDTO, error)
	Remove(userID string, questionID uint) error
	ConceptMastery(userID string) ([]dto.ConceptMasteryDTO, error)
}

type reviewService struct {
	reviewRepo   repository.ReviewRepository
	questionRepo repository.QuestionRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, questionRepo repository.QuestionRepository) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, questionRepo: questionRepo}
}

func (s *reviewService) DueQueue(userID string, limit int) ([]dto.ReviewItemDTO, error) {
	if limit <= 0 {
		limit = defaultDueLimit
	}
	items, err := s.reviewRepo.FindDue(userID, time.Now(), limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReviewItemDTO, len(items))
	for i, item := range items {
		out[i] = reviewItemToDTO(&item)
	}
	return out, nil
}

func (s *reviewService) Flag(userID string, req *dto.FlagForReviewRequest) (*dto.ReviewItemDTO, error) {
	question, err := s.questionRepo.FindByID(req.QuestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("question %d not found", req.QuestionID)
		}
		return nil, err
	}

	// Flagging an already-queued question is a no-op; the existing schedule
	// wins.
	existing, err := s.reviewRepo.FindByUserAndQuestion(userID, req.QuestionID)
	if err == nil {
		result := reviewItemToDTO(existing)
		result.QuestionText = question.QuestionText
		result.ScenarioText = question.ScenarioText
		result.Options = question.Options
		result.Domain = question.Domain.Name
		return &result, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conceptTag := req.ConceptTag
	if conceptTag == "" {
		conceptTag = question.ConceptTag
	}
	item := srs.NewItem(userID, req.QuestionID, conceptTag, model.ReviewSourceManual, time.Now())
	if err := s.reviewRepo.Create(&item); err != nil {
		return nil, err
	}
	item.Question = *question

	log.Info().Str("userID", userID).Uint("questionID", req.QuestionID).Msg("Question flagged for review")
	result := reviewItemToDTO(&item)
	return &result, nil
}

func (s *reviewService) Remove(userID string, questionID uint) error {
	return s.reviewRepo.Delete(userID, questionID)
}

// ConceptMastery groups the user's review items by concept tag, weakest
// first.
func (s *reviewService) ConceptMastery(userID string) ([]dto.ConceptMasteryDTO, error) {
	items, err := s.reviewRepo.FindAllByUser(userID)
	if err != nil {
		return nil, err
	}

	type tally struct {
		sum          float64
		count        int
		lastReviewed time.Time
	}
	byConcept := make(map[string]*tally)
	for _, item := range items {
		tag := item.ConceptTag
		if tag == "" {
			tag = "untagged"
		}
		entry, ok := byConcept[tag]
		if !ok {
			entry = &tally{}
			byConcept[tag] = entry
		}
		entry.sum += item.MasteryScore
		entry.count++
		if item.UpdatedAt.After(entry.lastReviewed) {
			entry.lastReviewed = item.UpdatedAt
		}
	}

	out := make([]dto.ConceptMasteryDTO, 0, len(byConcept))
	for tag, entry := range byConcept {
		concept := dto.ConceptMasteryDTO{
			ConceptTag:    tag,
			MasteryScore:  entry.sum / float64(entry.count),
			QuestionCount: entry.count,
		}
		if !entry.lastReviewed.IsZero() {
			last := entry.lastReviewed
			concept.LastReviewed = &last
		}
		out = append(out, concept)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MasteryScore != out[j].MasteryScore {
			return out[i].MasteryScore < out[j].MasteryScore
		}
		return out[i].ConceptTag < out[j].ConceptTag
	})
	return out, nil
}

func reviewItemToDTO(item *model.ReviewItem) dto.ReviewItemDTO {
	return dto.ReviewItemDTO{
		QuestionID:   item.QuestionID,
		ScenarioText: item.Question.ScenarioText,
		QuestionText: item.Question.QuestionText,
		Options:      item.Question.Options,
		Domain:       item.Question.Domain.Name,
		ConceptTag:   item.ConceptTag,
		NextReviewAt: item.NextReviewAt,
		Repetitions:  item.Repetitions,
		MasteryScore: item.MasteryScore,
		Source:       item.Source,
	}
}
