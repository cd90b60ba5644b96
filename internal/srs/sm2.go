// Package srs holds the spaced-repetition interval math for the review
// queue, a simplified SM-2 working in hours rather than days.
package srs

import (
	"time"

	"github.com/lshigami/certprep/internal/model"
)

const (
	BaseIntervalHours = 24
	DefaultEase       = 2.5
	MinEase           = 1.3
	MaxEase           = 2.5
	easeBonus         = 0.1
	easePenalty       = 0.2
	// mastery is a running weighted average of correctness
	masteryKeep = 0.7
	masteryNew  = 0.3
)

// NewItem returns the initial schedule for a freshly queued question.
func NewItem(userID string, questionID uint, conceptTag, source string, now time.Time) model.ReviewItem {
	return model.ReviewItem{
		UserID:        userID,
		QuestionID:    questionID,
		ConceptTag:    conceptTag,
		Source:        source,
		NextReviewAt:  now.Add(BaseIntervalHours * time.Hour),
		IntervalHours: BaseIntervalHours,
		EaseFactor:    DefaultEase,
		Repetitions:   0,
		MasteryScore:  0,
	}
}

// Apply reschedules an item after a re-answer. Correct answers grow the
// interval by the ease factor; wrong answers reset it to the base interval
// and make the item slightly "harder" (lower ease).
func Apply(item *model.ReviewItem, correct bool, now time.Time) {
	if correct {
		item.IntervalHours = int(float64(item.IntervalHours) * item.EaseFactor)
		item.EaseFactor = min(MaxEase, item.EaseFactor+easeBonus)
		item.Repetitions++
		item.MasteryScore = masteryKeep*item.MasteryScore + masteryNew*1.0
	} else {
		item.IntervalHours = BaseIntervalHours
		item.EaseFactor = max(MinEase, item.EaseFactor-easePenalty)
		item.MasteryScore = masteryKeep * item.MasteryScore
	}
	item.NextReviewAt = now.Add(time.Duration(item.IntervalHours) * time.Hour)
}
