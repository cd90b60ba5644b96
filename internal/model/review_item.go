package model

import (
	"time"
)

const (
	ReviewSourceAuto   = "auto"   // queued after a wrong answer
	ReviewSourceManual = "manual" // flagged explicitly by the user
)

// ReviewItem is the spaced-repetition queue entry, one row per
// (user, question) with upsert semantics.
type ReviewItem struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	UserID        string    `json:"user_id" gorm:"size:36;not null;uniqueIndex:idx_user_question"`
	QuestionID    uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_user_question"`
	Question      Question  `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	ConceptTag    string    `json:"concept_tag,omitempty" gorm:"index"`
	NextReviewAt  time.Time `json:"next_review_at" gorm:"index"`
	IntervalHours int       `json:"interval_hours" gorm:"default:24"`
	EaseFactor    float64   `json:"ease_factor" gorm:"default:2.5"`
	Repetitions   int       `json:"repetitions" gorm:"default:0"`
	MasteryScore  float64   `json:"mastery_score" gorm:"default:0"`
	Source        string    `json:"source" gorm:"default:'auto'"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
