package model

import (
	"time"
)

// Response is the append-only answer log, the ground truth for all derived
// aggregates. SkillBefore/SkillAfter record the exact global-rating
// transition this answer caused; the row is written in the same transaction
// as the rating mutation and never updated afterwards.
type Response struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	UserID           string    `json:"user_id" gorm:"size:36;not null;index"`
	QuestionID       uint      `json:"question_id" gorm:"not null;index"`
	Question         Question  `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	SessionID        *uint     `json:"session_id,omitempty" gorm:"index"`
	SelectedIndex    int       `json:"selected_index" gorm:"not null"`
	IsCorrect        bool      `json:"is_correct" gorm:"not null"`
	TimeSpentSeconds *int      `json:"time_spent_seconds,omitempty"`
	SkillBefore      float64   `json:"skill_before"`
	SkillAfter       float64   `json:"skill_after"`
	CreatedAt        time.Time `json:"created_at" gorm:"index"`
}
