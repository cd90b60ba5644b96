package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SessionModePractice   = "practice"
	SessionModeSimulation = "simulation"
)

// Session covers both adaptive practice sittings and timed simulations.
//
// For simulations QuestionOrder holds the pre-drawn question set; for
// practice ServedQuestionIDs is the seen-set used to avoid repeats within the
// sitting. Version backs the optimistic concurrency check on answer writes.
type Session struct {
	ID                uint                      `gorm:"primarykey" json:"id"`
	UserID            string                    `json:"user_id" gorm:"size:36;not null;index"`
	CertificationID   uint                      `json:"certification_id" gorm:"not null;index"`
	Certification     Certification             `json:"certification,omitempty" gorm:"foreignKey:CertificationID"`
	Mode              string                    `json:"mode" gorm:"not null;default:'practice'"`
	StartedAt         time.Time                 `json:"started_at" gorm:"autoCreateTime"`
	EndedAt           *time.Time                `json:"ended_at,omitempty"`
	TotalQuestions    int                       `json:"total_questions" gorm:"default:0"`
	CorrectAnswers    int                       `json:"correct_answers" gorm:"default:0"`
	SkillBefore       float64                   `json:"skill_before"`
	SkillAfter        *float64                  `json:"skill_after,omitempty"`
	IsComplete        bool                      `json:"is_complete" gorm:"default:false"`
	Score             *int                      `json:"score,omitempty"`     // simulation only, 0-1000
	IsPassed          *bool                     `json:"is_passed,omitempty"` // simulation only
	QuestionOrder     datatypes.JSONSlice[uint] `json:"question_order,omitempty"`
	ServedQuestionIDs datatypes.JSONSlice[uint] `json:"served_question_ids,omitempty"`
	TimeLimitSeconds  int                       `json:"time_limit_seconds" gorm:"default:0"` // 0 = unbounded
	Version           int                       `json:"-" gorm:"default:0"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
	DeletedAt         gorm.DeletedAt            `gorm:"index" json:"-"`
}

// Active reports whether the session still accepts answers.
func (s *Session) Active() bool {
	return !s.IsComplete && s.EndedAt == nil
}
