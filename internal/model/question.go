package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Question is itself an ELO participant: DifficultyRating moves symmetrically
// with the skill of every user who answers it.
type Question struct {
	ID               uint                        `gorm:"primarykey" json:"id"`
	CertificationID  uint                        `json:"certification_id" gorm:"not null;index"`
	DomainID         uint                        `json:"domain_id" gorm:"not null;index"`
	Domain           Domain                      `json:"domain,omitempty" gorm:"foreignKey:DomainID"`
	ScenarioText     string                      `json:"scenario_text,omitempty" gorm:"type:text"`
	QuestionText     string                      `json:"question_text" gorm:"type:text;not null"`
	Options          datatypes.JSONSlice[string] `json:"options" gorm:"not null"` // exactly 4, ordered
	CorrectIndex     int                         `json:"correct_index" gorm:"not null"`
	Explanation      string                      `json:"explanation,omitempty" gorm:"type:text"`
	ConceptTag       string                      `json:"concept_tag,omitempty" gorm:"index"`
	DifficultyRating float64                     `json:"difficulty_rating" gorm:"default:1000;index"`
	TimesAnswered    int                         `json:"times_answered" gorm:"default:0"`
	TimesCorrect     int                         `json:"times_correct" gorm:"default:0"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
	DeletedAt        gorm.DeletedAt              `gorm:"index" json:"-"`
}
