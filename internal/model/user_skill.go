package model

import (
	"time"
)

const DefaultRating = 1000.0

// UserSkill is the per-user global rating record. UserID is the opaque
// identity supplied by the auth layer; rows are created lazily on first
// answer and never deleted while the user exists.
type UserSkill struct {
	UserID       string    `gorm:"primarykey;size:36" json:"user_id"`
	GlobalRating float64   `json:"global_rating" gorm:"default:1000"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserDomainSkill tracks per-domain proficiency, one row per (user, domain).
type UserDomainSkill struct {
	ID                uint      `gorm:"primarykey" json:"id"`
	UserID            string    `json:"user_id" gorm:"size:36;not null;uniqueIndex:idx_user_domain"`
	DomainID          uint      `json:"domain_id" gorm:"not null;uniqueIndex:idx_user_domain"`
	Domain            Domain    `json:"domain,omitempty" gorm:"foreignKey:DomainID"`
	Rating            float64   `json:"rating" gorm:"default:1000"`
	QuestionsAnswered int       `json:"questions_answered" gorm:"default:0"`
	QuestionsCorrect  int       `json:"questions_correct" gorm:"default:0"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
