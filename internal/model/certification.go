package model

import (
	"time"

	"gorm.io/gorm"
)

type Certification struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	Code            string         `json:"code" gorm:"not null;uniqueIndex"` // "PL-300"
	Title           string         `json:"title" gorm:"not null"`
	Description     string         `json:"description,omitempty"`
	PassScore       int            `json:"pass_score" gorm:"default:700"`         // 0-1000 simulation scale
	PassSkillRating float64        `json:"pass_skill_rating" gorm:"default:1100"` // rating equivalent of passing
	IsActive        bool           `json:"is_active" gorm:"default:true"`
	Domains         []Domain       `json:"domains,omitempty" gorm:"foreignKey:CertificationID"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// Domain is a syllabus topic area. Weight is the syllabus share (all weights
// of a certification sum to 1.0) and drives both adaptive selection bias and
// the simulation question distribution.
type Domain struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	CertificationID uint           `json:"certification_id" gorm:"not null;index"`
	Name            string         `json:"name" gorm:"not null"`
	Weight          float64        `json:"weight" gorm:"not null"`
	SortOrder       int            `json:"sort_order" gorm:"not null"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
