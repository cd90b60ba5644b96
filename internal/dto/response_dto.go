package dto

import "time"

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// CertificationDTO is the listing entry for available certifications.
type CertificationDTO struct {
	ID            uint        `json:"id"`
	Code          string      `json:"code"`
	Title         string      `json:"title"`
	Description   string      `json:"description,omitempty"`
	IsActive      bool        `json:"is_active"`
	QuestionCount int64       `json:"question_count"`
	Domains       []DomainDTO `json:"domains,omitempty"`
}

type DomainDTO struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	Weight    float64 `json:"weight"`
	SortOrder int     `json:"sort_order"`
}

// SessionDTO is returned when a session starts or ends.
type SessionDTO struct {
	SessionID         uint       `json:"session_id"`
	CertificationCode string     `json:"certification_code"`
	Mode              string     `json:"mode"`
	StartedAt         time.Time  `json:"started_at"`
	EndedAt           *time.Time `json:"ended_at,omitempty"`
	TotalQuestions    int        `json:"total_questions"`
	CorrectAnswers    int        `json:"correct_answers"`
	SkillBefore       float64    `json:"skill_before"`
	SkillAfter        *float64   `json:"skill_after,omitempty"`
	IsComplete        bool       `json:"is_complete"`
}

// ServedQuestionDTO is a question presented to the user; the correct index
// and explanation are withheld until the answer is submitted.
type ServedQuestionDTO struct {
	QuestionID   uint     `json:"question_id"`
	ScenarioText string   `json:"scenario_text,omitempty"`
	QuestionText string   `json:"question_text"`
	Options      []string `json:"options"`
	Domain       string   `json:"domain"`
	Difficulty   float64  `json:"difficulty"`
	FromCache    bool     `json:"from_cache"`
}

// AnswerFeedbackDTO carries exactly what the presentation layer needs to
// render per-answer feedback without further derivation.
type AnswerFeedbackDTO struct {
	IsCorrect           bool    `json:"is_correct"`
	CorrectIndex        int     `json:"correct_index"`
	Explanation         string  `json:"explanation,omitempty"`
	SkillBefore         float64 `json:"skill_before"`
	SkillAfter          float64 `json:"skill_after"`
	Domain              string  `json:"domain"`
	DomainSkillAfter    float64 `json:"domain_skill_after"`
	AutoQueuedForReview bool    `json:"auto_queued_for_review"`
}

// --- Simulation DTOs ---

type SimQuestionDTO struct {
	QuestionID    uint     `json:"question_id"`
	QuestionIndex int      `json:"question_index"`
	ScenarioText  string   `json:"scenario_text,omitempty"`
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	Domain        string   `json:"domain"`
}

type SimulationDTO struct {
	SessionID        uint             `json:"session_id"`
	Questions        []SimQuestionDTO `json:"questions"`
	TotalQuestions   int              `json:"total_questions"`
	TimeLimitMinutes int              `json:"time_limit_minutes"`
	TimeLimitSeconds int              `json:"time_limit_seconds"`
}

type DomainResultDTO struct {
	DomainName       string  `json:"domain_name"`
	Weight           float64 `json:"weight"`
	QuestionsTotal   int     `json:"questions_total"`
	QuestionsCorrect int     `json:"questions_correct"`
	Accuracy         float64 `json:"accuracy"`
}

type QuestionResultDTO struct {
	Index         int      `json:"index"`
	QuestionID    uint     `json:"question_id"`
	ScenarioText  string   `json:"scenario_text,omitempty"`
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectIndex  int      `json:"correct_index"`
	SelectedIndex int      `json:"selected_index"` // -1 when unanswered
	IsCorrect     bool     `json:"is_correct"`
	Explanation   string   `json:"explanation,omitempty"`
	Domain        string   `json:"domain"`
	ConceptTag    string   `json:"concept_tag,omitempty"`
}

type SimulationResultDTO struct {
	SessionID        uint                `json:"session_id"`
	Score            int                 `json:"score"`
	IsPassed         bool                `json:"is_passed"`
	PassThreshold    int                 `json:"pass_threshold"`
	TotalQuestions   int                 `json:"total_questions"`
	CorrectAnswers   int                 `json:"correct_answers"`
	Accuracy         float64             `json:"accuracy"`
	TimeTakenMinutes float64             `json:"time_taken_minutes"`
	DomainResults    []DomainResultDTO   `json:"domain_results"`
	QuestionResults  []QuestionResultDTO `json:"question_results"`
}

type SimulationSummaryDTO struct {
	SessionID      uint      `json:"session_id"`
	Score          int       `json:"score"`
	IsPassed       bool      `json:"is_passed"`
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	StartedAt      time.Time `json:"started_at"`
}

// --- Progress DTOs ---

type DomainSkillDTO struct {
	DomainID           uint    `json:"domain_id"`
	DomainName         string  `json:"domain_name"`
	Rating             float64 `json:"rating"`
	ProficiencyPercent float64 `json:"proficiency_percent"`
	QuestionsAnswered  int     `json:"questions_answered"`
	QuestionsCorrect   int     `json:"questions_correct"`
	Accuracy           float64 `json:"accuracy"`
}

type UserProgressDTO struct {
	GlobalRating    float64          `json:"global_rating"`
	TotalQuestions  int              `json:"total_questions"`
	TotalCorrect    int              `json:"total_correct"`
	Accuracy        float64          `json:"accuracy"`
	PassProbability float64          `json:"pass_probability"` // 0-100
	Confidence      string           `json:"confidence"`       // "low", "medium", "high"
	CurrentStreak   int              `json:"current_streak"`
	LongestStreak   int              `json:"longest_streak"`
	Volatility      float64          `json:"volatility"`
	DomainSkills    []DomainSkillDTO `json:"domain_skills"`
	RecentSessions  []SessionDTO     `json:"recent_sessions"`
}

// --- Review DTOs ---

type ReviewItemDTO struct {
	QuestionID   uint      `json:"question_id"`
	ScenarioText string    `json:"scenario_text,omitempty"`
	QuestionText string    `json:"question_text"`
	Options      []string  `json:"options"`
	Domain       string    `json:"domain"`
	ConceptTag   string    `json:"concept_tag,omitempty"`
	NextReviewAt time.Time `json:"next_review_at"`
	Repetitions  int       `json:"repetitions"`
	MasteryScore float64   `json:"mastery_score"`
	Source       string    `json:"source"`
}

type ConceptMasteryDTO struct {
	ConceptTag    string     `json:"concept_tag"`
	MasteryScore  float64    `json:"mastery_score"`
	QuestionCount int        `json:"question_count"`
	LastReviewed  *time.Time `json:"last_reviewed,omitempty"`
}
