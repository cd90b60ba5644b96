package dto

// StartSessionRequest begins an adaptive practice session.
type StartSessionRequest struct {
	CertificationCode string `json:"certification_code" binding:"required"`
}

// SubmitAnswerRequest is a single answer within a practice session.
type SubmitAnswerRequest struct {
	QuestionID       uint `json:"question_id" binding:"required"`
	SelectedIndex    int  `json:"selected_index" binding:"min=0,max=3"`
	TimeSpentSeconds *int `json:"time_spent_seconds,omitempty"`
}

// StartSimulationRequest begins a timed full-exam simulation.
type StartSimulationRequest struct {
	CertificationCode string `json:"certification_code" binding:"required"`
}

// SubmitSimAnswerRequest records an answer during a simulation; no feedback
// is returned until the simulation completes.
type SubmitSimAnswerRequest struct {
	SessionID        uint `json:"session_id" binding:"required"`
	QuestionID       uint `json:"question_id" binding:"required"`
	QuestionIndex    int  `json:"question_index" binding:"min=0"`
	SelectedIndex    int  `json:"selected_index" binding:"min=0,max=3"`
	TimeSpentSeconds *int `json:"time_spent_seconds,omitempty"`
}

// FlagForReviewRequest adds a question to the review queue manually.
type FlagForReviewRequest struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	ConceptTag string `json:"concept_tag,omitempty"`
}
