package dto

// DomainCreateDTO is used within CertificationCreateDTO.
type DomainCreateDTO struct {
	Name      string  `json:"name" binding:"required"`
	Weight    float64 `json:"weight" binding:"required,gt=0,lte=1"`
	SortOrder int     `json:"sort_order" binding:"min=0"`
}

// CertificationCreateDTO is for admins to register a certification together
// with its weighted syllabus domains.
type CertificationCreateDTO struct {
	Code            string            `json:"code" binding:"required"`
	Title           string            `json:"title" binding:"required"`
	Description     string            `json:"description,omitempty"`
	PassScore       int               `json:"pass_score,omitempty"`
	PassSkillRating float64           `json:"pass_skill_rating,omitempty"`
	Domains         []DomainCreateDTO `json:"domains" binding:"required,min=1,dive"`
}

// QuestionCreateDTO is for admins to add a question by hand.
type QuestionCreateDTO struct {
	CertificationCode string   `json:"certification_code" binding:"required"`
	DomainName        string   `json:"domain_name" binding:"required"`
	ScenarioText      string   `json:"scenario_text,omitempty"`
	QuestionText      string   `json:"question_text" binding:"required"`
	Options           []string `json:"options" binding:"required,len=4,dive,required"`
	CorrectIndex      int      `json:"correct_index" binding:"min=0,max=3"`
	Explanation       string   `json:"explanation,omitempty"`
	ConceptTag        string   `json:"concept_tag,omitempty"`
	DifficultyRating  float64  `json:"difficulty_rating,omitempty"`
}

// ImportResultDTO summarizes a bulk question import.
type ImportResultDTO struct {
	TotalProcessed int      `json:"total_processed"`
	Created        int      `json:"created"`
	Skipped        int      `json:"skipped"`
	Errors         []string `json:"errors,omitempty"`
}
