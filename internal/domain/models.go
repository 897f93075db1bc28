package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// Stage represents the single active step of the intake wizard
type Stage string

const (
	StagePhoto       Stage = "photo"
	StageDescription Stage = "description"
	StageCategory    Stage = "category"
	StageQuestions   Stage = "questions"
	StageContact     Stage = "contact"
	StageLoading     Stage = "loading"
	StageEstimate    Stage = "estimate"
)

// LeadStatus represents the lifecycle state of a lead's estimate computation
type LeadStatus string

const (
	LeadStatusPending  LeadStatus = "pending"
	LeadStatusComplete LeadStatus = "complete"
	LeadStatusError    LeadStatus = "error"
)

// Lead represents one user's project intake plus its downstream estimate.
// A row exists only once the wizard has reached the contact, loading, or
// estimate stage; subsequent submissions update the row in place.
type Lead struct {
	BaseModel
	ContractorID       string          `gorm:"type:varchar(100);not null;index;column:contractor_id"`
	ProjectDescription string          `gorm:"type:text;column:project_description"`
	ProjectTitle       string          `gorm:"type:varchar(255);column:project_title"`
	Category           *string         `gorm:"type:varchar(100);index"`
	Answers            json.RawMessage `gorm:"type:jsonb"`
	Status             LeadStatus      `gorm:"type:varchar(20);not null;default:'pending';index"`
	ErrorMessage       *string         `gorm:"type:text;column:error_message"`
	ProjectImages      pq.StringArray  `gorm:"type:text[];column:project_images"`
	UserName           *string         `gorm:"type:varchar(200);column:user_name"`
	UserEmail          *string         `gorm:"type:varchar(255);column:user_email"`
	UserPhone          *string         `gorm:"type:varchar(50);column:user_phone"`
	ProjectAddress     *string         `gorm:"type:varchar(500);column:project_address"`
	IsTestEstimate     bool            `gorm:"not null;default:false;column:is_test_estimate"`
	EstimateData       json.RawMessage `gorm:"type:jsonb;column:estimate_data"`
}

// QuestionAnswer holds one answered question within an AnswersState
type QuestionAnswer struct {
	Question string   `json:"question"`
	Type     string   `json:"type"`
	Answers  []string `json:"answers"`
	Options  []string `json:"options"`
}

// AnswersState maps category name -> question id -> answered question.
// Mutated only when questions are completed; submission paths read a snapshot.
type AnswersState map[string]map[string]QuestionAnswer

// QuestionDefinition is one question within a question set
type QuestionDefinition struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Type     string   `json:"type"`
	Options  []string `json:"options,omitempty"`
}

// QuestionSet is a catalog entry: category-specific questions plus the
// keywords used to match free-text descriptions against it
type QuestionSet struct {
	Category  string               `json:"category"`
	Keywords  []string             `json:"keywords"`
	Questions []QuestionDefinition `json:"questions"`
}

// CategoryQuestions is the consolidated result of description matching.
// Produced once per description submission, read-only thereafter.
type CategoryQuestions struct {
	Category  string               `json:"category"`
	Questions []QuestionDefinition `json:"questions"`
}

// EstimateConfig is the immutable per-session configuration. ContractorID is
// required before any lead can be created.
type EstimateConfig struct {
	ContractorID string `json:"contractorId"`
}

// NoticeSeverity classifies a user-visible notice
type NoticeSeverity string

const (
	NoticeSeverityInfo    NoticeSeverity = "info"
	NoticeSeveritySuccess NoticeSeverity = "success"
	NoticeSeverityError   NoticeSeverity = "error"
)

// Notice is a transient user-visible message surfaced by the wizard
type Notice struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Severity    NoticeSeverity `json:"severity"`
	CreatedAt   time.Time      `json:"createdAt"`
}
