package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CreateSessionRequest starts a new wizard session. ContractorID may be
// omitted when the widget token already carries it; the session then fails
// fast at lead creation if neither source provides one.
type CreateSessionRequest struct {
	ContractorID string `json:"contractorId" validate:"omitempty,max=100"`
}

// SubmitPhotosRequest records already-hosted photo URLs for the session
type SubmitPhotosRequest struct {
	PhotoURLs []string `json:"photoUrls" validate:"dive,url"`
}

// SubmitDescriptionRequest submits the free-text project description
type SubmitDescriptionRequest struct {
	Description string `json:"description" validate:"required,max=5000"`
}

// SelectCategoryRequest picks a category when description matching found none
type SelectCategoryRequest struct {
	Category string `json:"category" validate:"required,max=100"`
}

// CompleteQuestionsRequest submits the full answer state for the session
type CompleteQuestionsRequest struct {
	Answers AnswersState `json:"answers" validate:"required"`
}

// SubmitContactRequest submits the contact form
type SubmitContactRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Phone   string `json:"phone" validate:"omitempty,max=50"`
	Address string `json:"address" validate:"omitempty,max=500"`
}

// SessionDTO is the API representation of a wizard session
type SessionDTO struct {
	ID                   uuid.UUID           `json:"id"`
	Stage                Stage               `json:"stage"`
	ContractorID         string              `json:"contractorId,omitempty"`
	PhotoURLs            []string            `json:"photoUrls,omitempty"`
	ProjectDescription   string              `json:"projectDescription,omitempty"`
	SelectedCategory     *string             `json:"selectedCategory,omitempty"`
	MatchedQuestionSets  []CategoryQuestions `json:"matchedQuestionSets,omitempty"`
	LeadID               *uuid.UUID          `json:"leadId,omitempty"`
	IsGeneratingEstimate bool                `json:"isGeneratingEstimate"`
	EstimateReady        bool                `json:"estimateReady"`
	EstimateData         json.RawMessage     `json:"estimateData,omitempty"`
	Notices              []Notice            `json:"notices,omitempty"`
	CreatedAt            time.Time           `json:"createdAt"`
	UpdatedAt            time.Time           `json:"updatedAt"`
}

// LeadDTO is the API representation of a persisted lead
type LeadDTO struct {
	ID                 uuid.UUID       `json:"id"`
	ContractorID       string          `json:"contractorId"`
	ProjectDescription string          `json:"projectDescription"`
	ProjectTitle       string          `json:"projectTitle"`
	Category           *string         `json:"category,omitempty"`
	Answers            json.RawMessage `json:"answers,omitempty"`
	Status             LeadStatus      `json:"status"`
	ErrorMessage       *string         `json:"errorMessage,omitempty"`
	ProjectImages      []string        `json:"projectImages,omitempty"`
	UserName           *string         `json:"userName,omitempty"`
	UserEmail          *string         `json:"userEmail,omitempty"`
	UserPhone          *string         `json:"userPhone,omitempty"`
	ProjectAddress     *string         `json:"projectAddress,omitempty"`
	IsTestEstimate     bool            `json:"isTestEstimate"`
	EstimateData       json.RawMessage `json:"estimateData,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// CatalogDTO lists the available question-set categories
type CatalogDTO struct {
	Categories []QuestionSet `json:"categories"`
}

// UploadedPhotoDTO describes one stored photo upload
type UploadedPhotoDTO struct {
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// ErrorResponse is a simple error payload used in swagger annotations
type ErrorResponse struct {
	Error string `json:"error"`
}
