package wizard

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quotewise/intake-api/internal/domain"
	"github.com/quotewise/intake-api/internal/estimate"
)

// Session holds the full state of one wizard run. All mutation happens under
// mu via the Service, so every async continuation (HTTP trigger or poll
// outcome) reads a consistent snapshot and applies one transition.
type Session struct {
	mu sync.Mutex

	ID     uuid.UUID
	Config domain.EstimateConfig

	Stage                domain.Stage
	PhotoURLs            []string
	ProjectDescription   string
	SelectedCategory     *string
	Matched              []domain.CategoryQuestions
	Answers              domain.AnswersState
	LeadID               *uuid.UUID
	IsGeneratingEstimate bool
	EstimateData         json.RawMessage
	Notices              []domain.Notice

	// poller is the currently running poll loop, if any. Replaced only after
	// the previous loop has been canceled or has delivered its outcome.
	poller *estimate.Poller

	CreatedAt time.Time
	UpdatedAt time.Time
}

func newSession(cfg domain.EstimateConfig) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New(),
		Config:    cfg,
		Stage:     domain.StagePhoto,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}

func (s *Session) addNotice(severity domain.NoticeSeverity, title, description string) domain.Notice {
	notice := domain.Notice{
		Title:       title,
		Description: description,
		Severity:    severity,
		CreatedAt:   time.Now().UTC(),
	}
	s.Notices = append(s.Notices, notice)
	return notice
}

// estimateReady reports whether the estimate data has landed. Reached-via-skip
// sessions sit on the estimate stage with this still false while the poll
// loop runs.
func (s *Session) estimateReady() bool {
	return len(s.EstimateData) > 0
}

// dto builds a snapshot for the API layer. Caller must hold mu.
func (s *Session) dto() *domain.SessionDTO {
	photoURLs := make([]string, len(s.PhotoURLs))
	copy(photoURLs, s.PhotoURLs)

	notices := make([]domain.Notice, len(s.Notices))
	copy(notices, s.Notices)

	matched := make([]domain.CategoryQuestions, len(s.Matched))
	copy(matched, s.Matched)

	return &domain.SessionDTO{
		ID:                   s.ID,
		Stage:                s.Stage,
		ContractorID:         s.Config.ContractorID,
		PhotoURLs:            photoURLs,
		ProjectDescription:   s.ProjectDescription,
		SelectedCategory:     s.SelectedCategory,
		MatchedQuestionSets:  matched,
		LeadID:               s.LeadID,
		IsGeneratingEstimate: s.IsGeneratingEstimate,
		EstimateReady:        s.estimateReady(),
		EstimateData:         s.EstimateData,
		Notices:              notices,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}
