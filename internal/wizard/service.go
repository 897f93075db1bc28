// Package wizard drives the multi-stage intake flow: the stage state machine,
// lead submission paths, and the handoff to the asynchronous estimate job.
package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/quotewise/intake-api/internal/domain"
	"github.com/quotewise/intake-api/internal/estimate"
	"github.com/quotewise/intake-api/internal/matcher"
	"github.com/quotewise/intake-api/internal/repository"
	"go.uber.org/zap"
)

// LeadGateway is the persistence surface the wizard needs.
// *repository.LeadRepository satisfies this.
type LeadGateway interface {
	Create(ctx context.Context, lead *domain.Lead) error
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	EstimateStatus(ctx context.Context, id uuid.UUID) (*repository.EstimateStatusRow, error)
}

// Service is the flow controller. It owns the stage state machine and is the
// sole caller of the lead gateway, the job gateway, the matcher, and the
// poller. Each public trigger validates its stage precondition, applies one
// transition, and converts every gateway failure into a user-visible notice.
type Service struct {
	store    *Store
	leads    LeadGateway
	jobs     estimate.JobInvoker
	matcher  matcher.Matcher
	catalog  []domain.QuestionSet
	pollCfg  estimate.PollerConfig
	notifier Notifier
	logger   *zap.Logger
}

// NewService creates the wizard flow controller
func NewService(
	store *Store,
	leads LeadGateway,
	jobs estimate.JobInvoker,
	m matcher.Matcher,
	catalog []domain.QuestionSet,
	pollCfg estimate.PollerConfig,
	notifier Notifier,
	logger *zap.Logger,
) *Service {
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &Service{
		store:    store,
		leads:    leads,
		jobs:     jobs,
		matcher:  m,
		catalog:  catalog,
		pollCfg:  pollCfg,
		notifier: notifier,
		logger:   logger,
	}
}

// Catalog returns the question-set catalog in use
func (svc *Service) Catalog() []domain.QuestionSet {
	return svc.catalog
}

// CreateSession starts a new wizard session at the photo stage
func (svc *Service) CreateSession(cfg domain.EstimateConfig) *domain.SessionDTO {
	s := newSession(cfg)
	svc.store.Put(s)

	svc.logger.Info("wizard session created",
		zap.String("sessionID", s.ID.String()),
		zap.String("contractorID", cfg.ContractorID),
	)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dto()
}

// GetSession returns a snapshot of a session
func (svc *Service) GetSession(id uuid.UUID) (*domain.SessionDTO, error) {
	s, err := svc.store.Get(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dto(), nil
}

// DeleteSession tears down a session and cancels any running poll loop
func (svc *Service) DeleteSession(id uuid.UUID) {
	svc.store.Delete(id)
}

// SubmitPhotos records the selected photo URLs and advances to the
// description stage. An empty list is allowed; photos are optional.
func (svc *Service) SubmitPhotos(ctx context.Context, id uuid.UUID, photoURLs []string) (*domain.SessionDTO, error) {
	s, err := svc.store.Get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Stage != domain.StagePhoto {
		return nil, fmt.Errorf("%w: submitPhotos requires the photo stage, current stage is %s", ErrInvalidStage, s.Stage)
	}

	s.PhotoURLs = append([]string(nil), photoURLs...)
	s.Stage = domain.StageDescription
	s.touch()

	return s.dto(), nil
}

// SubmitDescription stores the project description and runs question-set
// matching. Matches advance to the questions stage; no matches (including a
// matcher failure) fall back to manual category selection.
func (svc *Service) SubmitDescription(ctx context.Context, id uuid.UUID, description string) (*domain.SessionDTO, error) {
	s, err := svc.store.Get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Stage != domain.StageDescription {
		return nil, fmt.Errorf("%w: submitDescription requires the description stage, current stage is %s", ErrInvalidStage, s.Stage)
	}

	s.ProjectDescription = description

	candidates, err := svc.matcher.FindMatchingQuestionSets(description, svc.catalog)
	if err != nil {
		svc.logger.Warn("question-set matching failed, falling back to category selection",
			zap.String("sessionID", s.ID.String()),
			zap.Error(err),
		)
		candidates = nil
	}

	consolidated := svc.matcher.ConsolidateQuestionSets(candidates, description)
	if len(consolidated) > 0 {
		s.Matched = consolidated
		s.Stage = domain.StageQuestions
	} else {
		s.Stage = domain.StageCategory
	}
	s.touch()

	return s.dto(), nil
}

// SelectCategory picks a category after matching found nothing
func (svc *Service) SelectCategory(ctx context.Context, id uuid.UUID, category string) (*domain.SessionDTO, error) {
	s, err := svc.store.Get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Stage != domain.StageCategory {
		return nil, fmt.Errorf("%w: selectCategory requires the category stage, current stage is %s", ErrInvalidStage, s.Stage)
	}

	set, ok := matcher.FindCategory(svc.catalog, category)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}

	s.SelectedCategory = &set.Category
	s.Matched = []domain.CategoryQuestions{{Category: set.Category, Questions: set.Questions}}
	s.Stage = domain.StageQuestions
	s.touch()

	return s.dto(), nil
}

// CompleteQuestions stores the answer state, creates the lead, and starts the
// estimate job. On a lead creation failure the wizard reverts to the
// questions stage so the user can retry without losing answers.
func (svc *Service) CompleteQuestions(ctx context.Context, id uuid.UUID, answers domain.AnswersState) (*domain.SessionDTO, error) {
	s, err := svc.store.Get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Stage != domain.StageQuestions {
		return nil, fmt.Errorf("%w: completeQuestions requires the questions stage, current stage is %s", ErrInvalidStage, s.Stage)
	}
	if len(answers) == 0 {
		return nil, ErrNoAnswers
	}
	if s.Config.ContractorID == "" {
		svc.noticeLocked(s, domain.NoticeSeverityError, "Configuration error",
			"This widget is not linked to a contractor yet. Please contact the site owner.")
		return s.dto(), domain.ErrContractorRequired
	}

	s.Answers = answers
	s.Stage = domain.StageLoading
	s.touch()

	lead := svc.buildLeadLocked(s, false)
	if err := svc.leads.Create(ctx, lead); err != nil {
		svc.logger.Error("lead creation failed",
			zap.String("sessionID", s.ID.String()),
			zap.Error(err),
		)
		s.Stage = domain.StageQuestions
		s.touch()
		svc.noticeLocked(s, domain.NoticeSeverityError, "Submission failed", gatewayMessage(err))
		return s.dto(), nil
	}

	leadID := lead.ID
	s.LeadID = &leadID
	s.Stage = domain.StageContact
	s.touch()

	svc.logger.Info("lead created",
		zap.String("sessionID", s.ID.String()),
		zap.String("leadID", leadID.String()),
		zap.String("contractorID", lead.ContractorID),
	)

	svc.startEstimateJobLocked(ctx, s, lead)

	return s.dto(), nil
}

// SubmitContact records contact details on the lead, creating it first if the
// contact stage was reached without one. A second submission while a job is
// already in flight updates the row but does not start another job.
func (svc *Service) SubmitContact(ctx context.Context, id uuid.UUID, req *domain.SubmitContactRequest) (*domain.SessionDTO, error) {
	s, err := svc.store.Get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Stage != domain.StageContact && s.Stage != domain.StageLoading {
		return nil, fmt.Errorf("%w: submitContact requires the contact stage, current stage is %s", ErrInvalidStage, s.Stage)
	}
	if s.Config.ContractorID == "" {
		svc.noticeLocked(s, domain.NoticeSeverityError, "Configuration error",
			"This widget is not linked to a contractor yet. Please contact the site owner.")
		return s.dto(), domain.ErrContractorRequired
	}

	if s.LeadID != nil {
		updates := map[string]interface{}{
			"user_name":       req.Name,
			"user_email":      req.Email,
			"user_phone":      req.Phone,
			"project_address": req.Address,
		}
		if err := svc.leads.UpdateFields(ctx, *s.LeadID, updates); err != nil {
			svc.logger.Error("lead contact update failed",
				zap.String("sessionID", s.ID.String()),
				zap.String("leadID", s.LeadID.String()),
				zap.Error(err),
			)
			s.IsGeneratingEstimate = false
			svc.noticeLocked(s, domain.NoticeSeverityError, "Submission failed", gatewayMessage(err))
			s.touch()
			return s.dto(), nil
		}

		s.touch()
		if !s.IsGeneratingEstimate {
			lead := svc.buildLeadLocked(s, false)
			lead.ID = *s.LeadID
			svc.startEstimateJobLocked(ctx, s, lead)
		}
		return s.dto(), nil
	}

	// Contact stage reached without a lead; create one with the contact
	// fields pre-populated.
	lead := svc.buildLeadLocked(s, false)
	lead.UserName = strPtr(req.Name)
	lead.UserEmail = strPtr(req.Email)
	lead.UserPhone = strPtr(req.Phone)
	lead.ProjectAddress = strPtr(req.Address)

	if err := svc.leads.Create(ctx, lead); err != nil {
		svc.logger.Error("lead creation failed on contact submission",
			zap.String("sessionID", s.ID.String()),
			zap.Error(err),
		)
		s.IsGeneratingEstimate = false
		svc.noticeLocked(s, domain.NoticeSeverityError, "Submission failed", gatewayMessage(err))
		s.touch()
		return s.dto(), nil
	}

	leadID := lead.ID
	s.LeadID = &leadID
	s.touch()

	svc.startEstimateJobLocked(ctx, s, lead)

	return s.dto(), nil
}

// Skip requests a test estimate immediately, bypassing contact collection.
// The stage advances to estimate as soon as the job is started; callers must
// treat estimate-via-skip as "request initiated" until estimateReady flips.
func (svc *Service) Skip(ctx context.Context, id uuid.UUID) (*domain.SessionDTO, error) {
	s, err := svc.store.Get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Stage != domain.StageContact && s.Stage != domain.StageLoading {
		return nil, fmt.Errorf("%w: skip requires the contact or loading stage, current stage is %s", ErrInvalidStage, s.Stage)
	}
	if s.Config.ContractorID == "" {
		svc.noticeLocked(s, domain.NoticeSeverityError, "Configuration error",
			"This widget is not linked to a contractor yet. Please contact the site owner.")
		return s.dto(), domain.ErrContractorRequired
	}

	lead := svc.buildLeadLocked(s, true)

	if err := svc.leads.Create(ctx, lead); err != nil {
		svc.logger.Error("test lead creation failed",
			zap.String("sessionID", s.ID.String()),
			zap.Error(err),
		)
		s.IsGeneratingEstimate = false
		svc.noticeLocked(s, domain.NoticeSeverityError, "Submission failed", gatewayMessage(err))
		s.touch()
		return s.dto(), nil
	}

	leadID := lead.ID
	s.LeadID = &leadID
	s.touch()

	if svc.startEstimateJobLocked(ctx, s, lead) {
		s.Stage = domain.StageEstimate
		s.touch()
	}

	return s.dto(), nil
}

// buildLeadLocked assembles a lead row from the session state. Caller holds
// the session lock.
func (svc *Service) buildLeadLocked(s *Session, testEstimate bool) *domain.Lead {
	category := s.SelectedCategory
	if category == nil && len(s.Matched) > 0 {
		category = strPtr(s.Matched[0].Category)
	}

	description := s.ProjectDescription
	if description == "" {
		description = firstAnswerText(s.Answers)
	}
	if description == "" && testEstimate {
		description = "Test estimate request"
	}

	title := "Home Project"
	if category != nil && *category != "" {
		title = titleCase(*category) + " Project"
	} else if testEstimate {
		title = "Test Project"
	}

	var answersJSON json.RawMessage
	if len(s.Answers) > 0 {
		// FormatAnswersForJSON is total over well-formed states, so this
		// marshal cannot fail on reachable input.
		answersJSON, _ = json.Marshal(FormatAnswersForJSON(s.Answers))
	}

	return &domain.Lead{
		ContractorID:       s.Config.ContractorID,
		ProjectDescription: description,
		ProjectTitle:       title,
		Category:           category,
		Answers:            answersJSON,
		Status:             domain.LeadStatusPending,
		ProjectImages:      append([]string(nil), s.PhotoURLs...),
		IsTestEstimate:     testEstimate,
	}
}

// startEstimateJobLocked sets the in-flight flag, invokes the job gateway,
// and starts the poll loop. The flag is cleared on invocation failure and on
// every terminal poll outcome. Returns true if the job was started. Caller
// holds the session lock.
func (svc *Service) startEstimateJobLocked(ctx context.Context, s *Session, lead *domain.Lead) bool {
	s.IsGeneratingEstimate = true

	imageURL := ""
	if len(lead.ProjectImages) > 0 {
		imageURL = lead.ProjectImages[0]
	}

	req := &estimate.JobRequest{
		LeadID:             lead.ID,
		ContractorID:       lead.ContractorID,
		ProjectDescription: lead.ProjectDescription,
		Category:           lead.Category,
		ImageURL:           imageURL,
		ProjectImages:      lead.ProjectImages,
	}

	if err := svc.jobs.Invoke(ctx, req); err != nil {
		svc.logger.Error("estimate job invocation failed",
			zap.String("sessionID", s.ID.String()),
			zap.String("leadID", lead.ID.String()),
			zap.Error(err),
		)
		s.IsGeneratingEstimate = false
		svc.noticeLocked(s, domain.NoticeSeverityError, "Estimate request failed", gatewayMessage(err))
		return false
	}

	sessionID := s.ID
	leadID := lead.ID

	// A previous poll loop may still be running if the user skipped while an
	// earlier job was in flight; cancel it so its outcome cannot clobber the
	// new one.
	if s.poller != nil {
		s.poller.Cancel()
	}

	// The poll loop outlives the triggering request, so it runs on a
	// background context and is canceled through the session teardown path.
	poller := estimate.NewPoller(svc.leads, svc.pollCfg, svc.logger)
	s.poller = poller
	poller.Start(context.Background(), leadID, func(outcome estimate.Outcome) {
		svc.onPollOutcome(sessionID, poller, outcome)
	})

	return true
}

// onPollOutcome applies the terminal poll result to the session. Every
// outcome clears the in-flight flag; only a completed estimate advances the
// stage.
func (svc *Service) onPollOutcome(sessionID uuid.UUID, from *estimate.Poller, outcome estimate.Outcome) {
	s, err := svc.store.Get(sessionID)
	if err != nil {
		// Session evicted while polling; nothing to apply.
		svc.logger.Debug("poll outcome for expired session",
			zap.String("sessionID", sessionID.String()),
			zap.String("outcome", string(outcome.Kind)),
		)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A newer job may have replaced this loop; its outcome is stale.
	if s.poller != from {
		return
	}

	s.poller = nil
	s.IsGeneratingEstimate = false

	switch outcome.Kind {
	case estimate.OutcomeComplete:
		s.EstimateData = outcome.EstimateData
		s.Stage = domain.StageEstimate
		svc.noticeLocked(s, domain.NoticeSeveritySuccess, "Estimate ready",
			"Your estimate has been generated.")
	case estimate.OutcomeError, estimate.OutcomeQueryFailed:
		svc.noticeLocked(s, domain.NoticeSeverityError, "Estimate failed", outcome.Message)
	case estimate.OutcomeTimeout:
		svc.noticeLocked(s, domain.NoticeSeverityError, "Estimate timed out",
			"The estimate is taking longer than expected. Please try again.")
	}
	s.touch()
}

// noticeLocked buffers a notice on the session and forwards it to the sink.
// Caller holds the session lock.
func (svc *Service) noticeLocked(s *Session, severity domain.NoticeSeverity, title, description string) {
	notice := s.addNotice(severity, title, description)
	svc.notifier.Notify(s.ID, notice)
}

// gatewayMessage extracts the most specific user-facing message from a
// normalized gateway error.
func gatewayMessage(err error) string {
	var gwErr *domain.GatewayError
	if errors.As(err, &gwErr) && gwErr.Message != "" {
		return gwErr.Message
	}
	return "Something went wrong. Please try again."
}

func firstAnswerText(answers domain.AnswersState) string {
	for _, questions := range answers {
		for _, answer := range questions {
			if len(answer.Answers) > 0 && answer.Answers[0] != "" {
				return answer.Answers[0]
			}
		}
	}
	return ""
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func strPtr(s string) *string {
	return &s
}
