package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/quotewise/intake-api/internal/domain"
	"github.com/quotewise/intake-api/internal/estimate"
	"github.com/quotewise/intake-api/internal/http/handler"
	"github.com/quotewise/intake-api/internal/matcher"
	"github.com/quotewise/intake-api/internal/repository"
	"github.com/quotewise/intake-api/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubLeadGateway struct {
	mu     sync.Mutex
	status *repository.EstimateStatusRow
}

func (g *stubLeadGateway) Create(_ context.Context, lead *domain.Lead) error {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	return nil
}

func (g *stubLeadGateway) UpdateFields(context.Context, uuid.UUID, map[string]interface{}) error {
	return nil
}

func (g *stubLeadGateway) EstimateStatus(context.Context, uuid.UUID) (*repository.EstimateStatusRow, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status != nil {
		return g.status, nil
	}
	return &repository.EstimateStatusRow{Status: domain.LeadStatusPending}, nil
}

func (g *stubLeadGateway) setStatus(row *repository.EstimateStatusRow) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.status = row
}

type stubJobInvoker struct{}

func (stubJobInvoker) Invoke(context.Context, *estimate.JobRequest) error { return nil }

func newTestRouter(t *testing.T) (*chi.Mux, *stubLeadGateway) {
	t.Helper()
	log := zap.NewNop()
	store := wizard.NewStore(time.Hour)
	gateway := &stubLeadGateway{}
	svc := wizard.NewService(
		store,
		gateway,
		stubJobInvoker{},
		matcher.NewKeywordMatcher(log),
		matcher.DefaultCatalog(),
		estimate.PollerConfig{Interval: 5 * time.Millisecond, Deadline: 2 * time.Second},
		nil,
		log,
	)
	h := handler.NewSessionHandler(svc, log)

	r := chi.NewRouter()
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Delete)
			r.Post("/photos", h.SubmitPhotos)
			r.Post("/description", h.SubmitDescription)
			r.Post("/category", h.SelectCategory)
			r.Post("/questions", h.CompleteQuestions)
			r.Post("/contact", h.SubmitContact)
			r.Post("/skip", h.Skip)
		})
	})
	return r, gateway
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, domain.SessionDTO) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var dto domain.SessionDTO
	if rec.Code < 300 && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	}
	return rec, dto
}

func createSession(t *testing.T, r http.Handler) domain.SessionDTO {
	t.Helper()
	rec, dto := doJSON(t, r, http.MethodPost, "/sessions", map[string]string{"contractorId": "c1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	return dto
}

func TestSessionHandler_Create(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, dto := doJSON(t, r, http.MethodPost, "/sessions", map[string]string{"contractorId": "c1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEqual(t, uuid.Nil, dto.ID)
	assert.Equal(t, domain.StagePhoto, dto.Stage)
	assert.Equal(t, "c1", dto.ContractorID)
}

func TestSessionHandler_Create_EmptyBody(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestSessionHandler_FullFlow(t *testing.T) {
	r, gateway := newTestRouter(t)
	session := createSession(t, r)
	base := "/sessions/" + session.ID.String()

	rec, dto := doJSON(t, r, http.MethodPost, base+"/photos", map[string][]string{
		"photoUrls": {"https://cdn.example.com/p1.jpg"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StageDescription, dto.Stage)

	rec, dto = doJSON(t, r, http.MethodPost, base+"/description", map[string]string{
		"description": "my roof has a leak near the chimney",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StageQuestions, dto.Stage)
	require.NotEmpty(t, dto.MatchedQuestionSets)
	assert.Equal(t, "roofing", dto.MatchedQuestionSets[0].Category)

	rec, dto = doJSON(t, r, http.MethodPost, base+"/questions", map[string]interface{}{
		"answers": domain.AnswersState{
			"roofing": {
				"roof-type": {Question: "What type of roof do you have?", Type: "single_select", Answers: []string{"Metal"}},
			},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StageContact, dto.Stage)
	require.NotNil(t, dto.LeadID)
	assert.True(t, dto.IsGeneratingEstimate)

	rec, dto = doJSON(t, r, http.MethodPost, base+"/contact", map[string]string{
		"name":  "Pat Larsen",
		"email": "pat@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StageContact, dto.Stage)

	gateway.setStatus(&repository.EstimateStatusRow{
		Status:       domain.LeadStatusComplete,
		EstimateData: json.RawMessage(`{"total": 1200}`),
	})
	require.Eventually(t, func() bool {
		rec, dto = doJSON(t, r, http.MethodGet, base, nil)
		return rec.Code == http.StatusOK && dto.EstimateReady
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, domain.StageEstimate, dto.Stage)
	assert.JSONEq(t, `{"total": 1200}`, string(dto.EstimateData))
}

func TestSessionHandler_StageConflict(t *testing.T) {
	r, _ := newTestRouter(t)
	session := createSession(t, r)

	// description before photos is out of order
	rec, _ := doJSON(t, r, http.MethodPost, "/sessions/"+session.ID.String()+"/description", map[string]string{
		"description": "paint the fence",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSessionHandler_UnknownSession(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, _ := doJSON(t, r, http.MethodGet, "/sessions/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionHandler_InvalidSessionID(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, _ := doJSON(t, r, http.MethodGet, "/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionHandler_ValidationError(t *testing.T) {
	r, _ := newTestRouter(t)
	session := createSession(t, r)
	base := "/sessions/" + session.ID.String()

	_, _ = doJSON(t, r, http.MethodPost, base+"/photos", map[string][]string{"photoUrls": {}})

	rec, _ := doJSON(t, r, http.MethodPost, base+"/description", map[string]string{"description": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var apiErr domain.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
	assert.Contains(t, apiErr.Errors, "description")
}

func TestSessionHandler_UnknownCategory(t *testing.T) {
	r, _ := newTestRouter(t)
	session := createSession(t, r)
	base := "/sessions/" + session.ID.String()

	_, _ = doJSON(t, r, http.MethodPost, base+"/photos", map[string][]string{"photoUrls": {}})
	rec, dto := doJSON(t, r, http.MethodPost, base+"/description", map[string]string{
		"description": "xyzzy plugh frobnicate",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, domain.StageCategory, dto.Stage)

	rec, _ = doJSON(t, r, http.MethodPost, base+"/category", map[string]string{"category": "submarine-repair"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionHandler_Delete(t *testing.T) {
	r, _ := newTestRouter(t)
	session := createSession(t, r)

	req := httptest.NewRequest(http.MethodDelete, "/sessions/"+session.ID.String(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	getRec, _ := doJSON(t, r, http.MethodGet, "/sessions/"+session.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, getRec.Code)
}
