package repository_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/quotewise/intake-api/internal/domain"
	"github.com/quotewise/intake-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testLead mirrors the lead table with sqlite-friendly column types
type testLead struct {
	ID                 uuid.UUID `gorm:"primary_key"`
	ContractorID       string
	ProjectDescription string
	ProjectTitle       string
	Category           *string
	Answers            json.RawMessage
	Status             domain.LeadStatus
	ErrorMessage       *string
	ProjectImages      pq.StringArray `gorm:"type:text"`
	UserName           *string
	UserEmail          *string
	UserPhone          *string
	ProjectAddress     *string
	IsTestEstimate     bool
	EstimateData       json.RawMessage
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (testLead) TableName() string { return "leads" }

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=private"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&testLead{}))
	return db
}

func newLead(contractorID string) *domain.Lead {
	return &domain.Lead{
		ContractorID:       contractorID,
		ProjectDescription: "leaky roof over the garage",
		ProjectTitle:       "Roofing Project",
		Status:             domain.LeadStatusPending,
		ProjectImages:      pq.StringArray{"https://cdn.example.com/p1.jpg"},
	}
}

func TestLeadRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewLeadRepository(db)
	ctx := context.Background()

	lead := newLead("c1")
	require.NoError(t, repo.Create(ctx, lead))
	assert.NotEqual(t, uuid.Nil, lead.ID)

	got, err := repo.GetByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ContractorID)
	assert.Equal(t, domain.LeadStatusPending, got.Status)
	assert.False(t, got.IsTestEstimate)
}

func TestLeadRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewLeadRepository(db)

	_, err := repo.GetByID(context.Background(), uuid.New())
	require.Error(t, err)

	var gwErr *domain.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, domain.GatewayErrorKindNotFound, gwErr.Kind)
	assert.ErrorIs(t, err, domain.ErrLeadNotFound)
}

func TestLeadRepository_UpdateFields(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewLeadRepository(db)
	ctx := context.Background()

	t.Run("updates contact columns", func(t *testing.T) {
		lead := newLead("c1")
		require.NoError(t, repo.Create(ctx, lead))

		err := repo.UpdateFields(ctx, lead.ID, map[string]interface{}{
			"user_name":  "Pat Larsen",
			"user_email": "pat@example.com",
		})
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, lead.ID)
		require.NoError(t, err)
		require.NotNil(t, got.UserName)
		assert.Equal(t, "Pat Larsen", *got.UserName)
	})

	t.Run("missing row is a not_found gateway error", func(t *testing.T) {
		err := repo.UpdateFields(ctx, uuid.New(), map[string]interface{}{"user_name": "x"})
		require.Error(t, err)

		var gwErr *domain.GatewayError
		require.True(t, errors.As(err, &gwErr))
		assert.Equal(t, domain.GatewayErrorKindNotFound, gwErr.Kind)
	})
}

func TestLeadRepository_EstimateStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewLeadRepository(db)
	ctx := context.Background()

	t.Run("absent row normalizes to not_found", func(t *testing.T) {
		_, err := repo.EstimateStatus(ctx, uuid.New())
		require.Error(t, err)

		var gwErr *domain.GatewayError
		require.True(t, errors.As(err, &gwErr))
		assert.Equal(t, domain.GatewayErrorKindNotFound, gwErr.Kind)
	})

	t.Run("reads the status snapshot", func(t *testing.T) {
		lead := newLead("c1")
		require.NoError(t, repo.Create(ctx, lead))

		require.NoError(t, repo.UpdateFields(ctx, lead.ID, map[string]interface{}{
			"status":        domain.LeadStatusComplete,
			"estimate_data": json.RawMessage(`{"total": 900}`),
		}))

		row, err := repo.EstimateStatus(ctx, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.LeadStatusComplete, row.Status)
		assert.JSONEq(t, `{"total": 900}`, string(row.EstimateData))
	})
}

func TestLeadRepository_ListByContractor(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewLeadRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, newLead("c1")))
	}
	require.NoError(t, repo.Create(ctx, newLead("c2")))

	leads, total, err := repo.ListByContractor(ctx, "c1", 1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, leads, 3)

	leads, total, err = repo.ListByContractor(ctx, "c1", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, leads, 2)

	_, total, err = repo.ListByContractor(ctx, "c3", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestLeadRepository_MarkStalePending(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewLeadRepository(db)
	ctx := context.Background()

	stale := newLead("c1")
	require.NoError(t, repo.Create(ctx, stale))
	require.NoError(t, db.Model(&testLead{}).Where("id = ?", stale.ID).
		Update("updated_at", time.Now().UTC().Add(-2*time.Hour)).Error)

	fresh := newLead("c1")
	require.NoError(t, repo.Create(ctx, fresh))

	done := newLead("c1")
	require.NoError(t, repo.Create(ctx, done))
	require.NoError(t, db.Model(&testLead{}).Where("id = ?", done.ID).Updates(map[string]interface{}{
		"status":     domain.LeadStatusComplete,
		"updated_at": time.Now().UTC().Add(-2 * time.Hour),
	}).Error)

	count, err := repo.MarkStalePending(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := repo.GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStatusError, got.Status)
	require.NotNil(t, got.ErrorMessage)

	got, err = repo.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStatusPending, got.Status)
}
