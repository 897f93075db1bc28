package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quotewise/intake-api/internal/domain"
	"gorm.io/gorm"
)

// EstimateStatusRow is the subset of a lead row the poll loop reads
type EstimateStatusRow struct {
	Status       domain.LeadStatus
	ErrorMessage *string
	EstimateData json.RawMessage
}

// LeadRepository persists leads. All failures are normalized into
// domain.GatewayError before they leave this package.
type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create inserts a new lead row. The id is assigned by the database.
func (r *LeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(lead).Error; err != nil {
		return domain.NewGatewayError(domain.GatewayErrorKindBackend, "failed to save lead", err)
	}
	return nil
}

// UpdateFields updates a subset of columns on an existing lead row
func (r *LeadRepository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&domain.Lead{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return domain.NewGatewayError(domain.GatewayErrorKindBackend, "failed to update lead", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewGatewayError(domain.GatewayErrorKindNotFound, "lead not found", domain.ErrLeadNotFound)
	}
	return nil
}

// GetByID retrieves a lead by id
func (r *LeadRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	var lead domain.Lead
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&lead).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewGatewayError(domain.GatewayErrorKindNotFound, "lead not found", domain.ErrLeadNotFound)
		}
		return nil, domain.NewGatewayError(domain.GatewayErrorKindBackend, "failed to get lead", err)
	}
	return &lead, nil
}

// EstimateStatus reads the status snapshot the poll loop needs. An absent row
// is reported as a not_found gateway error so the poller can distinguish
// "not yet ready" from an actual query failure.
func (r *LeadRepository) EstimateStatus(ctx context.Context, id uuid.UUID) (*EstimateStatusRow, error) {
	var lead domain.Lead
	err := r.db.WithContext(ctx).
		Select("status", "error_message", "estimate_data").
		Where("id = ?", id).
		First(&lead).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewGatewayError(domain.GatewayErrorKindNotFound, "lead not found", domain.ErrLeadNotFound)
		}
		return nil, domain.NewGatewayError(domain.GatewayErrorKindBackend, "failed to query lead status", err)
	}
	return &EstimateStatusRow{
		Status:       lead.Status,
		ErrorMessage: lead.ErrorMessage,
		EstimateData: lead.EstimateData,
	}, nil
}

// ListByContractor returns a contractor's leads, newest first
func (r *LeadRepository) ListByContractor(ctx context.Context, contractorID string, page, pageSize int) ([]domain.Lead, int64, error) {
	var leads []domain.Lead
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Lead{}).Where("contractor_id = ?", contractorID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, domain.NewGatewayError(domain.GatewayErrorKindBackend, "failed to count leads", err)
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&leads).Error
	if err != nil {
		return nil, 0, domain.NewGatewayError(domain.GatewayErrorKindBackend, "failed to list leads", err)
	}

	return leads, total, nil
}

// MarkStalePending flags leads stuck in pending longer than maxAge as errored.
// Returns the number of rows updated. Used by the background reaper job.
func (r *LeadRepository) MarkStalePending(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	result := r.db.WithContext(ctx).Model(&domain.Lead{}).
		Where("status = ? AND updated_at < ?", domain.LeadStatusPending, cutoff).
		Updates(map[string]interface{}{
			"status":        domain.LeadStatusError,
			"error_message": "estimate computation did not complete",
		})
	if result.Error != nil {
		return 0, domain.NewGatewayError(domain.GatewayErrorKindBackend, "failed to reap stale leads", result.Error)
	}
	return result.RowsAffected, nil
}
