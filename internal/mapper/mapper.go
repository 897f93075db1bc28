// Package mapper converts persisted models to their API representations.
package mapper

import (
	"github.com/quotewise/intake-api/internal/domain"
)

// ToLeadDTO converts a Lead model to its DTO
func ToLeadDTO(lead *domain.Lead) domain.LeadDTO {
	return domain.LeadDTO{
		ID:                 lead.ID,
		ContractorID:       lead.ContractorID,
		ProjectDescription: lead.ProjectDescription,
		ProjectTitle:       lead.ProjectTitle,
		Category:           lead.Category,
		Answers:            lead.Answers,
		Status:             lead.Status,
		ErrorMessage:       lead.ErrorMessage,
		ProjectImages:      lead.ProjectImages,
		UserName:           lead.UserName,
		UserEmail:          lead.UserEmail,
		UserPhone:          lead.UserPhone,
		ProjectAddress:     lead.ProjectAddress,
		IsTestEstimate:     lead.IsTestEstimate,
		EstimateData:       lead.EstimateData,
		CreatedAt:          lead.CreatedAt,
		UpdatedAt:          lead.UpdatedAt,
	}
}
