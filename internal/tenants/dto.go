package tenants

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/tillpoint/pkg/db/models"
	"github.com/angelmondragon/tillpoint/pkg/enums"
)

// TenantDTO exposes tenant profile data in API responses.
type TenantDTO struct {
	ID               uuid.UUID            `json:"id"`
	BusinessTypeID   uuid.UUID            `json:"business_type_id"`
	BusinessTypeCode string               `json:"business_type_code,omitempty"`
	BusinessName     string               `json:"business_name"`
	SetupCompleted   bool                 `json:"setup_completed"`
	OnboardingStep   enums.OnboardingStep `json:"onboarding_step"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// CreateTenantDTO holds creation-time data for a new tenant.
type CreateTenantDTO struct {
	BusinessTypeID uuid.UUID
	BusinessName   string
}

// FromModel maps the persisted tenant into a DTO.
func FromModel(m *models.Tenant, businessType *models.BusinessType) *TenantDTO {
	if m == nil {
		return nil
	}
	dto := &TenantDTO{
		ID:             m.ID,
		BusinessTypeID: m.BusinessTypeID,
		BusinessName:   m.BusinessName,
		SetupCompleted: m.SetupCompleted,
		OnboardingStep: m.OnboardingStep,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if businessType != nil {
		dto.BusinessTypeCode = businessType.Code
	}
	return dto
}

// ToModel converts the creation payload into a tenant that starts onboarding.
func (dto CreateTenantDTO) ToModel() *models.Tenant {
	return &models.Tenant{
		BusinessTypeID: dto.BusinessTypeID,
		BusinessName:   dto.BusinessName,
		OnboardingStep: enums.OnboardingStepModules,
	}
}
