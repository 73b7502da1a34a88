package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/tillpoint/pkg/enums"
)

// Tenant is one customer business on the platform.
type Tenant struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	BusinessTypeID uuid.UUID            `gorm:"column:business_type_id;type:uuid;not null"`
	BusinessName   string               `gorm:"column:business_name;not null"`
	SetupCompleted bool                 `gorm:"column:setup_completed;not null"`
	OnboardingStep enums.OnboardingStep `gorm:"column:onboarding_step;not null"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// TenantModule overrides the business type default for one module.
type TenantModule struct {
	TenantID   uuid.UUID  `gorm:"column:tenant_id;type:uuid;primaryKey"`
	ModuleID   uuid.UUID  `gorm:"column:module_id;type:uuid;primaryKey"`
	IsEnabled  bool       `gorm:"column:is_enabled;not null"`
	EnabledAt  *time.Time `gorm:"column:enabled_at"`
	DisabledAt *time.Time `gorm:"column:disabled_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
