package models

import (
	"time"

	"github.com/google/uuid"
)

// Module is a toggleable feature area. ParentModuleID points at the owning
// module for submodules.
type Module struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Code           string     `gorm:"column:code;not null;uniqueIndex"`
	Name           string     `gorm:"column:name;not null"`
	ParentModuleID *uuid.UUID `gorm:"column:parent_module_id;type:uuid"`
	SortOrder      int        `gorm:"column:sort_order;not null"`
	IsCore         bool       `gorm:"column:is_core;not null"`
	IsActive       bool       `gorm:"column:is_active;not null"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// BusinessTypeModule links a module to a business type with its default state.
type BusinessTypeModule struct {
	BusinessTypeID uuid.UUID `gorm:"column:business_type_id;type:uuid;primaryKey"`
	ModuleID       uuid.UUID `gorm:"column:module_id;type:uuid;primaryKey"`
	IsDefault      bool      `gorm:"column:is_default;not null"`
	IsOptional     bool      `gorm:"column:is_optional;not null"`
}
