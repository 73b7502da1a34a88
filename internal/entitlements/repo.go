package entitlements

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/tillpoint/internal/repo"
	"github.com/angelmondragon/tillpoint/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository loads the module catalog and persists tenant overrides.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to entitlement operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bound(tx)}
}

// ListModules returns the whole module catalog, inactive rows included.
func (r *Repository) ListModules(ctx context.Context) ([]models.Module, error) {
	var modules []models.Module
	if err := r.DB(ctx).Order("sort_order ASC, code ASC").Find(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

// ListBusinessTypeLinks returns the module links of a business type.
func (r *Repository) ListBusinessTypeLinks(ctx context.Context, businessTypeID uuid.UUID) ([]models.BusinessTypeModule, error) {
	var links []models.BusinessTypeModule
	if err := r.DB(ctx).Where("business_type_id = ?", businessTypeID).Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// ListOverrides returns every override row of a tenant.
func (r *Repository) ListOverrides(ctx context.Context, tenantID uuid.UUID) ([]models.TenantModule, error) {
	var rows []models.TenantModule
	if err := r.DB(ctx).Where("tenant_id = ?", tenantID).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindOverride returns the override of one module, or nil when the tenant uses the default.
func (r *Repository) FindOverride(ctx context.Context, tenantID, moduleID uuid.UUID) (*models.TenantModule, error) {
	var row models.TenantModule
	err := r.DB(ctx).Where("tenant_id = ? AND module_id = ?", tenantID, moduleID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// UpsertOverride inserts or replaces the override keyed by (tenant, module).
func (r *Repository) UpsertOverride(ctx context.Context, row *models.TenantModule) error {
	if row == nil {
		return fmt.Errorf("override is required")
	}
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "module_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_enabled", "enabled_at", "disabled_at", "updated_at"}),
	}).Create(row).Error
}

// DeleteOverride removes the override so the tenant falls back to the default.
// It reports whether a row existed.
func (r *Repository) DeleteOverride(ctx context.Context, tenantID, moduleID uuid.UUID) (bool, error) {
	res := r.DB(ctx).Where("tenant_id = ? AND module_id = ?", tenantID, moduleID).Delete(&models.TenantModule{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
