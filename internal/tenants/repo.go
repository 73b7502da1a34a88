package tenants

import (
	"context"
	"fmt"

	"github.com/angelmondragon/tillpoint/internal/repo"
	"github.com/angelmondragon/tillpoint/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles tenant persistence.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to tenant operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bound(tx)}
}

// Create persists a new tenant row.
func (r *Repository) Create(ctx context.Context, dto CreateTenantDTO) (*models.Tenant, error) {
	tenant := dto.ToModel()
	if err := r.DB(ctx).Create(tenant).Error; err != nil {
		return nil, err
	}
	return tenant, nil
}

// FindByID loads a tenant by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.DB(ctx).Where("id = ?", id).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// FindBusinessType loads a business type by its UUID.
func (r *Repository) FindBusinessType(ctx context.Context, id uuid.UUID) (*models.BusinessType, error) {
	var bt models.BusinessType
	if err := r.DB(ctx).Where("id = ?", id).First(&bt).Error; err != nil {
		return nil, err
	}
	return &bt, nil
}

// Update saves the provided tenant.
func (r *Repository) Update(ctx context.Context, tenant *models.Tenant) error {
	if tenant == nil {
		return fmt.Errorf("tenant is required")
	}
	return r.DB(ctx).Save(tenant).Error
}
