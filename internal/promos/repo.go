package promos

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/tillpoint/internal/repo"
	"github.com/angelmondragon/tillpoint/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads promos and their rules.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to promo operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create persists a promo together with its rules.
func (r *Repository) Create(ctx context.Context, promo *models.Promo) error {
	if promo == nil {
		return fmt.Errorf("promo is required")
	}
	return r.DB(ctx).Create(promo).Error
}

// ActivePromos returns the tenant's active promos whose window covers at,
// with every rule preloaded.
func (r *Repository) ActivePromos(ctx context.Context, tenantID uuid.UUID, at time.Time) ([]models.Promo, error) {
	var promos []models.Promo
	err := r.withRules(r.DB(ctx)).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Where("starts_at <= ?", at).
		Where("ends_at IS NULL OR ends_at > ?", at).
		Order("created_at ASC").Order("id ASC").
		Find(&promos).Error
	if err != nil {
		return nil, err
	}
	return promos, nil
}

// List returns tenant promos using cursor pagination, newest first.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Promo, error) {
	query := r.withRules(r.DB(ctx)).Model(&models.Promo{}).Where("tenant_id = ?", opts.tenantID)

	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.Promo
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) withRules(db *gorm.DB) *gorm.DB {
	return db.Preload("Products").Preload("Categories").Preload("Bundles")
}
