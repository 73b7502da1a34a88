package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/tillpoint/internal/entitlements"
	"github.com/angelmondragon/tillpoint/internal/repo"
	"github.com/angelmondragon/tillpoint/pkg/db/models"
	"github.com/angelmondragon/tillpoint/pkg/logger"
)

// Result counts what a run touched.
type Result struct {
	BusinessTypes map[string]uuid.UUID
	Modules       map[string]uuid.UUID
	Links         int
}

// Seeder converges the catalog tables to a Catalog definition.
type Seeder struct {
	repo.Base
	logg *logger.Logger
}

func NewSeeder(db *gorm.DB, logg *logger.Logger) *Seeder {
	return &Seeder{Base: repo.NewBase(db), logg: logg}
}

// Run upserts business types, modules and links by code inside one
// transaction. Rows not named by the catalog are left alone.
func (s *Seeder) Run(ctx context.Context, catalog Catalog) (*Result, error) {
	if err := validateCatalog(catalog); err != nil {
		return nil, err
	}

	res := &Result{
		BusinessTypes: map[string]uuid.UUID{},
		Modules:       map[string]uuid.UUID{},
	}
	err := s.Transaction(ctx, func(tx repo.Base) error {
		db := tx.DB(ctx)
		for _, def := range catalog.Modules {
			id, err := upsertModule(db, def, res.Modules)
			if err != nil {
				return err
			}
			res.Modules[def.Code] = id
		}
		for _, def := range catalog.BusinessTypes {
			id, err := upsertBusinessType(db, def)
			if err != nil {
				return err
			}
			res.BusinessTypes[def.Code] = id
			for _, link := range def.Links {
				row := models.BusinessTypeModule{
					BusinessTypeID: id,
					ModuleID:       res.Modules[link.Module],
					IsDefault:      link.IsDefault,
					IsOptional:     link.IsOptional,
				}
				err := db.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "business_type_id"}, {Name: "module_id"}},
					DoUpdates: clause.AssignmentColumns([]string{"is_default", "is_optional"}),
				}).Create(&row).Error
				if err != nil {
					return fmt.Errorf("link %s/%s: %w", def.Code, link.Module, err)
				}
				res.Links++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"business_types": len(res.BusinessTypes),
			"modules":        len(res.Modules),
			"links":          res.Links,
		})
		s.logg.Info(logCtx, "seed.catalog_applied")
	}
	return res, nil
}

func upsertModule(db *gorm.DB, def ModuleDef, known map[string]uuid.UUID) (uuid.UUID, error) {
	var parentID *uuid.UUID
	if def.Parent != "" {
		id, ok := known[def.Parent]
		if !ok {
			return uuid.Nil, fmt.Errorf("module %s: parent %s must be listed first", def.Code, def.Parent)
		}
		parentID = &id
	}

	var existing models.Module
	err := db.Where("code = ?", def.Code).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row := models.Module{
			Code:           def.Code,
			Name:           def.Name,
			ParentModuleID: parentID,
			SortOrder:      def.SortOrder,
			IsCore:         def.IsCore,
			IsActive:       true,
		}
		if err := db.Create(&row).Error; err != nil {
			return uuid.Nil, fmt.Errorf("create module %s: %w", def.Code, err)
		}
		return row.ID, nil
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("lookup module %s: %w", def.Code, err)
	}

	err = db.Model(&existing).Updates(map[string]any{
		"name":             def.Name,
		"parent_module_id": parentID,
		"sort_order":       def.SortOrder,
		"is_core":          def.IsCore,
		"is_active":        true,
	}).Error
	if err != nil {
		return uuid.Nil, fmt.Errorf("update module %s: %w", def.Code, err)
	}
	return existing.ID, nil
}

func upsertBusinessType(db *gorm.DB, def BusinessTypeDef) (uuid.UUID, error) {
	var existing models.BusinessType
	err := db.Where("code = ?", def.Code).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row := models.BusinessType{Code: def.Code, Name: def.Name, IsActive: true}
		if err := db.Create(&row).Error; err != nil {
			return uuid.Nil, fmt.Errorf("create business type %s: %w", def.Code, err)
		}
		return row.ID, nil
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("lookup business type %s: %w", def.Code, err)
	}
	err = db.Model(&existing).Updates(map[string]any{"name": def.Name, "is_active": true}).Error
	if err != nil {
		return uuid.Nil, fmt.Errorf("update business type %s: %w", def.Code, err)
	}
	return existing.ID, nil
}

// validateCatalog runs the definition through the same checks the resolver
// applies at load time, so a bad catalog never reaches the database.
func validateCatalog(c Catalog) error {
	modules := make([]models.Module, 0, len(c.Modules))
	ids := make(map[string]uuid.UUID, len(c.Modules))
	for _, def := range c.Modules {
		if _, dup := ids[def.Code]; dup {
			return fmt.Errorf("module %s listed twice", def.Code)
		}
		ids[def.Code] = uuid.New()
	}
	for _, def := range c.Modules {
		m := models.Module{ID: ids[def.Code], Code: def.Code, SortOrder: def.SortOrder, IsCore: def.IsCore, IsActive: true}
		if def.Parent != "" {
			pid, ok := ids[def.Parent]
			if !ok {
				return fmt.Errorf("module %s: unknown parent %s", def.Code, def.Parent)
			}
			m.ParentModuleID = &pid
		}
		modules = append(modules, m)
	}

	var links []models.BusinessTypeModule
	for _, bt := range c.BusinessTypes {
		btID := uuid.New()
		for _, l := range bt.Links {
			mid, ok := ids[l.Module]
			if !ok {
				return fmt.Errorf("business type %s: unknown module %s", bt.Code, l.Module)
			}
			links = append(links, models.BusinessTypeModule{BusinessTypeID: btID, ModuleID: mid, IsDefault: l.IsDefault, IsOptional: l.IsOptional})
		}
	}

	_, err := entitlements.NewCatalog(modules, links)
	return err
}
