package entitlements

import (
	"testing"

	"github.com/angelmondragon/tillpoint/pkg/db/models"
	"github.com/angelmondragon/tillpoint/pkg/enums"
	"github.com/google/uuid"
)

type fixture struct {
	retail  uuid.UUID
	clinic  uuid.UUID
	modules map[string]models.Module
	links   []models.BusinessTypeModule
}

// newFixture builds a small catalog:
//
//	dashboard (core)  pos (core)  inventory  inventory.transfers  customers  promotions  clinic
//
// Retail defaults to inventory and customers, may toggle promotions and
// inventory.transfers. Clinic defaults to clinic and customers.
func newFixture() fixture {
	f := fixture{retail: uuid.New(), clinic: uuid.New(), modules: map[string]models.Module{}}
	add := func(code string, order int, core bool, parent *uuid.UUID) uuid.UUID {
		m := models.Module{ID: uuid.New(), Code: code, Name: code, SortOrder: order, IsCore: core, IsActive: true, ParentModuleID: parent}
		f.modules[code] = m
		return m.ID
	}
	add("dashboard", 0, true, nil)
	add("pos", 10, true, nil)
	inv := add("inventory", 20, false, nil)
	add("inventory.transfers", 21, false, &inv)
	add("customers", 30, false, nil)
	add("promotions", 40, false, nil)
	add("clinic", 50, false, nil)

	link := func(bt uuid.UUID, code string, def, opt bool) {
		f.links = append(f.links, models.BusinessTypeModule{BusinessTypeID: bt, ModuleID: f.modules[code].ID, IsDefault: def, IsOptional: opt})
	}
	link(f.retail, "inventory", true, true)
	link(f.retail, "inventory.transfers", false, true)
	link(f.retail, "customers", true, false)
	link(f.retail, "promotions", false, true)
	link(f.clinic, "clinic", true, false)
	link(f.clinic, "customers", true, true)
	return f
}

func (f fixture) moduleList() []models.Module {
	out := make([]models.Module, 0, len(f.modules))
	for _, m := range f.modules {
		out = append(out, m)
	}
	return out
}

func (f fixture) catalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog(f.moduleList(), f.links)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return c
}

func (f fixture) tenant(bt uuid.UUID) *models.Tenant {
	return &models.Tenant{ID: uuid.New(), BusinessTypeID: bt, BusinessName: "Toko Maju", OnboardingStep: enums.OnboardingStepModules}
}

func override(tenant *models.Tenant, m models.Module, enabled bool) models.TenantModule {
	return models.TenantModule{TenantID: tenant.ID, ModuleID: m.ID, IsEnabled: enabled}
}
