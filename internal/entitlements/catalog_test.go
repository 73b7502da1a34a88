package entitlements

import (
	"testing"

	"github.com/angelmondragon/tillpoint/pkg/db/models"
	pkgerrors "github.com/angelmondragon/tillpoint/pkg/errors"
	"github.com/google/uuid"
)

func TestCatalogLookups(t *testing.T) {
	f := newFixture()
	c := f.catalog(t)

	inv := f.modules["inventory"]
	children := c.Children(inv.ID)
	if len(children) != 1 || children[0].Code != "inventory.transfers" {
		t.Fatalf("unexpected children %+v", children)
	}
	parent, ok := c.Parent(f.modules["inventory.transfers"].ID)
	if !ok || parent.ID != inv.ID {
		t.Fatalf("expected inventory parent, got %+v ok=%v", parent, ok)
	}
	if _, ok := c.Parent(inv.ID); ok {
		t.Fatalf("top-level module has no parent")
	}
	if m, ok := c.ModuleByCode("promotions"); !ok || m.ID != f.modules["promotions"].ID {
		t.Fatalf("lookup by code failed")
	}
	if _, ok := c.ModuleByCode("payroll"); ok {
		t.Fatalf("unexpected module")
	}

	all := c.Modules()
	if all[0].Code != "dashboard" || all[len(all)-1].Code != "clinic" {
		t.Fatalf("modules not ordered by sort order: first=%s last=%s", all[0].Code, all[len(all)-1].Code)
	}

	links := c.Links(f.retail)
	if len(links) != 4 || links[0].ModuleID != inv.ID {
		t.Fatalf("unexpected retail links %+v", links)
	}
	if _, ok := c.Link(f.clinic, f.modules["promotions"].ID); ok {
		t.Fatalf("clinic has no promotions link")
	}
}

func TestCatalogDropsLinksToUnknownModules(t *testing.T) {
	f := newFixture()
	links := append(f.links, models.BusinessTypeModule{BusinessTypeID: f.retail, ModuleID: uuid.New(), IsDefault: true})
	c, err := NewCatalog(f.moduleList(), links)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(c.Links(f.retail)); got != 4 {
		t.Fatalf("expected dangling link dropped, got %d links", got)
	}
}

func TestCatalogRejectsBadArena(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	missing := uuid.New()

	cases := map[string][]models.Module{
		"duplicate code": {
			{ID: a, Code: "pos"},
			{ID: b, Code: "pos"},
		},
		"duplicate id": {
			{ID: a, Code: "pos"},
			{ID: a, Code: "inventory"},
		},
		"unknown parent": {
			{ID: a, Code: "pos", ParentModuleID: &missing},
		},
		"cycle": {
			{ID: a, Code: "pos", ParentModuleID: &b},
			{ID: b, Code: "inventory", ParentModuleID: &a},
		},
		"self parent": {
			{ID: a, Code: "pos", ParentModuleID: &a},
		},
	}
	for name, modules := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewCatalog(modules, nil)
			if !pkgerrors.IsCode(err, pkgerrors.CodeConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}
}
