package entitlements

import (
	"fmt"
	"sort"

	"github.com/angelmondragon/tillpoint/pkg/db/models"
	pkgerrors "github.com/angelmondragon/tillpoint/pkg/errors"
	"github.com/google/uuid"
)

// Catalog is a read-only index over the module arena and the business type
// links. Parents and children are resolved through id lookups, never pointers.
type Catalog struct {
	modules  []models.Module
	byID     map[uuid.UUID]int
	byCode   map[string]int
	children map[uuid.UUID][]int
	links    map[uuid.UUID]map[uuid.UUID]models.BusinessTypeModule
}

// NewCatalog indexes modules and links. Duplicate ids or codes, dangling
// parents and parent cycles are rejected. Links to unknown modules are dropped.
func NewCatalog(modules []models.Module, links []models.BusinessTypeModule) (*Catalog, error) {
	c := &Catalog{
		modules:  make([]models.Module, len(modules)),
		byID:     make(map[uuid.UUID]int, len(modules)),
		byCode:   make(map[string]int, len(modules)),
		children: map[uuid.UUID][]int{},
		links:    map[uuid.UUID]map[uuid.UUID]models.BusinessTypeModule{},
	}
	copy(c.modules, modules)

	for i, m := range c.modules {
		if _, dup := c.byID[m.ID]; dup {
			return nil, catalogError("duplicate module id %s", m.ID)
		}
		if _, dup := c.byCode[m.Code]; dup {
			return nil, catalogError("duplicate module code %q", m.Code)
		}
		c.byID[m.ID] = i
		c.byCode[m.Code] = i
	}

	for i, m := range c.modules {
		if m.ParentModuleID == nil {
			continue
		}
		if _, ok := c.byID[*m.ParentModuleID]; !ok {
			return nil, catalogError("module %q references unknown parent %s", m.Code, *m.ParentModuleID)
		}
		c.children[*m.ParentModuleID] = append(c.children[*m.ParentModuleID], i)
	}
	if err := c.checkCycles(); err != nil {
		return nil, err
	}
	for parent := range c.children {
		c.sortIndexes(c.children[parent])
	}

	for _, link := range links {
		if _, ok := c.byID[link.ModuleID]; !ok {
			continue
		}
		byModule, ok := c.links[link.BusinessTypeID]
		if !ok {
			byModule = map[uuid.UUID]models.BusinessTypeModule{}
			c.links[link.BusinessTypeID] = byModule
		}
		byModule[link.ModuleID] = link
	}

	return c, nil
}

func catalogError(format string, args ...any) error {
	return pkgerrors.New(pkgerrors.CodeConfiguration, fmt.Sprintf("module catalog: "+format, args...))
}

func (c *Catalog) checkCycles() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(c.modules))
	for start := range c.modules {
		var path []int
		for i := start; ; {
			if state[i] == done {
				break
			}
			if state[i] == visiting {
				return catalogError("module %q is part of a parent cycle", c.modules[i].Code)
			}
			state[i] = visiting
			path = append(path, i)
			parent := c.modules[i].ParentModuleID
			if parent == nil {
				break
			}
			i = c.byID[*parent]
		}
		for _, i := range path {
			state[i] = done
		}
	}
	return nil
}

func (c *Catalog) sortIndexes(idx []int) {
	sort.SliceStable(idx, func(a, b int) bool {
		return lessModule(c.modules[idx[a]], c.modules[idx[b]])
	})
}

func lessModule(a, b models.Module) bool {
	if a.SortOrder != b.SortOrder {
		return a.SortOrder < b.SortOrder
	}
	return a.Code < b.Code
}

// Module returns the module with id.
func (c *Catalog) Module(id uuid.UUID) (models.Module, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Module{}, false
	}
	return c.modules[i], true
}

// ModuleByCode returns the module with code.
func (c *Catalog) ModuleByCode(code string) (models.Module, bool) {
	i, ok := c.byCode[code]
	if !ok {
		return models.Module{}, false
	}
	return c.modules[i], true
}

// Children returns the direct submodules of id ordered by sort order then code.
func (c *Catalog) Children(id uuid.UUID) []models.Module {
	idx := c.children[id]
	out := make([]models.Module, 0, len(idx))
	for _, i := range idx {
		out = append(out, c.modules[i])
	}
	return out
}

// Parent returns the parent of id, if any.
func (c *Catalog) Parent(id uuid.UUID) (models.Module, bool) {
	m, ok := c.Module(id)
	if !ok || m.ParentModuleID == nil {
		return models.Module{}, false
	}
	return c.Module(*m.ParentModuleID)
}

// Link returns the business type link for a module.
func (c *Catalog) Link(businessTypeID, moduleID uuid.UUID) (models.BusinessTypeModule, bool) {
	link, ok := c.links[businessTypeID][moduleID]
	return link, ok
}

// Links returns every link of a business type.
func (c *Catalog) Links(businessTypeID uuid.UUID) []models.BusinessTypeModule {
	byModule := c.links[businessTypeID]
	out := make([]models.BusinessTypeModule, 0, len(byModule))
	for _, link := range byModule {
		out = append(out, link)
	}
	sort.Slice(out, func(a, b int) bool {
		return lessModule(c.modules[c.byID[out[a].ModuleID]], c.modules[c.byID[out[b].ModuleID]])
	})
	return out
}

// Modules returns every module ordered by sort order then code.
func (c *Catalog) Modules() []models.Module {
	out := make([]models.Module, len(c.modules))
	copy(out, c.modules)
	sort.SliceStable(out, func(a, b int) bool { return lessModule(out[a], out[b]) })
	return out
}
