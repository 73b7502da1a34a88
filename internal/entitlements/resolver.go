package entitlements

import (
	"fmt"
	"sort"

	"github.com/angelmondragon/tillpoint/pkg/db/models"
	pkgerrors "github.com/angelmondragon/tillpoint/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// Source explains why a module is part of a resolution.
type Source string

const (
	SourceCore     Source = "core"
	SourceDefault  Source = "default"
	SourceOverride Source = "override"
)

// IssueReason classifies an override that was ignored.
type IssueReason string

const (
	IssueUnknownModule      IssueReason = "unknown_module"
	IssueCoreDisableIgnored IssueReason = "core_disable_ignored"
)

// Issue is a configuration problem found while applying overrides. Issues
// never abort a resolution.
type Issue struct {
	ModuleID   uuid.UUID   `json:"module_id"`
	ModuleCode string      `json:"module_code,omitempty"`
	Reason     IssueReason `json:"reason"`
}

func (i Issue) Error() string {
	switch i.Reason {
	case IssueCoreDisableIgnored:
		return fmt.Sprintf("override disabling core module %q ignored", i.ModuleCode)
	case IssueUnknownModule:
		return fmt.Sprintf("override references unknown module %s", i.ModuleID)
	default:
		return fmt.Sprintf("override for module %s ignored: %s", i.ModuleID, i.Reason)
	}
}

// ResolvedModule is one enabled module of a tenant.
type ResolvedModule struct {
	ID         uuid.UUID `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	ParentCode *string   `json:"parent_code,omitempty"`
	Submodules []string  `json:"submodules,omitempty"`
	SortOrder  int       `json:"sort_order"`
	IsCore     bool      `json:"is_core"`
	Toggleable bool      `json:"toggleable"`
	Source     Source    `json:"source"`
}

// Resolution is the effective module set of a tenant.
type Resolution struct {
	TenantID       uuid.UUID        `json:"tenant_id"`
	BusinessTypeID uuid.UUID        `json:"business_type_id"`
	Modules        []ResolvedModule `json:"modules"`
	Issues         []Issue          `json:"issues,omitempty"`
}

// Has reports whether code is enabled.
func (r Resolution) Has(code string) bool {
	for _, m := range r.Modules {
		if m.Code == code {
			return true
		}
	}
	return false
}

// Codes lists the enabled module codes in resolution order.
func (r Resolution) Codes() []string {
	codes := make([]string, 0, len(r.Modules))
	for _, m := range r.Modules {
		codes = append(codes, m.Code)
	}
	return codes
}

// Err combines the issues into one configuration error, or nil.
func (r Resolution) Err() error {
	var err error
	for _, issue := range r.Issues {
		err = multierr.Append(err, pkgerrors.Wrap(pkgerrors.CodeConfiguration, issue, issue.Error()))
	}
	return err
}

// Snapshot is everything the resolver reads. Callers load it up front.
type Snapshot struct {
	Tenant    *models.Tenant
	Catalog   *Catalog
	Overrides []models.TenantModule
}

// Resolve computes the enabled modules of the snapshot tenant: core modules
// plus the business type defaults, with tenant overrides applied on top.
// Parent and submodules are independent of each other.
func Resolve(snap Snapshot) (Resolution, error) {
	if snap.Tenant == nil {
		return Resolution{}, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
	}
	if snap.Catalog == nil {
		return Resolution{}, pkgerrors.New(pkgerrors.CodeInternal, "module catalog not loaded")
	}
	tenant := snap.Tenant
	catalog := snap.Catalog

	enabled := map[uuid.UUID]Source{}
	for _, m := range catalog.modules {
		if m.IsCore {
			enabled[m.ID] = SourceCore
		}
	}
	for _, link := range catalog.Links(tenant.BusinessTypeID) {
		if _, ok := enabled[link.ModuleID]; ok {
			continue
		}
		if link.IsDefault {
			enabled[link.ModuleID] = SourceDefault
		}
	}

	res := Resolution{TenantID: tenant.ID, BusinessTypeID: tenant.BusinessTypeID}
	for _, o := range snap.Overrides {
		if o.TenantID != tenant.ID {
			continue
		}
		m, ok := catalog.Module(o.ModuleID)
		if !ok {
			res.Issues = append(res.Issues, Issue{ModuleID: o.ModuleID, Reason: IssueUnknownModule})
			continue
		}
		switch {
		case m.IsCore && !o.IsEnabled:
			res.Issues = append(res.Issues, Issue{ModuleID: m.ID, ModuleCode: m.Code, Reason: IssueCoreDisableIgnored})
		case m.IsCore:
			// already enabled
		case o.IsEnabled:
			enabled[m.ID] = SourceOverride
		default:
			delete(enabled, m.ID)
		}
	}

	for id, source := range enabled {
		m, _ := catalog.Module(id)
		if !m.IsActive {
			continue
		}
		link, linked := catalog.Link(tenant.BusinessTypeID, id)
		rm := ResolvedModule{
			ID:         m.ID,
			Code:       m.Code,
			Name:       m.Name,
			SortOrder:  m.SortOrder,
			IsCore:     m.IsCore,
			Toggleable: !m.IsCore && linked && link.IsOptional,
			Source:     source,
		}
		if parent, ok := catalog.Parent(id); ok {
			code := parent.Code
			rm.ParentCode = &code
		}
		for _, child := range catalog.Children(id) {
			if _, on := enabled[child.ID]; on && child.IsActive {
				rm.Submodules = append(rm.Submodules, child.Code)
			}
		}
		res.Modules = append(res.Modules, rm)
	}
	sort.Slice(res.Modules, func(a, b int) bool {
		ma, mb := res.Modules[a], res.Modules[b]
		if ma.SortOrder != mb.SortOrder {
			return ma.SortOrder < mb.SortOrder
		}
		return ma.Code < mb.Code
	})
	if res.Modules == nil {
		res.Modules = []ResolvedModule{}
	}

	return res, nil
}
