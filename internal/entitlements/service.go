package entitlements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/tillpoint/pkg/config"
	dbpkg "github.com/angelmondragon/tillpoint/pkg/db"
	"github.com/angelmondragon/tillpoint/pkg/db/models"
	"github.com/angelmondragon/tillpoint/pkg/enums"
	pkgerrors "github.com/angelmondragon/tillpoint/pkg/errors"
	"github.com/angelmondragon/tillpoint/pkg/logger"
	"github.com/angelmondragon/tillpoint/pkg/metrics"
	"github.com/angelmondragon/tillpoint/pkg/redis"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

type catalogRepository interface {
	ListModules(ctx context.Context) ([]models.Module, error)
	ListBusinessTypeLinks(ctx context.Context, businessTypeID uuid.UUID) ([]models.BusinessTypeModule, error)
	ListOverrides(ctx context.Context, tenantID uuid.UUID) ([]models.TenantModule, error)
	FindOverride(ctx context.Context, tenantID, moduleID uuid.UUID) (*models.TenantModule, error)
	UpsertOverride(ctx context.Context, row *models.TenantModule) error
	DeleteOverride(ctx context.Context, tenantID, moduleID uuid.UUID) (bool, error)
}

type tenantLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
}

// Locker serializes override writes and cache rebuilds per tenant.
type Locker interface {
	WithLock(ctx context.Context, name string, ttl time.Duration, fn func(context.Context) error) error
}

type localLocker struct{}

// LocalLocker runs fn directly. It is used when Redis is not configured.
func LocalLocker() Locker { return localLocker{} }

func (localLocker) WithLock(ctx context.Context, _ string, _ time.Duration, fn func(context.Context) error) error {
	return fn(ctx)
}

// Service exposes tenant module resolution and override management.
type Service interface {
	Resolve(ctx context.Context, tenantID uuid.UUID) (*Resolution, error)
	HasModule(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	SetOverride(ctx context.Context, input OverrideInput) (*Resolution, error)
	ClearOverride(ctx context.Context, input ClearOverrideInput) (*Resolution, error)
}

// OverrideInput enables or disables one module for a tenant.
type OverrideInput struct {
	TenantID   uuid.UUID
	ModuleCode string
	Enabled    bool
	Role       enums.MemberRole
}

// ClearOverrideInput removes an override so the business type default applies again.
type ClearOverrideInput struct {
	TenantID   uuid.UUID
	ModuleCode string
	Role       enums.MemberRole
}

// ServiceParams groups the service dependencies.
type ServiceParams struct {
	Repo    catalogRepository
	Tenants tenantLoader
	Cache   Cache
	Locker  Locker
	Metrics *metrics.EntitlementMetrics
	Logger  *logger.Logger
	Config  config.EntitlementsConfig
	Now     func() time.Time
}

type service struct {
	repo    catalogRepository
	tenants tenantLoader
	cache   Cache
	locker  Locker
	metrics *metrics.EntitlementMetrics
	logg    *logger.Logger
	cfg     config.EntitlementsConfig
	now     func() time.Time
}

// NewService builds the entitlements service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("entitlements repository required")
	}
	if params.Tenants == nil {
		return nil, fmt.Errorf("tenant loader required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	svc := &service{
		repo:    params.Repo,
		tenants: params.Tenants,
		cache:   params.Cache,
		locker:  params.Locker,
		metrics: params.Metrics,
		logg:    params.Logger,
		cfg:     params.Config,
		now:     params.Now,
	}
	if svc.cache == nil {
		svc.cache = NoopCache()
	}
	if svc.locker == nil {
		svc.locker = LocalLocker()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc, nil
}

func lockName(tenantID uuid.UUID) string {
	return "entitlements:" + tenantID.String()
}

// Resolve returns the tenant's enabled modules, from cache when possible.
func (s *service) Resolve(ctx context.Context, tenantID uuid.UUID) (*Resolution, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}

	cached, ok, err := s.cache.Get(ctx, tenantID)
	switch {
	case err != nil:
		s.metrics.IncCache(metrics.CacheError)
		s.logg.Warnf(ctx, "entitlements.cache_read_failed", map[string]any{"tenant_id": tenantID.String(), "error": err.Error()})
	case ok:
		s.metrics.IncCache(metrics.CacheHit)
		return cached, nil
	default:
		s.metrics.IncCache(metrics.CacheMiss)
	}

	var res Resolution
	lockErr := s.locker.WithLock(ctx, lockName(tenantID), s.cfg.LockTTL, func(ctx context.Context) error {
		var loadErr error
		res, loadErr = s.load(ctx, tenantID)
		if loadErr != nil {
			return loadErr
		}
		if setErr := s.cache.Set(ctx, res); setErr != nil {
			s.logg.Warnf(ctx, "entitlements.cache_write_failed", map[string]any{"tenant_id": tenantID.String(), "error": setErr.Error()})
		}
		return nil
	})
	if errors.Is(lockErr, redis.ErrLockNotObtained) {
		// a writer holds the lock; answer from the database without caching
		res, lockErr = s.load(ctx, tenantID)
	}
	if lockErr != nil {
		return nil, lockErr
	}
	return &res, nil
}

// HasModule reports whether code is enabled for the tenant.
func (s *service) HasModule(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	res, err := s.Resolve(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return res.Has(code), nil
}

// SetOverride persists an enable/disable decision for one module.
func (s *service) SetOverride(ctx context.Context, input OverrideInput) (*Resolution, error) {
	err := s.withTenantLock(ctx, input.TenantID, func(ctx context.Context) error {
		tenant, catalog, err := s.loadCatalog(ctx, input.TenantID)
		if err != nil {
			return err
		}
		module, err := s.toggleableModule(tenant, catalog, input.ModuleCode, input.Role)
		if err != nil {
			return err
		}
		if module.IsCore {
			if !input.Enabled {
				return pkgerrors.New(pkgerrors.CodeConfiguration, fmt.Sprintf("core module %q cannot be disabled", module.Code))
			}
			return nil
		}

		row, err := s.repo.FindOverride(ctx, tenant.ID, module.ID)
		if err != nil {
			return dbpkg.MapError(err, "tenant module")
		}
		if row == nil {
			row = &models.TenantModule{TenantID: tenant.ID, ModuleID: module.ID}
		}
		now := s.now().UTC()
		row.IsEnabled = input.Enabled
		if input.Enabled {
			row.EnabledAt = &now
		} else {
			row.DisabledAt = &now
		}
		if err := s.repo.UpsertOverride(ctx, row); err != nil {
			return dbpkg.MapError(err, "tenant module")
		}
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"tenant_id":   tenant.ID.String(),
			"module_code": module.Code,
			"enabled":     input.Enabled,
		}), "entitlements.override_set")
		return s.invalidate(ctx, tenant.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.Resolve(ctx, input.TenantID)
}

// ClearOverride drops the tenant override of one module.
func (s *service) ClearOverride(ctx context.Context, input ClearOverrideInput) (*Resolution, error) {
	err := s.withTenantLock(ctx, input.TenantID, func(ctx context.Context) error {
		tenant, catalog, err := s.loadCatalog(ctx, input.TenantID)
		if err != nil {
			return err
		}
		module, err := s.toggleableModule(tenant, catalog, input.ModuleCode, input.Role)
		if err != nil {
			return err
		}
		removed, err := s.repo.DeleteOverride(ctx, tenant.ID, module.ID)
		if err != nil {
			return dbpkg.MapError(err, "tenant module")
		}
		if !removed {
			return nil
		}
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"tenant_id":   tenant.ID.String(),
			"module_code": module.Code,
		}), "entitlements.override_cleared")
		return s.invalidate(ctx, tenant.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.Resolve(ctx, input.TenantID)
}

func (s *service) withTenantLock(ctx context.Context, tenantID uuid.UUID, fn func(context.Context) error) error {
	if tenantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	err := s.locker.WithLock(ctx, lockName(tenantID), s.cfg.LockTTL, fn)
	if errors.Is(err, redis.ErrLockNotObtained) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "module settings are being updated, retry shortly")
	}
	return err
}

func (s *service) invalidate(ctx context.Context, tenantID uuid.UUID) error {
	if err := s.cache.Invalidate(ctx, tenantID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalidate module cache")
	}
	return nil
}

// toggleableModule finds code in the catalog and checks that role may override it.
func (s *service) toggleableModule(tenant *models.Tenant, catalog *Catalog, code string, role enums.MemberRole) (models.Module, error) {
	module, ok := catalog.ModuleByCode(code)
	if !ok || !module.IsActive {
		return models.Module{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("module %q not found", code))
	}
	if module.IsCore {
		return module, nil
	}
	link, linked := catalog.Link(tenant.BusinessTypeID, module.ID)
	if (!linked || !link.IsOptional) && role != enums.MemberRolePlatform {
		return models.Module{}, pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("module %q is not optional for this business type", code))
	}
	return module, nil
}

func (s *service) loadCatalog(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, *Catalog, error) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, nil, dbpkg.MapError(err, "tenant")
	}
	if tenant == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
	}
	modules, err := s.repo.ListModules(ctx)
	if err != nil {
		return nil, nil, dbpkg.MapError(err, "modules")
	}
	links, err := s.repo.ListBusinessTypeLinks(ctx, tenant.BusinessTypeID)
	if err != nil {
		return nil, nil, dbpkg.MapError(err, "business type modules")
	}
	catalog, err := NewCatalog(modules, links)
	if err != nil {
		return nil, nil, err
	}
	return tenant, catalog, nil
}

func (s *service) load(ctx context.Context, tenantID uuid.UUID) (Resolution, error) {
	tenant, catalog, err := s.loadCatalog(ctx, tenantID)
	if err != nil {
		return Resolution{}, err
	}
	overrides, err := s.repo.ListOverrides(ctx, tenant.ID)
	if err != nil {
		return Resolution{}, dbpkg.MapError(err, "tenant modules")
	}
	res, err := Resolve(Snapshot{Tenant: tenant, Catalog: catalog, Overrides: overrides})
	if err != nil {
		return Resolution{}, err
	}
	for _, issue := range res.Issues {
		s.metrics.IncIssue(string(issue.Reason))
	}
	if issuesErr := res.Err(); issuesErr != nil {
		s.logg.Warnf(ctx, "entitlements.override_skipped", map[string]any{
			"tenant_id": tenant.ID.String(),
			"issues":    len(multierr.Errors(issuesErr)),
			"error":     issuesErr.Error(),
		})
	}
	return res, nil
}
