package tenants

import (
	"context"
	"errors"
	"fmt"

	dbpkg "github.com/angelmondragon/tillpoint/pkg/db"
	"github.com/angelmondragon/tillpoint/pkg/db/models"
	"github.com/angelmondragon/tillpoint/pkg/enums"
	pkgerrors "github.com/angelmondragon/tillpoint/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type tenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	FindBusinessType(ctx context.Context, id uuid.UUID) (*models.BusinessType, error)
	Update(ctx context.Context, tenant *models.Tenant) error
}

// Service exposes tenant profile operations.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*TenantDTO, error)
	AdvanceOnboarding(ctx context.Context, input AdvanceOnboardingInput) (*TenantDTO, error)
}

// AdvanceOnboardingInput moves a tenant through setup. A nil Step advances by one.
type AdvanceOnboardingInput struct {
	TenantID uuid.UUID
	Step     *enums.OnboardingStep
}

type service struct {
	repo tenantRepository
}

// NewService builds a tenant service with the provided repository.
func NewService(repo tenantRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tenant repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*TenantDTO, error) {
	tenant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, dbpkg.MapError(err, "tenant")
	}
	return s.toDTO(ctx, tenant)
}

func (s *service) AdvanceOnboarding(ctx context.Context, input AdvanceOnboardingInput) (*TenantDTO, error) {
	tenant, err := s.repo.FindByID(ctx, input.TenantID)
	if err != nil {
		return nil, dbpkg.MapError(err, "tenant")
	}

	current := tenant.OnboardingStep
	target := current.Next()
	if input.Step != nil {
		if !input.Step.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid onboarding step %q", *input.Step))
		}
		target = *input.Step
	}

	switch {
	case target == current:
		return s.toDTO(ctx, tenant)
	case target.Before(current):
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("onboarding already past %s", target))
	case target != current.Next():
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("onboarding step %s must follow %s", current.Next(), current)).
			WithDetails(map[string]any{"current": current, "expected": current.Next()})
	}

	tenant.OnboardingStep = target
	tenant.SetupCompleted = target == enums.OnboardingStepDone
	if err := s.repo.Update(ctx, tenant); err != nil {
		return nil, dbpkg.MapError(err, "tenant")
	}
	return s.toDTO(ctx, tenant)
}

func (s *service) toDTO(ctx context.Context, tenant *models.Tenant) (*TenantDTO, error) {
	bt, err := s.repo.FindBusinessType(ctx, tenant.BusinessTypeID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, dbpkg.MapError(err, "business type")
	}
	return FromModel(tenant, bt), nil
}
