package tenants

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/tillpoint/pkg/db/models"
	"github.com/angelmondragon/tillpoint/pkg/enums"
	pkgerrors "github.com/angelmondragon/tillpoint/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubTenantRepo struct {
	tenant       *models.Tenant
	businessType *models.BusinessType
	err          error
	updates      int
}

func (s *stubTenantRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.tenant == nil || s.tenant.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *s.tenant
	return &clone, nil
}

func (s *stubTenantRepo) FindBusinessType(_ context.Context, id uuid.UUID) (*models.BusinessType, error) {
	if s.businessType == nil || s.businessType.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.businessType, nil
}

func (s *stubTenantRepo) Update(_ context.Context, tenant *models.Tenant) error {
	s.updates++
	clone := *tenant
	s.tenant = &clone
	return nil
}

func baseTenant(step enums.OnboardingStep) (*models.Tenant, *models.BusinessType) {
	bt := &models.BusinessType{ID: uuid.New(), Code: "retail", Name: "Retail", IsActive: true}
	return &models.Tenant{ID: uuid.New(), BusinessTypeID: bt.ID, BusinessName: "Toko Maju", OnboardingStep: step}, bt
}

func stepPtr(step enums.OnboardingStep) *enums.OnboardingStep {
	return &step
}

func TestNewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error creating service without repo")
	}
}

func TestServiceGet(t *testing.T) {
	tenant, bt := baseTenant(enums.OnboardingStepModules)
	svc, err := NewService(&stubTenantRepo{tenant: tenant, businessType: bt})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.Get(context.Background(), tenant.ID)
	if err != nil {
		t.Fatalf("get tenant: %v", err)
	}
	if dto.BusinessTypeCode != "retail" || dto.BusinessName != "Toko Maju" {
		t.Fatalf("unexpected dto %+v", dto)
	}

	_, err = svc.Get(context.Background(), uuid.New())
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceGetDependencyError(t *testing.T) {
	svc, err := NewService(&stubTenantRepo{err: errors.New("boom")})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	_, err = svc.Get(context.Background(), uuid.New())
	if !pkgerrors.IsCode(err, pkgerrors.CodeInternal) {
		t.Fatalf("expected internal code, got %v", err)
	}
}

func TestServiceAdvanceOnboarding(t *testing.T) {
	cases := []struct {
		name      string
		current   enums.OnboardingStep
		step      *enums.OnboardingStep
		want      enums.OnboardingStep
		completed bool
		code      pkgerrors.Code
		writes    int
	}{
		{name: "next step", current: enums.OnboardingStepModules, want: enums.OnboardingStepCatalog, writes: 1},
		{name: "explicit next step", current: enums.OnboardingStepModules, step: stepPtr(enums.OnboardingStepCatalog), want: enums.OnboardingStepCatalog, writes: 1},
		{name: "finishing sets completed", current: enums.OnboardingStepCatalog, want: enums.OnboardingStepDone, completed: true, writes: 1},
		{name: "done is idempotent", current: enums.OnboardingStepDone, want: enums.OnboardingStepDone},
		{name: "same step is idempotent", current: enums.OnboardingStepModules, step: stepPtr(enums.OnboardingStepModules), want: enums.OnboardingStepModules},
		{name: "skipping rejected", current: enums.OnboardingStepModules, step: stepPtr(enums.OnboardingStepDone), code: pkgerrors.CodeStateConflict},
		{name: "going back rejected", current: enums.OnboardingStepCatalog, step: stepPtr(enums.OnboardingStepBusinessType), code: pkgerrors.CodeStateConflict},
		{name: "unknown step rejected", current: enums.OnboardingStepModules, step: stepPtr(enums.OnboardingStep("billing")), code: pkgerrors.CodeValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tenant, bt := baseTenant(tc.current)
			tenant.SetupCompleted = tc.current == enums.OnboardingStepDone
			repo := &stubTenantRepo{tenant: tenant, businessType: bt}
			svc, err := NewService(repo)
			if err != nil {
				t.Fatalf("new service: %v", err)
			}

			dto, err := svc.AdvanceOnboarding(context.Background(), AdvanceOnboardingInput{TenantID: tenant.ID, Step: tc.step})
			if tc.code != "" {
				if !pkgerrors.IsCode(err, tc.code) {
					t.Fatalf("expected %s, got %v", tc.code, err)
				}
				if repo.updates != 0 {
					t.Fatalf("expected no writes")
				}
				return
			}
			if err != nil {
				t.Fatalf("advance: %v", err)
			}
			if dto.OnboardingStep != tc.want || dto.SetupCompleted != (tc.want == enums.OnboardingStepDone) {
				t.Fatalf("unexpected dto %+v", dto)
			}
			if tc.completed && !repo.tenant.SetupCompleted {
				t.Fatalf("expected setup_completed persisted")
			}
			if repo.updates != tc.writes {
				t.Fatalf("expected %d writes, got %d", tc.writes, repo.updates)
			}
		})
	}
}
