package enums

import "fmt"

// OnboardingStep tracks how far a tenant got through initial setup.
type OnboardingStep string

const (
	OnboardingStepBusinessType OnboardingStep = "business_type"
	OnboardingStepModules      OnboardingStep = "modules"
	OnboardingStepCatalog      OnboardingStep = "catalog"
	OnboardingStepDone         OnboardingStep = "done"
)

// ordered; Next walks this slice
var validOnboardingSteps = []OnboardingStep{
	OnboardingStepBusinessType,
	OnboardingStepModules,
	OnboardingStepCatalog,
	OnboardingStepDone,
}

// String implements fmt.Stringer.
func (o OnboardingStep) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OnboardingStep.
func (o OnboardingStep) IsValid() bool {
	return o.index() >= 0
}

// Next returns the step after o. The final step returns itself.
func (o OnboardingStep) Next() OnboardingStep {
	idx := o.index()
	if idx < 0 {
		return OnboardingStepBusinessType
	}
	if idx == len(validOnboardingSteps)-1 {
		return o
	}
	return validOnboardingSteps[idx+1]
}

// Before reports whether o comes strictly earlier than other.
func (o OnboardingStep) Before(other OnboardingStep) bool {
	return o.index() < other.index()
}

func (o OnboardingStep) index() int {
	for i, candidate := range validOnboardingSteps {
		if candidate == o {
			return i
		}
	}
	return -1
}

// ParseOnboardingStep converts raw input into an OnboardingStep.
func ParseOnboardingStep(value string) (OnboardingStep, error) {
	for _, candidate := range validOnboardingSteps {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid onboarding step %q", value)
}
