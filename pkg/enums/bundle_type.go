package enums

import "fmt"

// BundleType identifies the shape of a multi-product promo.
type BundleType string

const (
	BundleTypeFixedBundle      BundleType = "fixed_bundle"
	BundleTypeMixMatch         BundleType = "mix_match"
	BundleTypeBuyXGetY         BundleType = "buy_x_get_y"
	BundleTypeQuantityDiscount BundleType = "quantity_discount"
)

var validBundleTypes = []BundleType{
	BundleTypeFixedBundle,
	BundleTypeMixMatch,
	BundleTypeBuyXGetY,
	BundleTypeQuantityDiscount,
}

// String implements fmt.Stringer.
func (b BundleType) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BundleType.
func (b BundleType) IsValid() bool {
	for _, candidate := range validBundleTypes {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBundleType converts raw input into a BundleType.
func ParseBundleType(value string) (BundleType, error) {
	for _, candidate := range validBundleTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bundle type %q", value)
}
