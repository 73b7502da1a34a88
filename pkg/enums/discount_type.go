package enums

import "fmt"

// DiscountType describes how a promo rule reduces a price.
type DiscountType string

const (
	DiscountTypePercentage    DiscountType = "percentage"
	DiscountTypeFixed         DiscountType = "fixed"
	DiscountTypeOverridePrice DiscountType = "override_price"
	DiscountTypeFreeItem      DiscountType = "free_item"
)

var validDiscountTypes = []DiscountType{
	DiscountTypePercentage,
	DiscountTypeFixed,
	DiscountTypeOverridePrice,
	DiscountTypeFreeItem,
}

// String implements fmt.Stringer.
func (d DiscountType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DiscountType.
func (d DiscountType) IsValid() bool {
	for _, candidate := range validDiscountTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ValidForProduct reports whether product-level rules accept the type.
func (d DiscountType) ValidForProduct() bool {
	return d == DiscountTypePercentage || d == DiscountTypeFixed || d == DiscountTypeOverridePrice
}

// ValidForCategory reports whether category-level rules accept the type.
func (d DiscountType) ValidForCategory() bool {
	return d == DiscountTypePercentage || d == DiscountTypeFixed
}

// ValidForBundle reports whether bundle rules accept the type.
func (d DiscountType) ValidForBundle() bool {
	return d == DiscountTypePercentage || d == DiscountTypeFixed || d == DiscountTypeFreeItem
}

// ParseDiscountType converts raw input into a DiscountType.
func ParseDiscountType(value string) (DiscountType, error) {
	for _, candidate := range validDiscountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount type %q", value)
}
