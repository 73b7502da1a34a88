package promos

import (
	"fmt"
	"sort"
	"time"

	"github.com/angelmondragon/tillpoint/pkg/db/models"
	"github.com/angelmondragon/tillpoint/pkg/enums"
	pkgerrors "github.com/angelmondragon/tillpoint/pkg/errors"
	"github.com/angelmondragon/tillpoint/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// Level is the scope a promo rule applies to.
type Level string

const (
	LevelProduct  Level = "product"
	LevelCategory Level = "category"
	LevelBundle   Level = "bundle"
)

var hundred = decimal.NewFromInt(100)

// ruleOrigin identifies a rule and the promo that owns it.
type ruleOrigin struct {
	ID             uuid.UUID
	PromoID        uuid.UUID
	PromoName      string
	PromoCreatedAt time.Time
}

// ProductRule discounts one product.
type ProductRule struct {
	ruleOrigin
	ProductID     uuid.UUID
	DiscountType  enums.DiscountType
	DiscountValue decimal.Decimal
	MinQuantity   int
	MaxQuantity   int
	OverridePrice *decimal.Decimal
	Tiers         []types.QuantityTier
	CheckStock    bool
}

// CategoryRule discounts every product of a category.
type CategoryRule struct {
	ruleOrigin
	CategoryID    uuid.UUID
	DiscountType  enums.DiscountType
	DiscountValue decimal.Decimal
	MinQuantity   int
	MaxDiscount   *decimal.Decimal
	AllowMixMatch bool
}

// BundleRule prices a group of products together.
type BundleRule struct {
	ruleOrigin
	BundleType         enums.BundleType
	Products           []types.BundleProduct
	MinQuantity        int
	MaxQuantity        int
	BundlePrice        *decimal.Decimal
	DiscountType       enums.DiscountType
	DiscountValue      decimal.Decimal
	RequireAllProducts bool
	CheckStock         bool
}

// RuleSet is the normalized set of active promo rules of a tenant. Each list
// is ordered so the earliest created promo comes first.
type RuleSet struct {
	Products   []ProductRule
	Categories []CategoryRule
	Bundles    []BundleRule
}

// Len returns the number of rules across all levels.
func (r RuleSet) Len() int {
	return len(r.Products) + len(r.Categories) + len(r.Bundles)
}

// RuleIssue describes a rule that was dropped while building a rule set.
type RuleIssue struct {
	Level   Level     `json:"level"`
	RuleID  uuid.UUID `json:"rule_id"`
	PromoID uuid.UUID `json:"promo_id"`
	Reason  string    `json:"reason"`
}

// BuildRuleSet normalizes the promos into a rule set. Inactive promos and
// rules are dropped. Malformed rules are skipped and reported through the
// returned error as configuration errors; the rule set is usable either way.
func BuildRuleSet(promos []models.Promo) (RuleSet, error) {
	var (
		set  RuleSet
		errs error
	)
	skip := func(level Level, origin ruleOrigin, reason string) {
		issue := RuleIssue{Level: level, RuleID: origin.ID, PromoID: origin.PromoID, Reason: reason}
		errs = multierr.Append(errs, pkgerrors.New(pkgerrors.CodeConfiguration,
			fmt.Sprintf("%s rule %s of promo %s skipped: %s", level, origin.ID, origin.PromoID, reason)).WithDetails(issue))
	}

	for _, promo := range promos {
		if !promo.IsActive {
			continue
		}
		for _, row := range promo.Products {
			if !row.IsActive {
				continue
			}
			rule := productRule(promo, row)
			if reason := validateProductRule(rule); reason != "" {
				skip(LevelProduct, rule.ruleOrigin, reason)
				continue
			}
			set.Products = append(set.Products, rule)
		}
		for _, row := range promo.Categories {
			if !row.IsActive {
				continue
			}
			rule := categoryRule(promo, row)
			if reason := validateCategoryRule(rule); reason != "" {
				skip(LevelCategory, rule.ruleOrigin, reason)
				continue
			}
			set.Categories = append(set.Categories, rule)
		}
		for _, row := range promo.Bundles {
			if !row.IsActive {
				continue
			}
			rule := bundleRule(promo, row)
			if reason := validateBundleRule(rule); reason != "" {
				skip(LevelBundle, rule.ruleOrigin, reason)
				continue
			}
			set.Bundles = append(set.Bundles, rule)
		}
	}

	sort.SliceStable(set.Products, func(i, j int) bool {
		return set.Products[i].ruleOrigin.before(set.Products[j].ruleOrigin)
	})
	sort.SliceStable(set.Categories, func(i, j int) bool {
		return set.Categories[i].ruleOrigin.before(set.Categories[j].ruleOrigin)
	})
	sort.SliceStable(set.Bundles, func(i, j int) bool {
		return set.Bundles[i].ruleOrigin.before(set.Bundles[j].ruleOrigin)
	})
	return set, errs
}

// RuleIssues extracts the dropped rule descriptions from a BuildRuleSet error.
func RuleIssues(err error) []RuleIssue {
	var issues []RuleIssue
	for _, e := range multierr.Errors(err) {
		typed := pkgerrors.As(e)
		if typed == nil {
			continue
		}
		if issue, ok := typed.Details().(RuleIssue); ok {
			issues = append(issues, issue)
		}
	}
	return issues
}

func (o ruleOrigin) before(other ruleOrigin) bool {
	if !o.PromoCreatedAt.Equal(other.PromoCreatedAt) {
		return o.PromoCreatedAt.Before(other.PromoCreatedAt)
	}
	if o.PromoID != other.PromoID {
		return o.PromoID.String() < other.PromoID.String()
	}
	return o.ID.String() < other.ID.String()
}

func originOf(promo models.Promo, ruleID uuid.UUID) ruleOrigin {
	return ruleOrigin{ID: ruleID, PromoID: promo.ID, PromoName: promo.Name, PromoCreatedAt: promo.CreatedAt}
}

func productRule(promo models.Promo, row models.PromoProduct) ProductRule {
	tiers := make([]types.QuantityTier, len(row.QuantityTiers))
	copy(tiers, row.QuantityTiers)
	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].MinQty < tiers[j].MinQty })
	return ProductRule{
		ruleOrigin:    originOf(promo, row.ID),
		ProductID:     row.ProductID,
		DiscountType:  row.DiscountType,
		DiscountValue: row.DiscountValue,
		MinQuantity:   row.MinQuantity,
		MaxQuantity:   row.MaxQuantity,
		OverridePrice: row.OverridePrice,
		Tiers:         tiers,
		CheckStock:    row.CheckStock,
	}
}

func categoryRule(promo models.Promo, row models.PromoCategory) CategoryRule {
	return CategoryRule{
		ruleOrigin:    originOf(promo, row.ID),
		CategoryID:    row.CategoryID,
		DiscountType:  row.DiscountType,
		DiscountValue: row.DiscountValue,
		MinQuantity:   row.MinQuantity,
		MaxDiscount:   row.MaxDiscount,
		AllowMixMatch: row.AllowMixMatch,
	}
}

func bundleRule(promo models.Promo, row models.PromoBundle) BundleRule {
	products := make([]types.BundleProduct, len(row.BundleProducts))
	copy(products, row.BundleProducts)
	return BundleRule{
		ruleOrigin:         originOf(promo, row.ID),
		BundleType:         row.BundleType,
		Products:           products,
		MinQuantity:        row.MinQuantity,
		MaxQuantity:        row.MaxQuantity,
		BundlePrice:        row.BundlePrice,
		DiscountType:       row.DiscountType,
		DiscountValue:      row.DiscountValue,
		RequireAllProducts: row.RequireAllProducts,
		CheckStock:         row.CheckStock,
	}
}

func validateQuantityBounds(minQty, maxQty int) string {
	if minQty < 0 || maxQty < 0 {
		return "negative quantity bound"
	}
	if maxQty > 0 && maxQty < minQty {
		return "max quantity below min quantity"
	}
	return ""
}

func validateAmount(dt enums.DiscountType, value decimal.Decimal) string {
	if value.IsNegative() {
		return "negative discount value"
	}
	if dt == enums.DiscountTypePercentage && value.GreaterThan(hundred) {
		return "percentage above 100"
	}
	return ""
}

func validateProductRule(r ProductRule) string {
	if r.ProductID == uuid.Nil {
		return "missing product"
	}
	if !r.DiscountType.ValidForProduct() {
		return fmt.Sprintf("unsupported discount type %q", r.DiscountType)
	}
	if reason := validateAmount(r.DiscountType, r.DiscountValue); reason != "" {
		return reason
	}
	if reason := validateQuantityBounds(r.MinQuantity, r.MaxQuantity); reason != "" {
		return reason
	}
	if r.DiscountType == enums.DiscountTypeOverridePrice && len(r.Tiers) == 0 {
		if r.OverridePrice == nil {
			return "override_price without override price"
		}
		if r.OverridePrice.IsNegative() {
			return "negative override price"
		}
	}
	for _, tier := range r.Tiers {
		if tier.MinQty < 0 {
			return "tier with negative min quantity"
		}
		if tier.MaxQty != nil && *tier.MaxQty < tier.MinQty {
			return "tier max quantity below min quantity"
		}
		if reason := validateAmount(r.DiscountType, tier.Discount); reason != "" {
			return "tier " + reason
		}
	}
	return ""
}

func validateCategoryRule(r CategoryRule) string {
	if r.CategoryID == uuid.Nil {
		return "missing category"
	}
	if !r.DiscountType.ValidForCategory() {
		return fmt.Sprintf("unsupported discount type %q", r.DiscountType)
	}
	if reason := validateAmount(r.DiscountType, r.DiscountValue); reason != "" {
		return reason
	}
	if r.MinQuantity < 0 {
		return "negative quantity bound"
	}
	if r.MaxDiscount != nil && r.MaxDiscount.IsNegative() {
		return "negative max discount"
	}
	return ""
}

func validateBundleRule(r BundleRule) string {
	if !r.BundleType.IsValid() {
		return fmt.Sprintf("unsupported bundle type %q", r.BundleType)
	}
	if len(r.Products) == 0 {
		return "bundle without products"
	}
	seen := make(map[uuid.UUID]struct{}, len(r.Products))
	for _, entry := range r.Products {
		if entry.ProductID == uuid.Nil {
			return "bundle entry without product"
		}
		if _, dup := seen[entry.ProductID]; dup {
			return "bundle lists a product twice"
		}
		seen[entry.ProductID] = struct{}{}
		if entry.Quantity <= 0 {
			return "bundle entry quantity must be positive"
		}
		if entry.DiscountPercent.IsNegative() || entry.DiscountPercent.GreaterThan(hundred) {
			return "bundle entry discount percent out of range"
		}
	}
	if reason := validateQuantityBounds(r.MinQuantity, r.MaxQuantity); reason != "" {
		return reason
	}
	if r.BundleType == enums.BundleTypeFixedBundle {
		if r.BundlePrice == nil {
			return "fixed_bundle without bundle price"
		}
		if r.BundlePrice.IsNegative() {
			return "negative bundle price"
		}
		return ""
	}
	if !r.DiscountType.ValidForBundle() {
		return fmt.Sprintf("unsupported discount type %q", r.DiscountType)
	}
	return validateAmount(r.DiscountType, r.DiscountValue)
}
