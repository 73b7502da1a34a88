package promos

import (
	"fmt"

	"github.com/angelmondragon/tillpoint/pkg/enums"
	pkgerrors "github.com/angelmondragon/tillpoint/pkg/errors"
	"github.com/angelmondragon/tillpoint/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

// CartLine is one line of the cart snapshot being priced.
type CartLine struct {
	ProductID      uuid.UUID       `json:"product_id"`
	CategoryID     uuid.UUID       `json:"category_id"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	AvailableStock int             `json:"available_stock"`
}

// PricedLine is the outcome for one valid cart line.
type PricedLine struct {
	Index               int             `json:"index"`
	ProductID           uuid.UUID       `json:"product_id"`
	Quantity            int             `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	DiscountedUnitPrice decimal.Decimal `json:"discounted_unit_price"`
	Discount            decimal.Decimal `json:"discount"`
	LineTotal           decimal.Decimal `json:"line_total"`
	AppliedRuleID       *uuid.UUID      `json:"applied_rule_id,omitempty"`
	AppliedPromoID      *uuid.UUID      `json:"applied_promo_id,omitempty"`
	AppliedLevel        Level           `json:"applied_level,omitempty"`
}

// AppliedBundle records one bundle rule that matched the cart.
type AppliedBundle struct {
	RuleID     uuid.UUID        `json:"rule_id"`
	PromoID    uuid.UUID        `json:"promo_id"`
	BundleType enums.BundleType `json:"bundle_type"`
	ProductIDs []uuid.UUID      `json:"product_ids"`
	Sets       int              `json:"sets"`
	Discount   decimal.Decimal  `json:"discount"`
}

// LineIssue reports a cart line that could not be priced.
type LineIssue struct {
	Index     int            `json:"index"`
	ProductID uuid.UUID      `json:"product_id"`
	Code      pkgerrors.Code `json:"code"`
	Message   string         `json:"message"`
}

func (i LineIssue) Error() string {
	return fmt.Sprintf("line %d: %s", i.Index, i.Message)
}

// PricingResult is the priced cart.
type PricingResult struct {
	Lines         []PricedLine    `json:"lines"`
	Bundles       []AppliedBundle `json:"bundles"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	Issues        []LineIssue     `json:"issues"`
}

// AppliedCounts returns how many lines each level discounted.
func (r PricingResult) AppliedCounts() map[Level]int {
	counts := map[Level]int{}
	for _, line := range r.Lines {
		if line.AppliedLevel != "" {
			counts[line.AppliedLevel]++
		}
	}
	return counts
}

// lineState is the working copy of a valid line during evaluation.
type lineState struct {
	index    int
	line     CartLine
	gross    decimal.Decimal
	discount decimal.Decimal
	level    Level
	ruleID   uuid.UUID
	promoID  uuid.UUID
}

// productStock aggregates every valid line of one product. Lines may report
// different stock snapshots; the lowest one is trusted.
type productStock struct {
	available int
	demand    int
}

// covered reports whether stock satisfies the product's whole cart demand.
func (p productStock) covered() bool {
	return p.available >= p.demand
}

func stockByProduct(states []*lineState) map[uuid.UUID]productStock {
	stock := make(map[uuid.UUID]productStock, len(states))
	for _, s := range states {
		ps, seen := stock[s.line.ProductID]
		if !seen || s.line.AvailableStock < ps.available {
			ps.available = s.line.AvailableStock
		}
		ps.demand += s.line.Quantity
		stock[s.line.ProductID] = ps
	}
	return stock
}

func (s *lineState) discounted() bool {
	return s.level != ""
}

func (s *lineState) apply(level Level, origin ruleOrigin, discount decimal.Decimal) {
	s.level = level
	s.ruleID = origin.ID
	s.promoID = origin.PromoID
	s.discount = discount
}

// Evaluate prices lines against rules. Product rules run first, then category
// rules on lines still at full price, then bundle rules on what remains. A
// line receives at most one rule. Invalid lines are reported in Issues and
// left out of the totals.
func Evaluate(lines []CartLine, rules RuleSet) PricingResult {
	result := PricingResult{
		Lines:   []PricedLine{},
		Bundles: []AppliedBundle{},
		Issues:  []LineIssue{},
	}

	states := make([]*lineState, 0, len(lines))
	for i, line := range lines {
		if issue, ok := validateLine(i, line); !ok {
			result.Issues = append(result.Issues, issue)
			continue
		}
		line.UnitPrice = line.UnitPrice.Round(moneyPlaces)
		states = append(states, &lineState{
			index: i,
			line:  line,
			gross: line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
		})
	}

	stock := stockByProduct(states)
	applyProductRules(states, rules.Products, stock)
	applyCategoryRules(states, rules.Categories)
	result.Bundles = append(result.Bundles, applyBundleRules(states, rules.Bundles, stock)...)

	subtotal := decimal.Zero
	discountTotal := decimal.Zero
	for _, s := range states {
		discount := clamp(s.discount.Round(moneyPlaces), decimal.Zero, s.gross)
		total := s.gross.Sub(discount)
		priced := PricedLine{
			Index:               s.index,
			ProductID:           s.line.ProductID,
			Quantity:            s.line.Quantity,
			UnitPrice:           s.line.UnitPrice,
			DiscountedUnitPrice: total.Div(decimal.NewFromInt(int64(s.line.Quantity))).Round(moneyPlaces),
			Discount:            discount,
			LineTotal:           total,
		}
		if s.discounted() {
			ruleID, promoID := s.ruleID, s.promoID
			priced.AppliedRuleID = &ruleID
			priced.AppliedPromoID = &promoID
			priced.AppliedLevel = s.level
		}
		subtotal = subtotal.Add(s.gross)
		discountTotal = discountTotal.Add(discount)
		result.Lines = append(result.Lines, priced)
	}
	result.Subtotal = subtotal.Round(moneyPlaces)
	result.DiscountTotal = discountTotal.Round(moneyPlaces)
	result.GrandTotal = result.Subtotal.Sub(result.DiscountTotal)
	return result
}

func validateLine(index int, line CartLine) (LineIssue, bool) {
	issue := LineIssue{Index: index, ProductID: line.ProductID, Code: pkgerrors.CodeValidation}
	switch {
	case line.ProductID == uuid.Nil:
		issue.Message = "product id is required"
	case line.Quantity <= 0:
		issue.Message = "quantity must be positive"
	case line.UnitPrice.IsNegative():
		issue.Message = "unit price must not be negative"
	default:
		return LineIssue{}, true
	}
	return issue, false
}

func applyProductRules(states []*lineState, rules []ProductRule, stock map[uuid.UUID]productStock) {
	for _, s := range states {
		for _, rule := range rules {
			if rule.ProductID != s.line.ProductID {
				continue
			}
			if rule.CheckStock && !stock[s.line.ProductID].covered() {
				continue
			}
			perUnit, ok := productDiscount(rule, s.line)
			if !ok {
				continue
			}
			s.apply(LevelProduct, rule.ruleOrigin, perUnit.Mul(decimal.NewFromInt(int64(s.line.Quantity))))
			break
		}
	}
}

// productDiscount returns the per-unit discount of rule for line.
func productDiscount(rule ProductRule, line CartLine) (decimal.Decimal, bool) {
	qty := line.Quantity
	if qty < rule.MinQuantity || (rule.MaxQuantity > 0 && qty > rule.MaxQuantity) {
		return decimal.Zero, false
	}

	value := rule.DiscountValue
	if rule.DiscountType == enums.DiscountTypeOverridePrice && rule.OverridePrice != nil {
		value = *rule.OverridePrice
	}
	if len(rule.Tiers) > 0 {
		tier, ok := selectTier(rule.Tiers, qty)
		if !ok {
			return decimal.Zero, false
		}
		value = tier.Discount
	}

	perUnit := unitDiscount(rule.DiscountType, value, line.UnitPrice)
	return perUnit, perUnit.IsPositive()
}

// selectTier picks the tier with the highest MinQty that contains qty. Tiers
// must be sorted by MinQty.
func selectTier(tiers []types.QuantityTier, qty int) (types.QuantityTier, bool) {
	var (
		chosen types.QuantityTier
		found  bool
	)
	for _, tier := range tiers {
		if tier.Contains(qty) {
			chosen, found = tier, true
		}
	}
	return chosen, found
}

// unitDiscount converts a rule value into a per-unit discount that never
// exceeds the unit price.
func unitDiscount(dt enums.DiscountType, value, unit decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch dt {
	case enums.DiscountTypePercentage:
		d = unit.Mul(value).Div(hundred)
	case enums.DiscountTypeFixed:
		d = value
	case enums.DiscountTypeOverridePrice:
		d = unit.Sub(value)
	default:
		return decimal.Zero
	}
	return clamp(d.Round(moneyPlaces), decimal.Zero, unit)
}

func applyCategoryRules(states []*lineState, rules []CategoryRule) {
	for _, rule := range rules {
		var candidates []*lineState
		totalQty := 0
		for _, s := range states {
			if s.discounted() || s.line.CategoryID == uuid.Nil || s.line.CategoryID != rule.CategoryID {
				continue
			}
			candidates = append(candidates, s)
			totalQty += s.line.Quantity
		}
		if len(candidates) == 0 {
			continue
		}

		var remaining *decimal.Decimal
		if rule.AllowMixMatch {
			if totalQty < rule.MinQuantity {
				continue
			}
			if capped(rule.MaxDiscount) {
				budget := *rule.MaxDiscount
				remaining = &budget
			}
		}

		for _, s := range candidates {
			if !rule.AllowMixMatch && s.line.Quantity < rule.MinQuantity {
				continue
			}
			perUnit := unitDiscount(rule.DiscountType, rule.DiscountValue, s.line.UnitPrice)
			discount := perUnit.Mul(decimal.NewFromInt(int64(s.line.Quantity)))
			switch {
			case remaining != nil:
				discount = decimal.Min(discount, *remaining)
				*remaining = remaining.Sub(discount)
			case !rule.AllowMixMatch && capped(rule.MaxDiscount):
				discount = decimal.Min(discount, *rule.MaxDiscount)
			}
			if !discount.IsPositive() {
				continue
			}
			s.apply(LevelCategory, rule.ruleOrigin, discount)
		}
	}
}

func capped(maxDiscount *decimal.Decimal) bool {
	return maxDiscount != nil && maxDiscount.IsPositive()
}

// allocation is the quantity of one line consumed by a bundle entry.
type allocation struct {
	state *lineState
	qty   int
	value decimal.Decimal
}

type entryMatch struct {
	entry       types.BundleProduct
	lines       []*lineState
	available   int
	allocations []allocation
	value       decimal.Decimal
	discount    decimal.Decimal
}

func applyBundleRules(states []*lineState, rules []BundleRule, stock map[uuid.UUID]productStock) []AppliedBundle {
	var applied []AppliedBundle
	for _, rule := range rules {
		matches, sets, ok := matchBundle(states, rule, stock)
		if !ok {
			continue
		}
		total := bundleDiscount(rule, matches, sets)
		if !total.IsPositive() {
			continue
		}

		productIDs := make([]uuid.UUID, 0, len(matches))
		for _, m := range matches {
			productIDs = append(productIDs, m.entry.ProductID)
			distribute(m, rule.ruleOrigin)
		}
		applied = append(applied, AppliedBundle{
			RuleID:     rule.ID,
			PromoID:    rule.PromoID,
			BundleType: rule.BundleType,
			ProductIDs: productIDs,
			Sets:       sets,
			Discount:   total.Round(moneyPlaces),
		})
	}
	return applied
}

// matchBundle finds the undiscounted lines that satisfy rule and the number of
// complete sets they form.
func matchBundle(states []*lineState, rule BundleRule, stock map[uuid.UUID]productStock) ([]*entryMatch, int, bool) {
	var matches []*entryMatch
	sets := -1
	for _, entry := range rule.Products {
		m := &entryMatch{entry: entry}
		for _, s := range states {
			if s.discounted() || s.line.ProductID != entry.ProductID {
				continue
			}
			m.lines = append(m.lines, s)
			m.available += s.line.Quantity
		}
		if m.available < entry.Quantity {
			if rule.RequireAllProducts {
				return nil, 0, false
			}
			continue
		}
		entrySets := m.available / entry.Quantity
		if sets < 0 || entrySets < sets {
			sets = entrySets
		}
		matches = append(matches, m)
	}
	if len(matches) == 0 {
		return nil, 0, false
	}
	if rule.MaxQuantity > 0 && sets > rule.MaxQuantity {
		sets = rule.MaxQuantity
	}
	if sets < max(rule.MinQuantity, 1) {
		return nil, 0, false
	}

	for _, m := range matches {
		need := m.entry.Quantity * sets
		if rule.CheckStock && !stock[m.entry.ProductID].covered() {
			return nil, 0, false
		}
		for _, s := range m.lines {
			if need == 0 {
				break
			}
			take := min(need, s.line.Quantity)
			value := s.line.UnitPrice.Mul(decimal.NewFromInt(int64(take)))
			m.allocations = append(m.allocations, allocation{state: s, qty: take, value: value})
			m.value = m.value.Add(value)
			need -= take
		}
	}
	return matches, sets, true
}

// bundleDiscount fills in the discount of every match and returns the total.
func bundleDiscount(rule BundleRule, matches []*entryMatch, sets int) decimal.Decimal {
	setCount := decimal.NewFromInt(int64(sets))

	if rule.BundleType == enums.BundleTypeFixedBundle {
		full := decimal.Zero
		for _, m := range matches {
			full = full.Add(m.value)
		}
		total := decimal.Max(full.Sub(rule.BundlePrice.Mul(setCount)), decimal.Zero).Round(moneyPlaces)
		spread(matches, total, full)
		return total
	}

	total := decimal.Zero
	paid := decimal.Zero
	var paidMatches []*entryMatch
	for _, m := range matches {
		if m.entry.IsFree {
			m.discount = m.value
			total = total.Add(m.discount)
			continue
		}
		switch rule.DiscountType {
		case enums.DiscountTypePercentage, enums.DiscountTypeFreeItem:
			pct := m.entry.DiscountPercent
			if !pct.IsPositive() && rule.DiscountType == enums.DiscountTypePercentage {
				pct = rule.DiscountValue
			}
			m.discount = m.value.Mul(pct).Div(hundred).Round(moneyPlaces)
			total = total.Add(m.discount)
		case enums.DiscountTypeFixed:
			paid = paid.Add(m.value)
			paidMatches = append(paidMatches, m)
		}
	}
	if rule.DiscountType == enums.DiscountTypeFixed && len(paidMatches) > 0 {
		fixed := decimal.Min(rule.DiscountValue.Mul(setCount), paid).Round(moneyPlaces)
		spread(paidMatches, fixed, paid)
		total = total.Add(fixed)
	}
	return total
}

// spread splits amount over matches in proportion to their value. The last
// match absorbs the rounding remainder.
func spread(matches []*entryMatch, amount, base decimal.Decimal) {
	if len(matches) == 0 {
		return
	}
	if !base.IsPositive() {
		return
	}
	left := amount
	for i, m := range matches {
		if i == len(matches)-1 {
			m.discount = left
			break
		}
		share := amount.Mul(m.value).Div(base).Round(moneyPlaces)
		m.discount = share
		left = left.Sub(share)
	}
}

// distribute pushes an entry discount onto the lines it consumed.
func distribute(m *entryMatch, origin ruleOrigin) {
	left := m.discount
	for i, a := range m.allocations {
		share := left
		if i < len(m.allocations)-1 && m.value.IsPositive() {
			share = m.discount.Mul(a.value).Div(m.value).Round(moneyPlaces)
		}
		left = left.Sub(share)
		a.state.apply(LevelBundle, origin, a.state.discount.Add(share))
	}
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
