package promos

import (
	"time"

	"github.com/angelmondragon/tillpoint/pkg/db/models"
	"github.com/angelmondragon/tillpoint/pkg/enums"
	"github.com/angelmondragon/tillpoint/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var epoch = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func intPtr(v int) *int {
	return &v
}

func newPromo(name string, createdAt time.Time) models.Promo {
	return models.Promo{
		ID:        uuid.New(),
		TenantID:  uuid.New(),
		Name:      name,
		StartsAt:  epoch,
		IsActive:  true,
		CreatedAt: createdAt,
	}
}

func percentOff(productID uuid.UUID, pct string) models.PromoProduct {
	return models.PromoProduct{
		ID:            uuid.New(),
		ProductID:     productID,
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: dec(pct),
		QuantityTiers: types.QuantityTiers{},
		IsActive:      true,
	}
}

func categoryOff(categoryID uuid.UUID, dt enums.DiscountType, value string) models.PromoCategory {
	return models.PromoCategory{
		ID:            uuid.New(),
		CategoryID:    categoryID,
		DiscountType:  dt,
		DiscountValue: dec(value),
		IsActive:      true,
	}
}

func bundleOf(bt enums.BundleType, dt enums.DiscountType, value string, entries ...types.BundleProduct) models.PromoBundle {
	return models.PromoBundle{
		ID:                 uuid.New(),
		BundleType:         bt,
		BundleProducts:     entries,
		DiscountType:       dt,
		DiscountValue:      dec(value),
		RequireAllProducts: true,
		IsActive:           true,
	}
}

func entry(productID uuid.UUID, qty int) types.BundleProduct {
	return types.BundleProduct{ProductID: productID, Quantity: qty}
}

func line(productID uuid.UUID, price string, qty int) CartLine {
	return CartLine{ProductID: productID, UnitPrice: dec(price), Quantity: qty, AvailableStock: 1000}
}

func mustRuleSet(promos ...models.Promo) RuleSet {
	set, err := BuildRuleSet(promos)
	if err != nil {
		panic(err)
	}
	return set
}
