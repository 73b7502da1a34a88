package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/tillpoint/pkg/enums"
	"github.com/angelmondragon/tillpoint/pkg/types"
)

// Promo is a time-bounded discount campaign owned by a tenant.
type Promo struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	TenantID   uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null"`
	Name       string          `gorm:"column:name;not null"`
	StartsAt   time.Time       `gorm:"column:starts_at;not null"`
	EndsAt     *time.Time      `gorm:"column:ends_at"`
	IsActive   bool            `gorm:"column:is_active;not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
	Products   []PromoProduct  `gorm:"foreignKey:PromoID;constraint:OnDelete:CASCADE"`
	Categories []PromoCategory `gorm:"foreignKey:PromoID;constraint:OnDelete:CASCADE"`
	Bundles    []PromoBundle   `gorm:"foreignKey:PromoID;constraint:OnDelete:CASCADE"`
}

// ActiveAt reports whether the promo window covers at.
func (p Promo) ActiveAt(at time.Time) bool {
	if !p.IsActive || at.Before(p.StartsAt) {
		return false
	}
	return p.EndsAt == nil || at.Before(*p.EndsAt)
}

// PromoProduct discounts a single product, optionally by quantity tier.
type PromoProduct struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	PromoID       uuid.UUID           `gorm:"column:promo_id;type:uuid;not null"`
	ProductID     uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	DiscountType  enums.DiscountType  `gorm:"column:discount_type;not null"`
	DiscountValue decimal.Decimal     `gorm:"column:discount_value;type:numeric(12,2);not null"`
	MinQuantity   int                 `gorm:"column:min_quantity;not null"`
	MaxQuantity   int                 `gorm:"column:max_quantity;not null"`
	OverridePrice *decimal.Decimal    `gorm:"column:override_price;type:numeric(12,2)"`
	QuantityTiers types.QuantityTiers `gorm:"column:quantity_tiers;type:jsonb;not null"`
	CheckStock    bool                `gorm:"column:check_stock;not null"`
	IsActive      bool                `gorm:"column:is_active;not null"`
}

// PromoCategory discounts every product of a category.
type PromoCategory struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	PromoID       uuid.UUID          `gorm:"column:promo_id;type:uuid;not null"`
	CategoryID    uuid.UUID          `gorm:"column:category_id;type:uuid;not null"`
	DiscountType  enums.DiscountType `gorm:"column:discount_type;not null"`
	DiscountValue decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2);not null"`
	MinQuantity   int                `gorm:"column:min_quantity;not null"`
	MaxDiscount   *decimal.Decimal   `gorm:"column:max_discount;type:numeric(12,2)"`
	AllowMixMatch bool               `gorm:"column:allow_mix_match;not null"`
	IsActive      bool               `gorm:"column:is_active;not null"`
}

// PromoBundle prices a group of products together.
type PromoBundle struct {
	ID                 uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	PromoID            uuid.UUID            `gorm:"column:promo_id;type:uuid;not null"`
	BundleType         enums.BundleType     `gorm:"column:bundle_type;not null"`
	BundleProducts     types.BundleProducts `gorm:"column:bundle_products;type:jsonb;not null"`
	MinQuantity        int                  `gorm:"column:min_quantity;not null"`
	MaxQuantity        int                  `gorm:"column:max_quantity;not null"`
	BundlePrice        *decimal.Decimal     `gorm:"column:bundle_price;type:numeric(12,2)"`
	DiscountType       enums.DiscountType   `gorm:"column:discount_type;not null"`
	DiscountValue      decimal.Decimal      `gorm:"column:discount_value;type:numeric(12,2);not null"`
	RequireAllProducts bool                 `gorm:"column:require_all_products;not null"`
	CheckStock         bool                 `gorm:"column:check_stock;not null"`
	IsActive           bool                 `gorm:"column:is_active;not null"`
}
