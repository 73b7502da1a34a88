package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BundleProduct is one required entry of a promo bundle.
type BundleProduct struct {
	ProductID       uuid.UUID       `json:"product_id"`
	Quantity        int             `json:"quantity"`
	IsFree          bool            `json:"is_free"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// BundleProducts is stored as a JSONB array on promo_bundles.
type BundleProducts []BundleProduct

func (b BundleProducts) Value() (driver.Value, error) {
	if b == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]BundleProduct(b))
	if err != nil {
		return nil, fmt.Errorf("bundle products: %w", err)
	}
	return string(raw), nil
}

func (b *BundleProducts) Scan(value any) error {
	raw, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("bundle products: %w", err)
	}
	if len(raw) == 0 {
		*b = BundleProducts{}
		return nil
	}
	var decoded []BundleProduct
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("bundle products: %w", err)
	}
	*b = decoded
	return nil
}

// ProductIDs lists the entry product ids in declaration order.
func (b BundleProducts) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b))
	for _, entry := range b {
		ids = append(ids, entry.ProductID)
	}
	return ids
}
