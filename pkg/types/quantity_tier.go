package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// QuantityTier is one step of a tiered product promo. A nil MaxQty means the
// tier has no upper bound.
type QuantityTier struct {
	MinQty   int             `json:"min_qty"`
	MaxQty   *int            `json:"max_qty,omitempty"`
	Discount decimal.Decimal `json:"discount"`
}

// Contains reports whether qty falls inside the tier bounds.
func (t QuantityTier) Contains(qty int) bool {
	if qty < t.MinQty {
		return false
	}
	return t.MaxQty == nil || qty <= *t.MaxQty
}

// QuantityTiers is stored as a JSONB array on promo_products.
type QuantityTiers []QuantityTier

func (q QuantityTiers) Value() (driver.Value, error) {
	if q == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]QuantityTier(q))
	if err != nil {
		return nil, fmt.Errorf("quantity tiers: %w", err)
	}
	return string(raw), nil
}

func (q *QuantityTiers) Scan(value any) error {
	raw, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("quantity tiers: %w", err)
	}
	if len(raw) == 0 {
		*q = QuantityTiers{}
		return nil
	}
	var decoded []QuantityTier
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("quantity tiers: %w", err)
	}
	*q = decoded
	return nil
}

func jsonBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
