package promos

import (
	"time"

	"github.com/angelmondragon/tillpoint/pkg/db/models"
	pkgpagination "github.com/angelmondragon/tillpoint/pkg/pagination"
	"github.com/google/uuid"
)

// ListParams selects one page of a tenant's promos.
type ListParams struct {
	TenantID uuid.UUID
	pkgpagination.Params
}

// ListResult is one page of promos. Cursor is empty on the last page.
type ListResult struct {
	Items  []ListItem `json:"items"`
	Cursor string     `json:"cursor"`
}

// ListItem summarizes a promo with its rule counts.
type ListItem struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	StartsAt      time.Time  `json:"starts_at"`
	EndsAt        *time.Time `json:"ends_at,omitempty"`
	IsActive      bool       `json:"is_active"`
	ProductRules  int        `json:"product_rules"`
	CategoryRules int        `json:"category_rules"`
	BundleRules   int        `json:"bundle_rules"`
	CreatedAt     time.Time  `json:"created_at"`
}

type listQuery struct {
	tenantID uuid.UUID
	limit    int
	cursor   *pkgpagination.Cursor
}

func toListItem(m models.Promo) ListItem {
	return ListItem{
		ID:            m.ID,
		Name:          m.Name,
		StartsAt:      m.StartsAt,
		EndsAt:        m.EndsAt,
		IsActive:      m.IsActive,
		ProductRules:  len(m.Products),
		CategoryRules: len(m.Categories),
		BundleRules:   len(m.Bundles),
		CreatedAt:     m.CreatedAt,
	}
}
