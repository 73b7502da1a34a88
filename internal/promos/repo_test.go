package promos

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/tillpoint/pkg/db/models"
	"github.com/angelmondragon/tillpoint/pkg/enums"
	pkgpagination "github.com/angelmondragon/tillpoint/pkg/pagination"
	"github.com/angelmondragon/tillpoint/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupPromosTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:promos_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Promo{}, &models.PromoProduct{}, &models.PromoCategory{}, &models.PromoBundle{}))
	return db
}

func seedPromo(t *testing.T, repo *Repository, tenantID uuid.UUID, name string, startsAt time.Time, endsAt *time.Time, active bool, createdAt time.Time) models.Promo {
	t.Helper()
	product := uuid.New()
	promo := models.Promo{
		TenantID:  tenantID,
		Name:      name,
		StartsAt:  startsAt,
		EndsAt:    endsAt,
		IsActive:  active,
		CreatedAt: createdAt,
		Products: []models.PromoProduct{{
			ProductID:     product,
			DiscountType:  enums.DiscountTypePercentage,
			DiscountValue: dec("12.5"),
			QuantityTiers: types.QuantityTiers{{MinQty: 1, MaxQty: intPtr(4), Discount: dec("5")}},
			IsActive:      true,
		}},
		Bundles: []models.PromoBundle{{
			BundleType:         enums.BundleTypeFixedBundle,
			BundleProducts:     types.BundleProducts{{ProductID: product, Quantity: 2}},
			BundlePrice:        decPtr("15000"),
			DiscountType:       enums.DiscountTypeFixed,
			RequireAllProducts: true,
			IsActive:           true,
		}},
	}
	require.NoError(t, repo.Create(context.Background(), &promo))
	return promo
}

func TestRepositoryActivePromos(t *testing.T) {
	db := setupPromosTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	now := epoch.Add(10 * 24 * time.Hour)
	past := now.Add(-time.Hour)

	open := seedPromo(t, repo, tenantID, "open", epoch, nil, true, epoch)
	seedPromo(t, repo, tenantID, "expired", epoch, &past, true, epoch)
	seedPromo(t, repo, tenantID, "future", now.Add(time.Hour), nil, true, epoch)
	seedPromo(t, repo, tenantID, "disabled", epoch, nil, false, epoch)
	seedPromo(t, repo, uuid.New(), "other tenant", epoch, nil, true, epoch)

	promos, err := repo.ActivePromos(ctx, tenantID, now)
	require.NoError(t, err)
	require.Len(t, promos, 1)
	assert.Equal(t, open.ID, promos[0].ID)
	require.Len(t, promos[0].Products, 1)
	require.Len(t, promos[0].Bundles, 1)
	assert.Empty(t, promos[0].Categories)

	product := promos[0].Products[0]
	assert.True(t, product.DiscountValue.Equal(dec("12.5")))
	require.Len(t, product.QuantityTiers, 1)
	assert.Equal(t, 4, *product.QuantityTiers[0].MaxQty)
	assert.True(t, promos[0].Bundles[0].BundlePrice.Equal(dec("15000")))
	assert.Len(t, promos[0].Bundles[0].BundleProducts, 1)
}

func TestRepositoryListCursor(t *testing.T) {
	db := setupPromosTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	var created []models.Promo
	for i := 0; i < 3; i++ {
		created = append(created, seedPromo(t, repo, tenantID, "promo", epoch, nil, true, epoch.Add(time.Duration(i)*time.Hour)))
	}

	rows, err := repo.List(ctx, listQuery{tenantID: tenantID, limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, created[2].ID, rows[0].ID)
	assert.Equal(t, created[1].ID, rows[1].ID)
	assert.Len(t, rows[0].Products, 1)

	next, err := repo.List(ctx, listQuery{
		tenantID: tenantID,
		limit:    2,
		cursor:   &pkgpagination.Cursor{CreatedAt: rows[1].CreatedAt, ID: rows[1].ID},
	})
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Equal(t, created[0].ID, next[0].ID)
}
