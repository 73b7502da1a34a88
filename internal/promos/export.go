package promos

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	sheetProducts   = "Products"
	sheetCategories = "Categories"
	sheetBundles    = "Bundles"
)

var (
	productHeader  = []any{"Promo", "Rule ID", "Product ID", "Discount Type", "Discount Value", "Min Qty", "Max Qty", "Override Price", "Tiers", "Check Stock"}
	categoryHeader = []any{"Promo", "Rule ID", "Category ID", "Discount Type", "Discount Value", "Min Qty", "Max Discount", "Mix & Match"}
	bundleHeader   = []any{"Promo", "Rule ID", "Bundle Type", "Products", "Min Sets", "Max Sets", "Bundle Price", "Discount Type", "Discount Value", "Require All", "Check Stock"}
)

// WriteWorkbook renders the rule set as an xlsx workbook with one sheet per
// rule level.
func WriteWorkbook(w io.Writer, set RuleSet) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetProducts); err != nil {
		return err
	}
	for _, name := range []string{sheetCategories, sheetBundles} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	productRows := make([][]any, 0, len(set.Products))
	for _, r := range set.Products {
		tiers, err := json.Marshal(r.Tiers)
		if err != nil {
			return fmt.Errorf("encode tiers: %w", err)
		}
		productRows = append(productRows, []any{
			r.PromoName, r.ID.String(), r.ProductID.String(), string(r.DiscountType), money(&r.DiscountValue),
			r.MinQuantity, r.MaxQuantity, money(r.OverridePrice), string(tiers), r.CheckStock,
		})
	}
	if err := writeSheet(f, sheetProducts, productHeader, productRows); err != nil {
		return err
	}

	categoryRows := make([][]any, 0, len(set.Categories))
	for _, r := range set.Categories {
		categoryRows = append(categoryRows, []any{
			r.PromoName, r.ID.String(), r.CategoryID.String(), string(r.DiscountType), money(&r.DiscountValue),
			r.MinQuantity, money(r.MaxDiscount), r.AllowMixMatch,
		})
	}
	if err := writeSheet(f, sheetCategories, categoryHeader, categoryRows); err != nil {
		return err
	}

	bundleRows := make([][]any, 0, len(set.Bundles))
	for _, r := range set.Bundles {
		products, err := json.Marshal(r.Products)
		if err != nil {
			return fmt.Errorf("encode bundle products: %w", err)
		}
		bundleRows = append(bundleRows, []any{
			r.PromoName, r.ID.String(), string(r.BundleType), string(products), r.MinQuantity, r.MaxQuantity,
			money(r.BundlePrice), string(r.DiscountType), money(&r.DiscountValue), r.RequireAllProducts, r.CheckStock,
		})
	}
	if err := writeSheet(f, sheetBundles, bundleHeader, bundleRows); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// money returns a numeric cell value, or an empty cell for nil.
func money(d *decimal.Decimal) any {
	if d == nil {
		return ""
	}
	return d.Round(moneyPlaces).InexactFloat64()
}
