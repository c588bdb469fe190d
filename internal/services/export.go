package services

import (
	"io"
	"strconv"
	"strings"

	"github.com/leekchan/accounting"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

const exportBatch = 500

var productExportHeaders = []string{
	"ID", "Name", "Price", "Stock", "Sold", "Rating", "Reviews", "CategoryIDs", "CreatedAt", "UpdatedAt",
}

// ExportProducts writes every active product to w as an xlsx workbook with one sheet.
// Prices are formatted with the currency symbol. Returns the number of product rows written.
func ExportProducts(db *gorm.DB, w io.Writer, symbol string) (int, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return 0, err
	}

	header := sheet.AddRow()
	for _, h := range productExportHeaders {
		header.AddCell().SetString(h)
	}

	money := accounting.Accounting{Symbol: symbol, Precision: 2}
	count := 0
	for skip := 0; ; skip += exportBatch {
		products, err := ListProducts(db, ProductFilter{Page: Page{Skip: skip, Limit: exportBatch}})
		if err != nil {
			return 0, err
		}

		for _, p := range products {
			row := sheet.AddRow()
			row.AddCell().SetInt(int(p.ID))
			row.AddCell().SetString(p.Name)
			row.AddCell().SetString(money.FormatMoneyDecimal(p.Price.Decimal))
			row.AddCell().SetInt(p.StockQuantity)
			row.AddCell().SetInt(p.SoldCount)
			row.AddCell().SetString(p.Rating.StringFixed(1))
			row.AddCell().SetInt(p.ReviewCount)

			ids := make([]string, len(p.Categories))
			for i, c := range p.Categories {
				ids[i] = strconv.FormatUint(uint64(c.ID), 10)
			}
			row.AddCell().SetString(strings.Join(ids, ","))

			row.AddCell().SetString(p.CreatedAt.Format("2006-01-02 15:04:05"))
			row.AddCell().SetString(p.UpdatedAt.Format("2006-01-02 15:04:05"))
			count++
		}

		if len(products) < exportBatch {
			break
		}
	}

	if err := file.Write(w); err != nil {
		return 0, err
	}
	return count, nil
}
