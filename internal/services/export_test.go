package services_test

import (
	"bytes"
	"testing"

	"github.com/localnerve/shopdb/internal/services"
	"github.com/localnerve/shopdb/internal/testutil"
	"github.com/tealeg/xlsx"
)

func TestExportProducts(t *testing.T) {
	db := testutil.SetupTestDB(t)

	office := testutil.CreateTestCategory(t, db, "Office")
	testutil.CreateTestProduct(t, db, "Standing Desk", "1234.50", office.ID)
	testutil.CreateTestProduct(t, db, "Pen", "2.00")

	var buf bytes.Buffer
	count, err := services.ExportProducts(db, &buf, "$")
	if err != nil {
		t.Fatalf("ExportProducts failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 exported products, got %d", count)
	}

	file, err := xlsx.OpenBinary(buf.Bytes())
	if err != nil {
		t.Fatalf("Failed to read workbook: %v", err)
	}
	if len(file.Sheets) != 1 || file.Sheets[0].Name != "Products" {
		t.Fatalf("Expected a single Products sheet, got %d sheets", len(file.Sheets))
	}

	rows := file.Sheets[0].Rows
	if len(rows) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(rows))
	}
	if got := rows[0].Cells[1].String(); got != "Name" {
		t.Errorf("Expected Name header, got %q", got)
	}

	desk := rows[1].Cells
	if got := desk[1].String(); got != "Standing Desk" {
		t.Errorf("Expected Standing Desk first, got %q", got)
	}
	if got := desk[2].String(); got != "$1,234.50" {
		t.Errorf("Expected formatted price $1,234.50, got %q", got)
	}
	if got := desk[7].String(); got != "1" {
		t.Errorf("Expected category id 1, got %q", got)
	}
	if got := rows[2].Cells[2].String(); got != "$2.00" {
		t.Errorf("Expected formatted price $2.00, got %q", got)
	}
}
