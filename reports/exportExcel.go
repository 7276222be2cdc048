package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteInventorySummaryXlsx renders the summary as a two-sheet workbook.
func WriteInventorySummaryXlsx(summary *InventorySummary, w io.Writer) error {
	f := excelize.NewFile()

	stockSheet := "Stock"
	f.SetSheetName("Sheet1", stockSheet)
	f.SetCellValue(stockSheet, "A1", "Category")
	f.SetCellValue(stockSheet, "B1", "ItemCount")
	f.SetCellValue(stockSheet, "C1", "TotalKg")
	f.SetCellValue(stockSheet, "D1", "TotalRoll")
	for i, row := range summary.Categories {
		f.SetCellValue(stockSheet, "A"+fmt.Sprint(i+2), row.Category)
		f.SetCellValue(stockSheet, "B"+fmt.Sprint(i+2), row.ItemCount)
		f.SetCellValue(stockSheet, "C"+fmt.Sprint(i+2), row.TotalKg)
		f.SetCellValue(stockSheet, "D"+fmt.Sprint(i+2), row.TotalRoll)
	}

	orderSheet := "Orders"
	if _, err := f.NewSheet(orderSheet); err != nil {
		return err
	}
	f.SetCellValue(orderSheet, "A1", "OrderId")
	f.SetCellValue(orderSheet, "B1", "Customer")
	f.SetCellValue(orderSheet, "C1", "Product")
	f.SetCellValue(orderSheet, "D1", "Status")
	f.SetCellValue(orderSheet, "E1", "Quantity")
	f.SetCellValue(orderSheet, "F1", "StockReadyKg")
	f.SetCellValue(orderSheet, "G1", "ProductionReadyKg")
	f.SetCellValue(orderSheet, "H1", "ReadyPercent")
	for i, row := range summary.Orders {
		f.SetCellValue(orderSheet, "A"+fmt.Sprint(i+2), row.OrderID)
		f.SetCellValue(orderSheet, "B"+fmt.Sprint(i+2), row.CustomerName)
		f.SetCellValue(orderSheet, "C"+fmt.Sprint(i+2), row.ProductName)
		f.SetCellValue(orderSheet, "D"+fmt.Sprint(i+2), row.Status)
		f.SetCellValue(orderSheet, "E"+fmt.Sprint(i+2), row.Quantity)
		f.SetCellValue(orderSheet, "F"+fmt.Sprint(i+2), row.StockReadyKg)
		f.SetCellValue(orderSheet, "G"+fmt.Sprint(i+2), row.ProductionReadyKg)
		f.SetCellValue(orderSheet, "H"+fmt.Sprint(i+2), row.ReadyPercent)
	}

	return f.Write(w)
}
