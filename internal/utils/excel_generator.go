package utils

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"orbitaledge/internal/models"
)

const ordersSheet = "Orders"

var orderHeaders = []string{"Order ID", "Catalog ID", "Order Date (UTC)", "Resolution (m)"}

// WriteOrdersWorkbook renders orders as an xlsx workbook with an Orders sheet
// and an Info sheet describing the export.
func WriteOrdersWorkbook(w io.Writer, orders []models.OrderView) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ordersSheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DCE6F1"}},
	})
	if err != nil {
		return err
	}
	dateFormat := "yyyy-mm-dd hh:mm:ss"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFormat})
	if err != nil {
		return err
	}
	numberStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return err
	}

	for i, header := range orderHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(ordersSheet, cell, header)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(orderHeaders), 1)
	f.SetCellStyle(ordersSheet, "A1", lastHeader, headerStyle)

	for rowIdx, order := range orders {
		rowNum := rowIdx + 2

		f.SetCellValue(ordersSheet, fmt.Sprintf("A%d", rowNum), order.ID)
		f.SetCellValue(ordersSheet, fmt.Sprintf("B%d", rowNum), order.CatalogID)
		f.SetCellValue(ordersSheet, fmt.Sprintf("C%d", rowNum), order.OrderDate.UTC())
		f.SetCellValue(ordersSheet, fmt.Sprintf("D%d", rowNum), order.Resolution)
	}
	if len(orders) > 0 {
		last := len(orders) + 1
		f.SetCellStyle(ordersSheet, "C2", fmt.Sprintf("C%d", last), dateStyle)
		f.SetCellStyle(ordersSheet, "D2", fmt.Sprintf("D%d", last), numberStyle)
	}

	for i := range orderHeaders {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(ordersSheet, colName, colName, 22)
	}

	if err := f.AutoFilter(ordersSheet, "A1:"+lastHeader, nil); err != nil {
		return err
	}

	if err := createInfoSheet(f, orders); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func createInfoSheet(f *excelize.File, orders []models.OrderView) error {
	const sheet = "Info"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Exported At (UTC)", time.Now().UTC().Format(time.RFC3339)},
		{"Orders", len(orders)},
	}
	if len(orders) > 0 {
		first, last := orders[0].OrderDate, orders[0].OrderDate
		for _, o := range orders[1:] {
			if o.OrderDate.Before(first) {
				first = o.OrderDate
			}
			if o.OrderDate.After(last) {
				last = o.OrderDate
			}
		}
		rows = append(rows,
			[]interface{}{"Earliest Order", first.UTC().Format(time.RFC3339)},
			[]interface{}{"Latest Order", last.UTC().Format(time.RFC3339)},
		)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	f.SetColWidth(sheet, "A", "B", 28)
	return nil
}
