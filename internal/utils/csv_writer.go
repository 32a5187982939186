package utils

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"orbitaledge/internal/models"
)

// WriteOrdersCSV renders orders with the same columns as the workbook.
func WriteOrdersCSV(w io.Writer, orders []models.OrderView) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(orderHeaders); err != nil {
		return err
	}

	for _, order := range orders {
		record := []string{
			strconv.FormatUint(uint64(order.ID), 10),
			order.CatalogID,
			order.OrderDate.UTC().Format(time.RFC3339),
			strconv.FormatFloat(order.Resolution, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
