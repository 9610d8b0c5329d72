package batch

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/use-agent/shelfwatch/models"
)

// WriteCSV serializes rows to path as UTF-8, comma-delimited CSV with the
// fixed header. encoding/csv handles the quoting rules: a field containing
// a comma, quote or newline is wrapped in double quotes with internal
// quotes doubled.
func WriteCSV(path string, rows []models.OutputRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(models.CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(record(row)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Sync()
}

// record flattens one row in CSVHeader column order.
func record(row models.OutputRow) []string {
	return []string{
		row.Pincode,
		row.SearchTerm,
		row.Service,
		row.ID,
		row.Name,
		row.Price,
		row.OriginalPrice,
		row.Savings,
		row.Quantity,
		row.DeliveryTime,
		row.Discount,
		row.ImageURL,
		strconv.FormatBool(row.Available),
	}
}
