package batch

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/use-agent/shelfwatch/models"
)

func TestWriteCSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	tricky := `Tom's "Special", Tomatoes`
	rows := []models.OutputRow{
		{
			Pincode:    "575006",
			SearchTerm: "tomato",
			Service:    "blinkit",
			Product: models.Product{
				ID:           "p1",
				Name:         tricky,
				Price:        "₹45",
				Quantity:     "1 kg",
				DeliveryTime: "8 mins",
				Available:    true,
			},
		},
	}

	if err := WriteCSV(path, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(raw), `"Tom's ""Special"", Tomatoes"`) {
		t.Errorf("tricky field not quoted/escaped, got:\n%s", raw)
	}

	records, err := csv.NewReader(strings.NewReader(string(raw))).ReadAll()
	if err != nil {
		t.Fatalf("parse back: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want header + 1 row", len(records))
	}
	if !equalSlices(records[0], models.CSVHeader) {
		t.Errorf("header = %v, want %v", records[0], models.CSVHeader)
	}
	row := records[1]
	if row[4] != tricky {
		t.Errorf("name round-tripped to %q, want %q", row[4], tricky)
	}
	if row[12] != "true" {
		t.Errorf("available column = %q, want true", row[12])
	}
}

func TestWriteCSV_EmptyRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := WriteCSV(path, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 1 {
		t.Errorf("empty batch should write only the header, got %d lines", len(lines))
	}
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
