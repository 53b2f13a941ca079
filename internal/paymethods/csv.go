package paymethods

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadCSV reads rows from a CSV file with a header line containing the
// columns country, payment_method_type, and payment_method_type_name, in
// any order.
func LoadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses payment-method rows from r.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	countryIdx, ok := col["country"]
	if !ok {
		return nil, fmt.Errorf("missing column: country")
	}
	categoryIdx, ok := col["payment_method_type"]
	if !ok {
		return nil, fmt.Errorf("missing column: payment_method_type")
	}
	nameIdx, ok := col["payment_method_type_name"]
	if !ok {
		return nil, fmt.Errorf("missing column: payment_method_type_name")
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		rows = append(rows, Row{
			Country:  strings.ToUpper(strings.TrimSpace(record[countryIdx])),
			Category: strings.TrimSpace(record[categoryIdx]),
			Name:     strings.TrimSpace(record[nameIdx]),
		})
	}
	return rows, nil
}
