package universe

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// symbolColumn is the position of the symbol in sr_no,underlying,symbol rows.
const symbolColumn = 2

// ReadSymbolFile loads the broad index members from a CSV with the columns
// sr_no, underlying, symbol. A header row is detected by its symbol column.
// Symbols keep file order and duplicates are dropped.
func ReadSymbolFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseSymbols(f)
}

func parseSymbols(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	column := symbolColumn
	seen := make(map[string]struct{})
	var symbols []string

	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if line == 1 {
			if idx := headerIndex(record); idx >= 0 {
				column = idx
				continue
			}
		}
		if len(record) <= column {
			continue
		}

		symbol := strings.ToUpper(strings.TrimSpace(record[column]))
		if symbol == "" {
			continue
		}
		if _, dup := seen[symbol]; dup {
			continue
		}
		seen[symbol] = struct{}{}
		symbols = append(symbols, symbol)
	}
	return symbols, nil
}

func headerIndex(record []string) int {
	for i, field := range record {
		if strings.EqualFold(strings.TrimSpace(field), "symbol") {
			return i
		}
	}
	return -1
}
