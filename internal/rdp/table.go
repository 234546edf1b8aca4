package rdp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
)

// Table is a column-oriented view of one universe's events.
// Cells are decimal.Decimal for numbers, string for text and nil for missing values.
type Table struct {
	Universe string
	Columns  []string
	Rows     [][]any
}

// NewTable builds a Table from an envelope's headers and data rows.
func NewTable(env EventsEnvelope) (*Table, error) {
	t := &Table{
		Universe: env.Universe.RIC,
		Columns:  make([]string, len(env.Headers)),
		Rows:     make([][]any, 0, len(env.Data)),
	}
	for i, h := range env.Headers {
		t.Columns[i] = h.Name
	}

	for i, raw := range env.Data {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var row []any
		if err := dec.Decode(&row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if len(row) != len(t.Columns) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
		for j, cell := range row {
			if n, ok := cell.(json.Number); ok {
				d, err := decimal.NewFromString(n.String())
				if err != nil {
					return nil, fmt.Errorf("row %d column %s: %w", i, t.Columns[j], err)
				}
				row[j] = d
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Column returns the index of the named column, or -1.
func (t *Table) Column(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Render writes the table as aligned text columns.
func (t *Table) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(t.Columns) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
	}
	cells := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, c := range row {
			cells[i] = formatCell(c)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func formatCell(c any) string {
	switch v := c.(type) {
	case nil:
		return "<NA>"
	case decimal.Decimal:
		return v.String()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
