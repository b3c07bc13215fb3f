package export

import "fmt"

// Dataset is a rendered-agnostic table: ordered headers plus rows keyed by header.
type Dataset struct {
	Title   string
	Headers []string
	Rows    []map[string]string
}

// AddRow appends a row built from values ordered like Headers.
func (d *Dataset) AddRow(values ...string) error {
	if len(values) != len(d.Headers) {
		return fmt.Errorf("row has %d values, want %d", len(values), len(d.Headers))
	}
	row := make(map[string]string, len(values))
	for i, header := range d.Headers {
		row[header] = values[i]
	}
	d.Rows = append(d.Rows, row)
	return nil
}

func (d Dataset) validate() error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("dataset requires at least one header")
	}
	return nil
}
