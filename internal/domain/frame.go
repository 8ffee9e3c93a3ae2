package domain

import "time"

// Column names of the persisted series.
const (
	ColumnDate            = "date"
	ColumnDischargeVolObs = "discharge_vol_obs"
	ColumnWaterLevelObs   = "water_level_obs"
)

// Column is a named, nullable float column.
type Column struct {
	Name   string
	Values []*float64
}

// Frame is loosely shaped tabular series input: one timestamp per row plus
// any number of value columns. Nothing about a Frame is validated until it
// is turned into a Series.
type Frame struct {
	Dates   []time.Time
	Columns []Column

	// DateIndexed reports whether Dates is the row key of the frame. When
	// false, rows are addressed by position and the dates are an ordinary
	// leading column.
	DateIndexed bool
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.Dates) }

// Column returns the first column with the given name.
func (f *Frame) Column(name string) (Column, bool) {
	for _, c := range f.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames lists the frame's columns in order. The date column is only
// listed when it is not the index.
func (f *Frame) ColumnNames() []string {
	names := make([]string, 0, len(f.Columns)+1)
	if !f.DateIndexed {
		names = append(names, ColumnDate)
	}
	for _, c := range f.Columns {
		names = append(names, c.Name)
	}
	return names
}

// Table is an untyped CSV table, kept verbatim.
type Table struct {
	Header []string
	Rows   [][]string
}
