package sheetdesk

import (
	"strings"
	"time"
)

// DefaultDateLayout is the day/month/year form dates are stored in.
const DefaultDateLayout = "02/01/2006"

// DateFormat holds the layouts used to parse dates read from the backend and
// to format dates written to it. The two are configured independently; a
// record read with one and written with the other keeps its date but not
// necessarily its stored string.
type DateFormat struct {
	Read  string
	Write string
}

// DefaultDateFormat reads and writes DefaultDateLayout.
func DefaultDateFormat() DateFormat {
	return DateFormat{Read: DefaultDateLayout, Write: DefaultDateLayout}
}

// Field binds one positional column to a field of R. Encode and Decode are the
// only way a column is read or written, so the two paths cannot drift.
type Field[R any] struct {
	Name     string
	Required bool
	Encode   func(r *R, df DateFormat) string
	Decode   func(r *R, value string, df DateFormat) error
}

// StringField maps a column to a string field.
func StringField[R any](name string, required bool, ptr func(*R) *string) Field[R] {
	return Field[R]{
		Name:     name,
		Required: required,
		Encode: func(r *R, _ DateFormat) string {
			return *ptr(r)
		},
		Decode: func(r *R, value string, _ DateFormat) error {
			*ptr(r) = value
			return nil
		},
	}
}

// DateField maps a column to a calendar date. Values that do not match
// DateFormat.Read fail with *DateParseError.
func DateField[R any](name string, required bool, ptr func(*R) *time.Time) Field[R] {
	return Field[R]{
		Name:     name,
		Required: required,
		Encode: func(r *R, df DateFormat) string {
			t := *ptr(r)
			if t.IsZero() {
				return ""
			}
			return t.Format(df.Write)
		},
		Decode: func(r *R, value string, df DateFormat) error {
			value = strings.TrimSpace(value)
			if value == "" {
				*ptr(r) = time.Time{}
				return nil
			}
			t, err := time.Parse(df.Read, value)
			if err != nil {
				return &DateParseError{Field: name, Value: value, Layout: df.Read, Err: err}
			}
			*ptr(r) = t
			return nil
		},
	}
}

// Schema is the ordered column contract of a record kind: column i of a row
// is Fields[i]. Reordering Fields without moving the sheet columns corrupts
// existing data; there is no header-based resolution.
type Schema[R any] struct {
	Fields []Field[R]
}

// NewSchema builds a schema from fields in column order.
func NewSchema[R any](fields ...Field[R]) Schema[R] {
	return Schema[R]{Fields: fields}
}

// Columns returns the number of columns of a full row.
func (s Schema[R]) Columns() int {
	return len(s.Fields)
}

// Names returns the column names in order.
func (s Schema[R]) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Index returns the position of the named column, or -1.
func (s Schema[R]) Index(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Encode serializes r into a row of exactly Columns() cells. A required field
// left empty fails with *ValidationError.
func (s Schema[R]) Encode(r *R, df DateFormat) ([]string, error) {
	if r == nil {
		return nil, &ValidationError{Reason: "record is nil"}
	}
	row := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		v := f.Encode(r, df)
		if f.Required && strings.TrimSpace(v) == "" {
			return nil, &ValidationError{Field: f.Name, Reason: "value is required"}
		}
		row[i] = v
	}
	return row, nil
}

// Decode parses a row into a new R. Trailing cells the backend trimmed are
// treated as empty; cells past Columns() are ignored. A missing or empty
// required cell fails with *ValidationError, a bad date with *DateParseError.
func (s Schema[R]) Decode(row []string, df DateFormat) (*R, error) {
	r := new(R)
	for i, f := range s.Fields {
		var v string
		if i < len(row) {
			v = row[i]
		}
		if f.Required && strings.TrimSpace(v) == "" {
			if i >= len(row) {
				return nil, &ValidationError{Field: f.Name, Reason: "row is incomplete"}
			}
			return nil, &ValidationError{Field: f.Name, Reason: "value is required"}
		}
		if err := f.Decode(r, v, df); err != nil {
			return nil, err
		}
	}
	return r, nil
}
