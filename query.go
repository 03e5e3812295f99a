package sheetdesk

import (
	"fmt"
	"strconv"
	"strings"
)

// Condition represents a single query condition
type Condition struct {
	Column   string   // Column name from the schema
	Operator string   // ==, !=, >, >=, <, <=, in, between, contains
	Value    string   // Compared value
	Values   []string // Candidates for in, bounds for between
}

// Query represents a query with multiple conditions
type Query struct {
	Conditions []Condition // Combined with AND
	Limit      int
	Offset     int
}

var validOps = []string{"==", "!=", ">", ">=", "<", "<=", "in", "between", "contains"}

// evalCondition evaluates a single condition against a cell value
func evalCondition(value string, condition Condition) bool {
	switch condition.Operator {
	case "==":
		return compareEqual(value, condition.Value)
	case "!=":
		return !compareEqual(value, condition.Value)
	case ">":
		return compareNumbers(value, condition.Value, func(a, b float64) bool { return a > b })
	case ">=":
		return compareNumbers(value, condition.Value, func(a, b float64) bool { return a >= b })
	case "<":
		return compareNumbers(value, condition.Value, func(a, b float64) bool { return a < b })
	case "<=":
		return compareNumbers(value, condition.Value, func(a, b float64) bool { return a <= b })
	case "in":
		for _, item := range condition.Values {
			if compareEqual(value, item) {
				return true
			}
		}
		return false
	case "between":
		if len(condition.Values) != 2 {
			return false
		}
		return compareNumbers(value, condition.Values[0], func(a, b float64) bool { return a >= b }) &&
			compareNumbers(value, condition.Values[1], func(a, b float64) bool { return a <= b })
	case "contains":
		return strings.Contains(strings.ToLower(value), strings.ToLower(condition.Value))
	default:
		return false
	}
}

// compareEqual compares two cells, numerically when both are numbers
func compareEqual(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if fa, ok := parseAmount(a); ok {
		if fb, ok := parseAmount(b); ok {
			return fa == fb
		}
	}
	return a == b
}

func compareNumbers(a, b string, cmp func(a, b float64) bool) bool {
	fa, ok := parseAmount(a)
	if !ok {
		return false
	}
	fb, ok := parseAmount(b)
	if !ok {
		return false
	}
	return cmp(fa, fb)
}

// parseAmount parses numeric-as-string cells such as "12", "12.5", "12,5 €"
func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "€")
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// MatchesQuery checks if the row matches all conditions of the query
func (s Schema[R]) MatchesQuery(row Row, query Query) bool {
	for _, condition := range query.Conditions {
		var value string
		if i := s.Index(condition.Column); i >= 0 && i < len(row.Values) {
			value = row.Values[i]
		}
		if !evalCondition(value, condition) {
			return false
		}
	}
	return true
}

// ApplyQuery filters rows based on query conditions
func (s Schema[R]) ApplyQuery(rows []Row, query Query) ([]Row, error) {
	if err := s.ValidateQuery(query); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	results := []Row{}
	for _, row := range rows {
		if s.MatchesQuery(row, query) {
			results = append(results, row)
		}
	}

	if query.Offset >= len(results) {
		return []Row{}, nil
	}
	results = results[query.Offset:]

	if query.Limit > 0 && query.Limit < len(results) {
		results = results[:query.Limit]
	}

	return results, nil
}

// ValidateQuery validates query structure against the schema
func (s Schema[R]) ValidateQuery(query Query) error {
	for i, cond := range query.Conditions {
		valid := false
		for _, op := range validOps {
			if cond.Operator == op {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid operator '%s' in condition %d", cond.Operator, i)
		}

		if cond.Operator == "between" && len(cond.Values) != 2 {
			return fmt.Errorf("operator 'between' requires 2 values in condition %d", i)
		}

		if cond.Column == "" {
			return fmt.Errorf("empty column name in condition %d", i)
		}
		if s.Index(cond.Column) < 0 {
			return fmt.Errorf("unknown column '%s' in condition %d", cond.Column, i)
		}
	}

	if query.Limit < 0 {
		return fmt.Errorf("limit must be non-negative")
	}
	if query.Offset < 0 {
		return fmt.Errorf("offset must be non-negative")
	}

	return nil
}
