package catalog

import (
	"database/sql"
	"math"
	"strconv"
	"strings"
)

// ParseNumber coerces text to a float. Malformed text yields NaN instead of
// an error so callers can filter rows without branching on errors.
func ParseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// IsFinite reports whether v is neither NaN nor infinite
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ParseInt parses an integer key. Integral float text such as "10.0" is
// accepted because numeric columns with gaps are often exported as floats.
func ParseInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !IsFinite(f) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// TruncateInt casts a finite number to an integer, truncating toward zero
func TruncateInt(f float64) (int64, bool) {
	if !IsFinite(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(math.Trunc(f)), true
}

// Text returns the cell as a nullable string
func (r Row) Text(column string) sql.NullString {
	v, ok := r.Get(column)
	return sql.NullString{String: v, Valid: ok}
}

// Int returns the cell as a nullable integer; unparsable text is null
func (r Row) Int(column string) sql.NullInt64 {
	v, ok := r.Get(column)
	if !ok {
		return sql.NullInt64{}
	}
	n, ok := ParseInt(v)
	return sql.NullInt64{Int64: n, Valid: ok}
}

// Float returns the cell as a nullable float; unparsable or non-finite text is null
func (r Row) Float(column string) sql.NullFloat64 {
	v, ok := r.Get(column)
	if !ok {
		return sql.NullFloat64{}
	}
	f := ParseNumber(v)
	if !IsFinite(f) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

func formatText(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

func formatInt(v sql.NullInt64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(v.Int64, 10)
}

func formatFloat(v sql.NullFloat64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}
