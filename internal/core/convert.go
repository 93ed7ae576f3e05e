package core

// convert.go turns raw cell text into the nullable column types stored for
// movies. Blank cells become NULL. Ratings that do not parse also become
// NULL instead of failing the row; release years that do not parse fail it.

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// ActorSeparator splits the joined actor names of one row.
const ActorSeparator = ", "

// ToPgText converts a string to pgtype.Text, trimming surrounding whitespace
// the same way the parser trims cells. Returns invalid if the string is
// empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgRating coerces a rating cell to pgtype.Float8.
// Non-numeric text ("N/A"), blanks, NaN and infinities yield an invalid value.
func ToPgRating(s string) pgtype.Float8 {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Float8{Valid: false}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return pgtype.Float8{Valid: false}
	}
	return pgtype.Float8{Float64: f, Valid: true}
}

// ToPgYear converts a release year cell to pgtype.Int4.
// Blank is NULL. Spreadsheet exports often write integral floats ("2010.0"),
// which are accepted; fractional or non-numeric values are an error.
func ToPgYear(s string) (pgtype.Int4, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Int4{Valid: false}, nil
	}
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		return pgtype.Int4{Int32: int32(n), Valid: true}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return pgtype.Int4{}, fmt.Errorf("invalid release year %q", s)
	}
	return pgtype.Int4{Int32: int32(f), Valid: true}, nil
}

// SplitActors splits a joined actor cell on ActorSeparator. Names keep any
// whitespace not consumed by the separator; blank fragments are dropped.
func SplitActors(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ActorSeparator)
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		names = append(names, p)
	}
	return names
}

// FormatYear renders a nullable year for CSV output.
func FormatYear(y pgtype.Int4) string {
	if !y.Valid {
		return ""
	}
	return strconv.Itoa(int(y.Int32))
}

// FormatRating renders a nullable rating in its shortest form ("8.8").
func FormatRating(r pgtype.Float8) string {
	if !r.Valid {
		return ""
	}
	return strconv.FormatFloat(r.Float64, 'f', -1, 64)
}

// FormatText renders nullable text, NULL as empty.
func FormatText(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}
