package core

import (
	"reflect"
	"testing"
)

// ----------------------------------------------------------------------------
// ToPgRating Tests
// ----------------------------------------------------------------------------

func TestToPgRating(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      float64
	}{
		{name: "decimal", input: "8.8", wantValid: true, want: 8.8},
		{name: "integer", input: "7", wantValid: true, want: 7},
		{name: "surrounding whitespace", input: "  6.5 ", wantValid: true, want: 6.5},
		{name: "negative", input: "-1.5", wantValid: true, want: -1.5},
		{name: "not applicable", input: "N/A", wantValid: false},
		{name: "empty", input: "", wantValid: false},
		{name: "whitespace", input: "   ", wantValid: false},
		{name: "NaN", input: "NaN", wantValid: false},
		{name: "infinity", input: "Inf", wantValid: false},
		{name: "trailing text", input: "8.8/10", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToPgRating(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("ToPgRating(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if tt.wantValid && got.Float64 != tt.want {
				t.Errorf("ToPgRating(%q) = %v, want %v", tt.input, got.Float64, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToPgYear Tests
// ----------------------------------------------------------------------------

func TestToPgYear(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      int32
		wantErr   bool
	}{
		{name: "four digits", input: "2010", wantValid: true, want: 2010},
		{name: "spreadsheet float", input: "2010.0", wantValid: true, want: 2010},
		{name: "padded", input: " 1999 ", wantValid: true, want: 1999},
		{name: "empty is null", input: "", wantValid: false},
		{name: "whitespace is null", input: "  ", wantValid: false},
		{name: "fractional", input: "2010.5", wantErr: true},
		{name: "text", input: "soon", wantErr: true},
		{name: "NaN", input: "NaN", wantErr: true},
		{name: "out of range", input: "1e12", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToPgYear(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ToPgYear(%q) expected error, got %+v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToPgYear(%q) unexpected error: %v", tt.input, err)
			}
			if got.Valid != tt.wantValid {
				t.Fatalf("ToPgYear(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if tt.wantValid && got.Int32 != tt.want {
				t.Errorf("ToPgYear(%q) = %d, want %d", tt.input, got.Int32, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToPgText Tests
// ----------------------------------------------------------------------------

func TestToPgText(t *testing.T) {
	if got := ToPgText("  Action "); !got.Valid || got.String != "Action" {
		t.Errorf("ToPgText trimmed = %+v, want Action", got)
	}
	if got := ToPgText("   "); got.Valid {
		t.Errorf("ToPgText(whitespace) = %+v, want invalid", got)
	}
}

// ----------------------------------------------------------------------------
// SplitActors Tests
// ----------------------------------------------------------------------------

func TestSplitActors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "two actors", input: "Leonardo DiCaprio, Joseph Gordon-Levitt", want: []string{"Leonardo DiCaprio", "Joseph Gordon-Levitt"}},
		{name: "single actor", input: "Tom Hardy", want: []string{"Tom Hardy"}},
		{name: "empty", input: "", want: nil},
		{name: "comma without space is not a separator", input: "Smith,Jones", want: []string{"Smith,Jones"}},
		{name: "extra space kept", input: "A,  B", want: []string{"A", " B"}},
		{name: "blank fragments dropped", input: "A, , B, ", want: []string{"A", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitActors(tt.input)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitActors(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Format Tests
// ----------------------------------------------------------------------------

func TestFormatRating(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"8.8", "8.8"},
		{"9", "9"},
		{"7.25", "7.25"},
		{"N/A", ""},
	}
	for _, tt := range tests {
		if got := FormatRating(ToPgRating(tt.input)); got != tt.want {
			t.Errorf("FormatRating(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatYear(t *testing.T) {
	y, _ := ToPgYear("2010")
	if got := FormatYear(y); got != "2010" {
		t.Errorf("FormatYear = %q, want 2010", got)
	}
	null, _ := ToPgYear("")
	if got := FormatYear(null); got != "" {
		t.Errorf("FormatYear(null) = %q, want empty", got)
	}
}
