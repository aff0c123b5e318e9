package analyze

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{"None", nil},
		{"True", true},
		{"42", int64(42)},
		{"-3", int64(-3)},
		{"2.5", 2.5},
		{"1e3", 1000.0},
		{"'it\\'s'", "it's"},
		{`"tab\there"`, "tab\there"},
		{`'ét\xe9'`, "été"},
		{"[]", []any{}},
		{"(1, 2,)", []any{int64(1), int64(2)}},
		{"()", []any{}},
		{"(1,)", []any{int64(1)}},
		{"(7)", int64(7)},
		{"(('x'))", "x"},
		{"([1])", []any{int64(1)}},
		{"{'a': [1, None], 2: 'b'}", map[string]any{"a": []any{int64(1), nil}, "2": "b"}},
	}

	for _, tt := range tests {
		got, err := ParseLiteral(tt.input)
		if err != nil {
			t.Errorf("ParseLiteral(%q) failed: %v", tt.input, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseLiteral(%q) = %#v, expected %#v", tt.input, got, tt.want)
		}
	}
}

func TestParseLiteralErrors(t *testing.T) {
	inputs := []string{
		"",
		"[1, 2",
		"{'a' 1}",
		"'unterminated",
		"[1] extra",
		"foo",
		"{[1]: 2}",
		"1.2.3",
	}

	for _, in := range inputs {
		if _, err := ParseLiteral(in); err == nil {
			t.Errorf("ParseLiteral(%q) should fail", in)
		}
	}
}

func TestParseRecordList(t *testing.T) {
	cell := "[{'genre_id': '21', 'genre_parent_id': None, 'genre_title': 'Hip-Hop'}]"

	records, err := ParseRecordList(cell)
	if err != nil {
		t.Fatalf("ParseRecordList failed: %v", err)
	}
	if len(records) != 1 || records[0]["genre_id"] != "21" || records[0]["genre_title"] != "Hip-Hop" {
		t.Errorf("records = %#v", records)
	}

	if _, err := ParseRecordList("{'genre_id': 1}"); !errors.Is(err, ErrNotRecordList) {
		t.Errorf("a bare mapping should be rejected, got %v", err)
	}
	if _, err := ParseRecordList("({'genre_id': 1})"); !errors.Is(err, ErrNotRecordList) {
		t.Errorf("a parenthesized mapping is not a tuple, got %v", err)
	}
	if records, err := ParseRecordList("({'genre_id': 1},)"); err != nil || len(records) != 1 {
		t.Errorf("a one-element tuple of mappings should parse, got %v, %v", records, err)
	}
	if _, err := ParseRecordList("[1, 2]"); !errors.Is(err, ErrNotRecordList) {
		t.Errorf("a list of ints should be rejected, got %v", err)
	}

	var syn *SyntaxError
	if _, err := ParseRecordList("[{'genre_id': }]"); !errors.As(err, &syn) {
		t.Errorf("expected SyntaxError, got %v", err)
	}
}
