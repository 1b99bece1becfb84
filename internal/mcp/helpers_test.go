package mcp

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestAsInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
		ok   bool
	}{
		{float64(3), 3, true},
		{float64(2.7), 2, false},
		{float64(-1), -1, true},
		{7, 7, true},
		{json.Number("12"), 12, true},
		{" 4 ", 4, true},
		{"four", 0, false},
		{true, 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := asInt(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("asInt(%#v) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAsStrings(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"list", []any{"Bug", " Feature ", ""}, []string{"Bug", "Feature"}},
		{"comma separated", "Bug, Feature,,", []string{"Bug", "Feature"}},
		{"missing", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := asStrings(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestArgs(t *testing.T) {
	a := args{"title": "  Fix it  ", "limit": float64(0), "count": "x", "cycleNumber": float64(2)}

	if got := a.str("title"); got != "Fix it" {
		t.Errorf("str trimmed to %q", got)
	}
	if _, err := a.required("missing"); err == nil || err.Error() != `missing required argument "missing"` {
		t.Errorf("unexpected error: %v", err)
	}
	if n, err := a.limit(20); err != nil || n != 20 {
		t.Errorf("non-positive limit should fall back, got %d (%v)", n, err)
	}
	if _, err := a.integer("count", 1); err == nil {
		t.Error("expected error for non-numeric integer argument")
	}
	if n, err := a.requiredInt("cycleNumber"); err != nil || n != 2 {
		t.Errorf("requiredInt = %d, %v", n, err)
	}
	if _, err := a.requiredInt("absent"); err == nil {
		t.Error("expected error for missing integer argument")
	}
}

func TestFormatResult(t *testing.T) {
	text, err := formatResult("Deleted issue ENG-1")
	if err != nil || text != "Deleted issue ENG-1" {
		t.Errorf("strings should pass through, got %q (%v)", text, err)
	}

	text, err = formatResult(map[string]int{"a": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "{\n  \"a\": 1\n}" {
		t.Errorf("unexpected JSON rendering %q", text)
	}

	if _, err := formatResult(make(chan int)); err == nil {
		t.Error("expected encode error")
	}
}
