package commands

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestReadArguments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "args.jsonc")
	content := `{
		// team to list
		"teamKey": "ENG",
		"limit": 5,
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		inline  []string
		path    string
		want    map[string]any
		wantErr bool
	}{
		{"none", nil, "", map[string]any{}, false},
		{"inline", []string{`{"issueId": "ENG-1"}`}, "", map[string]any{"issueId": "ENG-1"}, false},
		{"file with comments", nil, path, map[string]any{"teamKey": "ENG", "limit": float64(5)}, false},
		{"both", []string{`{}`}, path, nil, true},
		{"not an object", []string{`[1, 2]`}, "", nil, true},
		{"missing file", nil, filepath.Join(t.TempDir(), "absent.json"), nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readArguments(tt.inline, tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}
