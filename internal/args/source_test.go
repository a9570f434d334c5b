package args

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestResolve_NoSourceGivesEmptyObject(t *testing.T) {
	base, err := Source{}.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(base) != 0 {
		t.Errorf("expected empty object, got %v", base)
	}
}

func TestResolve_Literal(t *testing.T) {
	base, err := Source{Literal: `{"path": "a", "n": 1}`}.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"path": "a", "n": float64(1)}
	if !reflect.DeepEqual(base, want) {
		t.Errorf("base = %v, want %v", base, want)
	}
}

func TestResolve_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "args.json")
	if err := os.WriteFile(path, []byte(`{"url": "https://example.com"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	base, err := Source{FilePath: path}.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if base["url"] != "https://example.com" {
		t.Errorf("base = %v", base)
	}
}

func TestResolve_Stdin(t *testing.T) {
	base, err := Source{UseStdin: true, Stdin: strings.NewReader(`{"q": "hello"}`)}.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if base["q"] != "hello" {
		t.Errorf("base = %v", base)
	}
}

func TestResolve_BlankInputGivesEmptyObject(t *testing.T) {
	base, err := Source{UseStdin: true, Stdin: strings.NewReader("  \n")}.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(base) != 0 {
		t.Errorf("expected empty object, got %v", base)
	}
}

func TestResolve_AmbiguousSources(t *testing.T) {
	tests := []struct {
		name string
		src  Source
	}{
		{"literal and stdin", Source{Literal: `{}`, UseStdin: true}},
		{"literal and file", Source{Literal: `{}`, FilePath: "args.json"}},
		{"file and stdin", Source{FilePath: "args.json", UseStdin: true}},
		{"all three", Source{Literal: `{}`, FilePath: "args.json", UseStdin: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.src.Resolve()
			if !errors.Is(err, ErrAmbiguousSource) {
				t.Errorf("err = %v, want ErrAmbiguousSource", err)
			}
		})
	}
}

func TestResolve_InvalidJSONNamesSource(t *testing.T) {
	_, err := Source{Literal: `{"broken`}.Resolve()
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if parseErr.Source != "--json" {
		t.Errorf("Source = %q, want %q", parseErr.Source, "--json")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`[not json`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = Source{FilePath: path}.Resolve()
	if !errors.As(err, &parseErr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if parseErr.Source != path {
		t.Errorf("Source = %q, want %q", parseErr.Source, path)
	}
}

func TestResolve_NonObjectJSON(t *testing.T) {
	for _, literal := range []string{`[1,2,3]`, `"text"`, `42`, `true`} {
		_, err := Source{Literal: literal}.Resolve()
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("Resolve(%s) err = %v, want *ParseError", literal, err)
		}
	}
}

func TestResolve_MissingFile(t *testing.T) {
	_, err := Source{FilePath: filepath.Join(t.TempDir(), "absent.json")}.Resolve()
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
