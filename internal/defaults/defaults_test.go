package defaults

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoad_FileWithCommentsAndModes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.json")
	content := `{
		// injected org for every tool
		"mode": "default",
		"global": {"org_id": "acme"},
		"tools": {
			"create_item": {"project_id": "infra"}
		}
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != ModeDefault {
		t.Errorf("Mode = %q", cfg.Mode)
	}
	if cfg.Global["org_id"] != "acme" {
		t.Errorf("Global = %v", cfg.Global)
	}
}

func TestLoad_UnknownMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.json")
	if err := os.WriteFile(path, []byte(`{"mode": "loud"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "mode") {
		t.Errorf("err = %v", err)
	}
}

func TestFor_ToolParamsOverrideGlobal(t *testing.T) {
	cfg := &Config{
		Global: map[string]any{"org_id": "acme", "region": "eu"},
		Tools: map[string]map[string]any{
			"create_item": {"org_id": "special"},
		},
	}

	got := cfg.For("create_item")
	want := map[string]any{"org_id": "special", "region": "eu"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("For = %v, want %v", got, want)
	}

	// Params for other tools do not leak.
	other := cfg.For("list_items")
	if other["org_id"] != "acme" {
		t.Errorf("For(list_items) = %v", other)
	}
}

func TestApply_BaseWinsOverInjected(t *testing.T) {
	cfg := &Config{Global: map[string]any{"org_id": "acme", "region": "eu"}}

	base := map[string]any{"org_id": "user-supplied"}
	result := cfg.Apply(base, "any_tool")

	if result["org_id"] != "user-supplied" {
		t.Errorf("base should win over injected value, got %v", result["org_id"])
	}
	if result["region"] != "eu" {
		t.Errorf("injected value missing: %v", result)
	}
	if base["region"] != nil {
		t.Error("Apply mutated its base argument")
	}
}

func TestParseSetEntries(t *testing.T) {
	params, err := ParseSetEntries([]string{
		"org=acme",
		"n=3",
		`labels=["a","b"]`,
		"note=contains = sign",
	})
	if err != nil {
		t.Fatalf("ParseSetEntries: %v", err)
	}
	if params["org"] != "acme" {
		t.Errorf("org = %v", params["org"])
	}
	if params["n"] != float64(3) {
		t.Errorf("n = %v (%T), want JSON number", params["n"], params["n"])
	}
	if !reflect.DeepEqual(params["labels"], []any{"a", "b"}) {
		t.Errorf("labels = %v", params["labels"])
	}
	if params["note"] != "contains = sign" {
		t.Errorf("note = %v", params["note"])
	}

	for _, bad := range []string{"no-equals", "=value"} {
		if _, err := ParseSetEntries([]string{bad}); err == nil {
			t.Errorf("ParseSetEntries(%q) succeeded, want error", bad)
		}
	}
}

func TestParseSetToolEntries(t *testing.T) {
	tools, err := ParseSetToolEntries([]string{"create_item.org=acme", "create_item.n=2"})
	if err != nil {
		t.Fatalf("ParseSetToolEntries: %v", err)
	}
	want := map[string]map[string]any{
		"create_item": {"org": "acme", "n": float64(2)},
	}
	if !reflect.DeepEqual(tools, want) {
		t.Errorf("tools = %v, want %v", tools, want)
	}

	for _, bad := range []string{"noequals", "tool.=v", ".key=v", "tool"} {
		if _, err := ParseSetToolEntries([]string{bad}); err == nil {
			t.Errorf("ParseSetToolEntries(%q) succeeded, want error", bad)
		}
	}
}

func TestMerge_CLIOverridesFile(t *testing.T) {
	file := &Config{
		Mode:   ModeDefault,
		Global: map[string]any{"org": "file-org"},
		Tools:  map[string]map[string]any{"t": {"k": "file"}},
	}

	merged, err := Merge(file, []string{"org=cli-org"}, []string{"t.k=cli"}, "hidden")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.Global["org"] != "cli-org" {
		t.Errorf("Global = %v", merged.Global)
	}
	if merged.Tools["t"]["k"] != "cli" {
		t.Errorf("Tools = %v", merged.Tools)
	}
	if merged.Mode != ModeHidden {
		t.Errorf("Mode = %q", merged.Mode)
	}

	// The file config must not be mutated.
	if file.Global["org"] != "file-org" || file.Mode != ModeDefault {
		t.Errorf("file config mutated: %+v", file)
	}
}

func TestMerge_NilFileConfig(t *testing.T) {
	merged, err := Merge(nil, []string{"a=1"}, nil, "")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.Mode != ModeHidden {
		t.Errorf("Mode = %q, want hidden default", merged.Mode)
	}
	if merged.Global["a"] != float64(1) {
		t.Errorf("Global = %v", merged.Global)
	}
}

func TestParamNames_Sorted(t *testing.T) {
	cfg := &Config{
		Global: map[string]any{"zeta": 1, "alpha": 2},
		Tools:  map[string]map[string]any{"t": {"mid": 3, "alpha": 4}},
	}
	got := cfg.ParamNames("t")
	want := []string{"alpha", "mid", "zeta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParamNames = %v, want %v", got, want)
	}
}
