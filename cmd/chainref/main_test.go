package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ROOT_DIR", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CHAINREF_METRICS_FILE", "")
}

func TestSortThenCheck(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	writeFile(t, root, "juno/account.json", `[{"label":"B","entity":"E","id":"2"},{"label":"A","entity":"E","id":"1"}]`)
	writeFile(t, root, "juno/entity.json", `[{"entity":"E"}]`)

	var out bytes.Buffer
	if code := run([]string{"-root", root, "check"}, &out); code != 1 {
		t.Fatalf("check before sort: expected 1, got %d", code)
	}
	if code := run([]string{"-root", root, "sort"}, &out); code != 0 {
		t.Fatalf("sort: expected 0, got %d", code)
	}
	if code := run([]string{"-root", root, "check"}, &out); code != 0 {
		t.Fatalf("check after sort: expected 0, got %d", code)
	}
	data, err := os.ReadFile(filepath.Join(root, "juno", "account.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(data), "[\n  {\n    \"id\": \"1\",") {
		t.Fatalf("unexpected sorted file:\n%s", data)
	}
}

func TestSortAbortsOnUndecodableFile(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	original := `[{"label":"B","entity":"E","id":"2"},{"label":"A","entity":"E","id":"1"}]`
	writeFile(t, root, "juno/account.json", original)
	writeFile(t, root, "juno/pool.json", `[{"id":`)

	if code := run([]string{"-root", root, "sort"}, &bytes.Buffer{}); code != 1 {
		t.Fatalf("expected 1, got %d", code)
	}
	data, _ := os.ReadFile(filepath.Join(root, "juno", "account.json"))
	if string(data) != original {
		t.Fatalf("file rewritten despite abort:\n%s", data)
	}
}

func TestTrailingContentBlocksSortAndValidate(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	entities := "[{\"entity\":\"b\"}]\n[{\"entity\":\"a\"},{\"entity\":\"zzz-lost\"}]\n"
	writeFile(t, root, "juno/entity.json", entities)
	writeFile(t, root, "juno/account.json", `[{"id":"1","entity":"b","label":"L"}]`)

	if code := run([]string{"-root", root, "validate"}, &bytes.Buffer{}); code != 1 {
		t.Fatalf("validate: expected 1, got %d", code)
	}
	if code := run([]string{"-root", root, "sort"}, &bytes.Buffer{}); code != 1 {
		t.Fatalf("sort: expected 1, got %d", code)
	}
	data, _ := os.ReadFile(filepath.Join(root, "juno", "entity.json"))
	if string(data) != entities {
		t.Fatalf("entity file rewritten:\n%s", data)
	}
}

func TestValidateWithIgnoreList(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	writeFile(t, root, "osmosis/account.json", `[{"id":"a","entity":"E"}]`)
	writeFile(t, root, "osmosis/entity.json", `[{"entity":"E"}]`)

	if code := run([]string{"-root", root, "validate"}, &bytes.Buffer{}); code != 1 {
		t.Fatalf("expected failure for missing label, got %d", code)
	}

	writeFile(t, root, "ignore_error.txt", "osmosis/account.json: required at /0/label\n")
	metricsFile := filepath.Join(t.TempDir(), "chainref.prom")
	if code := run([]string{"-root", root, "-metrics-file", metricsFile, "validate"}, &bytes.Buffer{}); code != 0 {
		t.Fatalf("expected ignored issue to pass, got %d", code)
	}
	prom, err := os.ReadFile(metricsFile)
	if err != nil {
		t.Fatalf("metrics file: %v", err)
	}
	if !strings.Contains(string(prom), "chainref_last_run_success 1") {
		t.Fatalf("unexpected metrics:\n%s", prom)
	}
}

func TestValidateRequiresRoot(t *testing.T) {
	clearEnv(t)
	if code := run([]string{"validate"}, &bytes.Buffer{}); code != 1 {
		t.Fatalf("expected 1 without root, got %d", code)
	}
}

func TestSchemaCommand(t *testing.T) {
	clearEnv(t)
	var out bytes.Buffer
	if code := run([]string{"schema", "-type", "pool"}, &out); code != 0 {
		t.Fatalf("schema: expected 0, got %d", code)
	}
	for _, want := range []string{`"$schema": "https://json-schema.org/draft/2020-12/schema"`, `"asset_ids"`, `"additionalProperties": false`} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("missing %s in:\n%s", want, out.String())
		}
	}

	dir := t.TempDir()
	if code := run([]string{"schema", "-o", dir}, &bytes.Buffer{}); code != 0 {
		t.Fatalf("schema -o: expected 0, got %d", code)
	}
	if _, err := os.Stat(filepath.Join(dir, "asset.schema.json")); err != nil {
		t.Fatalf("asset schema not written: %v", err)
	}
	if code := run([]string{"schema", "-type", "wallet"}, &bytes.Buffer{}); code != 2 {
		t.Fatalf("unknown type: expected 2, got %d", code)
	}
}

func TestUnknownCommand(t *testing.T) {
	clearEnv(t)
	if code := run([]string{"frobnicate"}, &bytes.Buffer{}); code != 2 {
		t.Fatalf("expected 2, got %d", code)
	}
}
