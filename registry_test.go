package chainref_test

import (
	"errors"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/reoring/chainref"
)

func newRegistry(t *testing.T) *chainref.Registry {
	t.Helper()
	reg, err := chainref.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func schemaFor(t *testing.T, typ chainref.RecordType) *chainref.Schema {
	t.Helper()
	s, err := newRegistry(t).Schema(typ)
	if err != nil {
		t.Fatalf("Schema(%s): %v", typ, err)
	}
	return s
}

// codesAt flattens issues to "code at path" strings.
func codesAt(iss chainref.Issues) []string {
	out := make([]string, len(iss))
	for i, it := range iss {
		out[i] = it.String()
	}
	return out
}

func TestSchema_AccountRequiredLabel(t *testing.T) {
	s := schemaFor(t, chainref.Account)
	bad := []any{map[string]any{"id": "a", "entity": "E"}}
	iss := s.Check(bad)
	if len(iss) != 1 || iss[0].String() != "required at /0/label" {
		t.Fatalf("unexpected issues: %v", codesAt(iss))
	}
	if iss[0].Params["field"] != "label" {
		t.Fatalf("missing field param: %v", iss[0].Params)
	}
	if !chainref.SchemaErrorCheck(s, bad) {
		t.Fatalf("SchemaErrorCheck should report the missing label")
	}

	good := []any{map[string]any{"id": "a", "entity": "E", "label": "L"}}
	if iss := s.Check(good); len(iss) != 0 {
		t.Fatalf("valid account flagged: %v", codesAt(iss))
	}
}

func TestSchema_Violations(t *testing.T) {
	cases := []struct {
		name  string
		typ   chainref.RecordType
		batch any
		want  []string
	}{
		{"empty label", chainref.Account, []any{map[string]any{"id": "a", "entity": "E", "label": ""}}, []string{"too_short at /0/label"}},
		{"unknown key", chainref.Binary, []any{map[string]any{"id": "a", "entity": "E", "label": "L", "foo": 1}}, []string{"unknown_key at /0/foo"}},
		{"not an array", chainref.Contract, map[string]any{}, []string{"invalid_type at /"}},
		{"not an object", chainref.Contract, []any{"x"}, []string{"invalid_type at /0"}},
		{"decimals pattern", chainref.Asset, []any{map[string]any{"id": "u", "name": "N", "symbol": "S", "decimals": "6a"}}, []string{"pattern at /0/decimals"}},
		{"decimals number", chainref.Asset, []any{map[string]any{"id": "u", "name": "N", "symbol": "S", "decimals": json.Number("6")}}, []string{"invalid_type at /0/decimals"}},
		{"asset empty entity", chainref.Asset, []any{map[string]any{"id": "u", "name": "N", "symbol": "S", "decimals": "6", "entity": ""}}, []string{"too_short at /0/entity"}},
		{"pair too long", chainref.Pool, []any{pool([]any{"a", "b", "c"})}, []string{"too_big at /0/asset_ids"}},
		{"pair too short", chainref.Pool, []any{pool([]any{"a"})}, []string{"too_small at /0/asset_ids"}},
		{"pair empty member", chainref.Pool, []any{pool([]any{"a", ""})}, []string{"too_short at /0/asset_ids/1"}},
		{"entity missing name", chainref.Entity, []any{map[string]any{"website": "w"}}, []string{"required at /0/entity"}},
	}
	reg := newRegistry(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := reg.Schema(tc.typ)
			if err != nil {
				t.Fatalf("Schema: %v", err)
			}
			got := codesAt(s.Check(tc.batch))
			if len(got) != len(tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v want %v", got, tc.want)
				}
			}
		})
	}
}

func pool(assetIDs []any) map[string]any {
	return map[string]any{"id": "p", "lp_token_id": "lp", "asset_ids": assetIDs, "dex": "d", "type": "t"}
}

func TestSchema_CollectsAllIssues(t *testing.T) {
	s := schemaFor(t, chainref.Account)
	batch := []any{
		map[string]any{"id": "a"},
		map[string]any{"id": "", "entity": "E", "label": "L"},
	}
	got := codesAt(s.Check(batch))
	want := []string{"required at /0/entity", "required at /0/label", "too_short at /1/id"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestSchema_AcceptsTypedBatches(t *testing.T) {
	s := schemaFor(t, chainref.Account)
	recs := []chainref.Record{chainref.NewRecord("id", "a", "entity", "E", "label", "L")}
	if iss := s.Check(recs); len(iss) != 0 {
		t.Fatalf("[]Record flagged: %v", codesAt(iss))
	}
	maps := []map[string]any{{"id": "a", "entity": "E"}}
	if iss := s.Check(maps); len(iss) != 1 {
		t.Fatalf("[]map flagged wrong: %v", codesAt(iss))
	}
}

func TestRegistry_DocumentAndUnknownType(t *testing.T) {
	reg := newRegistry(t)
	s, err := reg.Schema(chainref.Pool)
	if err != nil {
		t.Fatalf("Schema: %v", err)
	}
	doc := s.Document()
	if doc.Title != "pool records" || doc.Type != "array" || doc.Items == nil {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if got := doc.Items.Required; len(got) != 5 || got[0] != "id" {
		t.Fatalf("unexpected required list: %v", got)
	}
	if _, err := reg.Schema(chainref.RecordType("wallet")); !errors.Is(err, chainref.ErrUnknownRecordType) {
		t.Fatalf("expected ErrUnknownRecordType, got %v", err)
	}
}
