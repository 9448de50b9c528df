package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reoring/chainref"
)

func TestObserveReportAndFlush(t *testing.T) {
	m := New()
	m.FilesProcessed.WithLabelValues("validate").Add(2)
	m.RunSuccess.Set(0)
	m.ObserveReport(chainref.Report{
		HasError: true,
		Findings: []chainref.Finding{{
			Source:     "juno/pool.json",
			Issues:     chainref.Issues{{Code: chainref.CodeRequired}, {Code: chainref.CodeRequired}},
			Duplicates: []string{"p1"},
		}},
	})

	path := filepath.Join(t.TempDir(), "chainref.prom")
	if err := m.Flush(path); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		`chainref_issues_total{code="required"} 2`,
		`chainref_issues_total{code="duplicate_id"} 1`,
		`chainref_files_processed_total{command="validate"} 2`,
		`chainref_last_run_success 0`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestFlushWithoutPath(t *testing.T) {
	if err := New().Flush(""); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

func TestNewUsesPrivateRegistry(t *testing.T) {
	// Two instances must not collide on registration.
	a, b := New(), New()
	if a.Registry() == b.Registry() {
		t.Fatalf("registries shared")
	}
}
