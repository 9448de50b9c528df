package chainref

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/reoring/chainref/i18n"
)

// Finding groups the problems detected in one batch.
type Finding struct {
	Type       RecordType
	Source     string
	Issues     Issues
	Duplicates []string // identity values seen more than once, each listed once
}

// HasError reports whether the finding carries any problem.
func (f Finding) HasError() bool { return len(f.Issues) > 0 || len(f.Duplicates) > 0 }

// Lines renders one line per problem in the form used by ignore lists:
// "<source>: <code> at <path>" and "<source>: duplicate_id <quoted value>".
func (f Finding) Lines() []string {
	lines := make([]string, 0, len(f.Issues)+len(f.Duplicates))
	for _, it := range f.Issues {
		lines = append(lines, f.Source+": "+it.String())
	}
	for _, d := range f.Duplicates {
		lines = append(lines, duplicateLine(f.Source, d))
	}
	return lines
}

func duplicateLine(source, value string) string {
	return fmt.Sprintf("%s: %s %q", source, CodeDuplicateID, value)
}

// Reporter receives each finding at the moment it is detected.
type Reporter interface {
	Report(f Finding)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(f Finding)

func (fn ReporterFunc) Report(f Finding) { fn(f) }

// NewTextReporter writes every finding to w, one problem per line followed by
// its message.
func NewTextReporter(w io.Writer) Reporter {
	return ReporterFunc(func(f Finding) {
		for _, it := range f.Issues {
			fmt.Fprintf(w, "%s: %s: %s", f.Source, it.String(), it.Message)
			if it.Value != nil {
				fmt.Fprintf(w, " (got %v)", it.Value)
			}
			fmt.Fprintln(w)
		}
		for _, d := range f.Duplicates {
			fmt.Fprintf(w, "%s: %s\n", duplicateLine(f.Source, d), i18n.T(CodeDuplicateID, map[string]string{"value": d}))
		}
	})
}

// Report aggregates the outcome of a validation pass.
type Report struct {
	HasError bool
	Findings []Finding
	Batches  int
	Records  int
}

// Add appends findings that carry problems and updates HasError.
func (r *Report) Add(fs ...Finding) {
	for _, f := range fs {
		if !f.HasError() {
			continue
		}
		r.Findings = append(r.Findings, f)
		r.HasError = true
	}
}

// CountByCode tallies issues per code; duplicates count under CodeDuplicateID.
func (r Report) CountByCode() map[string]int {
	out := map[string]int{}
	for _, f := range r.Findings {
		for _, it := range f.Issues {
			out[it.Code]++
		}
		out[CodeDuplicateID] += len(f.Duplicates)
	}
	return out
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithReporter replaces the default stderr reporter.
func WithReporter(r Reporter) ValidatorOption {
	return func(v *Validator) { v.reporter = r }
}

// WithSourceIssues attaches issues found before decoding (for example
// duplicate JSON object keys) to the batches with the same Source.
func WithSourceIssues(m map[string]Issues) ValidatorOption {
	return func(v *Validator) { v.sourceIssues = m }
}

// Validator runs schema conformance and duplicate identity checks.
type Validator struct {
	reg          *Registry
	reporter     Reporter
	sourceIssues map[string]Issues
}

// NewValidator returns a Validator backed by reg.
func NewValidator(reg *Registry, opts ...ValidatorOption) *Validator {
	v := &Validator{reg: reg, reporter: NewTextReporter(os.Stderr)}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Validate checks every batch of every record type. Both checks run on each
// batch, and every batch is visited, so one call surfaces all problems.
// Record types are visited in AllRecordTypes order. The returned error is
// reserved for configuration problems such as an unknown record type; data
// problems only set Report.HasError.
func (v *Validator) Validate(batches map[RecordType][]Batch) (Report, error) {
	types := make([]RecordType, 0, len(batches))
	for t := range batches {
		if _, err := v.reg.Schema(t); err != nil {
			return Report{}, err
		}
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return typeRank(types[i]) < typeRank(types[j]) })

	var rep Report
	for _, t := range types {
		s, _ := v.reg.Schema(t)
		for _, b := range batches[t] {
			f := v.ValidateBatch(s, b)
			rep.Batches++
			rep.Records += batchLen(b.Data)
			if f.HasError() {
				v.reporter.Report(f)
				rep.Add(f)
			}
		}
	}
	return rep, nil
}

// ValidateBatch runs both checks on a single batch without reporting.
func (v *Validator) ValidateBatch(s *Schema, b Batch) Finding {
	f := Finding{Type: s.Type(), Source: b.Source}
	if pre := v.sourceIssues[b.Source]; len(pre) > 0 {
		f.Issues = append(f.Issues, pre...)
	}
	f.Issues = append(f.Issues, s.Check(b.Data)...)
	f.Duplicates = DuplicateIDs(s.Type(), b.Data)
	return f
}

// DuplicateIDs returns, sorted, every identity value that occurs more than
// once in batch. Records without a string identity are skipped; the schema
// check reports them.
func DuplicateIDs(t RecordType, batch any) []string {
	l, err := LayoutOf(t)
	if err != nil {
		return nil
	}
	items, _ := normalizeBatch(batch).([]any)
	seen := make(map[string]struct{}, len(items))
	dups := map[string]struct{}{}
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, ok := obj[l.IdentityKey].(string)
		if !ok {
			continue
		}
		if _, ok := seen[id]; ok {
			dups[id] = struct{}{}
			continue
		}
		seen[id] = struct{}{}
	}
	if len(dups) == 0 {
		return nil
	}
	out := make([]string, 0, len(dups))
	for id := range dups {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// DuplicateCheck reports whether batch repeats an identity value.
func DuplicateCheck(t RecordType, batch any) bool { return len(DuplicateIDs(t, batch)) > 0 }

func typeRank(t RecordType) int {
	for i, x := range AllRecordTypes() {
		if x == t {
			return i
		}
	}
	return len(layouts)
}

func batchLen(batch any) int {
	items, _ := normalizeBatch(batch).([]any)
	return len(items)
}
