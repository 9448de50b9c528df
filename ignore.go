package chainref

import (
	"bufio"
	"io"
	"strings"
)

// IgnoreFileName is the conventional name of the allowlist kept at the data
// root.
const IgnoreFileName = "ignore_error.txt"

// IgnoreList holds problem lines, as produced by Finding.Lines, that must not
// fail validation.
type IgnoreList map[string]struct{}

// ParseIgnoreList reads one entry per line. Surrounding whitespace is trimmed;
// blank lines and lines starting with '#' are skipped.
func ParseIgnoreList(r io.Reader) (IgnoreList, error) {
	l := IgnoreList{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		l[line] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return l, nil
}

// Contains reports whether line is allowlisted.
func (l IgnoreList) Contains(line string) bool {
	_, ok := l[line]
	return ok
}

// FilterFinding returns f without the allowlisted problems.
func (l IgnoreList) FilterFinding(f Finding) Finding {
	kept := Finding{Type: f.Type, Source: f.Source}
	for _, it := range f.Issues {
		if !l.Contains(f.Source + ": " + it.String()) {
			kept.Issues = append(kept.Issues, it)
		}
	}
	for _, d := range f.Duplicates {
		if !l.Contains(duplicateLine(f.Source, d)) {
			kept.Duplicates = append(kept.Duplicates, d)
		}
	}
	return kept
}

// Reporter wraps next so that allowlisted problems are never reported.
func (l IgnoreList) Reporter(next Reporter) Reporter {
	return ReporterFunc(func(f Finding) {
		if kept := l.FilterFinding(f); kept.HasError() {
			next.Report(kept)
		}
	})
}

// Filter returns a copy of the report without the allowlisted problems.
// Findings left empty are dropped and HasError is recomputed.
func (r Report) Filter(l IgnoreList) Report {
	out := Report{Batches: r.Batches, Records: r.Records}
	for _, f := range r.Findings {
		out.Add(l.FilterFinding(f))
	}
	return out
}
