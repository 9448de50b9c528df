package chainref

import (
	"fmt"
	"sort"
)

// Batch is the decoded content of one source file.
type Batch struct {
	Source string // file path, used in diagnostics
	Data   any
}

// SortPathBatches canonicalizes every batch keyed by file path: record keys
// are put in canonical order and the records sorted. The record type comes
// from the path's "<type>.json" suffix. If any path matches no record type
// nothing is returned and an *UnmatchedPathsError lists every such path.
func SortPathBatches(batches map[string]any) (map[string][]Record, error) {
	paths, err := matchedPaths(batches)
	if err != nil {
		return nil, err
	}
	s := NewSorter()
	out := make(map[string][]Record, len(paths))
	for _, p := range paths {
		t, _ := RecordTypeForPath(p)
		recs, err := s.Canonicalize(t, batches[p])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		out[p] = recs
	}
	return out, nil
}

// OrderPathBatches applies key ordering only, keeping record order.
func OrderPathBatches(batches map[string]any) (map[string][]Record, error) {
	paths, err := matchedPaths(batches)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]Record, len(paths))
	for _, p := range paths {
		t, _ := RecordTypeForPath(p)
		recs, err := OrderKeys(t, batches[p])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		out[p] = recs
	}
	return out, nil
}

// GroupByType regroups path-keyed batches by record type, preserving path
// order inside each type. Unmatched paths fail the same way as in
// SortPathBatches.
func GroupByType(batches map[string]any) (map[RecordType][]Batch, error) {
	paths, err := matchedPaths(batches)
	if err != nil {
		return nil, err
	}
	out := map[RecordType][]Batch{}
	for _, p := range paths {
		t, _ := RecordTypeForPath(p)
		out[t] = append(out[t], Batch{Source: p, Data: batches[p]})
	}
	return out, nil
}

// matchedPaths returns the sorted keys of batches, or an error naming every
// key without a record type.
func matchedPaths(batches map[string]any) ([]string, error) {
	paths := make([]string, 0, len(batches))
	for p := range batches {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	var unmatched []string
	for _, p := range paths {
		if _, ok := RecordTypeForPath(p); !ok {
			unmatched = append(unmatched, p)
		}
	}
	if len(unmatched) > 0 {
		return nil, &UnmatchedPathsError{Paths: unmatched}
	}
	return paths, nil
}
