package chainref

import (
	"path/filepath"
	"sort"
	"strconv"
)

// ChainBatches holds the decoded files of one chain directory by type.
type ChainBatches map[RecordType]Batch

// GroupByChain splits path-keyed batches by parent directory name. Paths that
// match no record type are skipped.
func GroupByChain(batches map[string]any) map[string]ChainBatches {
	out := map[string]ChainBatches{}
	for p, data := range batches {
		t, ok := RecordTypeForPath(p)
		if !ok {
			continue
		}
		chain := filepath.Base(filepath.Dir(filepath.ToSlash(p)))
		set, ok := out[chain]
		if !ok {
			set = ChainBatches{}
			out[chain] = set
		}
		set[t] = Batch{Source: p, Data: data}
	}
	return out
}

// referencingTypes are the record types whose entity field must name a
// declared entity.
var referencingTypes = []RecordType{Account, Asset, Binary, Contract}

// CheckReferences cross-checks entity usage inside one chain directory:
// every entity referenced by an account, asset, binary or contract must be
// declared in the chain's entity file, and every declared entity must be
// referenced. A chain without an entity file is not checked.
func CheckReferences(set ChainBatches) []Finding {
	entities, ok := set[Entity]
	if !ok {
		return nil
	}
	declared := map[string]int{}
	for i, obj := range objectsOf(entities.Data) {
		if name, ok := obj["entity"].(string); ok && name != "" {
			if _, dup := declared[name]; !dup {
				declared[name] = i
			}
		}
	}

	used := map[string]struct{}{}
	var findings []Finding
	for _, t := range referencingTypes {
		b, ok := set[t]
		if !ok {
			continue
		}
		f := Finding{Type: t, Source: b.Source}
		for i, obj := range objectsOf(b.Data) {
			name, _ := obj["entity"].(string)
			if name == "" {
				continue
			}
			used[name] = struct{}{}
			if _, ok := declared[name]; !ok {
				path := "/" + strconv.Itoa(i) + "/entity"
				f.Issues = append(f.Issues, newIssue(path, CodeUnknownEntity, name, map[string]string{"entity": name}))
			}
		}
		if f.HasError() {
			findings = append(findings, f)
		}
	}

	unused := Finding{Type: Entity, Source: entities.Source}
	names := make([]string, 0, len(declared))
	for name := range declared {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := used[name]; ok {
			continue
		}
		path := "/" + strconv.Itoa(declared[name]) + "/entity"
		unused.Issues = append(unused.Issues, newIssue(path, CodeUnusedEntity, name, map[string]string{"entity": name}))
	}
	if unused.HasError() {
		unused.Issues.Sort()
		findings = append(findings, unused)
	}
	return findings
}

// CheckReferences runs the entity cross-checks for every chain, in chain name
// order, reporting each finding.
func (v *Validator) CheckReferences(chains map[string]ChainBatches) []Finding {
	names := make([]string, 0, len(chains))
	for name := range chains {
		names = append(names, name)
	}
	sort.Strings(names)
	var out []Finding
	for _, name := range names {
		for _, f := range CheckReferences(chains[name]) {
			v.reporter.Report(f)
			out = append(out, f)
		}
	}
	return out
}

func objectsOf(batch any) []map[string]any {
	items, _ := normalizeBatch(batch).([]any)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
