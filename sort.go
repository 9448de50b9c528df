package chainref

import (
	"sort"
	"strings"
)

// sortKey is one link of a comparator chain.
type sortKey struct {
	field string
	id    bool // compare with the identity collator
}

// sortRule describes how records of one type are ordered. When partition is
// set, records with a non-empty value for that field come first; both groups
// are then ordered by chain.
type sortRule struct {
	partition string
	chain     []sortKey
}

var labelledRule = sortRule{chain: []sortKey{{field: "entity"}, {field: "label"}, {field: "id", id: true}}}

var sortRules = map[RecordType]sortRule{
	Account:  labelledRule,
	Binary:   labelledRule,
	Contract: labelledRule,
	// Entity-less assets carry no entity value, so the shared chain reduces
	// to name then id inside that group.
	Asset: {
		partition: "entity",
		chain:     []sortKey{{field: "entity"}, {field: "name"}, {field: "id", id: true}},
	},
	Entity: {chain: []sortKey{{field: "entity"}}},
	Pool:   {chain: []sortKey{{field: "dex"}, {field: "type"}, {field: "id", id: true}}},
}

// Sorter orders records by their type's comparator chain.
type Sorter struct {
	coll *Collator
}

// NewSorter returns a Sorter using en-US collation.
func NewSorter() *Sorter { return &Sorter{coll: NewCollator()} }

// Sort returns a sorted copy of records; the input slice is left untouched.
func (s *Sorter) Sort(t RecordType, records []Record) ([]Record, error) {
	rule, ok := sortRules[t]
	if !ok {
		return nil, &UnknownRecordTypeError{Tag: string(t)}
	}
	idKey := layouts[t].IdentityKey

	type entry struct {
		rec     Record
		grouped bool
	}
	entries := make([]entry, len(records))
	for i, r := range records {
		entries[i] = entry{rec: r, grouped: rule.partition == "" || r.String(rule.partition) != ""}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.grouped != b.grouped {
			return a.grouped
		}
		return s.compare(rule.chain, idKey, a.rec, b.rec) < 0
	})

	out := make([]Record, len(entries))
	for i, e := range entries {
		out[i] = e.rec
	}
	return out, nil
}

func (s *Sorter) compare(chain []sortKey, idKey string, a, b Record) int {
	for _, k := range chain {
		av, bv := a.String(k.field), b.String(k.field)
		var c int
		if k.id {
			c = s.coll.ID(av, bv)
		} else {
			c = s.coll.Text(av, bv)
		}
		if c != 0 {
			return c
		}
	}
	// Collation can equate distinct strings; fall back to raw bytes.
	return strings.Compare(a.String(idKey), b.String(idKey))
}

// Canonicalize orders the keys of every record in batch and then sorts the
// records.
func (s *Sorter) Canonicalize(t RecordType, batch any) ([]Record, error) {
	records, err := OrderKeys(t, batch)
	if err != nil {
		return nil, err
	}
	return s.Sort(t, records)
}

// SortRecords is a convenience wrapper around a fresh Sorter.
func SortRecords(t RecordType, records []Record) ([]Record, error) {
	return NewSorter().Sort(t, records)
}
