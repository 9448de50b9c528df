package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/reoring/chainref"
)

// Chains lists the chain directories kept under the data root.
var Chains = []string{"osmosis", "juno", "kujira", "terra", "terraclassic"}

// maxDupKeyIssues caps duplicate key findings per file.
const maxDupKeyIssues = 50

// Discover returns the record files present under root as sorted,
// slash-separated paths relative to root (for example "juno/pool.json").
func Discover(root string) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	var out []string
	for _, chain := range Chains {
		for _, t := range chainref.AllRecordTypes() {
			matches, err := filepath.Glob(filepath.Join(root, chain, t.FileName()))
			if err != nil {
				return nil, fmt.Errorf("discover: %w", err)
			}
			for _, m := range matches {
				rel, err := filepath.Rel(root, m)
				if err != nil {
					return nil, fmt.Errorf("discover: %w", err)
				}
				out = append(out, filepath.ToSlash(rel))
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// Set is the decoded content of a data root.
type Set struct {
	Root string
	// Batches holds every file that decoded, keyed by relative path.
	Batches map[string]any
	// Issues holds problems found in the raw bytes, keyed by relative path:
	// duplicate object keys, or a single parse_error when decoding failed.
	Issues map[string]chainref.Issues
	// Failed lists, sorted, the files that could not be decoded.
	Failed []string
}

// Load reads and decodes paths (relative to root). Numbers are kept as
// json.Number so digit strings and numbers stay distinguishable.
func Load(root string, paths []string) (*Set, error) {
	s := &Set{Root: root, Batches: make(map[string]any, len(paths)), Issues: map[string]chainref.Issues{}}
	for _, p := range paths {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(p)))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", p, err)
		}
		if iss := chainref.DetectDuplicateKeys(data, maxDupKeyIssues); len(iss) > 0 {
			s.Issues[p] = iss
		}
		v, err := Decode(data)
		if err != nil {
			s.Issues[p] = chainref.Issues{{Path: "/", Code: chainref.CodeParseError, Message: err.Error()}}
			s.Failed = append(s.Failed, p)
			continue
		}
		s.Batches[p] = v
	}
	sort.Strings(s.Failed)
	return s, nil
}

// Decode parses exactly one JSON document; trailing content is an error.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, errors.New("unexpected content after top-level value")
	}
	return v, nil
}

// FailedFindings renders the undecodable files as findings.
func (s *Set) FailedFindings() []chainref.Finding {
	out := make([]chainref.Finding, 0, len(s.Failed))
	for _, p := range s.Failed {
		t, _ := chainref.RecordTypeForPath(p)
		out = append(out, chainref.Finding{Type: t, Source: p, Issues: s.Issues[p]})
	}
	return out
}

// Encode renders records in canonical form: 2-space indent, HTML characters
// left unescaped, one trailing newline.
func Encode(records []chainref.Record) ([]byte, error) {
	if records == nil {
		records = []chainref.Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Change is the canonical content of one file.
type Change struct {
	Path    string
	Data    []byte
	Changed bool
}

// Plan encodes every sorted batch and compares it with the bytes on disk.
// Nothing is written.
func Plan(root string, sorted map[string][]chainref.Record) ([]Change, error) {
	paths := make([]string, 0, len(sorted))
	for p := range sorted {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	out := make([]Change, 0, len(paths))
	for _, p := range paths {
		data, err := Encode(sorted[p])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", p, err)
		}
		old, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(p)))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		out = append(out, Change{Path: p, Data: data, Changed: !bytes.Equal(old, data)})
	}
	return out, nil
}

// Apply writes the changed entries of a plan and returns how many were
// written.
func Apply(root string, changes []Change) (int, error) {
	n := 0
	for _, c := range changes {
		if !c.Changed {
			continue
		}
		if err := os.WriteFile(filepath.Join(root, filepath.FromSlash(c.Path)), c.Data, 0o644); err != nil {
			return n, fmt.Errorf("write %s: %w", c.Path, err)
		}
		n++
	}
	return n, nil
}

// ReadIgnoreFile loads an ignore list; a missing file yields an empty list.
func ReadIgnoreFile(path string) (chainref.IgnoreList, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return chainref.IgnoreList{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return chainref.ParseIgnoreList(f)
}
