package engine

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Issue codes produced by the detector. They match the root package codes.
const (
	CodeDuplicateKey = "duplicate_key"
	CodeParseError   = "parse_error"
	CodeTruncated    = "truncated"
)

// SimpleIssue is a minimal issue representation used by internal helpers.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
}

// Options bounds the detector. Zero values mean unlimited.
type Options struct {
	MaxDepth  int
	MaxIssues int
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type dupFrame struct {
	kind         containerKind
	keys         map[string]int // occurrences per key
	expectingKey bool
	path         string
	nextIndex    int
	pendingKey   string
}

// DetectDuplicateKeys reports every object key that appears twice in the same
// object. Paths are JSON Pointers of the repeated member (for example
// /3/label); a key repeated several times in one object is reported once.
// Syntax errors the tokenizer itself returns end the scan with a parse_error
// issue at the last known path, but the tokenizer tolerates some malformed
// input (missing or trailing commas), so this is not a syntax check; the
// loader's decoder rejects such documents.
func DetectDuplicateKeys(data []byte, opt Options) []SimpleIssue {
	return DetectDuplicateKeysReader(bytes.NewReader(data), opt)
}

// DetectDuplicateKeysReader is DetectDuplicateKeys over a reader. The reader
// is consumed fully.
func DetectDuplicateKeysReader(r io.Reader, opt Options) []SimpleIssue {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	d := &detector{opt: opt}
	d.run(dec)
	return d.issues
}

type detector struct {
	opt    Options
	stack  []dupFrame
	issues []SimpleIssue
	full   bool
}

func (d *detector) add(i SimpleIssue) {
	if d.full {
		return
	}
	d.issues = append(d.issues, i)
	if d.opt.MaxIssues > 0 && len(d.issues) >= d.opt.MaxIssues {
		d.issues = append(d.issues, SimpleIssue{Code: CodeTruncated, Path: "/", Message: "max issues reached"})
		d.full = true
	}
}

func (d *detector) run(dec *json.Decoder) {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			d.add(SimpleIssue{Code: CodeParseError, Path: d.currentPath(), Message: err.Error()})
			return
		}

		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{', '[':
				path := d.valuePath()
				f := dupFrame{kind: kindArray, path: path}
				if v == '{' {
					f = dupFrame{kind: kindObject, keys: make(map[string]int), expectingKey: true, path: path}
				}
				d.stack = append(d.stack, f)
				if d.opt.MaxDepth > 0 && len(d.stack) > d.opt.MaxDepth {
					d.add(SimpleIssue{Code: CodeParseError, Path: normalizePath(path), Message: "max depth exceeded"})
					return
				}
			case '}', ']':
				if n := len(d.stack); n > 0 {
					d.stack = d.stack[:n-1]
				}
			}
		case string:
			if n := len(d.stack); n > 0 {
				top := &d.stack[n-1]
				if top.kind == kindObject && top.expectingKey {
					top.keys[v]++
					if top.keys[v] == 2 {
						d.add(SimpleIssue{
							Code:    CodeDuplicateKey,
							Path:    normalizePath(top.path + "/" + escapePointer(v)),
							Message: "key '" + v + "' duplicated",
						})
					}
					top.pendingKey = v
					top.expectingKey = false
					continue
				}
			}
			d.valuePath()
		default:
			d.valuePath()
		}
	}
}

// valuePath returns the pointer of the value about to be read and advances
// the parent frame past it.
func (d *detector) valuePath() string {
	n := len(d.stack)
	if n == 0 {
		return ""
	}
	top := &d.stack[n-1]
	if top.kind == kindArray {
		p := top.path + "/" + strconv.Itoa(top.nextIndex)
		top.nextIndex++
		return p
	}
	top.expectingKey = true
	return top.path + "/" + escapePointer(top.pendingKey)
}

func (d *detector) currentPath() string {
	if n := len(d.stack); n > 0 {
		return normalizePath(d.stack[n-1].path)
	}
	return "/"
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

func escapePointer(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}
