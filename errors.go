package chainref

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType   = "invalid_type"
	CodeRequired      = "required"
	CodeUnknownKey    = "unknown_key"
	CodeDuplicateKey  = "duplicate_key"
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodeTooShort      = "too_short"
	CodePattern       = "pattern"
	CodeInvalidFormat = "invalid_format"
	CodeParseError    = "parse_error"
	// Batch-level checks
	CodeDuplicateID = "duplicate_id"
	// Cross-file checks within one chain directory
	CodeUnknownEntity = "unknown_entity"
	CodeUnusedEntity  = "unused_entity"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /3/label).
	Code    string // One of the codes listed above.
	Message string
	// Value is the offending value when one exists (nil for missing fields).
	Value any
	// Params carries structured parameters (e.g., {"field":"label"}).
	Params map[string]any
}

// String renders the issue as "code at path", the form used by ignore lists.
func (it Issue) String() string {
	path := it.Path
	if path == "" {
		path = "/"
	}
	return it.Code + " at " + path
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(iss[i].String())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Sort orders issues by path then code so diagnostics are stable.
func (iss Issues) Sort() {
	sort.SliceStable(iss, func(i, j int) bool {
		if iss[i].Path != iss[j].Path {
			return iss[i].Path < iss[j].Path
		}
		return iss[i].Code < iss[j].Code
	})
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// ErrUnknownRecordType is matched by every UnknownRecordTypeError.
var ErrUnknownRecordType = errors.New("chainref: unknown record type")

// UnknownRecordTypeError reports a record-type tag outside the closed set.
type UnknownRecordTypeError struct {
	Tag string
}

func (e *UnknownRecordTypeError) Error() string {
	return fmt.Sprintf("chainref: unknown record type %q", e.Tag)
}

func (e *UnknownRecordTypeError) Is(target error) bool { return target == ErrUnknownRecordType }

// UnmatchedPathsError lists batch keys whose file name maps to no record type.
type UnmatchedPathsError struct {
	Paths []string
}

func (e *UnmatchedPathsError) Error() string {
	return "chainref: no record type for:\n  " + strings.Join(e.Paths, "\n  ")
}

// InputError reports a batch whose decoded shape is not an array of objects.
type InputError struct {
	Type RecordType
	Path string // JSON Pointer of the offending value
	Got  string // JSON type name that was found
}

func (e *InputError) Error() string {
	return fmt.Sprintf("chainref: %s batch: expected object at %s, got %s", e.Type, e.Path, e.Got)
}
