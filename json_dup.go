package chainref

import (
	"io"
	"strings"

	"github.com/reoring/chainref/i18n"
	eng "github.com/reoring/chainref/internal/engine"
)

// maxDocumentDepth bounds nesting while scanning raw files. Record files are
// three levels deep at most.
const maxDocumentDepth = 64

// DetectDuplicateKeys reports object keys repeated inside one JSON object.
// Decoding into maps silently keeps the last value, so the check runs on the
// raw bytes. maxIssues <= 0 means unlimited.
func DetectDuplicateKeys(data []byte, maxIssues int) Issues {
	return fromEngineIssues(eng.DetectDuplicateKeys(data, eng.Options{MaxDepth: maxDocumentDepth, MaxIssues: maxIssues}))
}

// DetectDuplicateKeysReader is DetectDuplicateKeys over a reader.
func DetectDuplicateKeysReader(r io.Reader, maxIssues int) Issues {
	return fromEngineIssues(eng.DetectDuplicateKeysReader(r, eng.Options{MaxDepth: maxDocumentDepth, MaxIssues: maxIssues}))
}

func fromEngineIssues(si []eng.SimpleIssue) Issues {
	var iss Issues
	for _, s := range si {
		msg := s.Message
		params := map[string]any{}
		if s.Code == CodeDuplicateKey {
			key := unescapePointer(s.Path[strings.LastIndexByte(s.Path, '/')+1:])
			params["field"] = key
			msg = i18n.T(s.Code, map[string]string{"field": key})
		}
		iss = AppendIssues(iss, Issue{Code: s.Code, Path: s.Path, Message: msg, Params: params})
	}
	return iss
}
