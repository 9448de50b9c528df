package chainref_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/reoring/chainref"
)

func TestIssues_ErrorAndAsIssues(t *testing.T) {
	iss := chainref.Issues{
		{Path: "/0/id", Code: chainref.CodeRequired},
		{Path: "", Code: chainref.CodeInvalidType},
		{Path: "/1/id", Code: chainref.CodeTooShort},
		{Path: "/2/id", Code: chainref.CodeTooShort},
	}
	msg := iss.Error()
	if !strings.HasPrefix(msg, "required at /0/id; invalid_type at /; too_short at /1/id") || !strings.HasSuffix(msg, "(total 4)") {
		t.Fatalf("unexpected message: %q", msg)
	}

	wrapped := fmt.Errorf("validate: %w", iss)
	got, ok := chainref.AsIssues(wrapped)
	if !ok || len(got) != 4 {
		t.Fatalf("AsIssues failed: %v %v", got, ok)
	}
	if _, ok := chainref.AsIssues(errors.New("plain")); ok {
		t.Fatalf("plain error treated as Issues")
	}
}

func TestIssues_Sort(t *testing.T) {
	iss := chainref.Issues{
		{Path: "/1/id", Code: chainref.CodeRequired},
		{Path: "/0/label", Code: chainref.CodeTooShort},
		{Path: "/0/label", Code: chainref.CodePattern},
	}
	iss.Sort()
	if iss[0].Code != chainref.CodePattern || iss[2].Path != "/1/id" {
		t.Fatalf("unexpected order: %v", iss)
	}
}

func TestUnknownRecordTypeError(t *testing.T) {
	_, err := chainref.ParseRecordType("wallet")
	if !errors.Is(err, chainref.ErrUnknownRecordType) {
		t.Fatalf("expected ErrUnknownRecordType, got %v", err)
	}
	var ue *chainref.UnknownRecordTypeError
	if !errors.As(err, &ue) || ue.Tag != "wallet" {
		t.Fatalf("expected tag wallet, got %v", err)
	}
}
