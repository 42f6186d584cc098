package output

import (
	"bytes"
	"context"
	"os"
	"testing"
)

func TestFromContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if w := FromContext(WithPrinter(context.Background(), &buf)).Writer(); w != &buf {
		t.Errorf("Writer() = %v, want the attached buffer", w)
	}
	if w := FromContext(context.Background()).Writer(); w != os.Stdout {
		t.Errorf("Writer() = %v, want os.Stdout by default", w)
	}
}

func TestPrinter_WritesReportVerbatim(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := New(&buf)
	p.Print("=== PLAN ===\n")
	p.Println("1 | DROP | stash | stash@{1} | 9f8e7d6c5b4a | DROP | stale stash")
	want := "=== PLAN ===\n1 | DROP | stash | stash@{1} | 9f8e7d6c5b4a | DROP | stale stash\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestPrinter_Capture(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	tee, captured := New(&stdout).Capture()
	tee.Println("=== STASHES ===")
	if _, err := tee.Writer().Write([]byte("INDEX | BRANCH | MESSAGE | STAT\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	want := "=== STASHES ===\nINDEX | BRANCH | MESSAGE | STAT\n"
	if got := stdout.String(); got != want {
		t.Errorf("stdout got %q, want %q", got, want)
	}
	if got := captured.String(); got != want {
		t.Errorf("captured buffer got %q, want %q", got, want)
	}
}
