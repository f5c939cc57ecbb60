package tail

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func appendTo(t *testing.T, path, s string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteString(s); err != nil {
		t.Fatal(err)
	}
}

func TestDrainStreamsAppendedData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	var out bytes.Buffer
	f := New(path, &out)

	appendTo(t, path, "first\n")
	if err := f.drain(); err != nil {
		t.Fatal(err)
	}
	appendTo(t, path, "second\n")
	if err := f.drain(); err != nil {
		t.Fatal(err)
	}

	if got := out.String(); got != "first\nsecond\n" {
		t.Errorf("output = %q", got)
	}
}

func TestDrainMissingFile(t *testing.T) {
	f := New(filepath.Join(t.TempDir(), "absent.log"), &bytes.Buffer{})
	f.offset = 100
	if err := f.drain(); err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if f.offset != 0 {
		t.Errorf("offset = %d, want reset to 0", f.offset)
	}
}

func TestDrainRestartsAfterTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	var out bytes.Buffer
	f := New(path, &out)

	appendTo(t, path, "old old old\n")
	if err := f.drain(); err != nil {
		t.Fatal(err)
	}

	// archive rotation: the log is replaced by a shorter fresh one
	if err := os.WriteFile(path, []byte("new\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := f.drain(); err != nil {
		t.Fatal(err)
	}

	if got := out.String(); got != "old old old\nnew\n" {
		t.Errorf("output = %q", got)
	}
}

func TestDrainOnlyNewBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	appendTo(t, path, "history\n")

	var out bytes.Buffer
	f := New(path, &out)
	// Run seeds the offset at the current end; mirror that here
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	f.offset = info.Size()

	appendTo(t, path, "live\n")
	if err := f.drain(); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "live\n" {
		t.Errorf("output = %q, want only the new line", got)
	}
}
