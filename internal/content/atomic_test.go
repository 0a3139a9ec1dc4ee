package content

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomicCreatesNewFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "pack.bin")

	if err := WriteFileAtomic(path, []byte("hello")); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("content = %q, want %q", got, "hello")
	}
	assertNoLeftovers(t, path)
}

func TestWriteFileAtomicOverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pack.bin")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := WriteFileAtomic(path, []byte("new")); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "new" {
		t.Errorf("content = %q, want %q", got, "new")
	}
	assertNoLeftovers(t, path)
}

func TestWriteFileAtomicRollsBackOnCommitFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pack.bin")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	boom := errors.New("simulated rename failure")
	failingCommit := func(oldpath, newpath string) error { return boom }

	err := writeFileAtomicWith(path, []byte("new"), failingCommit)
	if err == nil {
		t.Fatal("expected an error from failed commit")
	}
	if !errors.Is(err, boom) {
		t.Errorf("error should wrap the commit failure, got: %v", err)
	}

	got, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatalf("target vanished after rollback: %v", readErr)
	}
	if string(got) != "old" {
		t.Errorf("content after rollback = %q, want %q", got, "old")
	}
	assertNoLeftovers(t, path)
}

func TestWriteFileAtomicCommitFailureWithoutPriorFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pack.bin")

	boom := errors.New("simulated rename failure")
	err := writeFileAtomicWith(path, []byte("new"), func(string, string) error { return boom })
	if err == nil {
		t.Fatal("expected an error from failed commit")
	}

	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("target should not exist after failed first write, stat err: %v", statErr)
	}
	assertNoLeftovers(t, path)
}

func assertNoLeftovers(t *testing.T, path string) {
	t.Helper()
	for _, suffix := range []string{".tmp", ".bak"} {
		if _, err := os.Stat(path + suffix); !os.IsNotExist(err) {
			t.Errorf("leftover %s file remains", suffix)
		}
	}
}
