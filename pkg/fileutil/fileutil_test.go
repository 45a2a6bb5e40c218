package fileutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "present.csv")
	if Exists(path) {
		t.Error("Exists returned true for missing file")
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if !Exists(path) {
		t.Error("Exists returned false for existing file")
	}
}

func TestWriteTmpThenMove(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "logs", "summary.csv")

	content := []byte("name,mean_ms\n")
	err := WriteTmpThenMove(outPath, func(tmpPath string) error {
		return os.WriteFile(tmpPath, content, 0o644)
	})
	if err != nil {
		t.Fatalf("WriteTmpThenMove failed: %v", err)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Failed to read output file: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("Content mismatch: got %q, want %q", got, content)
	}
	if Exists(outPath + TmpSuffix) {
		t.Error("Tmp file still exists after successful write")
	}
}

func TestWriteTmpThenMoveError(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "summary.csv")

	err := WriteTmpThenMove(outPath, func(tmpPath string) error {
		if err := os.WriteFile(tmpPath, []byte("partial"), 0o644); err != nil {
			return err
		}
		return os.ErrPermission
	})
	if !errors.Is(err, os.ErrPermission) {
		t.Errorf("expected write error, got %v", err)
	}
	if Exists(outPath + TmpSuffix) {
		t.Error("Tmp file exists after failed write")
	}
	if Exists(outPath) {
		t.Error("Output file exists after failed write")
	}
}

func TestWriteStreamKeepsPreviousFileOnError(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "raw_results.csv")
	if err := os.WriteFile(outPath, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := WriteStream(outPath, func(w io.Writer) error {
		_, _ = io.WriteString(w, "new")
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	got, _ := os.ReadFile(outPath)
	if string(got) != "old" {
		t.Errorf("previous file clobbered: %q", got)
	}

	if err := WriteStream(outPath, func(w io.Writer) error {
		_, err := io.WriteString(w, "new")
		return err
	}); err != nil {
		t.Fatal(err)
	}
	got, _ = os.ReadFile(outPath)
	if string(got) != "new" {
		t.Errorf("got %q, want new", got)
	}
}

func TestCleanupTmpFiles(t *testing.T) {
	dir := t.TempDir()

	tmpFile := filepath.Join(dir, "summary.csv.tmp")
	regularFile := filepath.Join(dir, "summary.csv")
	for _, path := range []string{tmpFile, regularFile} {
		if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := CleanupTmpFiles(dir)
	if err != nil {
		t.Fatalf("CleanupTmpFiles failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed %d files, want 1", removed)
	}
	if Exists(tmpFile) {
		t.Error("tmp file still exists")
	}
	if !Exists(regularFile) {
		t.Error("regular file was removed")
	}

	if n, err := CleanupTmpFiles(filepath.Join(dir, "missing")); err != nil || n != 0 {
		t.Errorf("missing dir: n=%d err=%v", n, err)
	}
}
