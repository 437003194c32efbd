package util

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestRenameNoReplaceMovesFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	dst := filepath.Join(dir, "b.txt")
	writeFile(t, src, "payload")

	if err := RenameNoReplace(src, dst); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if Exists(src) {
		t.Fatal("expected source to be gone")
	}
	if got := readFile(t, dst); got != "payload" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestRenameNoReplaceRefusesExisting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	dst := filepath.Join(dir, "b.txt")
	writeFile(t, src, "new")
	writeFile(t, dst, "old")

	err := RenameNoReplace(src, dst)
	if !errors.Is(err, fs.ErrExist) {
		t.Fatalf("expected ErrExist, got %v", err)
	}
	if got := readFile(t, dst); got != "old" {
		t.Fatalf("destination was overwritten: %q", got)
	}
	if got := readFile(t, src); got != "new" {
		t.Fatalf("source was touched: %q", got)
	}
}

func TestMoveAcrossDevicesLeavesNoTemp(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	src := filepath.Join(srcDir, "report.txt")
	dst := filepath.Join(dstDir, "report.txt")
	writeFile(t, src, "copied")

	if err := MoveAcrossDevices(src, dst); err != nil {
		t.Fatalf("move: %v", err)
	}
	if Exists(src) {
		t.Fatal("expected source to be removed")
	}
	if got := readFile(t, dst); got != "copied" {
		t.Fatalf("unexpected content %q", got)
	}

	entries, err := os.ReadDir(dstDir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the moved file, got %d entries", len(entries))
	}
}

func TestMoveAcrossDevicesRefusesExisting(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	src := filepath.Join(srcDir, "report.txt")
	dst := filepath.Join(dstDir, "report.txt")
	writeFile(t, src, "new")
	writeFile(t, dst, "old")

	if err := MoveAcrossDevices(src, dst); !errors.Is(err, fs.ErrExist) {
		t.Fatalf("expected ErrExist, got %v", err)
	}
	if got := readFile(t, dst); got != "old" {
		t.Fatalf("destination was overwritten: %q", got)
	}
	if !Exists(src) {
		t.Fatal("source must stay in place on failure")
	}

	entries, _ := os.ReadDir(dstDir)
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %d entries", len(entries))
	}
}

func TestCreationTimeIsRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.txt")
	writeFile(t, path, "x")

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	created := CreationTime(path, info)
	if time.Since(created) > time.Minute {
		t.Fatalf("creation time too old: %s", created)
	}
}

func TestRemoveIfExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.txt")
	if err := RemoveIfExists(path); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}

	writeFile(t, path, "x")
	if err := RemoveIfExists(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if Exists(path) {
		t.Fatal("expected file removed")
	}
}

func TestVerifyCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	sum, err := Checksum(path)
	if err != nil {
		t.Fatalf("checksum: %v", err)
	}
	if err := VerifyCopy(path, sum); err != nil {
		t.Fatalf("expected match, got %v", err)
	}

	if err := os.WriteFile(path, []byte("hello, world"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := VerifyCopy(path, sum); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
}

func swapRemoveSource(t *testing.T, fn func(string) error) {
	t.Helper()
	orig := removeSource
	removeSource = fn
	t.Cleanup(func() { removeSource = orig })
}

func TestMoveAcrossDevicesKeepsCopyWhenSourceVanishes(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	src := filepath.Join(srcDir, "report.txt")
	dst := filepath.Join(dstDir, "report.txt")
	writeFile(t, src, "only copy")

	// another actor deletes src between the copy and the removal
	swapRemoveSource(t, func(path string) error {
		if err := os.Remove(path); err != nil {
			return err
		}
		return os.Remove(path)
	})

	if err := MoveAcrossDevices(src, dst); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := readFile(t, dst); got != "only copy" {
		t.Fatalf("expected destination kept, got %q", got)
	}
}

func TestMoveAcrossDevicesRollsBackWhenSourceStays(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	src := filepath.Join(srcDir, "report.txt")
	dst := filepath.Join(dstDir, "report.txt")
	writeFile(t, src, "locked")

	swapRemoveSource(t, func(path string) error {
		return &os.PathError{Op: "remove", Path: path, Err: fs.ErrPermission}
	})

	if err := MoveAcrossDevices(src, dst); !errors.Is(err, fs.ErrPermission) {
		t.Fatalf("expected permission error, got %v", err)
	}
	if Exists(dst) {
		t.Fatal("expected destination rolled back")
	}
	if got := readFile(t, src); got != "locked" {
		t.Fatalf("source was touched: %q", got)
	}
}

func TestCheckUnchangedDetectsGrowth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "growing.log")
	writeFile(t, path, "part")

	before, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if err := checkUnchanged(path, before); err != nil {
		t.Fatalf("expected unchanged, got %v", err)
	}

	writeFile(t, path, "part and more")
	if err := checkUnchanged(path, before); !errors.Is(err, ErrSourceChanged) {
		t.Fatalf("expected ErrSourceChanged, got %v", err)
	}
}
