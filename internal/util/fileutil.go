package util

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Exists reports whether path is present. Errors other than "not exist"
// count as present so callers go on to fail loudly on the real operation.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}

// removeSource is swapped out in tests.
var removeSource = os.Remove

// MoveAcrossDevices copies src next to dst, verifies the copy, renames it
// onto dst without replacing anything, then removes src. On any failure no
// file is left at dst.
func MoveAcrossDevices(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open src: %w", err)
	}

	defer func(f *os.File) {
		_ = f.Close()
	}(in)

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat src: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".filemover-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, h), in); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to copy: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := VerifyCopy(tmpPath, h.Sum(nil)); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := checkUnchanged(src, info); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	_ = os.Chmod(tmpPath, info.Mode().Perm())
	_ = os.Chtimes(tmpPath, info.ModTime(), info.ModTime())

	if err := RenameNoReplace(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	// the source must not be left behind, or the next sweep would copy it again
	if err := in.Close(); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("failed to close src: %w", err)
	}
	if err := removeSource(src); err != nil {
		// someone else removed src, dst is now the only copy
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		_ = os.Remove(dst)
		return fmt.Errorf("failed to remove src after copy: %w", err)
	}

	return nil
}

// checkUnchanged fails with ErrSourceChanged if src no longer has the size
// and modification time recorded in before.
func checkUnchanged(src string, before fs.FileInfo) error {
	after, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat src after copy: %w", err)
	}

	if after.Size() != before.Size() || !after.ModTime().Equal(before.ModTime()) {
		return fmt.Errorf("%s: %w", src, ErrSourceChanged)
	}

	return nil
}

func linkRename(src, dst string) error {
	if err := os.Link(src, dst); err != nil {
		return err
	}

	if err := os.Remove(src); err != nil {
		_ = os.Remove(dst)
		return err
	}

	return nil
}

func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}

	return nil
}
