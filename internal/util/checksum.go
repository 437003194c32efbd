package util

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrChecksumMismatch means the bytes on disk differ from the bytes written,
// a write or media error on the destination.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ErrSourceChanged means the source was modified while it was being copied.
var ErrSourceChanged = errors.New("source changed during copy")

func Checksum(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}

	return h.Sum(nil), nil
}

// VerifyCopy compares the checksum of path against want.
func VerifyCopy(path string, want []byte) error {
	got, err := Checksum(path)
	if err != nil {
		return err
	}

	if !bytes.Equal(got, want) {
		return fmt.Errorf("%s: %w", path, ErrChecksumMismatch)
	}

	return nil
}
