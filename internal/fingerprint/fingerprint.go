// SPDX-License-Identifier: MIT

// Package fingerprint computes content-addressed digests used as cache and
// change-detection keys.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// Digest failures carry one of these sentinel errors.
var (
	ErrNotFound   = errors.New("fingerprint: file not found")
	ErrUnreadable = errors.New("fingerprint: file unreadable")
)

const chunkSize = 64 * 1024

// Text returns the hex digest of the given UTF-8 text.
func Text(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// File returns the hex digest of the file content, streamed in fixed-size
// chunks so large media files do not need to fit in memory.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
