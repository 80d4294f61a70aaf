// Package archive keeps a copy of the session log that produced an IDR.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// Dir is the directory, beside the IDR, that holds session snapshots.
const Dir = ".sessions"

// SnapshotPath returns where Snapshot writes name inside dir.
func SnapshotPath(dir, name string, compress bool) string {
	ext := ".jsonl"
	if compress {
		ext += ".zst"
	}
	return filepath.Join(dir, name+ext)
}

// Snapshot copies srcPath to dir/name.jsonl, zstd-compressed as
// dir/name.jsonl.zst when compress is set. Returns the written path.
func Snapshot(srcPath, dir, name string, compress bool) (string, error) {
	destPath := SnapshotPath(dir, name, compress)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer dest.Close()

	if !compress {
		if _, err := io.Copy(dest, src); err != nil {
			return "", fmt.Errorf("copy: %w", err)
		}
		return destPath, dest.Close()
	}

	encoder, err := zstd.NewWriter(dest)
	if err != nil {
		return "", fmt.Errorf("create zstd encoder: %w", err)
	}

	if _, err := io.Copy(encoder, src); err != nil {
		encoder.Close()
		return "", fmt.Errorf("compress: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("finalize compression: %w", err)
	}

	return destPath, dest.Close()
}
