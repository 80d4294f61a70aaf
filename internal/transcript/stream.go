package transcript

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Records streams the well-formed records of the session log at path.
// Each range re-opens the file. A missing or unreadable file yields nothing.
// Paths ending in .zst are decompressed on the fly.
func Records(path string) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		rc, err := open(path)
		if err != nil {
			return
		}
		defer rc.Close()
		scan(rc, yield)
	}
}

// Scan streams records from r. Blank and unparseable lines are skipped.
func Scan(r io.Reader) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		scan(r, yield)
	}
}

// scan reads one line at a time with no length limit.
func scan(r io.Reader, yield func(Record) bool) {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadBytes('\n')
		line = bytes.TrimRight(line, "\r\n")
		if len(line) > 0 {
			if rec, ok := ParseRecord(line); ok {
				if !yield(rec) {
					return
				}
			}
		}
		if err != nil {
			return
		}
	}
}

func open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &zstdFile{dec: dec, f: f}, nil
}

type zstdFile struct {
	dec *zstd.Decoder
	f   *os.File
}

func (z *zstdFile) Read(p []byte) (int, error) {
	return z.dec.Read(p)
}

func (z *zstdFile) Close() error {
	z.dec.Close()
	return z.f.Close()
}
