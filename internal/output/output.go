// Package output decides where a generated IDR goes and what it is called.
//
// Resolution order for the output directory:
//  1. a configured override directory, used verbatim;
//  2. the parent directory of the file named in <workspace>/.current-sow,
//     if that file resolves (through symlinks) to a regular file inside the
//     workspace;
//  3. <workspace>/planning/YYYY-MM-DD.
//
// The chosen directory is created if needed. Creation failure is logged and
// the path is still returned so the eventual write reports a clear error.
package output

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// PointerFile names the file, relative to the workspace, that points at the
// active planning document.
const PointerFile = ".current-sow"

var idrName = regexp.MustCompile(`^idr-([0-9]+)\.md$`)

// Resolve returns the directory a new IDR should be written to.
func Resolve(workspace, override string, today time.Time, logger *zap.Logger) string {
	if logger == nil {
		logger = zap.NewNop()
	}

	dir := override
	if dir == "" {
		if d, ok := fromPointer(workspace, logger); ok {
			dir = d
		} else {
			dir = DatedDir(workspace, today)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("cannot create output directory", zap.String("dir", dir), zap.Error(err))
	}
	return dir
}

// DatedDir returns <workspace>/planning/<today as YYYY-MM-DD>.
func DatedDir(workspace string, today time.Time) string {
	return filepath.Join(workspace, "planning", today.Format("2006-01-02"))
}

func fromPointer(workspace string, logger *zap.Logger) (string, bool) {
	pointer := filepath.Join(workspace, PointerFile)
	data, err := os.ReadFile(pointer)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("cannot read pointer file", zap.String("path", pointer), zap.Error(err))
		}
		return "", false
	}

	target := strings.TrimSpace(string(data))
	if target == "" {
		return "", false
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(workspace, target)
	}
	return Confine(target, workspace)
}

// Confine reports whether target, after resolving every symlink, is a regular
// file inside the canonical workspace. On success it returns the canonical
// parent directory of target.
//
// The check and the later write are not atomic; a symlink swapped in between
// can still redirect output to another local directory.
func Confine(target, workspace string) (string, bool) {
	realTarget, err := canonical(target)
	if err != nil {
		return "", false
	}
	realWorkspace, err := canonical(workspace)
	if err != nil {
		return "", false
	}

	if !within(realTarget, realWorkspace) {
		return "", false
	}

	info, err := os.Stat(realTarget)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return filepath.Dir(realTarget), true
}

func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// within compares by path components, so /ws-other is not inside /ws.
func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// NextNumber returns one more than the highest idr-<n>.md in dir, or 1.
// A missing or unreadable directory counts as empty.
func NextNumber(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 1
	}

	max := 0
	for _, e := range entries {
		if n, ok := ParseNumber(e.Name()); ok && n > max {
			max = n
		}
	}
	return max + 1
}

// ParseNumber extracts n from a file name of the form idr-<digits>.md.
// Numbers that do not fit in 31 bits, or leave no room for a successor,
// are rejected.
func ParseNumber(name string) (int, bool) {
	m := idrName.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseUint(m[1], 10, 31)
	if err != nil || n >= math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

// FileName returns the artifact name for sequence number n, zero-padded to
// at least two digits.
func FileName(n int) string {
	return fmt.Sprintf("idr-%02d.md", n)
}
