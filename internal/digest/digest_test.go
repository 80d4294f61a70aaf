package digest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSONL(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func mustExtract(t *testing.T, path string) *Digest {
	t.Helper()
	d, ok := Extract(path)
	require.True(t, ok, "expected context from %s", path)
	return d
}

func TestExtract_NoneForMissingFile(t *testing.T) {
	_, ok := Extract("/nonexistent/session.jsonl")
	assert.False(t, ok)
}

func TestExtract_NoneForEmptyFile(t *testing.T) {
	_, ok := Extract(writeJSONL(t, t.TempDir(), "empty.jsonl"))
	assert.False(t, ok)
}

func TestExtract_NoneWhenNothingRelevant(t *testing.T) {
	path := writeJSONL(t, t.TempDir(), "irrelevant.jsonl",
		`{"message":{"content":[{"name":"Read","input":{}}]}}`,
		`{"type":"assistant","message":{"content":"I read it"}}`,
	)
	_, ok := Extract(path)
	assert.False(t, ok)
}

func TestExtract_CollectsChangedFiles(t *testing.T) {
	path := writeJSONL(t, t.TempDir(), "session.jsonl",
		`{"message":{"content":[{"name":"Write","input":{"file_path":"src/main.go"}}]}}`,
		`{"message":{"content":[{"name":"Edit","input":{"file_path":"src/lib.go"}}]}}`,
	)

	d := mustExtract(t, path)
	assert.Equal(t, []string{"src/lib.go", "src/main.go"}, d.Files)
	assert.Empty(t, d.Requests)
}

func TestExtract_DeduplicatesAndSortsFiles(t *testing.T) {
	path := writeJSONL(t, t.TempDir(), "session.jsonl",
		`{"message":{"content":[{"name":"Write","input":{"file_path":"z.go"}}]}}`,
		`{"message":{"content":[{"name":"Edit","input":{"file_path":"a.go"}},{"name":"Edit","input":{"file_path":"z.go"}}]}}`,
		`{"message":{"content":[{"name":"Edit","input":{"file_path":"a.go"}}]}}`,
	)

	d := mustExtract(t, path)
	assert.Equal(t, []string{"a.go", "z.go"}, d.Files)
	assert.Equal(t, 1, strings.Count(d.Render(), "- a.go\n"))
}

func TestExtract_SkipsMalformedToolEntries(t *testing.T) {
	path := writeJSONL(t, t.TempDir(), "session.jsonl",
		`{"message":{"content":[{"name":"Write"}]}}`,
		`{"message":{"content":[{"name":"Write","input":{"file_path":["x"]}}]}}`,
		`{"message":{"content":{"name":"Write","input":{"file_path":"not-array.go"}}}}`,
		`{"message":{"content":[{"name":"Edit","input":{"file_path":"ok.go"}}]}}`,
	)

	d := mustExtract(t, path)
	assert.Equal(t, []string{"ok.go"}, d.Files)
}

func TestExtract_CollectsUserRequests(t *testing.T) {
	path := writeJSONL(t, t.TempDir(), "session.jsonl",
		`{"type":"user","message":{"content":"fix the bug in auth module"}}`,
		`{"message":{"content":[{"name":"Write","input":{"file_path":"src/auth.go"}}]}}`,
		`{"type":"user","message":{"content":"looks good, thanks"}}`,
	)

	d := mustExtract(t, path)
	assert.Equal(t, []string{"fix the bug in auth module", "looks good, thanks"}, d.Requests)
}

func TestExtract_SkipsNonStringUserContent(t *testing.T) {
	path := writeJSONL(t, t.TempDir(), "session.jsonl",
		`{"type":"user","message":{"content":[{"type":"image","data":"..."}]}}`,
		`{"type":"user","message":{"content":[{"type":"tool_result","content":"done"}]}}`,
		`{"message":{"content":[{"name":"Write","input":{"file_path":"x.go"}}]}}`,
	)

	d := mustExtract(t, path)
	assert.Equal(t, []string{"x.go"}, d.Files)
	assert.Empty(t, d.Requests)
	assert.NotContains(t, d.Render(), "image")
}

func TestExtract_IgnoresNonUserStringContent(t *testing.T) {
	path := writeJSONL(t, t.TempDir(), "session.jsonl",
		`{"type":"assistant","message":{"content":"sure"}}`,
		`{"type":"user","message":{"content":"hello"}}`,
	)

	d := mustExtract(t, path)
	assert.Equal(t, []string{"hello"}, d.Requests)
}

func TestExtract_TruncatesLongRequests(t *testing.T) {
	line := fmt.Sprintf(`{"type":"user","message":{"content":"%s"}}`, strings.Repeat("a", 300))
	d := mustExtract(t, writeJSONL(t, t.TempDir(), "session.jsonl", line))

	require.Len(t, d.Requests, 1)
	assert.Equal(t, strings.Repeat("a", 150), d.Requests[0])
}

func TestExtract_TruncatesByRuneNotByte(t *testing.T) {
	msg := strings.Repeat("日本語", 100) // 300 runes, 900 bytes
	line := fmt.Sprintf(`{"type":"user","message":{"content":"%s"}}`, msg)
	d := mustExtract(t, writeJSONL(t, t.TempDir(), "session.jsonl", line))

	req := d.Requests[0]
	assert.True(t, utf8.ValidString(req))
	assert.Equal(t, 150, utf8.RuneCountInString(req))
	assert.True(t, strings.HasPrefix(msg, req))
}

func TestExtract_ShortMultibyteRequestUntouched(t *testing.T) {
	line := `{"type":"user","message":{"content":"バグを直して 🙏"}}`
	d := mustExtract(t, writeJSONL(t, t.TempDir(), "session.jsonl", line))

	assert.Equal(t, "バグを直して 🙏", d.Requests[0])
}

func TestExtract_KeepsFirstTwentyRequests(t *testing.T) {
	var lines []string
	for i := 0; i < 25; i++ {
		lines = append(lines, fmt.Sprintf(`{"type":"user","message":{"content":"request %d"}}`, i))
	}
	d := mustExtract(t, writeJSONL(t, t.TempDir(), "session.jsonl", lines...))

	out := d.Render()
	assert.Equal(t, 20, strings.Count(out, "\n- request "))
	assert.Contains(t, out, "- request 0\n")
	assert.Contains(t, out, "- request 19\n")
	assert.NotContains(t, out, "- request 20\n")
}

func TestExtract_MixedValidAndInvalidJSON(t *testing.T) {
	path := writeJSONL(t, t.TempDir(), "session.jsonl",
		"not valid json at all",
		`{"message":{"content":[{"name":"Edit","input":{"file_path":"a.go"}}]}}`,
		"{broken",
		`{"type":"user","message":{"content":"hello"}}`,
	)

	out := mustExtract(t, path).Render()
	assert.Contains(t, out, "- a.go\n")
	assert.Contains(t, out, "- hello\n")
}

func TestRender_ExactFormat(t *testing.T) {
	path := writeJSONL(t, t.TempDir(), "session.jsonl",
		`{"type":"user","message":{"content":"add feature X"}}`,
		`{"message":{"content":[{"name":"Write","input":{"file_path":"src/foo.ts"}}]}}`,
		`{"message":{"content":[{"name":"Edit","input":{"file_path":"src/bar.ts"}}]}}`,
	)

	want := "# Changed files:\n" +
		"- src/bar.ts\n" +
		"- src/foo.ts\n" +
		"\n" +
		"# User requests in this session:\n" +
		"- add feature X\n"
	assert.Equal(t, want, mustExtract(t, path).Render())
}

func TestRender_WriteAndEditSameFile(t *testing.T) {
	path := writeJSONL(t, t.TempDir(), "session.jsonl",
		`{"message":{"content":[{"name":"Write","input":{"file_path":"src/a.rs"}}]}}`,
		`{"message":{"content":[{"name":"Edit","input":{"file_path":"src/a.rs"}}]}}`,
		`{"type":"user","message":{"content":"fix bug"}}`,
	)

	out := mustExtract(t, path).Render()
	assert.Equal(t, 1, strings.Count(out, "src/a.rs"))
	assert.Equal(t, 1, strings.Count(out, "fix bug"))
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"", 5, ""},
		{"abc", 5, "abc"},
		{"abcdef", 3, "abc"},
		{"héllo", 2, "hé"},
		{"🙂🙂🙂", 2, "🙂🙂"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncateRunes(tt.in, tt.n))
	}
}
