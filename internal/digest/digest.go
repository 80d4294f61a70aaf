// Package digest condenses a Claude Code session log into the facts an IDR
// prompt needs: which files Claude changed and what the user asked for.
package digest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/suykerbuyk/claude-idr/internal/transcript"
)

const (
	// MaxRequests caps how many user requests are kept, in encounter order.
	MaxRequests = 20
	// MaxRequestRunes caps each request, counted in Unicode code points.
	MaxRequestRunes = 150
)

// Digest is the context extracted from one session log.
type Digest struct {
	Files    []string // sorted, deduplicated
	Requests []string // encounter order, at most MaxRequests
}

// Extract reads the session log at path in a single streaming pass.
// ok is false when the log holds neither changed files nor user requests.
func Extract(path string) (*Digest, bool) {
	files := make(map[string]struct{})
	var requests []string

	for rec := range transcript.Records(path) {
		collectFiles(rec, files)
		if len(requests) < MaxRequests {
			if req, ok := userRequest(rec); ok {
				requests = append(requests, req)
			}
		}
	}

	if len(files) == 0 && len(requests) == 0 {
		return nil, false
	}

	sorted := make([]string, 0, len(files))
	for f := range files {
		sorted = append(sorted, f)
	}
	sort.Strings(sorted)

	return &Digest{Files: sorted, Requests: requests}, true
}

// Render formats the digest as the two-section block fed to the purpose prompt.
func (d *Digest) Render() string {
	var b strings.Builder

	b.WriteString("# Changed files:\n")
	for _, f := range d.Files {
		fmt.Fprintf(&b, "- %s\n", f)
	}

	b.WriteString("\n# User requests in this session:\n")
	for _, r := range d.Requests {
		fmt.Fprintf(&b, "- %s\n", r)
	}

	return b.String()
}

func collectFiles(rec transcript.Record, out map[string]struct{}) {
	for _, tu := range rec.ToolUses() {
		if !tu.IsMutation() {
			continue
		}
		if p, ok := tu.FilePath(); ok {
			out[p] = struct{}{}
		}
	}
}

// userRequest returns the truncated text of a human-typed message.
// List-valued content (tool results, images) is not a request.
func userRequest(rec transcript.Record) (string, bool) {
	if rec.Type() != "user" {
		return "", false
	}
	content, ok := rec.StringContent()
	if !ok {
		return "", false
	}
	return truncateRunes(content, MaxRequestRunes), true
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
