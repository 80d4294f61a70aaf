package sanitize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zricethezav/gitleaks/v8/detect"
)

// Redactor replaces secrets found by the gitleaks default rule set.
type Redactor struct {
	detector *detect.Detector
}

// NewRedactor loads the gitleaks default configuration.
func NewRedactor() (*Redactor, error) {
	d, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("load secret rules: %w", err)
	}
	return &Redactor{detector: d}, nil
}

type secret struct {
	value  string
	ruleID string
}

// Redact returns content with each detected secret replaced by
// [REDACTED:<rule-id>], and the number of distinct secrets replaced.
func (r *Redactor) Redact(content string) (string, int) {
	if r == nil || r.detector == nil || content == "" {
		return content, 0
	}

	seen := make(map[string]bool)
	var found []secret
	for _, f := range r.detector.DetectString(content) {
		v := f.Secret
		if v == "" {
			v = f.Match
		}
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		found = append(found, secret{value: v, ruleID: f.RuleID})
	}

	// Longest first so a secret that contains another is replaced whole.
	sort.SliceStable(found, func(i, j int) bool {
		return len(found[i].value) > len(found[j].value)
	})

	n := 0
	for _, s := range found {
		if !strings.Contains(content, s.value) {
			continue
		}
		content = strings.ReplaceAll(content, s.value, Marker(s.ruleID))
		n++
	}
	return content, n
}

// Marker is the replacement text for a secret matched by ruleID.
func Marker(ruleID string) string {
	return "[REDACTED:" + ruleID + "]"
}
