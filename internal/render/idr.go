package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FallbackPurpose is used as the title when purpose extraction fails.
const FallbackPurpose = "(目的抽出失敗)"

// FallbackContent replaces the body when IDR generation fails.
const FallbackContent = "## 変更概要\n\n(IDR生成失敗 - 手動で記載してください)"

// Doc holds everything needed to render an IDR.
type Doc struct {
	Purpose string
	Branch  string // optional
	Created time.Time
	Content string
	Stat    string // git diff --stat output
}

// IDR renders d as markdown.
func IDR(d Doc) string {
	purpose := strings.TrimSpace(d.Purpose)
	if purpose == "" {
		purpose = FallbackPurpose
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# IDR: %s\n\n", purpose)
	fmt.Fprintf(&b, "> %s\n", d.Created.Format("2006-01-02 15:04"))
	if d.Branch != "" {
		fmt.Fprintf(&b, "> branch: %s\n", d.Branch)
	}
	b.WriteString("\n")
	b.WriteString(d.Content)
	b.WriteString("\n\n---\n\n### git diff --stat\n```\n")
	b.WriteString(d.Stat)
	b.WriteString("\n```\n")
	return b.String()
}

// Write renders d to path, creating parent directories.
func Write(path string, d Doc) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(IDR(d)), 0o644); err != nil {
		return fmt.Errorf("write IDR: %w", err)
	}
	return nil
}
