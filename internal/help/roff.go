// Package help renders man pages from the command tree.
package help

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ManName returns the man page name: "claude-idr" for the root,
// "claude-idr-hook-install" for nested commands.
func ManName(c *cobra.Command) string {
	return strings.ReplaceAll(c.CommandPath(), " ", "-")
}

// FormatRoff renders a command as a roff-formatted man page (.1).
// If date is empty, today's date is used (pass a fixed date for reproducible builds).
func FormatRoff(c *cobra.Command, version, date string) string {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	root := c.Root()

	var b strings.Builder

	fmt.Fprintf(&b, ".TH %s 1 %q %q %q\n",
		strings.ToUpper(ManName(c)), date, root.Name()+" "+version, "claude-idr Manual")

	b.WriteString(".SH NAME\n")
	fmt.Fprintf(&b, "%s \\- %s\n", ManName(c), escapeRoff(c.Short))

	b.WriteString(".SH SYNOPSIS\n")
	b.WriteString(".B " + escapeRoff(c.UseLine()) + "\n")

	if desc := c.Long; desc != "" {
		b.WriteString(".SH DESCRIPTION\n")
		writeRoffParagraphs(&b, desc)
	}

	if subs := visible(c.Commands()); len(subs) > 0 {
		b.WriteString(".SH COMMANDS\n")
		for _, s := range subs {
			fmt.Fprintf(&b, ".TP\n.B \"%s\"\n%s\n", escapeRoff(s.Name()), escapeRoff(s.Short))
		}
	}

	var flags []*pflag.Flag
	c.NonInheritedFlags().VisitAll(func(f *pflag.Flag) {
		if !f.Hidden && f.Name != "help" && f.Name != "version" {
			flags = append(flags, f)
		}
	})
	if len(flags) > 0 {
		b.WriteString(".SH OPTIONS\n")
		for _, f := range flags {
			fmt.Fprintf(&b, ".TP\n.B %s\n%s\n", escapeRoff(flagName(f)), escapeRoff(f.Usage))
		}
	}

	if c.Example != "" {
		b.WriteString(".SH EXAMPLES\n.nf\n")
		for _, line := range strings.Split(strings.TrimSpace(c.Example), "\n") {
			b.WriteString(escapeRoff(strings.TrimSpace(line)) + "\n")
		}
		b.WriteString(".fi\n")
	}

	var refs []string
	if c.HasParent() {
		refs = append(refs, formatManRef(ManName(c.Parent())+"(1)"))
	}
	for _, s := range visible(c.Commands()) {
		refs = append(refs, formatManRef(ManName(s)+"(1)"))
	}
	if len(refs) > 0 {
		b.WriteString(".SH SEE ALSO\n")
		b.WriteString(strings.Join(refs, ",\n") + "\n")
	}

	return b.String()
}

// WriteAll writes a man page for root and every visible descendant into
// dir. Returns the written paths.
func WriteAll(root *cobra.Command, dir, version, date string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create man dir: %w", err)
	}

	var written []string
	var walk func(c *cobra.Command) error
	walk = func(c *cobra.Command) error {
		path := filepath.Join(dir, ManName(c)+".1")
		if err := os.WriteFile(path, []byte(FormatRoff(c, version, date)), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
		for _, s := range visible(c.Commands()) {
			if err := walk(s); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return written, err
	}
	return written, nil
}

func visible(cmds []*cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, c := range cmds {
		if c.IsAvailableCommand() {
			out = append(out, c)
		}
	}
	return out
}

func flagName(f *pflag.Flag) string {
	name := "--" + f.Name
	if f.Shorthand != "" {
		name = "-" + f.Shorthand + ", " + name
	}
	if f.Value.Type() != "bool" {
		name += " <" + f.Value.Type() + ">"
	}
	return name
}

// escapeRoff escapes characters that have special meaning in roff:
//   - backslashes → \\
//   - leading dots → \&.
//   - bare hyphens → \-  (for proper rendering of dashes)
func escapeRoff(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "\n.", "\n\\&.")
	if strings.HasPrefix(s, ".") {
		s = "\\&" + s
	}
	s = strings.ReplaceAll(s, "-", "\\-")
	return s
}

// writeRoffParagraphs writes multi-line description text as roff paragraphs.
// Blank lines in the input become .PP paragraph breaks.
func writeRoffParagraphs(b *strings.Builder, text string) {
	prevBlank := false
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			if !prevBlank {
				b.WriteString(".PP\n")
			}
			prevBlank = true
			continue
		}
		prevBlank = false
		b.WriteString(escapeRoff(line) + "\n")
	}
}

// formatManRef formats a "name(section)" reference with bold name.
func formatManRef(ref string) string {
	if i := strings.Index(ref, "("); i >= 0 {
		return fmt.Sprintf(".BR %s %s", escapeRoff(ref[:i]), ref[i:])
	}
	return ".B " + escapeRoff(ref)
}
