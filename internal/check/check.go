package check

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/suykerbuyk/claude-idr/internal/config"
	"github.com/suykerbuyk/claude-idr/internal/discover"
	"github.com/suykerbuyk/claude-idr/internal/gitdiff"
	"github.com/suykerbuyk/claude-idr/internal/hook"
	"github.com/suykerbuyk/claude-idr/internal/output"
	"github.com/suykerbuyk/claude-idr/internal/sanitize"
)

// Status represents the outcome of a single check.
type Status int

const (
	Pass Status = iota
	Warn
	Fail
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "pass"
	case Warn:
		return "warn"
	case Fail:
		return "FAIL"
	default:
		return "unknown"
	}
}

// Result holds the outcome of a single check.
type Result struct {
	Name   string
	Status Status
	Detail string
}

// Report aggregates all check results.
type Report struct {
	Results []Result
}

// HasFailures returns true if any result has Fail status.
func (r Report) HasFailures() bool {
	for _, res := range r.Results {
		if res.Status == Fail {
			return true
		}
	}
	return false
}

// Format returns the human-readable report string.
func (r Report) Format() string {
	if len(r.Results) == 0 {
		return "claude-idr check\n\n  no checks ran\n"
	}

	maxName := 0
	for _, res := range r.Results {
		if len(res.Name) > maxName {
			maxName = len(res.Name)
		}
	}

	var b strings.Builder
	b.WriteString("claude-idr check\n\n")

	var passed, warnings, failures int
	for _, res := range r.Results {
		switch res.Status {
		case Pass:
			passed++
		case Warn:
			warnings++
		case Fail:
			failures++
		}
		fmt.Fprintf(&b, "  %-4s  %-*s  %s\n", res.Status, maxName, res.Name, res.Detail)
	}

	fmt.Fprintf(&b, "\n%d passed, %d warning, %d failure\n", passed, warnings, failures)
	return b.String()
}

// CheckConfig reports the resolved config path. Always passes; broken TOML
// has already been reported by the time checks run.
func CheckConfig(path string) Result {
	if _, err := os.Stat(path); err != nil {
		return Result{Name: "config", Status: Pass, Detail: config.CompressHome(path) + " (not present, using defaults)"}
	}
	return Result{Name: "config", Status: Pass, Detail: config.CompressHome(path)}
}

// CheckBinary looks name up on PATH. A missing required binary fails;
// a missing optional one warns.
func CheckBinary(name string, required bool) Result {
	path, err := exec.LookPath(name)
	if err == nil {
		return Result{Name: name, Status: Pass, Detail: config.CompressHome(path)}
	}
	if required {
		return Result{Name: name, Status: Fail, Detail: name + " not found on PATH"}
	}
	return Result{Name: name, Status: Warn, Detail: name + " not found on PATH (IDRs will use fallback text)"}
}

// CheckProjects reports how many session logs exist and how recent the
// newest eligible one is.
func CheckProjects(dir string, maxAge time.Duration, now time.Time) Result {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return Result{Name: "sessions", Status: Warn, Detail: config.CompressHome(dir) + " not found"}
	}

	var count int
	var latest time.Time
	for _, c := range discover.Candidates(dir, nil) {
		if discover.ExcludeSubagents(c.Path) {
			continue
		}
		count++
		if c.ModTime.After(latest) {
			latest = c.ModTime
		}
	}
	if count == 0 {
		return Result{Name: "sessions", Status: Warn, Detail: "no session logs in " + config.CompressHome(dir)}
	}

	detail := fmt.Sprintf("%s sessions, latest %s", humanize.Comma(int64(count)), humanize.RelTime(latest, now, "ago", "from now"))
	if now.Sub(latest) > maxAge {
		return Result{Name: "sessions", Status: Warn, Detail: detail + " (older than session_max_age_min)"}
	}
	return Result{Name: "sessions", Status: Pass, Detail: detail}
}

// CheckWorkspace checks the workspace directory and its pointer file.
func CheckWorkspace(dir string) []Result {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return []Result{{Name: "workspace", Status: Warn, Detail: config.CompressHome(dir) + " not found (created on first IDR)"}}
	}
	results := []Result{{Name: "workspace", Status: Pass, Detail: config.CompressHome(dir)}}

	pointer := filepath.Join(dir, output.PointerFile)
	data, err := os.ReadFile(pointer)
	if err != nil {
		return append(results, Result{Name: "sow", Status: Pass, Detail: output.PointerFile + " not set (dated directories)"})
	}
	target := strings.TrimSpace(string(data))
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}
	if parent, ok := output.Confine(target, dir); ok {
		return append(results, Result{Name: "sow", Status: Pass, Detail: config.CompressHome(parent)})
	}
	return append(results, Result{Name: "sow", Status: Warn, Detail: output.PointerFile + " rejected (missing, not a file, or outside workspace)"})
}

// CheckOutputOverride reports a configured output_dir.
func CheckOutputOverride(dir string) Result {
	if dir == "" {
		return Result{Name: "output", Status: Pass, Detail: "resolved per commit"}
	}
	return Result{Name: "output", Status: Pass, Detail: "fixed: " + config.CompressHome(dir)}
}

// CheckRedaction loads the secret rules when redaction is enabled.
func CheckRedaction(enabled bool) Result {
	if !enabled {
		return Result{Name: "redact", Status: Warn, Detail: "disabled (diffs reach claude unredacted)"}
	}
	if _, err := sanitize.NewRedactor(); err != nil {
		return Result{Name: "redact", Status: Warn, Detail: err.Error()}
	}
	return Result{Name: "redact", Status: Pass, Detail: "gitleaks rules loaded"}
}

// CheckHook checks whether the pre-commit hook is installed in the
// repository containing repoDir.
func CheckHook(repoDir string) Result {
	repo, err := gitdiff.Open(repoDir)
	if err != nil {
		return Result{Name: "hook", Status: Warn, Detail: "not inside a git repository"}
	}
	hooksDir, err := repo.HooksDir()
	if err != nil {
		return Result{Name: "hook", Status: Warn, Detail: err.Error()}
	}
	path := hook.PreCommitPath(hooksDir)
	if hook.IsInstalled(hooksDir) {
		return Result{Name: "hook", Status: Pass, Detail: "installed in " + config.CompressHome(path)}
	}
	return Result{Name: "hook", Status: Warn, Detail: "not installed (run: claude-idr hook install)"}
}

// CheckStaged reports how many files are staged in the repository
// containing repoDir. Nothing staged means a commit would produce no IDR.
func CheckStaged(repoDir string) Result {
	repo, err := gitdiff.Open(repoDir)
	if err != nil {
		return Result{Name: "staged", Status: Warn, Detail: "not inside a git repository"}
	}
	files, err := repo.StagedFiles()
	if err != nil {
		return Result{Name: "staged", Status: Warn, Detail: err.Error()}
	}
	if len(files) == 0 {
		return Result{Name: "staged", Status: Pass, Detail: "nothing staged (no IDR until files are added)"}
	}
	return Result{Name: "staged", Status: Pass, Detail: fmt.Sprintf("%s staged files", humanize.Comma(int64(len(files))))}
}

// Env locates the things checks inspect.
type Env struct {
	ConfigPath  string
	ProjectsDir string
	RepoDir     string
	Now         time.Time
}

// Run executes all checks against the given config and returns a report.
func Run(cfg config.Config, env Env) Report {
	if env.Now.IsZero() {
		env.Now = time.Now()
	}

	var results []Result

	results = append(results, CheckConfig(env.ConfigPath))
	if !cfg.Enabled {
		results = append(results, Result{Name: "enabled", Status: Warn, Detail: "disabled by config"})
	}
	results = append(results, CheckBinary("git", true))
	results = append(results, CheckBinary("claude", false))
	results = append(results, CheckProjects(env.ProjectsDir, cfg.SessionMaxAge(), env.Now))
	results = append(results, CheckWorkspace(cfg.WorkspaceDir)...)
	results = append(results, CheckOutputOverride(cfg.OutputDir))
	results = append(results, CheckRedaction(cfg.Redact.Enabled))
	results = append(results, CheckHook(env.RepoDir))
	results = append(results, CheckStaged(env.RepoDir))

	return Report{Results: results}
}
