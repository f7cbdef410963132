package cli

import (
	"context"
	"io"
	"testing"

	"github.com/matzehuels/pathlattice/pkg/buildinfo"
)

func TestSetVersion(t *testing.T) {
	v, c, d := buildinfo.Version, buildinfo.Commit, buildinfo.Date
	t.Cleanup(func() { buildinfo.Version, buildinfo.Commit, buildinfo.Date = v, c, d })

	SetVersion("1.0.0", "abc123", "2024-01-01")

	if buildinfo.Version != "1.0.0" {
		t.Errorf("Version = %q, want %q", buildinfo.Version, "1.0.0")
	}
	if buildinfo.Commit != "abc123" {
		t.Errorf("Commit = %q, want %q", buildinfo.Commit, "abc123")
	}
	if buildinfo.Date != "2024-01-01" {
		t.Errorf("Date = %q, want %q", buildinfo.Date, "2024-01-01")
	}
}

func TestSetVersionEmpty(t *testing.T) {
	v, c, d := buildinfo.Version, buildinfo.Commit, buildinfo.Date
	t.Cleanup(func() { buildinfo.Version, buildinfo.Commit, buildinfo.Date = v, c, d })

	SetVersion("", "", "")

	if buildinfo.Version != v || buildinfo.Commit != c || buildinfo.Date != d {
		t.Errorf("SetVersion(\"\", \"\", \"\") changed build info to %+v", buildinfo.Current())
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := []string{"align", "topk", "has", "render", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Find(%q) error = %v, want subcommand", name, err)
		}
	}
}

func TestExecuteUnknownCommand(t *testing.T) {
	if err := Execute(context.Background(), io.Discard, []string{"frobnicate"}); err == nil {
		t.Error("Execute(frobnicate) = nil, want error")
	}
}

func TestExecuteVerbose(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	if err := Execute(context.Background(), io.Discard, []string{"-v", "cache", "path"}); err != nil {
		t.Errorf("Execute(-v cache path) = %v", err)
	}
}
