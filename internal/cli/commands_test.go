package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pathio "github.com/matzehuels/pathlattice/pkg/io"
)

const toyProfile = `name = "toy"
consensus = "ACG"
`

// The graph spells TTACGTT with a C/T bubble at the fourth position.
const toyGraph = `{
  "nodes": [
    {"id": 1, "letter": "T"}, {"id": 2, "letter": "A"}, {"id": 3, "letter": "C"},
    {"id": 4, "letter": "T"}, {"id": 5, "letter": "G"}, {"id": 6, "letter": "T"}
  ],
  "edges": [
    {"from": 1, "to": 2}, {"from": 2, "to": 3}, {"from": 2, "to": 4},
    {"from": 3, "to": 5}, {"from": 4, "to": 5}, {"from": 5, "to": 6}
  ]
}`

// workspace writes the toy inputs to a temp dir and isolates the cache.
func workspace(t *testing.T) (dir, profile, graph string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))

	profile = filepath.Join(dir, "toy.toml")
	graph = filepath.Join(dir, "reads.json")
	if err := os.WriteFile(profile, []byte(toyProfile), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(graph, []byte(toyGraph), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, profile, graph
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	return Execute(context.Background(), io.Discard, args)
}

// captureStdout returns what fn writes to os.Stdout.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	done := make(chan []byte)
	go func() {
		data, _ := io.ReadAll(r)
		done <- data
	}()

	runErr := fn()
	w.Close()
	out := <-done
	r.Close()
	return string(out), runErr
}

func TestAlignGraph(t *testing.T) {
	dir, profile, graph := workspace(t)

	if err := run(t, "align", profile, graph, "-k", "3", "-f", "dot"); err != nil {
		t.Fatalf("align: %v", err)
	}

	lattice := filepath.Join(dir, "reads.lattice.json")
	doc, err := pathio.ImportJSON(lattice)
	if err != nil {
		t.Fatalf("ImportJSON(%s) error = %v", lattice, err)
	}
	if got := doc.Paths.BestPathString(doc.Graph); got != "ACG" {
		t.Errorf("BestPathString() = %q, want %q", got, "ACG")
	}
	if doc.Profile == nil || doc.Profile.Name != "toy" {
		t.Errorf("Profile = %+v, want toy", doc.Profile)
	}

	dot, err := os.ReadFile(filepath.Join(dir, "reads.lattice.dot"))
	if err != nil {
		t.Fatalf("read dot artifact: %v", err)
	}
	if !bytes.HasPrefix(dot, []byte("digraph L {")) {
		t.Errorf("dot artifact = %.40q", dot)
	}
}

func TestAlignSequenceJSON(t *testing.T) {
	dir, profile, _ := workspace(t)
	lattice := filepath.Join(dir, "out.json")

	out, err := captureStdout(t, func() error {
		return run(t, "align", profile, "--seq", "TTACGTT", "-o", lattice, "-k", "2", "--json", "--no-cache")
	})
	if err != nil {
		t.Fatalf("align --seq: %v", err)
	}

	var paths []pathio.PathResult
	if err := json.Unmarshal([]byte(out), &paths); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if len(paths) != 2 {
		t.Fatalf("len(paths) = %d, want 2", len(paths))
	}
	if paths[0].Sequence != "ACG" || paths[0].Alignment != "MMM" || paths[0].Score != 0 {
		t.Errorf("paths[0] = %+v, want ACG MMM 0", paths[0])
	}
	if paths[1].Score > paths[0].Score {
		t.Errorf("scores not descending: %v then %v", paths[0].Score, paths[1].Score)
	}
	if _, err := os.Stat(lattice); err != nil {
		t.Errorf("lattice not written: %v", err)
	}
}

func TestAlignErrors(t *testing.T) {
	_, profile, graph := workspace(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing graph", []string{"align", profile}},
		{"missing profile", []string{"align", filepath.Join(t.TempDir(), "absent.toml"), graph}},
		{"bad format", []string{"align", profile, graph, "-f", "png"}},
		{"bad sequence", []string{"align", profile, "--seq", "AC-GT"}},
		{"negative k", []string{"align", profile, graph, "-k", "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(t, tt.args...); err == nil {
				t.Errorf("%v = nil, want error", tt.args)
			}
		})
	}
}

func alignedLattice(t *testing.T) (dir, lattice string) {
	t.Helper()
	dir, profile, graph := workspace(t)
	if err := run(t, "align", profile, graph); err != nil {
		t.Fatalf("align: %v", err)
	}
	return dir, filepath.Join(dir, "reads.lattice.json")
}

func TestTopK(t *testing.T) {
	_, lattice := alignedLattice(t)

	out, err := captureStdout(t, func() error {
		return run(t, "topk", lattice, "-k", "2", "--json")
	})
	if err != nil {
		t.Fatalf("topk: %v", err)
	}
	var paths []pathio.PathResult
	if err := json.Unmarshal([]byte(out), &paths); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if len(paths) == 0 || paths[0].Sequence != "ACG" {
		t.Errorf("topk paths = %+v, want ACG first", paths)
	}

	out, err = captureStdout(t, func() error {
		return run(t, "topk", lattice, "--min-score", "1", "--json")
	})
	if err != nil {
		t.Fatalf("topk --min-score: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("topk --min-score 1 = %s, want []", out)
	}

	if err := run(t, "topk", lattice, "--json", "--interactive"); err == nil {
		t.Error("topk --json --interactive = nil, want error")
	}
}

func TestHas(t *testing.T) {
	_, lattice := alignedLattice(t)

	out, err := captureStdout(t, func() error { return run(t, "has", lattice, "ACG") })
	if err != nil {
		t.Fatalf("has ACG: %v", err)
	}
	if !strings.Contains(out, "occurs") {
		t.Errorf("has ACG output = %q", out)
	}

	out, err = captureStdout(t, func() error { return run(t, "has", lattice, "GGG") })
	if err != nil {
		t.Fatalf("has GGG: %v", err)
	}
	if !strings.Contains(out, "does not occur") {
		t.Errorf("has GGG output = %q", out)
	}

	if err := run(t, "has", lattice, "A C"); err == nil {
		t.Error("has with whitespace = nil, want error")
	}
}

func TestRender(t *testing.T) {
	dir, lattice := alignedLattice(t)
	base := filepath.Join(dir, "drawing")

	if err := run(t, "render", lattice, "-f", "dot,json", "-o", base, "--detailed"); err != nil {
		t.Fatalf("render: %v", err)
	}
	dot, err := os.ReadFile(base + ".dot")
	if err != nil {
		t.Fatalf("read dot: %v", err)
	}
	if !bytes.Contains(dot, []byte("doublecircle")) {
		t.Errorf("dot output has no sink node:\n%s", dot)
	}
	if _, err := pathio.ImportJSON(base + ".json"); err != nil {
		t.Errorf("json artifact does not import: %v", err)
	}

	single := filepath.Join(dir, "single.gv")
	if err := run(t, "render", lattice, "-f", "dot", "-o", single); err != nil {
		t.Fatalf("render single: %v", err)
	}
	if _, err := os.Stat(single); err != nil {
		t.Errorf("single output not written: %v", err)
	}
}

func TestRenderMissingLattice(t *testing.T) {
	dir, _, _ := workspace(t)
	if err := run(t, "render", filepath.Join(dir, "absent.json")); err == nil {
		t.Error("render of a missing file = nil, want error")
	}
}

func TestServeInvalidBackends(t *testing.T) {
	workspace(t)

	tests := []struct {
		name string
		args []string
	}{
		{"redis scheme", []string{"serve", "--redis", "http://localhost:6379", "--memory"}},
		{"mongo scheme", []string{"serve", "--mongo", "localhost:27017"}},
		{"positional", []string{"serve", "extra"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(t, tt.args...); err == nil {
				t.Errorf("%v = nil, want error", tt.args)
			}
		})
	}
}

func TestServeShutdown(t *testing.T) {
	workspace(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Execute(ctx, io.Discard, []string{"serve", "--addr", "127.0.0.1:0", "--memory"})
	if err != nil {
		t.Errorf("serve with canceled context = %v, want nil", err)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"svg", []string{"svg"}},
		{"dot, svg", []string{"dot", "svg"}},
		{"json,,dot", []string{"json", "dot"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "reads.lattice.json", "reads.lattice"},
		{"out.svg", "reads.json", "out"},
		{"out.dot", "reads.json", "out"},
		{"out.gv", "reads.json", "out.gv"},
		{"out", "reads.json", "out"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestLatticePath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"reads.json", "reads.lattice.json"},
		{filepath.Join("data", "reads.json"), filepath.Join("data", "reads.lattice.json")},
		{"reads", "reads.lattice.json"},
	}
	for _, tt := range tests {
		if got := latticePath(tt.in); got != tt.want {
			t.Errorf("latticePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
