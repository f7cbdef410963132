package pipeline

import (
	"context"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pathlattice/pkg/cache"
	"github.com/matzehuels/pathlattice/pkg/hmm"
	"github.com/matzehuels/pathlattice/pkg/observability"
	"github.com/matzehuels/pathlattice/pkg/seqgraph"
)

var quiet = log.New(io.Discard)

func toyInputs(t *testing.T) (*hmm.Fees, *seqgraph.Graph) {
	t.Helper()
	fees, err := hmm.New("toy", "ACG", hmm.DefaultCosts)
	if err != nil {
		t.Fatal(err)
	}
	g, err := seqgraph.FromSequence("TTACGTT")
	if err != nil {
		t.Fatal(err)
	}
	return fees, g
}

func memoryRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewMemoryCache(0)
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, quiet)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Errorf("NewRunner(nil, nil, nil) = %+v, want defaults", r)
	}
}

func TestExecute(t *testing.T) {
	fees, g := toyInputs(t)
	r := memoryRunner(t)
	ctx := context.Background()

	res, err := r.Execute(ctx, fees, g, Options{K: 3, Formats: []string{FormatDOT}})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(res.Paths) == 0 {
		t.Fatal("Execute() found no paths")
	}
	best := res.Paths[0]
	if best.Sequence != "ACG" || best.Score != 0 || best.Alignment != "MMM" {
		t.Errorf("best = %+v, want ACG 0 MMM", best)
	}
	if best.Rank != 1 {
		t.Errorf("best.Rank = %d, want 1", best.Rank)
	}
	if res.LatticeHash == "" {
		t.Error("LatticeHash is empty")
	}
	if res.CacheInfo.AlignHit || res.CacheInfo.SearchHit || res.CacheInfo.RenderHit {
		t.Errorf("first run CacheInfo = %+v, want all misses", res.CacheInfo)
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatDOT]), "digraph L {") {
		t.Errorf("dot artifact = %.40q", res.Artifacts[FormatDOT])
	}
	if res.Stats.NodeCount != 7 || res.Stats.LinkCount == 0 {
		t.Errorf("Stats = %+v", res.Stats)
	}

	again, err := r.Execute(ctx, fees, g, Options{K: 3, Formats: []string{FormatDOT}})
	if err != nil {
		t.Fatalf("Execute() second run error = %v", err)
	}
	if !again.CacheInfo.AlignHit || !again.CacheInfo.SearchHit || !again.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want all hits", again.CacheInfo)
	}
	if again.LatticeHash != res.LatticeHash {
		t.Errorf("LatticeHash = %s, want %s", again.LatticeHash, res.LatticeHash)
	}
	if len(again.Paths) != len(res.Paths) || again.Paths[0].Sequence != "ACG" {
		t.Errorf("cached paths = %+v, want %+v", again.Paths, res.Paths)
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	fees, g := toyInputs(t)
	r := NewRunner(nil, nil, quiet)
	if _, err := r.Execute(context.Background(), fees, g, Options{K: -1}); err == nil {
		t.Error("Execute() with negative k should fail")
	}
}

func TestAlignRefresh(t *testing.T) {
	fees, g := toyInputs(t)
	r := memoryRunner(t)
	ctx := context.Background()

	if _, _, hit, err := r.AlignWithCacheInfo(ctx, fees, g, Options{}); err != nil || hit {
		t.Fatalf("AlignWithCacheInfo() hit = %v, err = %v, want miss", hit, err)
	}
	if _, _, hit, _ := r.AlignWithCacheInfo(ctx, fees, g, Options{}); !hit {
		t.Error("AlignWithCacheInfo() second call should hit")
	}
	if _, _, hit, _ := r.AlignWithCacheInfo(ctx, fees, g, Options{Refresh: true}); hit {
		t.Error("AlignWithCacheInfo(Refresh) should not hit")
	}
	if _, _, hit, _ := r.AlignWithCacheInfo(ctx, fees, g, Options{Finishes: []int{5}}); hit {
		t.Error("AlignWithCacheInfo() with other finishes should not hit")
	}
}

func TestSearchWithoutHash(t *testing.T) {
	fees, g := toyInputs(t)
	r := memoryRunner(t)
	ctx := context.Background()

	doc, err := r.Align(ctx, fees, g, Options{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		_, hit, err := r.SearchWithCacheInfo(ctx, doc, "", Options{K: 1})
		if err != nil {
			t.Fatalf("SearchWithCacheInfo() error = %v", err)
		}
		if hit {
			t.Error("SearchWithCacheInfo() without a hash should never hit")
		}
	}

	hash, err := HashDocument(doc)
	if err != nil {
		t.Fatal(err)
	}
	paths, err := r.Search(ctx, doc, hash, Options{K: 1})
	if err != nil || len(paths) != 1 {
		t.Fatalf("Search() = %v, %v, want one path", paths, err)
	}
}

func TestSearchMinScore(t *testing.T) {
	fees, g := toyInputs(t)
	ctx := context.Background()
	doc, err := Align(ctx, fees, g, Options{})
	if err != nil {
		t.Fatal(err)
	}
	zero := 0.0
	paths, err := Search(ctx, doc, Options{K: 5, MinScore: &zero})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	for _, p := range paths {
		if p.Score < 0 {
			t.Errorf("path %q score %v below min score 0", p.Sequence, p.Score)
		}
	}
}

func TestSearchCanceled(t *testing.T) {
	fees, g := toyInputs(t)
	doc, err := Align(context.Background(), fees, g, Options{})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Search(ctx, doc, Options{}); err == nil {
		t.Error("Search() on a canceled context should fail")
	}
}

func TestRender(t *testing.T) {
	fees, g := toyInputs(t)
	ctx := context.Background()
	doc, err := Align(ctx, fees, g, Options{})
	if err != nil {
		t.Fatal(err)
	}

	artifacts, err := Render(ctx, doc, Options{Formats: []string{FormatJSON, FormatDOT}})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(string(artifacts[FormatJSON]), `"links"`) {
		t.Errorf("json artifact = %.60q", artifacts[FormatJSON])
	}
	if !strings.Contains(string(artifacts[FormatDOT]), "doublecircle") {
		t.Errorf("dot artifact = %.60q", artifacts[FormatDOT])
	}

	if _, err := Render(ctx, doc, Options{Formats: []string{"gif"}}); err == nil {
		t.Error("Render() with an unknown format should fail")
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks
	aligns, searches, hits, misses atomic.Int32
}

func (h *recordingHooks) OnAlignComplete(context.Context, string, int, time.Duration, error) {
	h.aligns.Add(1)
}

func (h *recordingHooks) OnSearchComplete(context.Context, int, int, int64, time.Duration) {
	h.searches.Add(1)
}

func (h *recordingHooks) OnCacheHit(context.Context, string)  { h.hits.Add(1) }
func (h *recordingHooks) OnCacheMiss(context.Context, string) { h.misses.Add(1) }

func TestRunnerHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	fees, g := toyInputs(t)
	r := memoryRunner(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := r.Execute(ctx, fees, g, Options{K: 2}); err != nil {
			t.Fatal(err)
		}
	}

	if got := hooks.aligns.Load(); got != 1 {
		t.Errorf("OnAlignComplete calls = %d, want 1", got)
	}
	if got := hooks.searches.Load(); got != 1 {
		t.Errorf("OnSearchComplete calls = %d, want 1", got)
	}
	if got := hooks.misses.Load(); got != 2 {
		t.Errorf("OnCacheMiss calls = %d, want 2", got)
	}
	if got := hooks.hits.Load(); got != 2 {
		t.Errorf("OnCacheHit calls = %d, want 2", got)
	}
}
