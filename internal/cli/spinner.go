package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/pathlattice/pkg/hmm"
	pathio "github.com/matzehuels/pathlattice/pkg/io"
	"github.com/matzehuels/pathlattice/pkg/seqgraph"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerTick = 80 * time.Millisecond

// spinner animates one pipeline stage on w, with the time spent so far.
// It stops when stop is called or the parent context is canceled.
type spinner struct {
	w      io.Writer
	label  string
	parent context.Context
	cancel context.CancelFunc
	start  time.Time

	once    sync.Once
	stopped chan struct{}

	mu    sync.Mutex
	width int // of the last drawn line
}

// startSpinner draws label on w until stopped.
func startSpinner(ctx context.Context, w io.Writer, label string) *spinner {
	inner, cancel := context.WithCancel(ctx)
	s := &spinner{
		w:       w,
		label:   label,
		parent:  ctx,
		cancel:  cancel,
		start:   time.Now(),
		stopped: make(chan struct{}),
	}
	go s.run(inner)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerTick)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			s.clear()
			return
		case <-ticker.C:
			s.draw(spinnerFrames[i%len(spinnerFrames)])
		}
	}
}

func (s *spinner) draw(frame string) {
	elapsed := time.Since(s.start).Round(100 * time.Millisecond).String()
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s %s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.label), StyleDim.Render(elapsed))
	s.width = len(s.label) + len(elapsed) + 4
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
		s.width = 0
	}
}

// stop ends the animation and returns the time the stage took. Calling it
// again returns the elapsed time without drawing anything.
func (s *spinner) stop() time.Duration {
	s.once.Do(func() {
		s.cancel()
		<-s.stopped
	})
	return time.Since(s.start)
}

// fail stops the spinner, reports the failed stage and returns err.
func (s *spinner) fail(stage string, err error) error {
	s.stop()
	if s.canceled() {
		printWarning("%s interrupted", stage)
	} else {
		printError("%s failed", stage)
	}
	return err
}

// canceled reports whether the parent context ended the spinner.
func (s *spinner) canceled() bool {
	return s.parent.Err() != nil
}

// alignLabel describes an alignment of fees against g.
func alignLabel(fees *hmm.Fees, name string, g *seqgraph.Graph) string {
	return fmt.Sprintf("Aligning %s (%d columns) against %d nodes...", profileLabel(fees, name), fees.M, g.Len())
}

// renderLabel describes rendering doc.
func renderLabel(doc *pathio.Document) string {
	return fmt.Sprintf("Rendering %s...", countOf(doc.Paths.Len(), "link"))
}
