package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pathlattice/pkg/pipeline"
)

// renderCommand creates the render command for drawing a lattice file.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [lattice.json]",
		Short: "Draw a lattice as DOT or SVG",
		Long: `Draw a lattice written by 'align'.

Every link reachable from the sink becomes a node; back-edges point from the
predecessor to the link they lead into and are labelled with the residue they
read. Use --detailed to add scores, costs and emission events.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show scores, costs and emissions")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runRender loads the lattice and renders it.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	doc, hash, err := loadLattice(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = loggerFromContext(ctx)
	opts.SetRenderDefaults()

	prog := newProgress(opts.Logger, "render")
	spin := startSpinner(ctx, os.Stderr, renderLabel(doc))

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, doc, hash, opts)
	if err != nil {
		return spin.fail("Rendering", fmt.Errorf("render: %w", err))
	}
	spin.stop()
	prog.done("formats", strings.Join(opts.Formats, ","), "cached", cacheHit)

	printSuccess("Rendered %s", input)
	printStats(cacheHit, countOf(len(doc.Paths.Collect()), "link"), countOf(doc.Paths.EdgeCount(), "back-edge"))
	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
	})
}

// artifactWriteParams describes rendered outputs and where they go.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
}

// writeArtifacts writes each rendered format to disk.
// A single format goes to output verbatim when set; otherwise every format is
// written to <base>.<format>, see basePath.
func writeArtifacts(p artifactWriteParams) error {
	base := basePath(p.output, p.input)
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return fmt.Errorf("missing %s artifact", format)
		}
		path := base + "." + format
		if len(p.formats) == 1 && p.output != "" {
			path = p.output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}
