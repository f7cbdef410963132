package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pathlattice/pkg/hmm"
	pathio "github.com/matzehuels/pathlattice/pkg/io"
	"github.com/matzehuels/pathlattice/pkg/pipeline"
	"github.com/matzehuels/pathlattice/pkg/seqgraph"
)

// alignFlags holds the command-line flags for the align command.
type alignFlags struct {
	seq        string // literal sequence used instead of a graph file
	output     string // lattice output path
	formatsStr string // extra artifacts to render next to the lattice
	minScore   float64
	jsonOut    bool // print the paths as JSON instead of a table
	noCache    bool
}

// alignCommand creates the align command for building a lattice.
func (c *CLI) alignCommand() *cobra.Command {
	var flags alignFlags
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "align [profile.toml] [graph.json]",
		Short: "Align a profile against a sequence graph",
		Long: `Align a profile against a sequence graph and write the resulting lattice.

The profile is a TOML file with a consensus and its costs. The graph is a JSON
file of lettered nodes and edges; use --seq to align against a linear sequence
instead. The lattice is written to <graph>.lattice.json (or lattice.json with
--seq) and the best paths are printed.

Results are cached locally for faster subsequent runs.`,
		Example: `  pathlattice align zinc.toml reads.json -k 5
  pathlattice align zinc.toml --seq CPECGKSFSQ --json
  pathlattice align zinc.toml reads.json -f dot,svg --detailed`,
		Args: func(cmd *cobra.Command, args []string) error {
			if flags.seq != "" {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(flags.formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if cmd.Flags().Changed("min-score") {
				opts.MinScore = &flags.minScore
			}
			return c.runAlign(cmd.Context(), args, opts, flags)
		},
	}

	cmd.Flags().StringVar(&flags.seq, "seq", "", "align against this sequence instead of a graph file")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "lattice output file")
	cmd.Flags().StringVarP(&flags.formatsStr, "format", "f", "", "also render: dot, svg, json (comma-separated)")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "print paths as JSON")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")

	cmd.Flags().IntSliceVar(&opts.Finishes, "finish", nil, "node IDs a path may end in (default: any)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent component sweeps (default: GOMAXPROCS)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "rebuild the lattice even if cached")
	cmd.Flags().IntVarP(&opts.K, "k", "k", pipeline.DefaultK, "number of paths to extract")
	cmd.Flags().Float64Var(&flags.minScore, "min-score", 0, "stop at the first path scoring below this")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show scores and emissions in rendered lattices")

	return cmd
}

// runAlign loads the inputs, runs the pipeline and writes its outputs.
func (c *CLI) runAlign(ctx context.Context, args []string, opts pipeline.Options, flags alignFlags) error {
	logger := loggerFromContext(ctx)

	fees, err := hmm.Load(args[0])
	if err != nil {
		return err
	}
	g, input, err := loadGraph(args, flags.seq)
	if err != nil {
		return err
	}
	logger.Debug("loaded inputs", "profile", fees.Name, "columns", fees.M, "nodes", g.Len(), "edges", g.EdgeCount())

	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = logger
	prog := newProgress(logger, "align")
	spin := startSpinner(ctx, os.Stderr, alignLabel(fees, args[0], g))

	result, err := runner.Execute(ctx, fees, g, opts)
	if err != nil {
		return spin.fail("Alignment", err)
	}
	spin.stop()
	prog.done("links", result.Stats.LinkCount, "paths", len(result.Paths))

	output := flags.output
	switch {
	case output != "":
	case flags.seq != "":
		output = input
	default:
		output = latticePath(input)
	}
	if err := pathio.ExportJSON(*result.Document, output); err != nil {
		return err
	}

	if flags.jsonOut {
		return pathio.WriteResults(result.Paths, os.Stdout)
	}

	printSuccess("Aligned %s", profileLabel(fees, args[0]))
	printStats(result.CacheInfo.AlignHit,
		countOf(result.Stats.NodeCount, "node"),
		countOf(result.Stats.EdgeCount, "edge"),
		countOf(result.Stats.LinkCount, "link"))
	printFile(output)
	if len(result.Artifacts) > 0 {
		if err := writeArtifacts(artifactWriteParams{
			artifacts: result.Artifacts,
			formats:   opts.Formats,
			input:     output,
		}); err != nil {
			return err
		}
	}

	printNewline()
	printPaths(result.Paths)
	printNewline()
	printNextStep("Browse paths", fmt.Sprintf("%s topk %s --interactive", appName, output))
	return nil
}

// loadGraph returns the graph to align against and the input name used to
// derive output paths.
func loadGraph(args []string, seq string) (*seqgraph.Graph, string, error) {
	if seq != "" {
		g, err := seqgraph.FromSequence(seq)
		if err != nil {
			return nil, "", err
		}
		return g, "lattice.json", nil
	}
	g, err := seqgraph.Load(args[1])
	if err != nil {
		return nil, "", err
	}
	return g, args[1], nil
}

func profileLabel(fees *hmm.Fees, path string) string {
	if fees.Name != "" {
		return fees.Name
	}
	return path
}
