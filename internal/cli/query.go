package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pathlattice/pkg/errors"
	pathio "github.com/matzehuels/pathlattice/pkg/io"
	"github.com/matzehuels/pathlattice/pkg/pipeline"
)

// topkCommand creates the topk command for querying a lattice file.
func (c *CLI) topkCommand() *cobra.Command {
	var (
		minScore    float64
		jsonOut     bool
		interactive bool
		noCache     bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "topk [lattice.json]",
		Short: "Extract the best distinct paths from a lattice",
		Long: `Extract the K best distinct paths from a lattice written by 'align'.

Paths are printed best first with their score and their alignment against the
profile stored in the lattice. Use --interactive to browse them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOut && interactive {
				return errors.New(errors.ErrCodeInvalidInput, "--json and --interactive are mutually exclusive")
			}
			if cmd.Flags().Changed("min-score") {
				opts.MinScore = &minScore
			}
			return c.runTopK(cmd.Context(), args[0], opts, jsonOut, interactive, noCache)
		},
	}

	cmd.Flags().IntVarP(&opts.K, "k", "k", pipeline.DefaultK, "number of paths to extract")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "stop at the first path scoring below this")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print paths as JSON")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse paths interactively")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runTopK(ctx context.Context, input string, opts pipeline.Options, jsonOut, interactive, noCache bool) error {
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
	prog := newProgress(opts.Logger, "search")
	paths, cacheHit, err := runner.SearchWithCacheInfo(ctx, doc, hash, opts)
	if err != nil {
		return err
	}
	prog.done("k", opts.K, "found", len(paths), "cached", cacheHit)

	switch {
	case jsonOut:
		return pathio.WriteResults(paths, os.Stdout)
	case interactive:
		if len(paths) == 0 {
			printWarning("No paths found")
			return nil
		}
		_, err := tea.NewProgram(NewPathListModel(paths), tea.WithContext(ctx)).Run()
		return err
	}

	printSuccess("Found %d of %d requested paths", len(paths), opts.K)
	printStats(cacheHit, countOf(len(doc.Paths.Collect()), "link"), countOf(doc.Paths.EdgeCount(), "back-edge"))
	printNewline()
	printPaths(paths)
	return nil
}

// hasCommand creates the has command for sequence membership queries.
func (c *CLI) hasCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "has [lattice.json] [sequence]",
		Short: "Count lattice positions that can spell a sequence",
		Long: `Count the lattice positions from which the sequence can be read backwards
along the lattice, last residue first. A count of zero means no represented
path contains the sequence.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq := args[1]
			if err := errors.ValidateResidues(seq, errors.MaxQueryLength); err != nil {
				return err
			}
			doc, _, err := loadLattice(args[0])
			if err != nil {
				return err
			}
			n := doc.Paths.HasSequence(seq, doc.Graph)
			loggerFromContext(cmd.Context()).Debug("membership query", "sequence", seq, "count", n)

			if n == 0 {
				printWarning("%s does not occur in the lattice", seq)
				return nil
			}
			printSuccess("%s occurs in the lattice", seq)
			printKeyValue("positions", fmt.Sprintf("%d", n))
			return nil
		},
	}
}

// loadLattice reads a lattice file and computes its content hash.
func loadLattice(path string) (*pathio.Document, string, error) {
	doc, err := pathio.ImportJSON(path)
	if err != nil {
		return nil, "", err
	}
	hash, err := pipeline.HashDocument(doc)
	if err != nil {
		return nil, "", err
	}
	return doc, hash, nil
}
