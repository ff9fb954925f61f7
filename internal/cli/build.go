package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phylograph/treedag/pkg/graph"
	"github.com/phylograph/treedag/pkg/sample"
)

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "build [sample.json]",
		Short: "Build the subsplit graph from a tree sample",
		Long: `Build the subsplit graph from a weighted sample of rooted topologies.

The sample file lists the taxa and the observed topologies with their
multiplicities. The command deduplicates the subsplits across all trees,
connects them into the subsplit graph, and writes the graph document as
JSON.

Use 'schedule' to emit operation programs over the graph, or 'visualize'
to render it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <sample>.graph.json)")

	return cmd
}

// runBuild loads the sample, builds the graph and writes the document.
func (c *CLI) runBuild(ctx context.Context, input, output string) error {
	coll, err := sample.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load sample %s: %w", input, err)
	}

	runner, err := c.newRunner(false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	d, err := runner.Build(ctx, coll)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built graph with %d nodes", d.NodeCount()))

	doc := graph.FromDAG(d, coll.Taxa)

	if output == "" {
		output = artifactPath(input, "", "graph.json", false)
	}
	if err := graph.ExportJSON(doc, output); err != nil {
		return err
	}

	printFile(output)
	printStats(d.NodeCount(), d.RootsplitCount(), d.GeneralizedPCSPCount(), false)
	printNextStep("Schedule programs", fmt.Sprintf("treedag schedule %s", input))
	return nil
}
