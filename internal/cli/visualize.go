package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phylograph/treedag/pkg/pipeline"
	"github.com/phylograph/treedag/pkg/sample"
)

// visualizeCommand creates the visualize command.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		refresh    bool
		detailed   bool
	)

	cmd := &cobra.Command{
		Use:   "visualize [sample.json]",
		Short: "Render the subsplit graph of a tree sample",
		Long: `Render the subsplit graph of a tree sample.

The graph is drawn with leaf subsplits as filled boxes and root-reachable
subsplits above them; rotated edges are dashed. Supported formats are svg
and dot for drawings, plus json and bson for the raw graph document.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), args[0], formats, output, noCache, refresh, detailed)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached artifacts")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with ids and full bitsets")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json, bson (comma-separated)")

	return cmd
}

// runVisualize builds the graph document and renders it.
func (c *CLI) runVisualize(ctx context.Context, input string, formats []string, output string, noCache, refresh, detailed bool) error {
	coll, err := sample.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load sample %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipeline.Options{
		Goals:    []string{pipeline.GoalLikelihood},
		Formats:  formats,
		Detailed: detailed,
		Refresh:  refresh,
		Logger:   loggerFromContext(ctx),
	}

	spinner := newSpinnerWithContext(ctx, "Rendering graph...")
	spinner.Start()

	result, err := runner.Execute(ctx, coll, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	if err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   formats,
		input:     input,
		output:    output,
		cacheHit:  result.CacheInfo.RenderHit,
	}); err != nil {
		return err
	}

	printStats(result.Stats.NodeCount, result.Stats.RootsplitCount, result.Stats.ParameterCount, result.CacheInfo.RenderHit)
	return nil
}
