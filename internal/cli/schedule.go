package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phylograph/treedag/pkg/pipeline"
	"github.com/phylograph/treedag/pkg/sample"
)

// scheduleCommand creates the schedule command.
func (c *CLI) scheduleCommand() *cobra.Command {
	var (
		goalsStr    string
		output      string
		noCache     bool
		refresh     bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "schedule [sample.json]",
		Short: "Emit operation programs for computation goals",
		Long: `Emit operation programs over the subsplit graph of a tree sample.

Each goal produces a flat program of engine operations: likelihood and
marginal computation, rootward and leafward traversal, or the optimization
schedules for branch lengths and SBN parameters. Programs are written as
JSON, one file per goal.

Programs are cached by sample content, so repeated runs on the same sample
are served from cache.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goals := parseGoals(goalsStr)
			if interactive {
				picked, err := pickGoals()
				if err != nil {
					return err
				}
				if len(picked) == 0 {
					printInfo("No goals selected")
					return nil
				}
				goals = picked
			}
			if err := pipeline.ValidateGoals(goals); err != nil {
				return err
			}
			return c.runSchedule(cmd.Context(), args[0], goals, output, noCache, refresh)
		},
	}

	cmd.Flags().StringVarP(&goalsStr, "goals", "g", "", "goal(s): likelihood (default), marginal, rootward, leafward, branch-lengths, sbn-parameters (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: <sample>.<goal>.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached programs")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick goals interactively")

	return cmd
}

// runSchedule builds the graph and writes one program file per goal.
func (c *CLI) runSchedule(ctx context.Context, input string, goals []string, output string, noCache, refresh bool) error {
	coll, err := sample.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load sample %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	d, err := runner.Build(ctx, coll)
	if err != nil {
		return err
	}

	sampleHash, err := pipeline.HashSample(coll)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Scheduling programs...")
	spinner.Start()

	opts := pipeline.Options{Goals: goals, Refresh: refresh, Logger: loggerFromContext(ctx)}
	programs, cached, err := runner.ScheduleWithCacheInfo(ctx, d, sampleHash, opts)
	if err != nil {
		spinner.StopWithError("Scheduling failed")
		return err
	}
	spinner.Stop()

	total := 0
	for _, goal := range goals {
		program := programs[goal]
		total += len(program)

		data, err := json.MarshalIndent(program, "", "  ")
		if err != nil {
			return fmt.Errorf("serialize %s program: %w", goal, err)
		}

		path := output
		if path == "" || len(goals) > 1 {
			path = artifactPath(input, output, goal+".json", len(goals) > 1)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	status := "scheduled"
	if cached {
		status = "scheduled (cached)"
	}
	printSuccess("%d operation(s) across %d goal(s) %s", total, len(goals), status)
	printStats(d.NodeCount(), d.RootsplitCount(), d.GeneralizedPCSPCount(), cached)
	return nil
}
