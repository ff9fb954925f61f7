// Package pipeline provides the core build → schedule → render pipeline.
//
// This package implements the complete pipeline that can be used by CLI and
// API components. By centralizing this logic, we ensure consistent behavior
// across all entry points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Construct the subsplit graph from a weighted topology sample
//  2. Schedule: Emit operation programs for the requested computation goals
//  3. Render: Generate graph artifacts in various formats (JSON, BSON, DOT, SVG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Goals:   []string{"likelihood"},
//	    Formats: []string{"json"},
//	}
//	result, err := runner.Execute(ctx, coll, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	program := result.Programs["likelihood"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/phylograph/treedag/pkg/cache"
	"github.com/phylograph/treedag/pkg/dag"
	"github.com/phylograph/treedag/pkg/errors"
	"github.com/phylograph/treedag/pkg/graph"
	"github.com/phylograph/treedag/pkg/ops"
)

// Goal constants for scheduling targets.
const (
	GoalLikelihood    = "likelihood"
	GoalMarginal      = "marginal"
	GoalRootward      = "rootward"
	GoalLeafward      = "leafward"
	GoalBranchLengths = "branch-lengths"
	GoalSBNParameters = "sbn-parameters"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatBSON = "bson"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidGoals is the set of supported scheduling goals.
var ValidGoals = map[string]bool{
	GoalLikelihood:    true,
	GoalMarginal:      true,
	GoalRootward:      true,
	GoalLeafward:      true,
	GoalBranchLengths: true,
	GoalSBNParameters: true,
}

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatBSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// SupportedFormats lists the output formats in display order.
var SupportedFormats = []string{FormatJSON, FormatBSON, FormatDOT, FormatSVG}

// SupportedGoals lists the scheduling goals in display order.
var SupportedGoals = []string{
	GoalLikelihood, GoalMarginal, GoalRootward, GoalLeafward,
	GoalBranchLengths, GoalSBNParameters,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// The struct supports JSON serialization for API requests.
type Options struct {
	// Schedule options
	Goals []string `json:"goals,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Refresh bypasses cached results and recomputes everything.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this pipeline run in logs.
	RunID string

	// DAG is the constructed subsplit graph.
	DAG *dag.DAG

	// Document is the serializable form of the graph.
	Document graph.Document

	// SampleHash is the content hash of the canonical sample encoding.
	SampleHash string

	// DocumentHash is the content hash of the serialized document.
	DocumentHash string

	// Programs contains scheduled operation programs keyed by goal.
	Programs map[string]ops.Program

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount      int
	RootsplitCount int
	ParameterCount int
	BuildTime      time.Duration
	ScheduleTime   time.Duration
	RenderTime     time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ScheduleHit bool // Whether every requested program came from cache
	RenderHit   bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateGoal checks that a scheduling goal is valid.
func ValidateGoal(goal string) error {
	if !ValidGoals[goal] {
		return errors.New(errors.ErrCodeInvalidGoal,
			"invalid goal: %q (must be one of: likelihood, marginal, rootward, leafward, branch-lengths, sbn-parameters)", goal)
	}
	return nil
}

// ValidateGoals checks that all goals are valid.
func ValidateGoals(goals []string) error {
	for _, g := range goals {
		if err := ValidateGoal(g); err != nil {
			return err
		}
	}
	return nil
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	return errors.ValidateOutputFormat(format, SupportedFormats)
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks option fields and applies defaults for the
// full pipeline. The method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetScheduleDefaults()
	o.SetRenderDefaults()
	if err := ValidateGoals(o.Goals); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetScheduleDefaults sets default values for scheduling.
func (o *Options) SetScheduleDefaults() {
	if len(o.Goals) == 0 {
		o.Goals = []string{GoalLikelihood}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForSchedule validates and sets defaults for scheduling.
func (o *Options) ValidateForSchedule() error {
	o.SetScheduleDefaults()
	return ValidateGoals(o.Goals)
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Detailed: o.Detailed,
	}
}
