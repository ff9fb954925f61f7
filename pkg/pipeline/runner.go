package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/phylograph/treedag/pkg/cache"
	"github.com/phylograph/treedag/pkg/dag"
	"github.com/phylograph/treedag/pkg/errors"
	"github.com/phylograph/treedag/pkg/graph"
	"github.com/phylograph/treedag/pkg/observability"
	"github.com/phylograph/treedag/pkg/ops"
	"github.com/phylograph/treedag/pkg/sample"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete build → schedule → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, c *sample.Collection, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	sampleHash, err := hashSample(c)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:      uuid.NewString(),
		SampleHash: sampleHash,
		Programs:   make(map[string]ops.Program),
		Artifacts:  make(map[string][]byte),
	}
	logger := r.Logger.With("run_id", result.RunID)

	// Stage 1: Build
	buildStart := time.Now()
	observability.Pipeline().OnBuildStart(ctx, c.TaxonCount(), len(c.Trees))
	d, err := dag.Build(c)
	observability.Pipeline().OnBuildComplete(ctx, nodeCountOf(d), time.Since(buildStart), err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSample, err, "build graph")
	}
	result.DAG = d
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = d.NodeCount()
	result.Stats.RootsplitCount = d.RootsplitCount()
	result.Stats.ParameterCount = d.GeneralizedPCSPCount()

	result.Document = graph.FromDAG(d, c.Taxa)
	docData, err := MarshalDocument(result.Document)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize document")
	}
	result.DocumentHash = cache.Hash(docData)
	r.cacheDocument(ctx, sampleHash, docData, opts)

	logger.Info("built subsplit graph",
		"nodes", d.NodeCount(),
		"rootsplits", d.RootsplitCount(),
		"parameters", d.GeneralizedPCSPCount(),
		"duration", result.Stats.BuildTime)

	// Stage 2: Schedule
	scheduleStart := time.Now()
	programs, scheduleHit, err := r.ScheduleWithCacheInfo(ctx, d, sampleHash, opts)
	if err != nil {
		return nil, err
	}
	result.Programs = programs
	result.Stats.ScheduleTime = time.Since(scheduleStart)
	result.CacheInfo.ScheduleHit = scheduleHit

	logger.Info("scheduled programs",
		"goals", opts.Goals,
		"duration", result.Stats.ScheduleTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result.Document, result.DocumentHash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Build constructs the graph for a sample without scheduling or rendering.
func (r *Runner) Build(ctx context.Context, c *sample.Collection) (*dag.DAG, error) {
	buildStart := time.Now()
	observability.Pipeline().OnBuildStart(ctx, c.TaxonCount(), len(c.Trees))
	d, err := dag.Build(c)
	observability.Pipeline().OnBuildComplete(ctx, nodeCountOf(d), time.Since(buildStart), err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSample, err, "build graph")
	}
	return d, nil
}

// ScheduleWithCacheInfo emits programs for the requested goals with caching
// and reports whether every program came from cache.
func (r *Runner) ScheduleWithCacheInfo(ctx context.Context, d *dag.DAG, sampleHash string, opts Options) (map[string]ops.Program, bool, error) {
	if err := opts.ValidateForSchedule(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	programs := make(map[string]ops.Program, len(opts.Goals))
	allCached := true

	for _, goal := range opts.Goals {
		cacheKey := r.Keyer.ScheduleKey(sampleHash, goal)

		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				var p ops.Program
				if err := json.Unmarshal(data, &p); err == nil {
					observability.Cache().OnCacheHit(ctx, "schedule")
					programs[goal] = p
					continue
				}
			}
		}
		observability.Cache().OnCacheMiss(ctx, "schedule")
		allCached = false

		scheduleStart := time.Now()
		observability.Pipeline().OnScheduleStart(ctx, goal, d.NodeCount())
		p, err := Schedule(d, goal)
		observability.Pipeline().OnScheduleComplete(ctx, goal, len(p), time.Since(scheduleStart), err)
		if err != nil {
			return nil, false, err
		}
		programs[goal] = p

		if data, err := json.Marshal(p); err == nil {
			if r.Cache.Set(ctx, cacheKey, data, cache.TTLSchedule) == nil {
				observability.Cache().OnCacheSet(ctx, "schedule", len(data))
			}
		}
	}

	return programs, allCached, nil
}

// Schedule is a convenience wrapper that discards the cache hit info.
func (r *Runner) Schedule(ctx context.Context, d *dag.DAG, sampleHash string, opts Options) (map[string]ops.Program, error) {
	programs, _, err := r.ScheduleWithCacheInfo(ctx, d, sampleHash, opts)
	return programs, err
}

// RenderWithCacheInfo generates artifacts with caching and reports whether
// all of them came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, doc graph.Document, docHash string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Try to get all formats from cache first.
	artifacts := make(map[string][]byte)
	allCached := !opts.Refresh

	if allCached {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				allCached = false
				break
			}
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	rendered, err := Render(ctx, doc, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format))
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact) == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, doc graph.Document, docHash string, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, doc, docHash, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// cacheDocument stores the serialized document under the sample's graph key
// so later runs on the same sample can serve the document without a rebuild.
func (r *Runner) cacheDocument(ctx context.Context, sampleHash string, docData []byte, opts Options) {
	if opts.Refresh {
		return
	}
	key := r.Keyer.GraphKey(sampleHash)
	if r.Cache.Set(ctx, key, docData, cache.TTLGraph) == nil {
		observability.Cache().OnCacheSet(ctx, "graph", len(docData))
	}
}

// CachedDocument fetches a previously stored document for a sample hash.
func (r *Runner) CachedDocument(ctx context.Context, sampleHash string) (graph.Document, bool, error) {
	key := r.Keyer.GraphKey(sampleHash)
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "graph")
		return graph.Document{}, false, err
	}
	observability.Cache().OnCacheHit(ctx, "graph")
	doc, err := graph.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return graph.Document{}, false, nil
	}
	return doc, true, nil
}

// hashSample computes the content hash of the canonical sample encoding.
func hashSample(c *sample.Collection) (string, error) {
	var buf bytes.Buffer
	if err := sample.WriteJSON(c, &buf); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidSample, err, "hash sample")
	}
	return cache.Hash(buf.Bytes()), nil
}

// HashSample computes the cache hash for a sample collection.
func HashSample(c *sample.Collection) (string, error) {
	return hashSample(c)
}

func nodeCountOf(d *dag.DAG) int {
	if d == nil {
		return 0
	}
	return d.NodeCount()
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
