// Package cache provides the caching layer for schedule programs, DAG
// documents and rendered artifacts.
//
// Backends implement [Cache]: a file cache for CLI runs, a Redis cache for
// the server, and a null cache for disabling caching. Keys are produced by
// a [Keyer] so every caller agrees on the key layout, and [ScopedKeyer]
// prefixes keys for namespace isolation.
package cache

import (
	"context"
	"time"
)

// Default TTLs per artifact class. Graphs and schedules are pure functions
// of the sample, so long TTLs are safe; rendered artifacts are cheap to
// rebuild and expire sooner.
const (
	TTLGraph    = 30 * 24 * time.Hour
	TTLSchedule = 30 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the backend interface. Get reports a miss with a false second
// return; an error means the backend itself failed, not that the key was
// absent.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer produces cache keys for the three cacheable artifact classes.
// sampleHash is the content hash of the canonical sample encoding, so two
// byte-identical samples share cache entries regardless of origin.
type Keyer interface {
	// ScheduleKey keys an operation program by sample and scheduling goal.
	ScheduleKey(sampleHash, goal string) string

	// GraphKey keys a DAG document by sample.
	GraphKey(sampleHash string) string

	// ArtifactKey keys a rendered artifact by document hash and render
	// options.
	ArtifactKey(docHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that change artifact bytes and
// must therefore be part of the key.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed"`
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ScheduleKey generates a key for a cached operation program.
func (k *DefaultKeyer) ScheduleKey(sampleHash, goal string) string {
	return hashKey("schedule", sampleHash, goal)
}

// GraphKey generates a key for a cached DAG document.
func (k *DefaultKeyer) GraphKey(sampleHash string) string {
	return hashKey("graph", sampleHash)
}

// ArtifactKey generates a key for a cached rendered artifact.
func (k *DefaultKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", docHash, opts)
}

var _ Keyer = (*DefaultKeyer)(nil)
