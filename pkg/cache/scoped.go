package cache

// ScopedKeyer wraps a Keyer with a prefix so separate deployments or users
// of a shared backend get disjoint key spaces.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every generated
// key. A nil inner falls back to the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ScheduleKey generates a prefixed key for a cached operation program.
func (k *ScopedKeyer) ScheduleKey(sampleHash, goal string) string {
	return k.prefix + k.inner.ScheduleKey(sampleHash, goal)
}

// GraphKey generates a prefixed key for a cached DAG document.
func (k *ScopedKeyer) GraphKey(sampleHash string) string {
	return k.prefix + k.inner.GraphKey(sampleHash)
}

// ArtifactKey generates a prefixed key for a cached rendered artifact.
func (k *ScopedKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(docHash, opts)
}
