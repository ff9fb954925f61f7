package observability

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordingPipelineHooks struct {
	NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (r *recordingPipelineHooks) OnBuildStart(_ context.Context, taxa, trees int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "build_start")
}

func (r *recordingPipelineHooks) OnScheduleComplete(_ context.Context, goal string, opCount int, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "schedule_complete:"+goal)
}

type recordingCacheHooks struct {
	NoopCacheHooks
	hits, misses int
}

func (r *recordingCacheHooks) OnCacheHit(context.Context, string)  { r.hits++ }
func (r *recordingCacheHooks) OnCacheMiss(context.Context, string) { r.misses++ }

func TestDefaultsAreNoop(t *testing.T) {
	Reset()

	// No panics and no state required.
	ctx := context.Background()
	Pipeline().OnBuildStart(ctx, 4, 2)
	Pipeline().OnScheduleComplete(ctx, "likelihood", 5, time.Millisecond, nil)
	Cache().OnCacheHit(ctx, "schedule")
	HTTP().OnResponse(ctx, "POST", "/v1/schedule", 200, time.Millisecond)
}

func TestSetPipelineHooks(t *testing.T) {
	defer Reset()

	rec := &recordingPipelineHooks{}
	SetPipelineHooks(rec)

	ctx := context.Background()
	Pipeline().OnBuildStart(ctx, 3, 1)
	Pipeline().OnScheduleComplete(ctx, "rootward", 6, time.Millisecond, nil)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.events) != 2 {
		t.Fatalf("got %d events, want 2", len(rec.events))
	}
	if rec.events[0] != "build_start" || rec.events[1] != "schedule_complete:rootward" {
		t.Errorf("events = %v", rec.events)
	}
}

func TestSetCacheHooks(t *testing.T) {
	defer Reset()

	rec := &recordingCacheHooks{}
	SetCacheHooks(rec)

	ctx := context.Background()
	Cache().OnCacheHit(ctx, "graph")
	Cache().OnCacheMiss(ctx, "graph")
	Cache().OnCacheMiss(ctx, "schedule")

	if rec.hits != 1 || rec.misses != 2 {
		t.Errorf("hits=%d misses=%d, want 1 and 2", rec.hits, rec.misses)
	}
}

func TestSetNilKeepsCurrent(t *testing.T) {
	defer Reset()

	rec := &recordingCacheHooks{}
	SetCacheHooks(rec)
	SetCacheHooks(nil)

	Cache().OnCacheHit(context.Background(), "artifact")
	if rec.hits != 1 {
		t.Errorf("nil registration replaced existing hooks")
	}
}

func TestReset(t *testing.T) {
	SetPipelineHooks(&recordingPipelineHooks{})
	SetCacheHooks(&recordingCacheHooks{})
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset did not restore pipeline hooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset did not restore cache hooks")
	}
}
