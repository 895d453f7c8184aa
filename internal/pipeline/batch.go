package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/georesolve/internal/model"
)

// Sink receives each finished outcome, typically to persist it. Errors are
// logged and do not stop the batch.
type Sink func(ctx context.Context, o *Outcome) error

// Batch resolves many objects concurrently, one goroutine per object.
type Batch struct {
	Resolver    *Resolver
	Concurrency int
	Sink        Sink
}

// Run resolves refs and returns outcomes in input order. Objects that fail
// hard carry Err; a canceled ctx stops objects not yet started.
func (b *Batch) Run(ctx context.Context, refs []model.ObjectRef) ([]Outcome, Stats) {
	start := time.Now()
	out := make([]Outcome, len(refs))

	limit := b.Concurrency
	if limit <= 0 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, ref := range refs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				out[i] = Outcome{Object: ref, Err: err}
				return nil
			}
			o, err := b.Resolver.Resolve(gctx, ref)
			if err != nil {
				zap.L().Error("pipeline: resolve failed", zap.String("object", ref.ID), zap.Error(err))
				out[i] = Outcome{Object: ref, Err: err}
				return nil
			}
			out[i] = *o
			if b.Sink != nil {
				if err := b.Sink(gctx, o); err != nil {
					zap.L().Warn("pipeline: sink failed", zap.String("object", ref.ID), zap.Error(err))
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	var stats Stats
	for i := range out {
		stats.Add(&out[i])
	}
	stats.Duration = time.Since(start)
	stats.Log()
	return out, stats
}

// Stats totals a batch by confidence and source.
type Stats struct {
	Total        int                      `json:"total"`
	Failed       int                      `json:"failed"`
	Suspended    int                      `json:"suspended"`
	Exhausted    int                      `json:"exhausted"`
	ByConfidence map[model.Confidence]int `json:"by_confidence"`
	BySource     map[string]int           `json:"by_source"`
	Duration     time.Duration            `json:"duration_ns"`
}

// Add counts one outcome.
func (s *Stats) Add(o *Outcome) {
	if s.ByConfidence == nil {
		s.ByConfidence = make(map[model.Confidence]int)
		s.BySource = make(map[string]int)
	}
	s.Total++
	switch {
	case o.Err != nil:
		s.Failed++
	case o.Suspended:
		s.Suspended++
	case o.Location != nil:
		s.ByConfidence[o.Location.Confidence]++
		s.BySource[o.Location.Source]++
		if o.Location.Exhausted {
			s.Exhausted++
		}
	}
}

// Resolved counts outcomes with a real observation.
func (s *Stats) Resolved() int {
	return s.ByConfidence[model.ConfidenceHigh] + s.ByConfidence[model.ConfidenceMedium]
}

// Log writes the totals at Info.
func (s *Stats) Log() {
	zap.L().Info("pipeline: batch complete",
		zap.Int("total", s.Total),
		zap.Int("high", s.ByConfidence[model.ConfidenceHigh]),
		zap.Int("medium", s.ByConfidence[model.ConfidenceMedium]),
		zap.Int("low", s.ByConfidence[model.ConfidenceLow]),
		zap.Int("suspended", s.Suspended),
		zap.Int("failed", s.Failed),
		zap.Duration("duration", s.Duration),
	)
}

// String renders the totals for terminal output.
func (s *Stats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "objects:    %d\n", s.Total)
	for _, c := range []model.Confidence{model.ConfidenceHigh, model.ConfidenceMedium, model.ConfidenceLow} {
		fmt.Fprintf(&b, "  %-8s  %d\n", c, s.ByConfidence[c])
	}
	if s.Suspended > 0 {
		fmt.Fprintf(&b, "  %-8s  %d\n", "waiting", s.Suspended)
	}
	if s.Failed > 0 {
		fmt.Fprintf(&b, "  %-8s  %d\n", "failed", s.Failed)
	}

	sources := make([]string, 0, len(s.BySource))
	for src := range s.BySource {
		sources = append(sources, src)
	}
	sort.Strings(sources)
	b.WriteString("by source:\n")
	for _, src := range sources {
		fmt.Fprintf(&b, "  %-24s  %d\n", src, s.BySource[src])
	}
	return b.String()
}
