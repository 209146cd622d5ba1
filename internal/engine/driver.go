package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/StuffGen/internal/dataset"
	"github.com/piwi3910/StuffGen/internal/model"
)

// Sink receives finished episodes in index order.
type Sink interface {
	Write(ep model.Episode) error
}

// Collector is an in-memory sink.
type Collector struct {
	Episodes []model.Episode
}

// Write appends ep.
func (c *Collector) Write(ep model.Episode) error {
	c.Episodes = append(c.Episodes, ep)
	return nil
}

// Report summarizes a dataset run.
type Report struct {
	RunID      string        `json:"run_id"`
	Mode       model.Mode    `json:"mode"`
	Requested  int           `json:"requested"`
	Written    int           `json:"written"`
	Dropped    int           `json:"dropped"`
	DroppedIDs []int         `json:"dropped_indices,omitempty"`
	Steps      int           `json:"steps"`
	Placed     int           `json:"placed"`
	Exhausted  int           `json:"exhausted"`
	Duration   time.Duration `json:"duration"`
}

// Driver generates n_sequences episodes and hands them to a sink.
type Driver struct {
	settings model.Settings
	sink     Sink
	catalog  []model.ItemTemplate
	logger   *slog.Logger
	tracer   trace.Tracer
	progress func(done, total int)
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the run logger. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithTracer overrides the tracer used for run and episode spans.
func WithTracer(t trace.Tracer) Option {
	return func(d *Driver) {
		if t != nil {
			d.tracer = t
		}
	}
}

// WithCatalog makes item sources draw from a SKU catalog.
func WithCatalog(c []model.ItemTemplate) Option {
	return func(d *Driver) {
		d.catalog = c
	}
}

// WithProgress registers a callback invoked after each episode is written
// or dropped.
func WithProgress(fn func(done, total int)) Option {
	return func(d *Driver) {
		d.progress = fn
	}
}

// NewDriver creates a driver writing to sink.
func NewDriver(s model.Settings, sink Sink, opts ...Option) *Driver {
	d := &Driver{
		settings: s,
		sink:     sink,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:   otel.Tracer("stuffgen/engine"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run generates every episode. Episodes are generated by up to workers
// goroutines but reach the sink strictly in index order, so the output does
// not depend on scheduling. An episode the sink cannot serialize is dropped
// and counted; any other error stops the run. Invalid settings abort before
// episode 0.
func (d *Driver) Run(ctx context.Context) (Report, error) {
	s := d.settings
	report := Report{
		RunID:     model.RunID(s.Mode, s.Seed, s.NSequences),
		Mode:      s.Mode,
		Requested: s.NSequences,
	}
	if err := s.Validate(); err != nil {
		return report, err
	}
	if err := model.ValidateCatalog(d.catalog); err != nil {
		return report, err
	}

	ctx, span := d.tracer.Start(ctx, "Driver.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("run_id", report.RunID),
		attribute.String("mode", string(s.Mode)),
		attribute.Int("n_sequences", s.NSequences),
		attribute.Int("workers", s.Workers),
		attribute.Int64("seed", s.Seed),
	)

	start := time.Now()
	d.logger.Info("generation started",
		"run_id", report.RunID,
		"mode", s.Mode,
		"n_sequences", s.NSequences,
		"seq_len", s.SeqLen,
		"workers", s.Workers,
		"seed", s.Seed,
	)

	var (
		mu      sync.Mutex
		next    int
		failed  bool
		pending = make(map[int]model.Episode)
	)

	// flush writes every contiguous finished episode. Callers hold mu.
	flush := func() error {
		for !failed {
			ep, ok := pending[next]
			if !ok {
				return nil
			}
			delete(pending, next)
			next++

			if err := d.sink.Write(ep); err != nil {
				if !errors.Is(err, dataset.ErrSerialization) {
					failed = true
					return fmt.Errorf("failed to write episode %d: %w", ep.Index, err)
				}
				report.Dropped++
				report.DroppedIDs = append(report.DroppedIDs, ep.Index)
				d.logger.Warn("episode dropped", "index", ep.Index, "id", ep.ID, "error", err)
			} else {
				report.Written++
				report.Steps += len(ep.Steps)
				report.Placed += ep.PlacedCount()
				if ep.Termination == model.TerminationExhausted {
					report.Exhausted++
				}
			}
			if d.progress != nil {
				d.progress(next, s.NSequences)
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Workers)
	for i := 0; i < s.NSequences; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			ep, err := d.episode(gctx, i)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			pending[i] = ep
			return flush()
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	report.Duration = time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.logger.Error("generation failed", "run_id", report.RunID, "written", report.Written, "error", err)
		return report, err
	}

	span.SetAttributes(
		attribute.Int("written", report.Written),
		attribute.Int("dropped", report.Dropped),
	)
	d.logger.Info("generation finished",
		"run_id", report.RunID,
		"written", report.Written,
		"dropped", report.Dropped,
		"steps", report.Steps,
		"exhausted", report.Exhausted,
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, nil
}

func (d *Driver) episode(ctx context.Context, index int) (model.Episode, error) {
	ctx, span := d.tracer.Start(ctx, "Driver.Episode")
	defer span.End()

	ep, err := Generate(ctx, d.settings, index, d.catalog)
	if err != nil {
		span.RecordError(err)
		return model.Episode{}, fmt.Errorf("episode %d: %w", index, err)
	}
	span.SetAttributes(
		attribute.Int("index", index),
		attribute.Int("steps", len(ep.Steps)),
		attribute.Float64("fill_ratio", ep.FillRatio()),
		attribute.String("termination", string(ep.Termination)),
	)
	d.logger.Debug("episode generated", "index", index, "steps", len(ep.Steps), "fill_ratio", ep.FillRatio())
	return ep, nil
}
