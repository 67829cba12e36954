package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/c360/bipstream/config"
	"github.com/c360/bipstream/errors"
	"github.com/c360/bipstream/metric"
	"github.com/c360/bipstream/pkg/bip"
	"github.com/c360/bipstream/pkg/workload"
)

// driver runs round trips of generated data through a bip buffer
type driver struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *metric.MetricsRegistry
}

func newDriver(cfg *config.Config, logger *slog.Logger, registry *metric.MetricsRegistry) *driver {
	return &driver{cfg: cfg, logger: logger, registry: registry}
}

// runReport is the outcome of a single round trip
type runReport struct {
	RunID    string
	Seed     int64
	Produced workload.Result
	Consumed workload.Result
	Buffer   bip.StatsSummary
	Duration time.Duration
}

// transfer is what one buffer mode produced before verification
type transfer struct {
	got      []byte
	produced workload.Result
	consumed workload.Result
	stats    *bip.Statistics
}

// Run executes the configured number of round trips. A fatal failure (a
// mismatch, a short transfer or a corrupt layout) stops the remaining runs;
// other failures are counted and reported once every run was attempted. The
// returned error keeps the class of the failure.
func (d *driver) Run(ctx context.Context) error {
	runs := d.cfg.Workload.Runs
	failed := 0
	var lastErr error

	for i := 0; i < runs; i++ {
		_, err := d.runOnce(ctx, i)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return errors.WrapTransient(ctx.Err(), "driver", "Run", "round trip")
		case errors.IsFatal(err):
			return errors.Wrap(err, "driver", "Run", fmt.Sprintf("run %d of %d", i+1, runs))
		default:
			failed++
			lastErr = err
		}
	}

	if failed > 0 {
		return errors.Wrap(fmt.Errorf("%d of %d runs failed: %w", failed, runs, lastErr),
			"driver", "Run", "round trip")
	}
	return nil
}

func (d *driver) runOnce(ctx context.Context, index int) (*runReport, error) {
	report := &runReport{
		RunID: uuid.NewString(),
		Seed:  d.cfg.Workload.Seed,
	}
	if report.Seed == 0 {
		report.Seed = time.Now().UnixNano()
	} else {
		report.Seed += int64(index)
	}

	logger := d.logger.With("run_id", report.RunID, "run", index)
	data := workload.Generate(report.Seed, d.cfg.Workload.DataSize)

	opts := []bip.Option{bip.WithLogger(logger)}
	if d.cfg.Metrics.Enabled {
		opts = append(opts, bip.WithMetrics(d.registry, fmt.Sprintf("run_%d", index)))
	}

	start := time.Now()
	var (
		t   *transfer
		err error
	)
	switch d.cfg.Buffer.Mode {
	case config.ModeStream:
		t, err = d.transferStream(ctx, data, opts)
	default:
		t, err = d.transferLocked(ctx, data, report.Seed, opts)
	}
	report.Duration = time.Since(start)

	if t != nil {
		report.Produced = t.produced
		report.Consumed = t.consumed
		report.Buffer = t.stats.Summary()
		if err == nil {
			err = workload.Verify(data, t.got)
		}
	}

	d.record(report, runResult(ctx, err))

	if err != nil {
		logger.Error("Round trip failed",
			"seed", report.Seed,
			"class", errors.Classify(err).String(),
			"elements_in", len(data),
			"elements_out", report.Consumed.Elements,
			"error", err)
		return report, err
	}

	logger.Info("Round trip complete",
		"seed", report.Seed,
		"mode", d.cfg.Buffer.Mode,
		"capacity", d.cfg.Buffer.Capacity,
		"elements_in", report.Produced.Elements,
		"elements_out", report.Consumed.Elements,
		"produce_calls", report.Produced.Calls,
		"produce_short", report.Produced.Short,
		"consume_calls", report.Consumed.Calls,
		"consume_short", report.Consumed.Short,
		"hand_offs", report.Buffer.HandOffs,
		"producer_waits", report.Buffer.ProducerWaits,
		"consumer_waits", report.Buffer.ConsumerWaits,
		"max_used", report.Buffer.MaxUsed,
		"duration", report.Duration,
		"bytes_per_second", throughput(report.Consumed.Elements, report.Duration))
	return report, nil
}

// transferLocked moves data with one Put per producer chunk and one Get per
// consumer chunk, the way a caller drives bip.Locked directly.
func (d *driver) transferLocked(ctx context.Context, data []byte, seed int64, opts []bip.Option) (*transfer, error) {
	l, err := bip.NewLocked(make([]byte, d.cfg.Buffer.Capacity), opts...)
	if err != nil {
		return nil, err
	}
	defer l.Release()

	var limiter *rate.Limiter
	if d.cfg.Workload.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(d.cfg.Workload.Rate), 1)
	}

	producer := &workload.Producer[byte]{
		Sink:    l,
		Chunks:  d.cfg.Workload.Produce,
		Rand:    rand.New(rand.NewSource(seed + 1)),
		Limiter: limiter,
	}
	consumer := &workload.Consumer[byte]{
		Source: l,
		Chunks: d.cfg.Workload.Consume,
		Rand:   rand.New(rand.NewSource(seed + 2)),
	}

	t := &transfer{stats: l.Stats()}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer l.SetConsumed()
		res, err := producer.Run(gctx, data)
		t.produced = res
		return err
	})

	g.Go(func() error {
		got, res, err := consumer.Run(gctx, len(data))
		t.got, t.consumed = got, res
		if err != nil {
			// Keep the producer moving until it notices the cancellation.
			drain(l)
		}
		return err
	})

	err = g.Wait()
	if err == nil && d.cfg.Workload.Check {
		err = l.Check()
	}
	return t, err
}

// transferStream moves data through the io adapter with io.Copy semantics.
func (d *driver) transferStream(ctx context.Context, data []byte, opts []bip.Option) (*transfer, error) {
	s, err := bip.NewStream(make([]byte, d.cfg.Buffer.Capacity), opts...)
	if err != nil {
		return nil, err
	}
	defer s.Buffer().Release()

	t := &transfer{stats: s.Buffer().Stats()}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer s.Close()
		n, err := s.ReadFrom(&contextReader{ctx: gctx, r: bytes.NewReader(data)})
		t.produced = workload.Result{
			Elements: int(n),
			Calls:    int(t.stats.Puts()),
			Short:    int(t.stats.ShortWrites()),
		}
		return err
	})

	g.Go(func() error {
		var out bytes.Buffer
		out.Grow(len(data))
		n, err := s.WriteTo(&out)
		t.got = out.Bytes()
		t.consumed = workload.Result{
			Elements: int(n),
			Calls:    int(t.stats.Gets()),
			Short:    int(t.stats.ShortReads()),
		}
		return err
	})

	err = g.Wait()
	if err == nil && d.cfg.Workload.Check {
		err = s.Buffer().Check()
	}
	return t, err
}

// runResult picks the runs_total label. Only a completed comparison can be a
// mismatch; a run that stopped because ctx was cancelled is never an error.
func runResult(ctx context.Context, err error) string {
	switch {
	case err == nil:
		return metric.RunSuccess
	case stderrors.Is(err, errors.ErrDataMismatch):
		return metric.RunMismatch
	case errors.IsTransient(err), ctx.Err() != nil:
		return metric.RunCancelled
	default:
		return metric.RunError
	}
}

func (d *driver) record(report *runReport, result string) {
	m := d.registry.CoreMetrics()
	m.RecordRun(result, report.Duration)
	m.RecordElements("in", report.Produced.Elements)
	m.RecordElements("out", report.Consumed.Elements)
	m.RecordCalls("in", report.Produced.Calls, report.Produced.Short)
	m.RecordCalls("out", report.Consumed.Calls, report.Consumed.Short)
}

// drain discards everything until the buffer is consumed and empty.
func drain(l *bip.Locked[byte]) {
	for l.Skip(l.Cap()) > 0 {
	}
}

func throughput(n int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / d.Seconds()
}

// contextReader stops reading once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
