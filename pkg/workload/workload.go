// Package workload generates test data and drives a producer/consumer pair
// through anything that accepts and returns elements in contiguous runs.
package workload

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"github.com/c360/bipstream/errors"
)

// Sink accepts up to len(data) elements in one call and returns how many it took.
type Sink[T any] interface {
	Put(data []T) int
}

// Source delivers up to len(out) elements in one call. Zero means the stream ended.
type Source[T any] interface {
	Get(out []T) int
}

// ChunkRange bounds the size of each Put or Get request, inclusive on both ends.
type ChunkRange struct {
	Min int `mapstructure:"min" json:"min"`
	Max int `mapstructure:"max" json:"max"`
}

// Validate checks that the range is non-empty and positive.
func (r ChunkRange) Validate() error {
	if r.Min <= 0 || r.Max < r.Min {
		return errors.WrapInvalid(
			fmt.Errorf("%w: chunk range [%d, %d]", errors.ErrInvalidConfig, r.Min, r.Max),
			"ChunkRange", "Validate", "range check")
	}
	return nil
}

// Pick returns a uniformly distributed size in [Min, Max].
func (r ChunkRange) Pick(rng *rand.Rand) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Intn(r.Max-r.Min+1)
}

// Generate returns n pseudo-random bytes derived from seed.
func Generate(seed int64, n int) []byte {
	data := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(data)
	return data
}

// Result describes one side of a transfer.
type Result struct {
	Elements int           `json:"elements"`
	Calls    int           `json:"calls"`
	Short    int           `json:"short"`
	Duration time.Duration `json:"duration"`
}

// Producer writes a slice into a Sink in randomly sized chunks.
type Producer[T any] struct {
	Sink    Sink[T]
	Chunks  ChunkRange
	Rand    *rand.Rand
	Limiter *rate.Limiter // optional, one token per chunk
}

// Run writes all of data, one Put per chunk, re-issuing what a short write left
// over on the next iteration. It stops early only when ctx is done or the
// limiter refuses to wait.
func (p *Producer[T]) Run(ctx context.Context, data []T) (Result, error) {
	start := time.Now()
	var res Result

	for left := len(data); left > 0; {
		if err := ctx.Err(); err != nil {
			res.Duration = time.Since(start)
			return res, errors.WrapTransient(err, "Producer", "Run", "produce chunk")
		}
		if p.Limiter != nil {
			if err := p.Limiter.Wait(ctx); err != nil {
				res.Duration = time.Since(start)
				return res, errors.WrapTransient(
					fmt.Errorf("%w: %v", errors.ErrRateLimited, err), "Producer", "Run", "wait for limiter")
			}
		}

		size := min(p.Chunks.Pick(p.Rand), left)
		off := len(data) - left
		written := p.Sink.Put(data[off : off+size])

		res.Calls++
		if written < size {
			res.Short++
		}
		res.Elements += written
		left -= written
	}

	res.Duration = time.Since(start)
	return res, nil
}

// Consumer reads from a Source in randomly sized chunks.
type Consumer[T any] struct {
	Source Source[T]
	Chunks ChunkRange
	Rand   *rand.Rand
}

// Run reads until total elements arrived or the Source reports the end of the
// stream, and returns everything it read.
func (c *Consumer[T]) Run(ctx context.Context, total int) ([]T, Result, error) {
	start := time.Now()
	var res Result

	out := make([]T, 0, total)
	buf := make([]T, c.Chunks.Max)

	for left := total; left > 0; {
		if err := ctx.Err(); err != nil {
			res.Duration = time.Since(start)
			return out, res, errors.WrapTransient(err, "Consumer", "Run", "consume chunk")
		}

		size := min(c.Chunks.Pick(c.Rand), left)
		n := c.Source.Get(buf[:size])

		res.Calls++
		if n == 0 {
			break
		}
		if n < size {
			res.Short++
		}
		res.Elements += n
		left -= n
		out = append(out, buf[:n]...)
	}

	res.Duration = time.Since(start)
	if res.Elements < total {
		return out, res, errors.WrapFatal(
			fmt.Errorf("%w: got %d of %d elements", errors.ErrShortTransfer, res.Elements, total),
			"Consumer", "Run", "read stream")
	}
	return out, res, nil
}

// Verify compares want and got position by position.
func Verify[T comparable](want, got []T) error {
	if len(want) != len(got) {
		return errors.WrapFatal(
			fmt.Errorf("%w: element count %d, want %d", errors.ErrDataMismatch, len(got), len(want)),
			"workload", "Verify", "count check")
	}
	for i := range want {
		if want[i] != got[i] {
			return errors.WrapFatal(
				fmt.Errorf("%w: element mismatch at position %d", errors.ErrDataMismatch, i),
				"workload", "Verify", "element check")
		}
	}
	return nil
}
