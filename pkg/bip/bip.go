package bip

import (
	"fmt"

	"github.com/c360/bipstream/errors"
)

// Partition indices used by the role fields.
const (
	partA = 0
	partB = 1
)

// Buffer is a bi-partitioned circular buffer over a caller-owned slice.
//
// Every Put writes one contiguous run and every Get or Skip reads one
// contiguous run; a request that meets or exceeds what the active partition
// can take (or hold) completes short and switches roles, so callers loop on
// the returned count instead of handling wrapped regions.
//
// Buffer is not safe for concurrent use. Wrap it with Locked for a
// producer/consumer pair.
type Buffer[T any] struct {
	buf   []T
	parts [2]partition[T]

	// Role indices into parts.
	get     int
	put     int
	nextGet int
	nextPut int

	handOffs uint64
}

// New creates a Buffer over buf. The capacity is len(buf); the slice must not
// be resized or used by anything else while the Buffer is alive.
func New[T any](buf []T) *Buffer[T] {
	// B spans the whole slice until A gets used, so both roles start there.
	return &Buffer[T]{
		buf:     buf,
		get:     partB,
		put:     partB,
		nextGet: partB,
		nextPut: partA,
	}
}

// Put writes up to len(data) elements into the active write partition and
// returns how many were written. A short count means the partition filled up;
// re-issue the remainder.
func (b *Buffer[T]) Put(data []T) int {
	n := len(data)
	if n == 0 {
		return 0
	}

	f := b.Free()
	if n >= f {
		b.parts[b.put].put(b.buf, data[:f])
		b.handOffPut()
		b.settle()
		return f
	}

	b.parts[b.put].put(b.buf, data)
	return n
}

// Get reads up to len(out) elements from the active read partition and
// returns how many were read. A short count means the partition drained;
// re-issue for more.
func (b *Buffer[T]) Get(out []T) int {
	n := len(out)
	if n == 0 {
		return 0
	}

	a := b.Avail()
	if n >= a {
		b.parts[b.get].get(b.buf, out[:a])
		b.handOffGet()
		b.settle()
		return a
	}

	b.parts[b.get].get(b.buf, out)
	b.settle()
	return n
}

// Skip discards up to n elements with the same partition rules as Get.
func (b *Buffer[T]) Skip(n int) int {
	if n <= 0 {
		return 0
	}

	a := b.Avail()
	if n >= a {
		b.parts[b.get].skip(b.buf, a)
		b.handOffGet()
		b.settle()
		return a
	}

	b.parts[b.get].skip(b.buf, n)
	b.settle()
	return n
}

// Avail returns how many elements a single Get can return.
func (b *Buffer[T]) Avail() int {
	return b.parts[b.get].avail()
}

// Free returns how many elements a single Put can accept.
func (b *Buffer[T]) Free() int {
	return b.free(b.put)
}

// Empty reports whether there is nothing to read.
func (b *Buffer[T]) Empty() bool {
	return b.Avail() == 0
}

// Full reports whether no element can be written.
func (b *Buffer[T]) Full() bool {
	return b.Free() == 0
}

// Have reports whether there is anything to read.
func (b *Buffer[T]) Have() bool {
	return !b.Empty()
}

// Cap returns the total number of elements the backing slice holds.
func (b *Buffer[T]) Cap() int {
	return len(b.buf)
}

// HandOffs returns how many times a role moved from one partition to the other.
func (b *Buffer[T]) HandOffs() uint64 {
	return b.handOffs
}

// used is the number of elements held across both partitions.
func (b *Buffer[T]) used() int {
	return b.parts[partA].avail() + b.parts[partB].avail()
}

func (b *Buffer[T]) lower(i int) int {
	if i == partA {
		return 0
	}
	return b.parts[partA].end
}

func (b *Buffer[T]) upper(i int) int {
	if i == partA {
		return b.parts[partB].begin
	}
	return len(b.buf)
}

func (b *Buffer[T]) free(i int) int {
	return b.parts[i].free(b.upper(i))
}

// handOffPut moves the write role to nextPut once the write partition is full.
// The switch only happens while reads and writes share a partition: otherwise
// the alternate partition still holds older data and writers have to wait.
func (b *Buffer[T]) handOffPut() bool {
	if b.get != b.put {
		return false
	}
	alt := b.nextPut
	if b.parts[alt].avail() != 0 || b.free(alt) == 0 {
		return false
	}

	b.nextGet = alt
	b.nextPut = b.put
	b.put = alt
	b.handOffs++
	return true
}

// handOffGet resets the drained read partition. If writes went elsewhere the
// read role follows them and the drained partition becomes the next write target.
func (b *Buffer[T]) handOffGet() {
	drained := b.get
	b.parts[drained].reset(b.lower(drained))
	if b.put == drained {
		return
	}

	b.nextPut = drained
	b.get = b.nextGet
	b.nextGet = b.get
	b.handOffs++
}

// settle applies pending hand-offs until Avail reports data whenever any is
// buffered and Free reports room whenever a write could make progress. Reads
// can open room at the front of the slice, so it runs after every read too.
func (b *Buffer[T]) settle() {
	for {
		switch {
		case b.get != b.put && b.parts[b.get].avail() == 0:
			b.handOffGet()
		case b.free(b.put) == 0 && b.handOffPut():
		default:
			return
		}
	}
}

// State is a snapshot of the partition cursors and roles.
type State struct {
	Capacity int    `json:"capacity"`
	ABegin   int    `json:"a_begin"`
	AEnd     int    `json:"a_end"`
	BBegin   int    `json:"b_begin"`
	BEnd     int    `json:"b_end"`
	Get      string `json:"get"`
	Put      string `json:"put"`
	NextGet  string `json:"next_get"`
	NextPut  string `json:"next_put"`
	HandOffs uint64 `json:"hand_offs"`
}

// Used returns the number of elements held across both partitions.
func (s State) Used() int {
	return (s.AEnd - s.ABegin) + (s.BEnd - s.BBegin)
}

// Snapshot returns the current cursors and roles.
func (b *Buffer[T]) Snapshot() State {
	return State{
		Capacity: len(b.buf),
		ABegin:   b.parts[partA].begin,
		AEnd:     b.parts[partA].end,
		BBegin:   b.parts[partB].begin,
		BEnd:     b.parts[partB].end,
		Get:      partName(b.get),
		Put:      partName(b.put),
		NextGet:  partName(b.nextGet),
		NextPut:  partName(b.nextPut),
		HandOffs: b.handOffs,
	}
}

func partName(i int) string {
	if i == partA {
		return "A"
	}
	return "B"
}

// Check verifies the partition layout and role bookkeeping. A non-nil result
// wraps errors.ErrDataCorrupted.
func (b *Buffer[T]) Check() error {
	a, bb := b.parts[partA], b.parts[partB]

	if !(0 <= a.begin && a.begin <= a.end && a.end <= bb.begin && bb.begin <= bb.end && bb.end <= len(b.buf)) {
		return errors.WrapFatal(errors.ErrDataCorrupted, "Buffer", "Check",
			fmt.Sprintf("partition layout A[%d,%d) B[%d,%d) cap %d", a.begin, a.end, bb.begin, bb.end, len(b.buf)))
	}

	if b.get == b.put {
		other := 1 - b.put
		if b.nextGet != b.get || b.nextPut != other || b.parts[other].avail() != 0 {
			return errors.WrapFatal(errors.ErrDataCorrupted, "Buffer", "Check",
				fmt.Sprintf("shared role on %s with next get %s, next put %s, idle partition holding %d",
					partName(b.put), partName(b.nextGet), partName(b.nextPut), b.parts[other].avail()))
		}
		return nil
	}

	if b.nextGet != b.put || b.nextPut != b.get {
		return errors.WrapFatal(errors.ErrDataCorrupted, "Buffer", "Check",
			fmt.Sprintf("split roles get %s put %s with next get %s, next put %s",
				partName(b.get), partName(b.put), partName(b.nextGet), partName(b.nextPut)))
	}
	if b.parts[b.get].avail() == 0 {
		return errors.WrapFatal(errors.ErrDataCorrupted, "Buffer", "Check",
			fmt.Sprintf("read partition %s empty while %s holds %d", partName(b.get), partName(b.put),
				b.parts[b.put].avail()))
	}
	return nil
}
