package bip

import (
	"log/slog"
	"sync"

	"github.com/c360/bipstream/errors"
)

// Locked wraps a Buffer for exactly one producer goroutine and one consumer
// goroutine. Writers block while the buffer is full; readers block while it is
// empty until the producer calls SetConsumed.
type Locked[T any] struct {
	mu       sync.Mutex
	bip      *Buffer[T]
	notFull  *sync.Cond
	notEmpty *sync.Cond
	consumed bool

	stats   *Statistics    // always present
	metrics *bufferMetrics // optional
	logger  *slog.Logger
}

// NewLocked creates a Locked buffer over buf.
// Returns an error if metrics registration fails when requested; a prefix
// that is already registered is an invalid-class error.
func NewLocked[T any](buf []T, opts ...Option) (*Locked[T], error) {
	o := applyOptions(opts...)

	var metrics *bufferMetrics
	if o.metricsReg != nil {
		var err error
		metrics, err = newBufferMetrics(o.metricsReg, o.metricsPrefix)
		if err != nil {
			return nil, errors.Wrap(err, "Locked", "NewLocked", "metrics registration")
		}
	}

	l := &Locked[T]{
		bip:     New(buf),
		stats:   NewStatistics(),
		metrics: metrics,
		logger:  o.logger,
	}
	l.notFull = sync.NewCond(&l.mu)
	l.notEmpty = sync.NewCond(&l.mu)

	if metrics != nil {
		metrics.updateUsed(0, len(buf))
	}

	return l, nil
}

// Put waits until the buffer has room, performs a single write and returns
// how many elements were stored. The count may be short of len(data).
func (l *Locked[T]) Put(data []T) int {
	if len(data) == 0 {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.putLocked(data)
}

// PutAll writes every element of data, waiting for room as needed, and
// returns len(data). The consumer is woken after every chunk.
func (l *Locked[T]) PutAll(data []T) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	for off := 0; off < len(data); {
		off += l.putLocked(data[off:])
	}
	return len(data)
}

// Get waits until data is available or the buffer is consumed, performs a
// single read and returns the count. Zero means consumed and drained.
func (l *Locked[T]) Get(out []T) int {
	if len(out) == 0 {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.getLocked(out)
}

// GetAll reads until out is filled or the buffer is consumed and drained,
// and returns how many elements were delivered.
func (l *Locked[T]) GetAll(out []T) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	off := 0
	for off < len(out) {
		n := l.getLocked(out[off:])
		if n == 0 {
			break
		}
		off += n
	}
	return off
}

// Skip is Get without copying: it discards up to n elements in a single call.
func (l *Locked[T]) Skip(n int) int {
	if n <= 0 {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.skipLocked(n)
}

// SkipAll discards n elements or until the buffer is consumed and drained,
// and returns how many elements were discarded.
func (l *Locked[T]) SkipAll(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	done := 0
	for done < n {
		k := l.skipLocked(n - done)
		if k == 0 {
			break
		}
		done += k
	}
	return done
}

// SetConsumed marks the end of the stream and wakes every waiting consumer.
// It is idempotent; the flag is never cleared.
func (l *Locked[T]) SetConsumed() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.consumed {
		l.consumed = true
		l.logger.Debug("bip buffer consumed", "buffered", l.bip.used(), "capacity", l.bip.Cap())
	}
	l.notEmpty.Broadcast()
	// Put and PutAll keep waiting for room; putAllOpen gives up.
	l.notFull.Broadcast()
}

// Release unregisters the buffer's Prometheus metrics, if any. Statistics
// keep counting. It is safe to call more than once.
func (l *Locked[T]) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.metrics != nil {
		l.metrics.unregister()
		l.metrics = nil
	}
}

// Consumed reports whether SetConsumed has been called.
func (l *Locked[T]) Consumed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.consumed
}

// putAllOpen is PutAll for a writer that may race with SetConsumed. The flag
// is checked under the lock before every chunk and after every wait; once it
// is set nothing more is written and ok is false.
func (l *Locked[T]) putAllOpen(data []T) (n int, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for !l.consumed {
		if n == len(data) {
			return n, true
		}
		if l.bip.Full() {
			l.waitProducerLocked()
			continue
		}
		n += l.putOnceLocked(data[n:])
	}
	return n, false
}

func (l *Locked[T]) putLocked(data []T) int {
	for l.bip.Full() {
		l.waitProducerLocked()
	}
	return l.putOnceLocked(data)
}

func (l *Locked[T]) waitProducerLocked() {
	l.stats.ProducerWait()
	if l.metrics != nil {
		l.metrics.recordWait("producer")
	}
	l.notFull.Wait()
}

func (l *Locked[T]) putOnceLocked(data []T) int {
	before := l.bip.HandOffs()
	n := l.bip.Put(data)
	l.record(before)

	l.stats.Put(n, len(data))
	if l.metrics != nil {
		l.metrics.recordPut(n, len(data))
	}

	l.notEmpty.Signal()
	return n
}

// waitReadableLocked blocks while the buffer is empty and not consumed.
// It returns false when there is nothing left to read.
func (l *Locked[T]) waitReadableLocked() bool {
	for l.bip.Empty() && !l.consumed {
		l.stats.ConsumerWait()
		if l.metrics != nil {
			l.metrics.recordWait("consumer")
		}
		l.notEmpty.Wait()
	}
	return l.bip.Have()
}

func (l *Locked[T]) getLocked(out []T) int {
	if !l.waitReadableLocked() {
		return 0
	}

	before := l.bip.HandOffs()
	n := l.bip.Get(out)
	l.record(before)

	l.stats.Get(n, len(out))
	if l.metrics != nil {
		l.metrics.recordGet(n, len(out))
	}

	l.notFull.Signal()
	return n
}

func (l *Locked[T]) skipLocked(n int) int {
	if !l.waitReadableLocked() {
		return 0
	}

	before := l.bip.HandOffs()
	k := l.bip.Skip(n)
	l.record(before)

	l.stats.Skip(k, n)
	if l.metrics != nil {
		l.metrics.recordSkip(k, n)
	}

	l.notFull.Signal()
	return k
}

// record updates occupancy and hand-off counters after a core operation.
func (l *Locked[T]) record(handOffsBefore uint64) {
	used := l.bip.used()
	swaps := int(l.bip.HandOffs() - handOffsBefore)

	l.stats.UpdateUsed(int64(used))
	l.stats.HandOff(swaps)
	if l.metrics != nil {
		l.metrics.recordHandOffs(swaps)
		l.metrics.updateUsed(used, l.bip.Cap())
	}
}

// Avail returns how many elements a single Get can return right now.
func (l *Locked[T]) Avail() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bip.Avail()
}

// Free returns how many elements a single Put can accept right now.
func (l *Locked[T]) Free() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bip.Free()
}

// Empty reports whether there is nothing to read.
func (l *Locked[T]) Empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bip.Empty()
}

// Full reports whether no element can be written.
func (l *Locked[T]) Full() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bip.Full()
}

// Have reports whether there is anything to read.
func (l *Locked[T]) Have() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bip.Have()
}

// Cap returns the capacity of the backing slice.
func (l *Locked[T]) Cap() int {
	return l.bip.Cap()
}

// Snapshot returns the partition cursors and roles.
func (l *Locked[T]) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bip.Snapshot()
}

// Check verifies the layout of the underlying Buffer.
func (l *Locked[T]) Check() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bip.Check()
}

// Stats returns buffer statistics. They are always collected.
func (l *Locked[T]) Stats() *Statistics {
	return l.stats
}
