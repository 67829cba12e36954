// Package bip provides a bi-partitioned circular buffer and a blocking
// producer/consumer wrapper around it.
//
// # Overview
//
// A bip buffer splits one fixed slice into two partitions, A at the front and
// B behind it. Writes append to one partition and reads drain the other, so
// every transfer touches a single contiguous run of the slice and never a
// wrapped region. When a write fills its partition, or a read drains its
// partition, the call returns a short count and the roles move to the other
// partition. Callers loop on the returned count.
//
// # Quick Start
//
// Single goroutine use with the core Buffer:
//
//	b := bip.New(make([]int, 8))
//	n := b.Put([]int{1, 2, 3, 4, 5, 6}) // n == 6
//	out := make([]int, 3)
//	n = b.Get(out)                      // n == 3, out == [1 2 3]
//
// One producer and one consumer goroutine with Locked:
//
//	l, err := bip.NewLocked(make([]byte, 4096),
//		bip.WithMetrics(registry, "ingest"),
//	)
//	if err != nil {
//		return err
//	}
//
//	go func() {
//		l.PutAll(payload)
//		l.SetConsumed()
//	}()
//
//	out := make([]byte, len(payload))
//	got := l.GetAll(out) // returns early only if consumed and drained
//
// Byte streams through the io interfaces:
//
//	s, _ := bip.NewStream(make([]byte, 64*1024))
//	go func() {
//		defer s.Close()
//		_, _ = s.ReadFrom(src)
//	}()
//	_, err := s.WriteTo(dst)
//
// # Partition Roles
//
// The Buffer tracks which partition is read from, which is written to, and
// which of the two takes over each role next. A write only moves to the other
// partition while reads and writes share one partition and the other one is
// empty; a drained read partition is reset to its lower bound and, if writes
// went elsewhere, reads follow them. After every call:
//
//   - Avail() is zero only when nothing is buffered
//   - Full() holds only when no write can make progress
//   - both partitions stay inside the slice and never overlap
//
// Check verifies these properties and Snapshot returns the raw cursors.
//
// # Termination
//
// Locked has no close or cancel: the producer calls SetConsumed once it has
// written everything. Blocked consumers wake up, drain what is left, and then
// Get returns 0. The flag never resets. A producer blocked in Put or PutAll on
// a full buffer is only released by a consumer read. Stream.Write checks the
// flag under the lock before every chunk: once the stream is closed it stops
// and reports ErrStreamConsumed with the count already written.
//
// # Observability
//
// Statistics are always collected (calls, element counts, short transfers,
// partition hand-offs, blocking waits) and available via Stats(). With
// WithMetrics the same events are exported as Prometheus metrics under
// bipstream_buffer_* with a component label, plus a histogram of elements
// accepted per put. Release unregisters them; a prefix can be reused after
// Release.
//
// # Thread Safety
//
// Buffer is not safe for concurrent use. Locked and Stream are safe for one
// producer goroutine and one consumer goroutine; query methods may be called
// from anywhere.
package bip
