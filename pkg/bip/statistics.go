package bip

import (
	"sync"
	"sync/atomic"
	"time"
)

// Statistics tracks transfer counts for a Locked buffer.
//
// Counters are updated atomically so they can be read while a producer and a
// consumer are active.
type Statistics struct {
	puts  int64
	gets  int64
	skips int64

	written int64
	read    int64
	skipped int64

	shortWrites int64
	shortReads  int64
	handOffs    int64

	producerWaits int64
	consumerWaits int64

	mu        sync.RWMutex
	startTime time.Time
	maxUsed   int64
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{
		startTime: time.Now(),
	}
}

// Put records a single write call that stored n of requested elements.
func (s *Statistics) Put(n, requested int) {
	atomic.AddInt64(&s.puts, 1)
	atomic.AddInt64(&s.written, int64(n))
	if n < requested {
		atomic.AddInt64(&s.shortWrites, 1)
	}
}

// Get records a single read call that returned n of requested elements.
func (s *Statistics) Get(n, requested int) {
	atomic.AddInt64(&s.gets, 1)
	atomic.AddInt64(&s.read, int64(n))
	if n < requested {
		atomic.AddInt64(&s.shortReads, 1)
	}
}

// Skip records a single skip call that discarded n of requested elements.
func (s *Statistics) Skip(n, requested int) {
	atomic.AddInt64(&s.skips, 1)
	atomic.AddInt64(&s.skipped, int64(n))
	if n < requested {
		atomic.AddInt64(&s.shortReads, 1)
	}
}

// HandOff records n partition role changes.
func (s *Statistics) HandOff(n int) {
	if n > 0 {
		atomic.AddInt64(&s.handOffs, int64(n))
	}
}

// ProducerWait records a producer blocking on a full buffer.
func (s *Statistics) ProducerWait() {
	atomic.AddInt64(&s.producerWaits, 1)
}

// ConsumerWait records a consumer blocking on an empty buffer.
func (s *Statistics) ConsumerWait() {
	atomic.AddInt64(&s.consumerWaits, 1)
}

// UpdateUsed records the number of buffered elements and tracks the high water mark.
func (s *Statistics) UpdateUsed(used int64) {
	s.mu.Lock()
	if used > s.maxUsed {
		s.maxUsed = used
	}
	s.mu.Unlock()
}

// Puts returns the number of write calls.
func (s *Statistics) Puts() int64 {
	return atomic.LoadInt64(&s.puts)
}

// Gets returns the number of read calls.
func (s *Statistics) Gets() int64 {
	return atomic.LoadInt64(&s.gets)
}

// Skips returns the number of skip calls.
func (s *Statistics) Skips() int64 {
	return atomic.LoadInt64(&s.skips)
}

// Written returns the number of elements stored.
func (s *Statistics) Written() int64 {
	return atomic.LoadInt64(&s.written)
}

// Read returns the number of elements delivered to readers.
func (s *Statistics) Read() int64 {
	return atomic.LoadInt64(&s.read)
}

// Skipped returns the number of elements discarded by Skip.
func (s *Statistics) Skipped() int64 {
	return atomic.LoadInt64(&s.skipped)
}

// ShortWrites returns the number of write calls that stored less than requested.
func (s *Statistics) ShortWrites() int64 {
	return atomic.LoadInt64(&s.shortWrites)
}

// ShortReads returns the number of read or skip calls that returned less than requested.
func (s *Statistics) ShortReads() int64 {
	return atomic.LoadInt64(&s.shortReads)
}

// HandOffs returns the number of partition role changes.
func (s *Statistics) HandOffs() int64 {
	return atomic.LoadInt64(&s.handOffs)
}

// ProducerWaits returns how often a producer blocked on a full buffer.
func (s *Statistics) ProducerWaits() int64 {
	return atomic.LoadInt64(&s.producerWaits)
}

// ConsumerWaits returns how often a consumer blocked on an empty buffer.
func (s *Statistics) ConsumerWaits() int64 {
	return atomic.LoadInt64(&s.consumerWaits)
}

// MaxUsed returns the largest number of elements held at once.
func (s *Statistics) MaxUsed() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxUsed
}

// Throughput returns the average number of elements written per second.
func (s *Statistics) Throughput() float64 {
	elapsed := s.Uptime()
	if elapsed == 0 {
		return 0.0
	}
	return float64(s.Written()) / elapsed.Seconds()
}

// ShortWriteRate returns the fraction of write calls that completed short (0.0 to 1.0).
func (s *Statistics) ShortWriteRate() float64 {
	puts := s.Puts()
	if puts == 0 {
		return 0.0
	}
	return float64(s.ShortWrites()) / float64(puts)
}

// Uptime returns how long the statistics have been collected.
func (s *Statistics) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}

// StatsSummary is a point-in-time copy of Statistics.
type StatsSummary struct {
	Puts           int64         `json:"puts"`
	Gets           int64         `json:"gets"`
	Skips          int64         `json:"skips"`
	Written        int64         `json:"written"`
	Read           int64         `json:"read"`
	Skipped        int64         `json:"skipped"`
	ShortWrites    int64         `json:"short_writes"`
	ShortReads     int64         `json:"short_reads"`
	HandOffs       int64         `json:"hand_offs"`
	ProducerWaits  int64         `json:"producer_waits"`
	ConsumerWaits  int64         `json:"consumer_waits"`
	MaxUsed        int64         `json:"max_used"`
	Throughput     float64       `json:"throughput"`
	ShortWriteRate float64       `json:"short_write_rate"`
	Uptime         time.Duration `json:"uptime"`
}

// Summary returns a snapshot of all statistics.
func (s *Statistics) Summary() StatsSummary {
	return StatsSummary{
		Puts:           s.Puts(),
		Gets:           s.Gets(),
		Skips:          s.Skips(),
		Written:        s.Written(),
		Read:           s.Read(),
		Skipped:        s.Skipped(),
		ShortWrites:    s.ShortWrites(),
		ShortReads:     s.ShortReads(),
		HandOffs:       s.HandOffs(),
		ProducerWaits:  s.ProducerWaits(),
		ConsumerWaits:  s.ConsumerWaits(),
		MaxUsed:        s.MaxUsed(),
		Throughput:     s.Throughput(),
		ShortWriteRate: s.ShortWriteRate(),
		Uptime:         s.Uptime(),
	}
}
