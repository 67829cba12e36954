package bip

import (
	"io"

	"github.com/c360/bipstream/errors"
)

var (
	_ io.Reader     = (*Stream)(nil)
	_ io.WriterTo   = (*Stream)(nil)
	_ io.Writer     = (*Stream)(nil)
	_ io.ReaderFrom = (*Stream)(nil)
	_ io.Closer     = (*Stream)(nil)
)

// copyBufferSize is the scratch size used by ReadFrom and WriteTo.
const copyBufferSize = 32 * 1024

// Stream exposes a Locked byte buffer through the io interfaces. The producer
// writes and closes; the consumer reads until io.EOF.
type Stream struct {
	l *Locked[byte]
}

// NewStream creates a Stream over buf.
func NewStream(buf []byte, opts ...Option) (*Stream, error) {
	l, err := NewLocked(buf, opts...)
	if err != nil {
		return nil, err
	}
	return &Stream{l: l}, nil
}

// Write stores all of p, blocking while the buffer is full. If the stream is
// closed before p is stored, Write returns how much was stored and an error
// wrapping ErrStreamConsumed.
func (s *Stream) Write(p []byte) (int, error) {
	n, ok := s.l.putAllOpen(p)
	if !ok {
		return n, errors.WrapInvalid(errors.ErrStreamConsumed, "Stream", "Write", "put payload")
	}
	return n, nil
}

// Read returns the next contiguous run of buffered bytes. It returns io.EOF
// once the stream is closed and drained.
func (s *Stream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if n := s.l.Get(p); n > 0 {
		return n, nil
	}
	return 0, io.EOF
}

// Close marks the stream consumed. Readers drain what is buffered and then see io.EOF.
func (s *Stream) Close() error {
	s.l.SetConsumed()
	return nil
}

// ReadFrom copies r into the stream until r returns io.EOF.
// The stream is not closed.
func (s *Stream) ReadFrom(r io.Reader) (int64, error) {
	return copyBuffered(r.Read, s.Write)
}

// WriteTo copies the stream into w until the stream is closed and drained.
func (s *Stream) WriteTo(w io.Writer) (int64, error) {
	return copyBuffered(s.Read, w.Write)
}

// Skip discards up to n buffered bytes, waiting for data as needed, and
// returns how many were discarded.
func (s *Stream) Skip(n int) int {
	return s.l.SkipAll(n)
}

// Buffer returns the underlying Locked buffer.
func (s *Stream) Buffer() *Locked[byte] {
	return s.l
}

func copyBuffered(read func([]byte) (int, error), write func([]byte) (int, error)) (int64, error) {
	buf := make([]byte, copyBufferSize)
	var total int64
	for {
		n, rErr := read(buf)
		if n > 0 {
			wn, wErr := write(buf[:n])
			if wn < 0 || wn > n {
				wn = 0
				if wErr == nil {
					wErr = io.ErrShortWrite
				}
			}
			total += int64(wn)
			if wErr != nil {
				return total, wErr
			}
			if wn != n {
				return total, io.ErrShortWrite
			}
		}
		if rErr != nil {
			if rErr == io.EOF {
				return total, nil
			}
			return total, rErr
		}
	}
}
