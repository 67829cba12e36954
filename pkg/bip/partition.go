package bip

// partition is the occupied range [begin, end) of one region of the backing slice.
//
// Limits are not stored here. Partition A is bounded by [0, B.begin) and
// partition B by [A.end, len(buf)); the owning Buffer computes them from the
// other partition's current cursors whenever they are needed.
type partition[T any] struct {
	begin int
	end   int
}

// put appends src at end. Caller guarantees len(src) <= free.
func (p *partition[T]) put(buf, src []T) {
	p.end += copy(buf[p.end:p.end+len(src)], src)
}

// get copies len(dst) elements starting at begin. Caller guarantees len(dst) <= avail.
func (p *partition[T]) get(buf, dst []T) {
	n := copy(dst, buf[p.begin:p.begin+len(dst)])
	clear(buf[p.begin : p.begin+n]) // Clear for GC
	p.begin += n
}

// skip discards n elements. Caller guarantees n <= avail.
func (p *partition[T]) skip(buf []T, n int) {
	clear(buf[p.begin : p.begin+n])
	p.begin += n
}

func (p *partition[T]) avail() int {
	return p.end - p.begin
}

func (p *partition[T]) free(upper int) int {
	return upper - p.end
}

func (p *partition[T]) reset(lower int) {
	p.begin = lower
	p.end = lower
}
