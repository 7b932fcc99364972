package refkind

const minArenaChunk = 16

// Arena is a bump allocator for slot storage. Collections built on an arena
// take their slots from its chunks; Reset hands the same chunks out again so a
// caller that rebuilds similar collections repeatedly stops allocating.
//
// Collections built before a Reset must not be used after it.
type Arena[T any] struct {
	chunks    [][]Slot[T]
	cur       int
	used      int
	allocated int
}

// NewArena returns an arena whose first chunk holds capacity slots.
func NewArena[T any](capacity int) *Arena[T] {
	a := &Arena[T]{}
	if capacity > 0 {
		a.chunks = append(a.chunks, make([]Slot[T], capacity))
	}
	return a
}

// Alloc returns n empty slots. A nil arena falls back to the heap.
func (a *Arena[T]) Alloc(n int) []Slot[T] {
	if n <= 0 {
		return nil
	}
	if a == nil {
		return make([]Slot[T], n)
	}
	for a.cur < len(a.chunks) {
		chunk := a.chunks[a.cur]
		if len(chunk)-a.used >= n {
			out := chunk[a.used : a.used+n : a.used+n]
			a.used += n
			a.allocated += n
			return out
		}
		if a.cur == len(a.chunks)-1 {
			break
		}
		a.cur++
		a.used = 0
	}
	size := minArenaChunk
	if len(a.chunks) > 0 {
		size = 2 * len(a.chunks[len(a.chunks)-1])
	}
	size = max(size, n)
	chunk := make([]Slot[T], size)
	a.chunks = append(a.chunks, chunk)
	a.cur = len(a.chunks) - 1
	a.used = n
	a.allocated += n
	return chunk[:n:n]
}

func (a *Arena[T]) slot() *Slot[T] {
	return &a.Alloc(1)[0]
}

// Reset empties every slot handed out so far and rewinds the arena to its
// first chunk. Chunks are kept for reuse.
func (a *Arena[T]) Reset() {
	if a == nil {
		return
	}
	for _, chunk := range a.chunks {
		clear(chunk)
	}
	a.cur = 0
	a.used = 0
	a.allocated = 0
}

// ChunkCapacity returns the number of slots the arena owns across all chunks.
func (a *Arena[T]) ChunkCapacity() int {
	if a == nil {
		return 0
	}
	total := 0
	for _, chunk := range a.chunks {
		total += len(chunk)
	}
	return total
}

// Allocated returns the number of slots handed out since the last Reset.
func (a *Arena[T]) Allocated() int {
	if a == nil {
		return 0
	}
	return a.allocated
}
