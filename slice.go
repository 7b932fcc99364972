package refkind

import "iter"

// Slice is a sequence of slots addressed by position.
type Slice[T any] struct {
	slots []Slot[T]
	cfg   config
}

var _ Many[int, int] = (*Slice[int])(nil)

// NewSlice builds a Slice holding refs in order.
func NewSlice[T any](refs []RefKind[T], opts ...Option) *Slice[T] {
	slots := make([]Slot[T], len(refs))
	for i, ref := range refs {
		slots[i] = NewSlot(ref)
	}
	return &Slice[T]{slots: slots, cfg: applyOptions(opts)}
}

// FromSlice builds a Slice by wrapping a pointer to each element of items.
// Returning the zero RefKind from wrap leaves that position empty.
func FromSlice[E any, T any](items []E, wrap func(i int, item *E) RefKind[T], opts ...Option) *Slice[T] {
	return FromSliceIn(nil, items, wrap, opts...)
}

// FromSliceIn is FromSlice with slot storage taken from arena.
func FromSliceIn[E any, T any](arena *Arena[T], items []E, wrap func(i int, item *E) RefKind[T], opts ...Option) *Slice[T] {
	slots := arena.Alloc(len(items))
	for i := range items {
		slots[i] = NewSlot(wrap(i, &items[i]))
	}
	return &Slice[T]{slots: slots, cfg: applyOptions(opts)}
}

// ExclusiveSlice wraps every element of items as an exclusive accessor.
func ExclusiveSlice[T any](items []T, opts ...Option) *Slice[T] {
	return FromSlice(items, func(_ int, item *T) RefKind[T] {
		return Exclusive(item)
	}, opts...)
}

// SharedSlice wraps every element of items as a shared accessor.
func SharedSlice[T any](items []T, opts ...Option) *Slice[T] {
	return FromSlice(items, func(_ int, item *T) RefKind[T] {
		return Shared(item)
	}, opts...)
}

// Len returns the number of positions, including emptied ones.
func (s *Slice[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.slots)
}

// Slot returns a read-only view of the slot at index i.
func (s *Slice[T]) Slot(i int) (SlotView[T], bool) {
	slot := s.at(i)
	return viewOf(slot), slot != nil
}

func (s *Slice[T]) at(i int) *Slot[T] {
	if s == nil || i < 0 || i >= len(s.slots) {
		return nil
	}
	return &s.slots[i]
}

// TryMoveRef moves a shared view out of position i.
func (s *Slice[T]) TryMoveRef(i int) (Ref[T], error) {
	return moveRefAt(s.config(), i, s.at(i))
}

// MoveRef is TryMoveRef that panics on failure.
func (s *Slice[T]) MoveRef(i int) Ref[T] {
	return MoveRef[int, T](s, i)
}

// TryMoveMut moves the exclusive accessor out of position i.
func (s *Slice[T]) TryMoveMut(i int) (*T, error) {
	return moveMutAt(s.config(), i, s.at(i))
}

// MoveMut is TryMoveMut that panics on failure.
func (s *Slice[T]) MoveMut(i int) *T {
	return MoveMut[int, T](s, i)
}

// Peek reads the value at position i without moving it.
func (s *Slice[T]) Peek(i int) (T, bool) {
	return viewOf(s.at(i)).Peek()
}

// All yields index/value pairs for every non-empty position.
func (s *Slice[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		if s == nil {
			return
		}
		for i := range s.slots {
			value, ok := s.slots[i].Peek()
			if !ok {
				continue
			}
			if !yield(i, value) {
				return
			}
		}
	}
}

// States tallies the slot states.
func (s *Slice[T]) States() StateCounts {
	var counts StateCounts
	if s == nil {
		return counts
	}
	for i := range s.slots {
		counts.add(s.slots[i].State())
	}
	return counts
}

func (s *Slice[T]) config() *config {
	if s == nil {
		cfg := applyOptions(nil)
		return &cfg
	}
	return &s.cfg
}
