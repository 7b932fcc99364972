package refkind

import (
	"fmt"
	"iter"
)

// CursorKey selects the element of a Cursor a move applies to. The zero
// CursorKey is Peek().
type CursorKey struct {
	advance bool
	skip    int
}

// Peek addresses the element the cursor currently rests on.
func Peek() CursorKey {
	return CursorKey{}
}

// Next discards the current element and addresses the one after it.
func Next() CursorKey {
	return Nth(0)
}

// Nth discards the current element and n more, then addresses the element
// the cursor lands on.
func Nth(n int) CursorKey {
	if n < 0 {
		panic("refkind: negative cursor offset")
	}
	return CursorKey{advance: true, skip: n}
}

func (k CursorKey) String() string {
	if !k.advance {
		return "peek"
	}
	return fmt.Sprintf("nth(%d)", k.skip)
}

// Cursor walks a stream of accessors one element at a time. The element it
// rests on sits in a slot: a caller may inspect it and then accept it or
// leave it for the next pass.
//
// A Cursor holds a pulled iterator; call Close when abandoning it before the
// stream is exhausted.
type Cursor[T any] struct {
	next   func() (RefKind[T], bool)
	stop   func()
	head   Slot[T]
	loaded bool
	done   bool
	pos    int
	cfg    config
}

var _ Many[CursorKey, int] = (*Cursor[int])(nil)

// NewCursor returns a cursor over seq. Zero RefKind values in seq become
// empty elements.
func NewCursor[T any](seq iter.Seq[RefKind[T]], opts ...Option) *Cursor[T] {
	next, stop := iter.Pull(seq)
	return &Cursor[T]{next: next, stop: stop, cfg: applyOptions(opts)}
}

// CursorOf returns a cursor over the positions of s. Each accessor is taken
// out of s when the cursor reaches its position, so s ends up empty where the
// cursor has been.
func CursorOf[T any](s *Slice[T], opts ...Option) *Cursor[T] {
	return NewCursor(func(yield func(RefKind[T]) bool) {
		for i := 0; i < s.Len(); i++ {
			ref, _ := s.slots[i].Take()
			if !yield(ref) {
				return
			}
		}
	}, opts...)
}

func (c *Cursor[T]) fill() bool {
	if c.loaded {
		return true
	}
	if c.done {
		return false
	}
	ref, ok := c.next()
	if !ok {
		c.done = true
		c.stop()
		return false
	}
	c.head = NewSlot(ref)
	c.loaded = true
	return true
}

func (c *Cursor[T]) advance() bool {
	if !c.fill() {
		return false
	}
	c.head = Slot[T]{}
	c.loaded = false
	c.pos++
	return true
}

func (c *Cursor[T]) locate(key CursorKey) *Slot[T] {
	if key.advance {
		for i := 0; i <= key.skip; i++ {
			if !c.advance() {
				break
			}
		}
	}
	if !c.fill() {
		return nil
	}
	return &c.head
}

// TryMoveRef moves a shared view out of the element addressed by key.
func (c *Cursor[T]) TryMoveRef(key CursorKey) (Ref[T], error) {
	slot := c.locate(key)
	return moveRefAt(&c.cfg, c.pos, slot)
}

// MoveRef is TryMoveRef that panics on failure.
func (c *Cursor[T]) MoveRef(key CursorKey) Ref[T] {
	return MoveRef[CursorKey, T](c, key)
}

// TryMoveMut moves the exclusive accessor out of the element addressed by key.
func (c *Cursor[T]) TryMoveMut(key CursorKey) (*T, error) {
	slot := c.locate(key)
	return moveMutAt(&c.cfg, c.pos, slot)
}

// MoveMut is TryMoveMut that panics on failure.
func (c *Cursor[T]) MoveMut(key CursorKey) *T {
	return MoveMut[CursorKey, T](c, key)
}

// Peek returns a read-only view of the current element without advancing. It
// reports false once the stream is exhausted.
func (c *Cursor[T]) Peek() (SlotView[T], bool) {
	slot := c.locate(Peek())
	return viewOf(slot), slot != nil
}

// Accept advances past the current element. It reports false when there was
// nothing left to accept.
func (c *Cursor[T]) Accept() bool {
	return c.advance()
}

// TakeRef moves a shared view out of the current element and advances past
// it. On failure the cursor stays put.
func (c *Cursor[T]) TakeRef() (Ref[T], error) {
	ref, err := c.TryMoveRef(Peek())
	if err != nil {
		return ref, err
	}
	c.advance()
	return ref, nil
}

// TakeMut moves the exclusive accessor out of the current element and
// advances past it. On failure the cursor stays put.
func (c *Cursor[T]) TakeMut() (*T, error) {
	ptr, err := c.TryMoveMut(Peek())
	if err != nil {
		return nil, err
	}
	c.advance()
	return ptr, nil
}

// Position returns the index of the current element in the stream.
func (c *Cursor[T]) Position() int {
	return c.pos
}

// Done reports whether the stream has been exhausted.
func (c *Cursor[T]) Done() bool {
	return !c.fill()
}

// Close releases the underlying iterator. Later moves fail with NotFound.
func (c *Cursor[T]) Close() {
	if !c.done {
		c.done = true
		c.stop()
	}
	c.head = Slot[T]{}
	c.loaded = false
}
