package refkind

import (
	"fmt"
	"iter"
	"maps"
)

// Map is a hashed collection of slots addressed by key. Iteration order is
// unspecified, as with the builtin map.
type Map[K comparable, V any] struct {
	slots map[K]*Slot[V]
	arena *Arena[V]
	cfg   config
}

var _ Many[string, int] = (*Map[string, int])(nil)

// NewMap returns an empty Map.
func NewMap[K comparable, V any](opts ...Option) *Map[K, V] {
	return NewMapIn[K, V](nil, opts...)
}

// NewMapIn returns an empty Map whose slots are allocated from arena.
func NewMapIn[K comparable, V any](arena *Arena[V], opts ...Option) *Map[K, V] {
	return &Map[K, V]{
		slots: make(map[K]*Slot[V]),
		arena: arena,
		cfg:   applyOptions(opts),
	}
}

// FromMap builds a Map with one slot per entry of src, wrapping each value
// through wrap. Since builtin map values are not addressable, src usually
// holds pointers (see ExclusiveMap and SharedMap).
func FromMap[K comparable, E any, V any](src map[K]E, wrap func(key K, item E) RefKind[V], opts ...Option) *Map[K, V] {
	m := NewMap[K, V](opts...)
	for key, item := range src {
		m.Insert(key, wrap(key, item))
	}
	return m
}

// ExclusiveMap wraps every value of src as an exclusive accessor.
func ExclusiveMap[K comparable, V any](src map[K]*V, opts ...Option) *Map[K, V] {
	return FromMap(src, func(_ K, item *V) RefKind[V] {
		return Exclusive(item)
	}, opts...)
}

// SharedMap wraps every value of src as a shared accessor.
func SharedMap[K comparable, V any](src map[K]*V, opts ...Option) *Map[K, V] {
	return FromMap(src, func(_ K, item *V) RefKind[V] {
		return Shared(item)
	}, opts...)
}

// Insert stores ref under key, returning the accessor previously held there.
func (m *Map[K, V]) Insert(key K, ref RefKind[V]) (RefKind[V], bool) {
	slot, ok := m.slots[key]
	if !ok {
		slot = m.arena.slot()
		m.slots[key] = slot
	}
	return slot.Replace(ref)
}

// InsertShared stores a shared accessor to ptr under key.
func (m *Map[K, V]) InsertShared(key K, ptr *V) (RefKind[V], bool) {
	return m.Insert(key, Shared(ptr))
}

// InsertExclusive stores an exclusive accessor to ptr under key.
func (m *Map[K, V]) InsertExclusive(key K, ptr *V) (RefKind[V], bool) {
	return m.Insert(key, Exclusive(ptr))
}

// TryInsertShared is InsertShared that refuses to overwrite an existing key.
func (m *Map[K, V]) TryInsertShared(key K, ptr *V) error {
	return m.tryInsert(key, Shared(ptr))
}

// TryInsertExclusive is InsertExclusive that refuses to overwrite an existing
// key.
func (m *Map[K, V]) TryInsertExclusive(key K, ptr *V) error {
	return m.tryInsert(key, Exclusive(ptr))
}

func (m *Map[K, V]) tryInsert(key K, ref RefKind[V]) error {
	if _, ok := m.slots[key]; ok {
		return fmt.Errorf("%w: %s", ErrOccupied, describeKey(key))
	}
	m.Insert(key, ref)
	return nil
}

// Remove deletes key. present reports whether the key existed; ref is zero
// when its slot had already been emptied.
func (m *Map[K, V]) Remove(key K) (ref RefKind[V], present bool) {
	slot, ok := m.slots[key]
	if !ok {
		return RefKind[V]{}, false
	}
	delete(m.slots, key)
	ref, _ = slot.Take()
	return ref, true
}

// ContainsKey reports whether key holds a slot, empty or not.
func (m *Map[K, V]) ContainsKey(key K) bool {
	_, ok := m.slots[key]
	return ok
}

// Slot returns a read-only view of the slot stored under key.
func (m *Map[K, V]) Slot(key K) (SlotView[V], bool) {
	slot, ok := m.slots[key]
	return viewOf(slot), ok
}

// Get reads the value under key without moving an accessor out.
func (m *Map[K, V]) Get(key K) (V, bool) {
	slot, ok := m.slots[key]
	if !ok {
		var zero V
		return zero, false
	}
	return slot.Peek()
}

// UpdateMut runs fn against the value under key while the exclusive accessor
// stays in its slot. See Slot.WithMut.
func (m *Map[K, V]) UpdateMut(key K, fn func(value *V)) error {
	slot, ok := m.slots[key]
	if !ok {
		return missingError(OpMoveMut, key)
	}
	return wrapAccessError(OpMoveMut, key, slot.WithMut(fn))
}

// TryMoveRef moves a shared view out of the slot under key.
func (m *Map[K, V]) TryMoveRef(key K) (Ref[V], error) {
	return moveRefAt(&m.cfg, key, m.slots[key])
}

// MoveRef is TryMoveRef that panics on failure.
func (m *Map[K, V]) MoveRef(key K) Ref[V] {
	return MoveRef[K, V](m, key)
}

// TryMoveMut moves the exclusive accessor out of the slot under key.
func (m *Map[K, V]) TryMoveMut(key K) (*V, error) {
	return moveMutAt(&m.cfg, key, m.slots[key])
}

// MoveMut is TryMoveMut that panics on failure.
func (m *Map[K, V]) MoveMut(key K) *V {
	return MoveMut[K, V](m, key)
}

// Len returns the number of keys, including those with emptied slots.
func (m *Map[K, V]) Len() int {
	return len(m.slots)
}

// Keys yields every key.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return maps.Keys(m.slots)
}

// All yields key/value pairs for every non-empty slot.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for key, slot := range m.slots {
			value, ok := slot.Peek()
			if !ok {
				continue
			}
			if !yield(key, value) {
				return
			}
		}
	}
}

// Retain keeps only the entries for which keep returns true.
func (m *Map[K, V]) Retain(keep func(key K, slot SlotView[V]) bool) {
	maps.DeleteFunc(m.slots, func(key K, slot *Slot[V]) bool {
		return !keep(key, viewOf(slot))
	})
}

// Clear removes every entry.
func (m *Map[K, V]) Clear() {
	clear(m.slots)
}

// States tallies the slot states.
func (m *Map[K, V]) States() StateCounts {
	var counts StateCounts
	for _, slot := range m.slots {
		counts.add(slot.State())
	}
	return counts
}
