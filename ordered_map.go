package refkind

import (
	"cmp"
	"fmt"
	"iter"

	"github.com/google/btree"
)

const (
	orderedMapDegree   = 16
	orderedMapFreeList = 32
)

type orderedEntry[K cmp.Ordered, V any] struct {
	key  K
	slot *Slot[V]
}

func lessEntry[K cmp.Ordered, V any](a, b orderedEntry[K, V]) bool {
	return cmp.Less(a.key, b.key)
}

// OrderedMap is a collection of slots addressed by key and iterated in
// ascending key order. It is backed by a B-tree.
type OrderedMap[K cmp.Ordered, V any] struct {
	tree  *btree.BTreeG[orderedEntry[K, V]]
	arena *Arena[V]
	cfg   config
}

var _ Many[string, int] = (*OrderedMap[string, int])(nil)

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap[K cmp.Ordered, V any](opts ...Option) *OrderedMap[K, V] {
	return NewOrderedMapIn[K, V](nil, opts...)
}

// NewOrderedMapIn returns an empty OrderedMap whose slots are allocated from
// arena.
func NewOrderedMapIn[K cmp.Ordered, V any](arena *Arena[V], opts ...Option) *OrderedMap[K, V] {
	freeList := btree.NewFreeListG[orderedEntry[K, V]](orderedMapFreeList)
	return &OrderedMap[K, V]{
		tree:  btree.NewWithFreeListG(orderedMapDegree, lessEntry[K, V], freeList),
		arena: arena,
		cfg:   applyOptions(opts),
	}
}

// FromOrderedMap builds an OrderedMap with one slot per entry of src.
func FromOrderedMap[K cmp.Ordered, E any, V any](src map[K]E, wrap func(key K, item E) RefKind[V], opts ...Option) *OrderedMap[K, V] {
	m := NewOrderedMap[K, V](opts...)
	for key, item := range src {
		m.Insert(key, wrap(key, item))
	}
	return m
}

// ExclusiveOrderedMap wraps every value of src as an exclusive accessor.
func ExclusiveOrderedMap[K cmp.Ordered, V any](src map[K]*V, opts ...Option) *OrderedMap[K, V] {
	return FromOrderedMap(src, func(_ K, item *V) RefKind[V] {
		return Exclusive(item)
	}, opts...)
}

// SharedOrderedMap wraps every value of src as a shared accessor.
func SharedOrderedMap[K cmp.Ordered, V any](src map[K]*V, opts ...Option) *OrderedMap[K, V] {
	return FromOrderedMap(src, func(_ K, item *V) RefKind[V] {
		return Shared(item)
	}, opts...)
}

func (m *OrderedMap[K, V]) lookup(key K) *Slot[V] {
	entry, ok := m.tree.Get(orderedEntry[K, V]{key: key})
	if !ok {
		return nil
	}
	return entry.slot
}

// Insert stores ref under key, returning the accessor previously held there.
func (m *OrderedMap[K, V]) Insert(key K, ref RefKind[V]) (RefKind[V], bool) {
	slot := m.lookup(key)
	if slot == nil {
		slot = m.arena.slot()
		m.tree.ReplaceOrInsert(orderedEntry[K, V]{key: key, slot: slot})
	}
	return slot.Replace(ref)
}

// InsertShared stores a shared accessor to ptr under key.
func (m *OrderedMap[K, V]) InsertShared(key K, ptr *V) (RefKind[V], bool) {
	return m.Insert(key, Shared(ptr))
}

// InsertExclusive stores an exclusive accessor to ptr under key.
func (m *OrderedMap[K, V]) InsertExclusive(key K, ptr *V) (RefKind[V], bool) {
	return m.Insert(key, Exclusive(ptr))
}

// TryInsertShared is InsertShared that refuses to overwrite an existing key.
func (m *OrderedMap[K, V]) TryInsertShared(key K, ptr *V) error {
	return m.tryInsert(key, Shared(ptr))
}

// TryInsertExclusive is InsertExclusive that refuses to overwrite an existing
// key.
func (m *OrderedMap[K, V]) TryInsertExclusive(key K, ptr *V) error {
	return m.tryInsert(key, Exclusive(ptr))
}

func (m *OrderedMap[K, V]) tryInsert(key K, ref RefKind[V]) error {
	if m.ContainsKey(key) {
		return fmt.Errorf("%w: %s", ErrOccupied, describeKey(key))
	}
	m.Insert(key, ref)
	return nil
}

// Remove deletes key. present reports whether the key existed.
func (m *OrderedMap[K, V]) Remove(key K) (ref RefKind[V], present bool) {
	entry, ok := m.tree.Delete(orderedEntry[K, V]{key: key})
	if !ok {
		return RefKind[V]{}, false
	}
	ref, _ = entry.slot.Take()
	return ref, true
}

// ContainsKey reports whether key holds a slot, empty or not.
func (m *OrderedMap[K, V]) ContainsKey(key K) bool {
	return m.tree.Has(orderedEntry[K, V]{key: key})
}

// Slot returns a read-only view of the slot stored under key.
func (m *OrderedMap[K, V]) Slot(key K) (SlotView[V], bool) {
	slot := m.lookup(key)
	return viewOf(slot), slot != nil
}

// Get reads the value under key without moving an accessor out.
func (m *OrderedMap[K, V]) Get(key K) (V, bool) {
	slot := m.lookup(key)
	if slot == nil {
		var zero V
		return zero, false
	}
	return slot.Peek()
}

// UpdateMut runs fn against the value under key while the exclusive accessor
// stays in its slot.
func (m *OrderedMap[K, V]) UpdateMut(key K, fn func(value *V)) error {
	slot := m.lookup(key)
	if slot == nil {
		return missingError(OpMoveMut, key)
	}
	return wrapAccessError(OpMoveMut, key, slot.WithMut(fn))
}

// TryMoveRef moves a shared view out of the slot under key.
func (m *OrderedMap[K, V]) TryMoveRef(key K) (Ref[V], error) {
	return moveRefAt(&m.cfg, key, m.lookup(key))
}

// MoveRef is TryMoveRef that panics on failure.
func (m *OrderedMap[K, V]) MoveRef(key K) Ref[V] {
	return MoveRef[K, V](m, key)
}

// TryMoveMut moves the exclusive accessor out of the slot under key.
func (m *OrderedMap[K, V]) TryMoveMut(key K) (*V, error) {
	return moveMutAt(&m.cfg, key, m.lookup(key))
}

// MoveMut is TryMoveMut that panics on failure.
func (m *OrderedMap[K, V]) MoveMut(key K) *V {
	return MoveMut[K, V](m, key)
}

// Len returns the number of keys, including those with emptied slots.
func (m *OrderedMap[K, V]) Len() int {
	return m.tree.Len()
}

// Keys yields every key in ascending order.
func (m *OrderedMap[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		m.tree.Ascend(func(entry orderedEntry[K, V]) bool {
			return yield(entry.key)
		})
	}
}

// All yields key/value pairs for every non-empty slot in ascending key order.
func (m *OrderedMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		m.tree.Ascend(readableEntries(yield))
	}
}

// Range yields key/value pairs for non-empty slots with lo <= key < hi.
func (m *OrderedMap[K, V]) Range(lo, hi K) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		m.tree.AscendRange(
			orderedEntry[K, V]{key: lo},
			orderedEntry[K, V]{key: hi},
			readableEntries(yield),
		)
	}
}

func readableEntries[K cmp.Ordered, V any](yield func(K, V) bool) btree.ItemIteratorG[orderedEntry[K, V]] {
	return func(entry orderedEntry[K, V]) bool {
		value, ok := entry.slot.Peek()
		if !ok {
			return true
		}
		return yield(entry.key, value)
	}
}

// Retain keeps only the entries for which keep returns true.
func (m *OrderedMap[K, V]) Retain(keep func(key K, slot SlotView[V]) bool) {
	var drop []orderedEntry[K, V]
	m.tree.Ascend(func(entry orderedEntry[K, V]) bool {
		if !keep(entry.key, viewOf(entry.slot)) {
			drop = append(drop, entry)
		}
		return true
	})
	for _, entry := range drop {
		m.tree.Delete(entry)
	}
}

// Clear removes every entry. B-tree nodes are recycled for later inserts.
func (m *OrderedMap[K, V]) Clear() {
	m.tree.Clear(true)
}

// States tallies the slot states.
func (m *OrderedMap[K, V]) States() StateCounts {
	var counts StateCounts
	m.tree.Ascend(func(entry orderedEntry[K, V]) bool {
		counts.add(entry.slot.State())
		return true
	})
	return counts
}
