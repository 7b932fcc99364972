// Package refkind hands out a mix of shared and exclusive accessors from a
// collection of values, one slot per element.
//
// # Accessors
//
// A RefKind carries either a shared accessor (a Ref, read-only and freely
// copied) or an exclusive accessor (a *T). Each collection element lives in a
// Slot that follows a small state machine:
//
//	Exclusive --MoveMut--> Empty
//	Exclusive --MoveRef--> Shared
//	Shared    --MoveRef--> Shared
//	Shared    --MoveMut--> error BorrowedMutably
//	Empty     --any-----> error NotFound
//
// An exclusive accessor is therefore handed out at most once, and never while
// a shared view from the same slot exists.
//
// # Collections
//
// Slice, Map, OrderedMap and Cursor implement Many, the keyed move protocol.
// Failures are *AccessError values that unwrap to a MoveError, so both
// errors.Is(err, refkind.NotFound) and IsMissing(err) work.
//
//	items := []Item{{Name: "a"}, {Name: "b"}, {Name: "c"}}
//	s := refkind.ExclusiveSlice(items)
//	a := s.MoveMut(0)     // exclusive
//	b := s.MoveRef(1)     // shared, slot 1 downgraded
//	_, err := s.TryMoveMut(1)
//	// err: BorrowedMutably
//	a.Name = b.Get().Name
//
// Map and OrderedMap also offer the insert, remove and retain operations of a
// regular map, with OrderedMap iterating in ascending key order. UpdateMut
// edits a value in place without moving its accessor out. Lookups and Retain
// see a SlotView, which can read a slot but not refill it.
//
// # Arenas
//
// FromSliceIn, NewMapIn and NewOrderedMapIn take their slot storage from an
// Arena. Reset rewinds the arena so a rebuilt collection reuses the same
// chunks.
//
// # Logging
//
// WithMoveLogger attaches a MoveLogger that sees one MoveEvent per
// collection-level move. SlogLogger adapts a *slog.Logger.
//
// Rule-driven selection of which slots to move lives in the selector
// subpackage.
package refkind
