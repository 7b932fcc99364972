package refkind

import "fmt"

// Kind identifies the accessor carried by a RefKind.
type Kind uint8

const (
	// KindShared marks a read-only accessor. Shared accessors are freely
	// copyable and any number of them may view the same value.
	KindShared Kind = iota + 1
	// KindExclusive marks a read-write accessor. At most one is handed out
	// for a given value.
	KindExclusive
)

func (k Kind) String() string {
	switch k {
	case KindShared:
		return "shared"
	case KindExclusive:
		return "exclusive"
	default:
		return "none"
	}
}

// Ref is a shared, read-only view of a value. Refs are comparable and two Refs
// are equal when they view the same value.
type Ref[T any] struct {
	ptr *T
}

// RefOf wraps ptr as a shared view.
func RefOf[T any](ptr *T) Ref[T] {
	mustPointer(ptr)
	return Ref[T]{ptr: ptr}
}

// Get returns a copy of the viewed value. The zero Ref yields the zero value.
func (r Ref[T]) Get() T {
	if r.ptr == nil {
		var zero T
		return zero
	}
	return *r.ptr
}

// IsNil reports whether r is the zero Ref.
func (r Ref[T]) IsNil() bool {
	return r.ptr == nil
}

// Same reports whether r and other view the same value.
func (r Ref[T]) Same(other Ref[T]) bool {
	return r.ptr == other.ptr
}

func (r Ref[T]) String() string {
	if r.ptr == nil {
		return "Ref(<nil>)"
	}
	return fmt.Sprintf("Ref(%v)", *r.ptr)
}

// RefKind holds either a shared or an exclusive accessor to a value of type T.
// The zero RefKind holds neither and is what an empty Slot contains.
type RefKind[T any] struct {
	kind Kind
	ptr  *T
}

// Shared wraps ptr as a shared accessor.
func Shared[T any](ptr *T) RefKind[T] {
	mustPointer(ptr)
	return RefKind[T]{kind: KindShared, ptr: ptr}
}

// Exclusive wraps ptr as an exclusive accessor. The caller hands over its
// right to mutate through ptr.
func Exclusive[T any](ptr *T) RefKind[T] {
	mustPointer(ptr)
	return RefKind[T]{kind: KindExclusive, ptr: ptr}
}

// FromRef converts an existing shared view into a RefKind.
func FromRef[T any](ref Ref[T]) RefKind[T] {
	mustPointer(ref.ptr)
	return RefKind[T]{kind: KindShared, ptr: ref.ptr}
}

// Kind returns the accessor kind, or 0 for the zero RefKind.
func (k RefKind[T]) Kind() Kind {
	return k.kind
}

// IsShared reports whether k carries a shared accessor.
func (k RefKind[T]) IsShared() bool {
	return k.kind == KindShared
}

// IsExclusive reports whether k carries an exclusive accessor.
func (k RefKind[T]) IsExclusive() bool {
	return k.kind == KindExclusive
}

func (k RefKind[T]) valid() bool {
	return k.kind != 0 && k.ptr != nil
}

// AsShared returns the shared accessor. It fails for exclusive accessors:
// downgrading is only done explicitly through Downgrade.
func (k RefKind[T]) AsShared() (Ref[T], bool) {
	if k.kind != KindShared {
		return Ref[T]{}, false
	}
	return Ref[T]{ptr: k.ptr}, true
}

// AsExclusive returns the exclusive accessor when k carries one.
func (k RefKind[T]) AsExclusive() (*T, bool) {
	if k.kind != KindExclusive {
		return nil, false
	}
	return k.ptr, true
}

// Downgrade converts either variant into a shared view. Once an exclusive
// accessor has been downgraded the caller must stop using the exclusive form.
func (k RefKind[T]) Downgrade() Ref[T] {
	return Ref[T]{ptr: k.ptr}
}

// UnwrapShared returns the shared accessor and panics when k is exclusive.
func (k RefKind[T]) UnwrapShared() Ref[T] {
	ref, ok := k.AsShared()
	if !ok {
		panic(fmt.Sprintf("refkind: called RefKind.UnwrapShared() on a %s value", k.kind))
	}
	return ref
}

// UnwrapExclusive returns the exclusive accessor and panics when k is shared.
func (k RefKind[T]) UnwrapExclusive() *T {
	ptr, ok := k.AsExclusive()
	if !ok {
		panic(fmt.Sprintf("refkind: called RefKind.UnwrapExclusive() on a %s value", k.kind))
	}
	return ptr
}

// Get reads the value through either accessor kind.
func (k RefKind[T]) Get() T {
	if k.ptr == nil {
		var zero T
		return zero
	}
	return *k.ptr
}

func (k RefKind[T]) String() string {
	switch k.kind {
	case KindShared:
		return fmt.Sprintf("Shared(%v)", *k.ptr)
	case KindExclusive:
		return fmt.Sprintf("Exclusive(%v)", *k.ptr)
	default:
		return "None"
	}
}

func mustPointer[T any](ptr *T) {
	if ptr == nil {
		panic("refkind: nil pointer")
	}
}
