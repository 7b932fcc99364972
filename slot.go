package refkind

// SlotState is the observable state of a Slot.
type SlotState uint8

const (
	SlotEmpty SlotState = iota
	SlotShared
	SlotExclusive
)

func (s SlotState) String() string {
	switch s {
	case SlotShared:
		return "shared"
	case SlotExclusive:
		return "exclusive"
	default:
		return "empty"
	}
}

// Slot holds at most one accessor. The zero Slot is empty.
//
// Transitions:
//
//	Exclusive --MoveMut--> Empty      returns *T
//	Exclusive --MoveRef--> Shared     downgrades, returns Ref[T]
//	Shared    --MoveRef--> Shared     returns a copy of the Ref
//	Shared    --MoveMut--> Shared     fails with BorrowedMutably
//	Empty     --any-----> Empty       fails with NotFound
//
// While WithMut runs, every move out of the slot fails with BorrowedMutably.
type Slot[T any] struct {
	ref  RefKind[T]
	lent bool
}

// NewSlot returns a slot populated with ref. A zero ref yields an empty slot.
func NewSlot[T any](ref RefKind[T]) Slot[T] {
	if !ref.valid() {
		return Slot[T]{}
	}
	return Slot[T]{ref: ref}
}

// State reports the current state.
func (s *Slot[T]) State() SlotState {
	switch s.ref.kind {
	case KindShared:
		return SlotShared
	case KindExclusive:
		return SlotExclusive
	default:
		return SlotEmpty
	}
}

// IsEmpty reports whether the slot no longer holds an accessor.
func (s *Slot[T]) IsEmpty() bool {
	return s.State() == SlotEmpty
}

// TryMoveRef moves a shared view out of the slot. An exclusive accessor is
// downgraded in place so the slot keeps serving shared views afterwards.
func (s *Slot[T]) TryMoveRef() (Ref[T], error) {
	if s.lent {
		return Ref[T]{}, BorrowedMutably
	}
	switch s.ref.kind {
	case KindShared:
		return Ref[T]{ptr: s.ref.ptr}, nil
	case KindExclusive:
		ref := s.ref.Downgrade()
		s.ref = RefKind[T]{kind: KindShared, ptr: ref.ptr}
		return ref, nil
	default:
		return Ref[T]{}, NotFound
	}
}

// MoveRef is TryMoveRef that panics on failure.
func (s *Slot[T]) MoveRef() Ref[T] {
	ref, err := s.TryMoveRef()
	if err != nil {
		panic(err)
	}
	return ref
}

// TryMoveMut moves the exclusive accessor out of the slot, leaving it empty.
// It succeeds at most once per exclusive accessor.
func (s *Slot[T]) TryMoveMut() (*T, error) {
	if s.lent {
		return nil, BorrowedMutably
	}
	switch s.ref.kind {
	case KindExclusive:
		ptr := s.ref.ptr
		s.ref = RefKind[T]{}
		return ptr, nil
	case KindShared:
		return nil, BorrowedMutably
	default:
		return nil, NotFound
	}
}

// MoveMut is TryMoveMut that panics on failure.
func (s *Slot[T]) MoveMut() *T {
	ptr, err := s.TryMoveMut()
	if err != nil {
		panic(err)
	}
	return ptr
}

// Take empties the slot and returns what it held. A slot lent to WithMut
// cannot be taken.
func (s *Slot[T]) Take() (RefKind[T], bool) {
	if s.lent || s.IsEmpty() {
		return RefKind[T]{}, false
	}
	ref := s.ref
	s.ref = RefKind[T]{}
	return ref, true
}

// Replace stores ref and returns the previous content, if any. It is a no-op
// on a slot lent to WithMut.
func (s *Slot[T]) Replace(ref RefKind[T]) (RefKind[T], bool) {
	if s.lent {
		return RefKind[T]{}, false
	}
	prev, ok := s.Take()
	if ref.valid() {
		s.ref = ref
	}
	return prev, ok
}

// Peek reads the value without moving anything out of the slot.
func (s *Slot[T]) Peek() (T, bool) {
	if s.IsEmpty() {
		var zero T
		return zero, false
	}
	return *s.ref.ptr, true
}

// WithMut lends the exclusive accessor to fn without moving it out. The
// slot stays exclusive, and moves attempted from inside fn are refused.
// fn must not keep ptr after it returns.
func (s *Slot[T]) WithMut(fn func(ptr *T)) error {
	if s.lent {
		return BorrowedMutably
	}
	switch s.ref.kind {
	case KindExclusive:
		s.lent = true
		defer func() { s.lent = false }()
		fn(s.ref.ptr)
		return nil
	case KindShared:
		return BorrowedMutably
	default:
		return NotFound
	}
}

func (s Slot[T]) String() string {
	return s.ref.String()
}

// SlotView is a read-only handle on a slot owned by a collection. It reports
// state and reads values but cannot move, take or replace accessors. The zero
// SlotView reads as empty.
type SlotView[T any] struct {
	slot *Slot[T]
}

func viewOf[T any](slot *Slot[T]) SlotView[T] {
	return SlotView[T]{slot: slot}
}

func (v SlotView[T]) State() SlotState {
	if v.slot == nil {
		return SlotEmpty
	}
	return v.slot.State()
}

func (v SlotView[T]) IsEmpty() bool {
	return v.State() == SlotEmpty
}

// Peek reads the value behind the slot.
func (v SlotView[T]) Peek() (T, bool) {
	if v.slot == nil {
		var zero T
		return zero, false
	}
	return v.slot.Peek()
}

func (v SlotView[T]) String() string {
	if v.slot == nil {
		return Slot[T]{}.String()
	}
	return v.slot.String()
}
