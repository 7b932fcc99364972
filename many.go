package refkind

// Many is implemented by collections of slots addressed by K. A failed move
// returns an *AccessError that unwraps to a MoveError.
type Many[K any, T any] interface {
	TryMoveRef(key K) (Ref[T], error)
	TryMoveMut(key K) (*T, error)
}

// MoveRef moves a shared view out of m and panics on failure.
func MoveRef[K any, T any](m Many[K, T], key K) Ref[T] {
	ref, err := m.TryMoveRef(key)
	if err != nil {
		panic(err)
	}
	return ref
}

// MoveMut moves an exclusive accessor out of m and panics on failure.
func MoveMut[K any, T any](m Many[K, T], key K) *T {
	ptr, err := m.TryMoveMut(key)
	if err != nil {
		panic(err)
	}
	return ptr
}

// MoveRefs moves shared views for every key, in order, stopping at the first
// failure. Views moved before the failure are returned alongside the error.
func MoveRefs[K any, T any](m Many[K, T], keys ...K) ([]Ref[T], error) {
	refs := make([]Ref[T], 0, len(keys))
	for _, key := range keys {
		ref, err := m.TryMoveRef(key)
		if err != nil {
			return refs, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// MoveMuts moves exclusive accessors for every key, in order, stopping at the
// first failure. Repeating a key fails on its second occurrence with NotFound.
func MoveMuts[K any, T any](m Many[K, T], keys ...K) ([]*T, error) {
	ptrs := make([]*T, 0, len(keys))
	for _, key := range keys {
		ptr, err := m.TryMoveMut(key)
		if err != nil {
			return ptrs, err
		}
		ptrs = append(ptrs, ptr)
	}
	return ptrs, nil
}

func moveRefAt[T any](cfg *config, key any, slot *Slot[T]) (Ref[T], error) {
	if slot == nil {
		err := missingError(OpMoveRef, key)
		cfg.log(OpMoveRef, key, SlotEmpty, SlotEmpty, err)
		return Ref[T]{}, err
	}
	from := slot.State()
	ref, err := slot.TryMoveRef()
	err = wrapAccessError(OpMoveRef, key, err)
	cfg.log(OpMoveRef, key, from, slot.State(), err)
	return ref, err
}

func moveMutAt[T any](cfg *config, key any, slot *Slot[T]) (*T, error) {
	if slot == nil {
		err := missingError(OpMoveMut, key)
		cfg.log(OpMoveMut, key, SlotEmpty, SlotEmpty, err)
		return nil, err
	}
	from := slot.State()
	ptr, err := slot.TryMoveMut()
	err = wrapAccessError(OpMoveMut, key, err)
	cfg.log(OpMoveMut, key, from, slot.State(), err)
	return ptr, err
}

// StateCounts tallies slot states across a collection.
type StateCounts struct {
	Empty     int
	Shared    int
	Exclusive int
}

func (c *StateCounts) add(state SlotState) {
	switch state {
	case SlotShared:
		c.Shared++
	case SlotExclusive:
		c.Exclusive++
	default:
		c.Empty++
	}
}
