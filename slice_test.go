package refkind

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func tenExclusive() ([]int, *Slice[int]) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	return items, ExclusiveSlice(items)
}

func TestSliceMoveMutOnce(t *testing.T) {
	items, s := tenExclusive()

	ptr, err := s.TryMoveMut(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ptr != &items[1] {
		t.Fatalf("expected pointer to element 1")
	}
	*ptr = 100
	if items[1] != 100 {
		t.Fatalf("expected write through exclusive accessor, got %d", items[1])
	}

	_, err = s.TryMoveMut(1)
	if !errors.Is(err, NotFound) {
		t.Fatalf("expected NotFound on second move_mut, got %v", err)
	}
	if IsMissing(err) {
		t.Fatalf("emptied slot must not be reported as a missing location")
	}
}

func TestSliceMoveRefRepeats(t *testing.T) {
	_, s := tenExclusive()

	first, err := s.TryMoveRef(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := s.TryMoveRef(4)
	if err != nil {
		t.Fatalf("unexpected error on repeated move_ref: %v", err)
	}
	if first.Get() != 4 || second.Get() != 4 || !first.Same(second) {
		t.Fatalf("expected equal shared views of 4, got %s and %s", first, second)
	}
}

func TestSliceMoveRefAfterMoveMut(t *testing.T) {
	_, s := tenExclusive()
	s.MoveMut(1)

	_, err := s.TryMoveRef(1)
	kind, ok := KindOf(err)
	if !ok || kind != NotFound {
		t.Fatalf("expected NotFound kind, got %v", err)
	}
}

func TestSliceOutOfRange(t *testing.T) {
	_, s := tenExclusive()
	for _, i := range []int{-1, 10, 42} {
		_, err := s.TryMoveMut(i)
		if !errors.Is(err, NotFound) || !IsMissing(err) {
			t.Fatalf("expected missing NotFound for index %d, got %v", i, err)
		}
	}
}

func TestSliceSlotViewStaysEmpty(t *testing.T) {
	items, s := tenExclusive()
	s.MoveMut(2)

	view, ok := s.Slot(2)
	if !ok || view.State() != SlotEmpty {
		t.Fatalf("expected empty view at 2, got %s ok=%v", view, ok)
	}
	if _, ok := s.Slot(10); ok {
		t.Fatalf("expected no view past the end")
	}
	if _, err := s.TryMoveMut(2); !errors.Is(err, NotFound) || IsMissing(err) {
		t.Fatalf("expected emptied position to stay empty, got %v", err)
	}

	view, _ = s.Slot(3)
	if got, ok := view.Peek(); !ok || got != items[3] || view.State() != SlotExclusive {
		t.Fatalf("expected exclusive view of %d, got %d ok=%v", items[3], got, ok)
	}
}

func TestSliceMixedAccess(t *testing.T) {
	items := []string{"a", "b", "c"}
	s := ExclusiveSlice(items)

	a := s.MoveMut(0)
	b := s.MoveRef(1)
	c := s.MoveMut(2)
	*a = b.Get() + "!"
	*c = "z"

	if _, err := s.TryMoveMut(1); !errors.Is(err, BorrowedMutably) {
		t.Fatalf("expected BorrowedMutably for downgraded slot, got %v", err)
	}
	if diff := cmp.Diff([]string{"b!", "b", "z"}, items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
	want := StateCounts{Empty: 2, Shared: 1}
	if diff := cmp.Diff(want, s.States()); diff != "" {
		t.Fatalf("state counts mismatch (-want +got):\n%s", diff)
	}
}

func TestSliceMoveMutsStopsAtFailure(t *testing.T) {
	_, s := tenExclusive()

	ptrs, err := MoveMuts[int, int](s, 2, 3, 2, 5)
	if !errors.Is(err, NotFound) {
		t.Fatalf("expected NotFound on repeated key, got %v", err)
	}
	if len(ptrs) != 2 || *ptrs[0] != 2 || *ptrs[1] != 3 {
		t.Fatalf("expected the two accessors moved before failure, got %v", ptrs)
	}
	if _, err := s.TryMoveMut(5); err != nil {
		t.Fatalf("keys after the failure must be untouched, got %v", err)
	}
}

func TestSliceFromSliceWrap(t *testing.T) {
	items := []int{1, 2, 3, 4}
	s := FromSlice(items, func(i int, item *int) RefKind[int] {
		switch {
		case i == 3:
			return RefKind[int]{}
		case *item%2 == 0:
			return Exclusive(item)
		default:
			return Shared(item)
		}
	})

	got := map[int]int{}
	for i, v := range s.All() {
		got[i] = v
	}
	if diff := cmp.Diff(map[int]int{0: 1, 1: 2, 2: 3}, got); diff != "" {
		t.Fatalf("All mismatch (-want +got):\n%s", diff)
	}
	if _, err := s.TryMoveMut(0); !errors.Is(err, BorrowedMutably) {
		t.Fatalf("expected shared element to refuse move_mut, got %v", err)
	}
	if _, err := s.TryMoveMut(3); !errors.Is(err, NotFound) || IsMissing(err) {
		t.Fatalf("expected empty slot NotFound, got %v", err)
	}
}

func TestSlicePanickingMoveCarriesLocation(t *testing.T) {
	_, s := tenExclusive()
	defer func() {
		err, ok := recover().(error)
		if !ok {
			t.Fatalf("expected error panic")
		}
		var accessErr *AccessError
		if !errors.As(err, &accessErr) || accessErr.Key != 11 || accessErr.Op != OpMoveRef {
			t.Fatalf("unexpected panic value %v", err)
		}
	}()
	s.MoveRef(11)
}
