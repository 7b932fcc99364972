package selector

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/goliatone/go-refkind"
)

var evaluatorFactories = []struct {
	name string
	new  func(cache ProgramCache, fns Functions) Evaluator
}{
	{
		name: "expr",
		new: func(cache ProgramCache, fns Functions) Evaluator {
			opts := []ExprEvaluatorOption{}
			if cache != nil {
				opts = append(opts, ExprWithProgramCache(cache))
			}
			if fns != nil {
				opts = append(opts, ExprWithFunctions(fns))
			}
			return NewExprEvaluator(opts...)
		},
	},
	{
		name: "cel",
		new: func(cache ProgramCache, fns Functions) Evaluator {
			opts := []CELEvaluatorOption{}
			if cache != nil {
				opts = append(opts, CELWithProgramCache(cache))
			}
			if fns != nil {
				opts = append(opts, CELWithFunctions(fns))
			}
			return NewCELEvaluator(opts...)
		},
	},
	{
		name: "js",
		new: func(cache ProgramCache, fns Functions) Evaluator {
			opts := []JSEvaluatorOption{}
			if cache != nil {
				opts = append(opts, JSWithProgramCache(cache))
			}
			if fns != nil {
				opts = append(opts, JSWithFunctions(fns))
			}
			return NewJSEvaluator(opts...)
		},
	},
}

func newEvaluator(t *testing.T, name string, cache ProgramCache, fns Functions) Evaluator {
	t.Helper()
	for _, factory := range evaluatorFactories {
		if factory.name != name {
			continue
		}
		ev := factory.new(cache, fns)
		if ev == nil {
			t.Skipf("%s evaluator not available in this build", name)
		}
		return ev
	}
	t.Fatalf("unknown evaluator %q", name)
	return nil
}

type inventoryCase struct {
	Name   string         `json:"name"`
	Rule   string         `json:"rule"`
	Args   map[string]any `json:"args"`
	Expect []string       `json:"expect"`
}

type inventoryFixture struct {
	Description string                    `json:"description"`
	Items       map[string]map[string]any `json:"items"`
	Cases       []inventoryCase           `json:"cases"`
}

func loadFixture[T any](t *testing.T, name string) T {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("unable to resolve caller for fixture %q", name)
	}
	path := filepath.Join(filepath.Dir(file), "testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %q: %v", path, err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("failed to unmarshal fixture %q: %v", path, err)
	}
	return out
}

func inventory(fx inventoryFixture) *refkind.OrderedMap[string, map[string]any] {
	src := make(map[string]*map[string]any, len(fx.Items))
	for key, item := range fx.Items {
		src[key] = &item
	}
	return refkind.ExclusiveOrderedMap(src)
}

func TestMatchKeysInventoryFixture(t *testing.T) {
	fx := loadFixture[inventoryFixture](t, "inventory_rules.json")

	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			ev := newEvaluator(t, factory.name, nil, nil)
			for _, tc := range fx.Cases {
				t.Run(tc.Name, func(t *testing.T) {
					keys, err := MatchKeys[string, map[string]any](inventory(fx), ev, tc.Rule, WithArgs(tc.Args))
					if err != nil {
						t.Fatalf("unexpected error from MatchKeys(%q): %v", tc.Rule, err)
					}
					if !slices.Equal(keys, tc.Expect) {
						t.Fatalf("expected %v, got %v", tc.Expect, keys)
					}
				})
			}
		})
	}
}

func TestMatchKeysRejectsNonBool(t *testing.T) {
	fx := loadFixture[inventoryFixture](t, "inventory_rules.json")

	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			ev := newEvaluator(t, factory.name, nil, nil)
			_, err := MatchKeys[string, map[string]any](inventory(fx), ev, "value.stock")
			if !errors.Is(err, ErrNotBool) {
				t.Fatalf("expected ErrNotBool, got %v", err)
			}
			var evalErr *EvaluationError
			if !errors.As(err, &evalErr) {
				t.Fatalf("expected EvaluationError, got %T", err)
			}
			if evalErr.Engine != factory.name || evalErr.Key != "apple" || evalErr.Expr != "value.stock" {
				t.Fatalf("unexpected error metadata %+v", evalErr)
			}
		})
	}
}

func TestMatchKeysCompileError(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			ev := newEvaluator(t, factory.name, nil, nil)
			s := refkind.SharedSlice([]int{1})
			_, err := MatchKeys[int, int](s, ev, "value >")
			var evalErr *EvaluationError
			if !errors.As(err, &evalErr) {
				t.Fatalf("expected EvaluationError, got %v", err)
			}
			if evalErr.Engine != factory.name {
				t.Fatalf("expected engine %q, got %q", factory.name, evalErr.Engine)
			}

			if _, err := MatchKeys[int, int](s, ev, ""); !errors.Is(err, ErrEmptyExpression) {
				t.Fatalf("expected ErrEmptyExpression, got %v", err)
			}
		})
	}
}

func TestMoveMutWhereOverSlice(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			ev := newEvaluator(t, factory.name, nil, nil)
			items := []int{1, 2, 3, 4, 5, 6}
			s := refkind.ExclusiveSlice(items)

			matches, err := MoveMutWhere[int, int](s, ev, "value % 2 == 0 && index < 5")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(matches) != 2 || matches[0].Key != 1 || matches[1].Key != 3 {
				t.Fatalf("unexpected matches %+v", matches)
			}
			for _, match := range matches {
				*match.Access *= 10
			}
			if !slices.Equal(items, []int{1, 20, 3, 40, 5, 6}) {
				t.Fatalf("unexpected items %v", items)
			}
			if _, err := s.TryMoveMut(1); !errors.Is(err, refkind.NotFound) {
				t.Fatalf("expected moved slot to be empty, got %v", err)
			}
		})
	}
}

func TestMoveMutWhereStopsAtSharedMatch(t *testing.T) {
	items := []int{2, 4, 6}
	s := refkind.FromSlice(items, func(i int, item *int) refkind.RefKind[int] {
		if i == 1 {
			return refkind.Shared(item)
		}
		return refkind.Exclusive(item)
	})

	matches, err := MoveMutWhere[int, int](s, nil, "value > 0")
	if !errors.Is(err, refkind.BorrowedMutably) {
		t.Fatalf("expected BorrowedMutably, got %v", err)
	}
	if len(matches) != 1 || matches[0].Key != 0 || matches[0].Access != &items[0] {
		t.Fatalf("expected the accessor moved before the failure, got %+v", matches)
	}
}

func TestMoveRefWhereDowngrades(t *testing.T) {
	x, y, z := 1, 42, 7
	m := refkind.ExclusiveMap(map[string]*int{"x": &x, "y": &y, "z": &z})

	matches, err := MoveRefWhere[string, int](m, NewCELEvaluator(), "value > 5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected two matches, got %+v", matches)
	}
	for _, match := range matches {
		if _, err := m.TryMoveMut(match.Key); !errors.Is(err, refkind.BorrowedMutably) {
			t.Fatalf("expected %s to be downgraded, got %v", match.Key, err)
		}
	}
	if ptr := m.MoveMut("x"); *ptr != 1 {
		t.Fatalf("unmatched entry must keep its exclusive accessor")
	}
}

func twice(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("twice expects one argument")
	}
	n, err := toFloat(args[0])
	if err != nil {
		return nil, err
	}
	return n * 2, nil
}

func TestFunctionsAcrossEngines(t *testing.T) {
	fns := Functions{"twice": twice}

	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			ev := newEvaluator(t, factory.name, nil, fns)
			s := refkind.SharedSlice([]int{1, 3, 5})
			keys, err := MatchKeys[int, int](s, ev, "twice(value) > 5")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(keys, []int{1, 2}) {
				t.Fatalf("expected [1 2], got %v", keys)
			}

			keys, err = MatchKeys[int, int](s, ev, "call('twice', value) > 9")
			if err != nil {
				t.Fatalf("unexpected error from call: %v", err)
			}
			if !slices.Equal(keys, []int{2}) {
				t.Fatalf("expected [2], got %v", keys)
			}

			if _, err := MatchKeys[int, int](s, ev, "call('thrice', value) > 0"); err == nil {
				t.Fatalf("expected unknown function to fail")
			}
		})
	}
}

func TestFunctionsCopiedOnConfigure(t *testing.T) {
	fns := Functions{"twice": twice}
	ev := NewExprEvaluator(ExprWithFunctions(fns))
	fns["twice"] = func(...any) (any, error) { return 0.0, nil }
	delete(fns, "twice")

	keys, err := MatchKeys[int, int](refkind.SharedSlice([]int{1, 4}), ev, "twice(value) > 5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(keys, []int{1}) {
		t.Fatalf("expected evaluator to keep its own copy, got %v", keys)
	}
}

func TestFunctionsCall(t *testing.T) {
	fns := Functions{"twice": twice, "unset": nil}
	if got := fns.Names(); !slices.Equal(got, []string{"twice"}) {
		t.Fatalf("expected only bound names, got %v", got)
	}
	got, err := fns.Call("twice", 4)
	if err != nil || got != 8.0 {
		t.Fatalf("expected 8, got %v err=%v", got, err)
	}
	if _, err := fns.Call("unset"); !errors.Is(err, ErrUnknownFunction) {
		t.Fatalf("expected ErrUnknownFunction, got %v", err)
	}
	var none Functions
	if _, err := none.Call("twice", 1); !errors.Is(err, ErrUnknownFunction) {
		t.Fatalf("expected ErrUnknownFunction from nil set, got %v", err)
	}
}

func TestProgramCacheReused(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			cache := NewMemoryCache()
			ev := newEvaluator(t, factory.name, cache, nil)
			s := refkind.SharedSlice([]int{1, 2, 3})

			for range 3 {
				if _, err := MatchKeys[int, int](s, ev, "value >= 2"); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}
			if cache.Len() != 1 {
				t.Fatalf("expected one cached program, got %d", cache.Len())
			}
		})
	}
}

func TestEvaluatorLoggerPerElement(t *testing.T) {
	var events []EvaluatorLogEvent
	logger := EvaluatorLoggerFunc(func(event EvaluatorLogEvent) {
		events = append(events, event)
	})
	s := refkind.SharedSlice([]string{"a", "bb", "ccc"})

	keys, err := MatchKeys[int, string](s, nil, "len(value) > 1", WithEvaluatorLogger(logger))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(keys, []int{1, 2}) {
		t.Fatalf("expected [1 2], got %v", keys)
	}
	if len(events) != 3 {
		t.Fatalf("expected one event per element, got %d", len(events))
	}
	if events[0].Engine != "expr" || events[0].Matched || events[0].Key != "0" {
		t.Fatalf("unexpected first event %+v", events[0])
	}
	if !events[2].Matched || events[2].Err != nil {
		t.Fatalf("unexpected last event %+v", events[2])
	}
}

func TestEvaluateDirect(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			ev := newEvaluator(t, factory.name, nil, nil)
			ctx := RuleContext{Key: "k", Value: map[string]any{"n": 3}, Metadata: map[string]any{"env": "prod"}}
			got, err := ev.Evaluate(ctx, "metadata.env == 'prod' && value.n == 3")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != true {
				t.Fatalf("expected true, got %v", got)
			}
		})
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", v)
	}
}
