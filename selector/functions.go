package selector

import (
	"fmt"
	"slices"
)

// Function is a Go callable exposed to rules by name.
type Function func(args ...any) (any, error)

// Functions maps rule-visible names to Go functions. Evaluators copy the map
// when configured; later edits to it do not reach them.
type Functions map[string]Function

// Names returns the names bound to a non-nil function, sorted.
func (f Functions) Names() []string {
	names := make([]string, 0, len(f))
	for name, fn := range f {
		if fn != nil {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Call runs the function bound to name.
func (f Functions) Call(name string, args ...any) (any, error) {
	fn := f[name]
	if fn == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
	return fn(args...)
}
