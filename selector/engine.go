package selector

import "maps"

// engine is the state every evaluator carries: the name it reports in errors
// and log events, an optional program cache and the functions rules may call.
type engine struct {
	name      string
	cache     ProgramCache
	functions Functions
}

// ExprEvaluatorOption configures an expr evaluator instance.
type ExprEvaluatorOption func(*engine)

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*engine)

// JSEvaluatorOption configures the JS evaluator. Options are accepted in every
// build so callers need not carry the js_eval tag themselves.
type JSEvaluatorOption func(*engine)

// ExprWithProgramCache wires a ProgramCache into the expr evaluator.
func ExprWithProgramCache(cache ProgramCache) ExprEvaluatorOption {
	return func(e *engine) { e.cache = cache }
}

// ExprWithFunctions exposes fns to expr rules.
func ExprWithFunctions(fns Functions) ExprEvaluatorOption {
	return func(e *engine) { e.functions = maps.Clone(fns) }
}

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *engine) { e.cache = cache }
}

// CELWithFunctions exposes fns to CEL rules. They are callable directly with
// one or two arguments, or through call(name, ...).
func CELWithFunctions(fns Functions) CELEvaluatorOption {
	return func(e *engine) { e.functions = maps.Clone(fns) }
}

// JSWithProgramCache wires a ProgramCache into the JS evaluator.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(e *engine) { e.cache = cache }
}

// JSWithFunctions exposes fns to JS rules.
func JSWithFunctions(fns Functions) JSEvaluatorOption {
	return func(e *engine) { e.functions = maps.Clone(fns) }
}

func newEngine[O ~func(*engine)](name string, opts []O) engine {
	e := engine{name: name}
	for _, opt := range opts {
		if opt != nil {
			opt(&e)
		}
	}
	return e
}

func (e *engine) Engine() string {
	return e.name
}

// program returns the compiled form of expression, compiling and caching it
// on a miss. A cached value of the wrong type counts as a miss.
func program[P any](e *engine, expression string, compile func() (P, error)) (P, error) {
	var zero P
	if expression == "" {
		return zero, wrapEvaluatorError(e.name, ErrEmptyExpression)
	}
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if prog, ok := cached.(P); ok {
				return prog, nil
			}
		}
	}
	prog, err := compile()
	if err != nil {
		return zero, wrapEvaluationError(e.name, expression, "", err)
	}
	if e.cache != nil {
		e.cache.Set(expression, prog)
	}
	return prog, nil
}
