//go:build js_eval

package selector

import (
	"fmt"

	"github.com/dop251/goja"
)

// jsEvaluator runs rules with github.com/dop251/goja. Each evaluation gets a
// fresh runtime, so compiled programs may be shared across goroutines.
type jsEvaluator struct {
	engine
}

// NewJSEvaluator constructs an Evaluator backed by goja.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	return &jsEvaluator{engine: newEngine("js", opts)}
}

// JSEvaluatorAvailable reports whether NewJSEvaluator returns a usable engine.
func JSEvaluatorAvailable() bool {
	return true
}

func (e *jsEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *jsEvaluator) Compile(expression string) (CompiledRule, error) {
	prog, err := program(&e.engine, expression, func() (*goja.Program, error) {
		return goja.Compile("", wrapExpression(expression), true)
	})
	if err != nil {
		return nil, err
	}
	return &jsCompiledRule{
		evaluator:  e,
		expression: expression,
		program:    prog,
	}, nil
}

func (e *jsEvaluator) run(ctx RuleContext, prog *goja.Program) (any, error) {
	vm := goja.New()
	for name, value := range ctx.bindings() {
		if err := vm.Set(name, value); err != nil {
			return nil, err
		}
	}
	if err := e.bindFunctions(vm); err != nil {
		return nil, err
	}
	value, err := vm.RunProgram(prog)
	if err != nil {
		return nil, err
	}
	return value.Export(), nil
}

func (e *jsEvaluator) bindFunctions(vm *goja.Runtime) error {
	if len(e.functions) == 0 {
		return nil
	}
	if err := vm.Set("call", func(name string, arguments ...any) (any, error) {
		return e.functions.Call(name, arguments...)
	}); err != nil {
		return err
	}
	for _, name := range e.functions.Names() {
		fn := e.functions[name]
		if err := vm.Set(name, func(arguments ...any) (any, error) {
			return fn(arguments...)
		}); err != nil {
			return err
		}
	}
	return nil
}

func wrapExpression(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}

type jsCompiledRule struct {
	evaluator  *jsEvaluator
	expression string
	program    *goja.Program
}

func (r *jsCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaults()
	result, err := r.evaluator.run(ctx, r.program)
	if err != nil {
		return nil, wrapEvaluationError(r.evaluator.name, r.expression, ctx.keyLabel(), err)
	}
	return result, nil
}
