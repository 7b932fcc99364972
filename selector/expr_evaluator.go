package selector

import (
	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// exprEvaluator runs rules with github.com/expr-lang/expr. Programs are
// compiled against an open environment so one program serves every element.
type exprEvaluator struct {
	engine
}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr. It is the
// default engine.
func NewExprEvaluator(opts ...ExprEvaluatorOption) Evaluator {
	return &exprEvaluator{engine: newEngine("expr", opts)}
}

func (e *exprEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *exprEvaluator) Compile(expression string) (CompiledRule, error) {
	prog, err := program(&e.engine, expression, func() (*exprvm.Program, error) {
		return exprlang.Compile(expression, e.compileOptions()...)
	})
	if err != nil {
		return nil, err
	}
	return &exprCompiledRule{
		evaluator:  e,
		program:    prog,
		expression: expression,
	}, nil
}

func (e *exprEvaluator) compileOptions() []exprlang.Option {
	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	for _, name := range e.functions.Names() {
		fn := e.functions[name]
		options = append(options, exprlang.Function(name, func(arguments ...any) (any, error) {
			return fn(arguments...)
		}))
	}
	return options
}

func (e *exprEvaluator) environment(ctx RuleContext) map[string]any {
	env := ctx.bindings()
	if len(e.functions) > 0 {
		env["call"] = func(name string, arguments ...any) (any, error) {
			return e.functions.Call(name, arguments...)
		}
	}
	return env
}

type exprCompiledRule struct {
	evaluator  *exprEvaluator
	program    *exprvm.Program
	expression string
}

func (r *exprCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaults()
	result, err := exprlang.Run(r.program, r.evaluator.environment(ctx))
	if err != nil {
		return nil, wrapEvaluationError(r.evaluator.name, r.expression, ctx.keyLabel(), err)
	}
	return result, nil
}
