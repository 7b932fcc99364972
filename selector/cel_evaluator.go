package selector

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// celEvaluator runs rules with github.com/google/cel-go. Element values must
// be primitives, slices or string-keyed maps; CEL cannot select fields of
// arbitrary Go structs.
type celEvaluator struct {
	engine
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	return &celEvaluator{engine: newEngine("cel", opts)}
}

func (e *celEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *celEvaluator) Compile(expression string) (CompiledRule, error) {
	prog, err := program(&e.engine, expression, e.compile(expression))
	if err != nil {
		return nil, err
	}
	return &celCompiledRule{
		evaluator:  e,
		program:    prog,
		expression: expression,
	}, nil
}

func (e *celEvaluator) compile(expression string) func() (celgo.Program, error) {
	return func() (celgo.Program, error) {
		env, err := e.buildEnv()
		if err != nil {
			return nil, err
		}
		ast, issues := env.Compile(expression)
		if issues != nil && issues.Err() != nil {
			return nil, issues.Err()
		}
		return env.Program(ast)
	}
}

func (e *celEvaluator) buildEnv() (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.CrossTypeNumericComparisons(true),
		celgo.Variable("key", celgo.DynType),
		celgo.Variable("value", celgo.DynType),
		celgo.Variable("index", celgo.IntType),
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("args", celgo.MapType(celgo.StringType, celgo.DynType)),
		celgo.Variable("metadata", celgo.MapType(celgo.StringType, celgo.DynType)),
	}
	if len(e.functions) == 0 {
		return celgo.NewEnv(opts...)
	}
	opts = append(opts, celgo.Function("call",
		celgo.Overload("call_string",
			[]*celgo.Type{celgo.StringType},
			celgo.DynType,
			celgo.UnaryBinding(func(name ref.Val) ref.Val {
				return e.callByName(name)
			}),
		),
		celgo.Overload("call_string_dyn",
			[]*celgo.Type{celgo.StringType, celgo.DynType},
			celgo.DynType,
			celgo.BinaryBinding(func(name, arg ref.Val) ref.Val {
				return e.callByName(name, arg)
			}),
		),
		celgo.Overload("call_string_dyn_dyn",
			[]*celgo.Type{celgo.StringType, celgo.DynType, celgo.DynType},
			celgo.DynType,
			celgo.FunctionBinding(func(values ...ref.Val) ref.Val {
				return e.callByName(values[0], values[1:]...)
			}),
		),
	))
	for _, name := range e.functions.Names() {
		fn := name
		opts = append(opts, celgo.Function(fn,
			celgo.Overload(fn+"_dyn",
				[]*celgo.Type{celgo.DynType},
				celgo.DynType,
				celgo.UnaryBinding(func(arg ref.Val) ref.Val {
					return e.callFunction(fn, arg)
				}),
			),
			celgo.Overload(fn+"_dyn_dyn",
				[]*celgo.Type{celgo.DynType, celgo.DynType},
				celgo.DynType,
				celgo.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					return e.callFunction(fn, lhs, rhs)
				}),
			),
		))
	}
	return celgo.NewEnv(opts...)
}

func (e *celEvaluator) callByName(name ref.Val, values ...ref.Val) ref.Val {
	fn, ok := name.Value().(string)
	if !ok {
		return types.NewErr("selector: call name must be string")
	}
	return e.callFunction(fn, values...)
}

func (e *celEvaluator) callFunction(name string, values ...ref.Val) ref.Val {
	args := make([]any, 0, len(values))
	for _, val := range values {
		args = append(args, val.Value())
	}
	result, err := e.functions.Call(name, args...)
	if err != nil {
		return types.NewErr("%s", err.Error())
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}

type celCompiledRule struct {
	evaluator  *celEvaluator
	program    celgo.Program
	expression string
}

func (r *celCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaults()
	out, _, err := r.program.Eval(ctx.bindings())
	if err != nil {
		return nil, wrapEvaluationError(r.evaluator.name, r.expression, ctx.keyLabel(), err)
	}
	if out == nil {
		return nil, wrapEvaluationError(r.evaluator.name, r.expression, ctx.keyLabel(), fmt.Errorf("no result"))
	}
	return out.Value(), nil
}
