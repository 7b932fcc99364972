package selector

import (
	"fmt"
	"iter"
	"time"

	"github.com/goliatone/go-refkind"
)

// Readable is implemented by collections that can list the values of their
// non-empty slots without moving anything out.
type Readable[K any, V any] interface {
	All() iter.Seq2[K, V]
}

// Source is a collection that can be both read and moved from. *refkind.Slice,
// *refkind.Map and *refkind.OrderedMap satisfy it.
type Source[K any, V any] interface {
	Readable[K, V]
	refkind.Many[K, V]
}

// Match pairs a selected key with the accessor moved out for it.
type Match[K any, A any] struct {
	Key    K
	Access A
}

// Option configures a selection.
type Option func(*config)

type config struct {
	logger   EvaluatorLogger
	args     map[string]any
	metadata map[string]any
	now      *time.Time
}

// WithEvaluatorLogger receives one event per evaluated element.
func WithEvaluatorLogger(logger EvaluatorLogger) Option {
	return func(cfg *config) {
		if logger == nil {
			cfg.logger = noopEvaluatorLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithArgs exposes args to rules as the args variable.
func WithArgs(args map[string]any) Option {
	return func(cfg *config) {
		cfg.args = args
	}
}

// WithMetadata exposes metadata to rules as the metadata variable.
func WithMetadata(metadata map[string]any) Option {
	return func(cfg *config) {
		cfg.metadata = metadata
	}
}

// WithNow fixes the now variable. Without it each selection uses the time it
// started at.
func WithNow(now time.Time) Option {
	return func(cfg *config) {
		cfg.now = &now
	}
}

func applyOptions(opts []Option) config {
	cfg := config{logger: noopEvaluatorLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.now == nil {
		now := time.Now()
		cfg.now = &now
	}
	return cfg
}

// MatchKeys evaluates expr against every readable element of src and returns
// the keys whose result is true, in iteration order. A nil evaluator selects
// the expr engine. A rule that yields anything other than a bool fails with
// ErrNotBool.
func MatchKeys[K any, V any](src Readable[K, V], ev Evaluator, expr string, opts ...Option) ([]K, error) {
	if ev == nil {
		ev = NewExprEvaluator()
	}
	cfg := applyOptions(opts)
	engine := engineName(ev)
	rule, err := ev.Compile(expr)
	if err != nil {
		err = wrapEvaluationError(engine, expr, "", err)
		cfg.logger.LogEvaluation(EvaluatorLogEvent{Engine: engine, Expr: expr, Err: err})
		return nil, err
	}

	var keys []K
	index := 0
	for key, value := range src.All() {
		ctx := RuleContext{
			Key:      key,
			Value:    value,
			Index:    index,
			Now:      cfg.now,
			Args:     cfg.args,
			Metadata: cfg.metadata,
		}.withDefaults()
		index++

		start := time.Now()
		matched, evalErr := evaluateBool(rule, ctx)
		evalErr = wrapEvaluationError(engine, expr, ctx.keyLabel(), evalErr)
		cfg.logger.LogEvaluation(EvaluatorLogEvent{
			Engine:   engine,
			Expr:     expr,
			Key:      ctx.keyLabel(),
			Matched:  matched,
			Duration: time.Since(start),
			Err:      evalErr,
		})
		if evalErr != nil {
			return nil, evalErr
		}
		if matched {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func evaluateBool(rule CompiledRule, ctx RuleContext) (bool, error) {
	result, err := rule.Evaluate(ctx)
	if err != nil {
		return false, err
	}
	matched, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("%w: got %T", ErrNotBool, result)
	}
	return matched, nil
}

// MoveMutWhere moves the exclusive accessor out of every element matching
// expr. Matching finishes before any move happens. When a matched element
// only holds a shared accessor the moves stop there; accessors moved before
// it are returned with the error.
func MoveMutWhere[K any, V any](src Source[K, V], ev Evaluator, expr string, opts ...Option) ([]Match[K, *V], error) {
	keys, err := MatchKeys[K, V](src, ev, expr, opts...)
	if err != nil {
		return nil, err
	}
	ptrs, err := refkind.MoveMuts[K, V](src, keys...)
	return zipMatches(keys, ptrs), err
}

// MoveRefWhere moves a shared view out of every element matching expr,
// downgrading exclusive accessors in place.
func MoveRefWhere[K any, V any](src Source[K, V], ev Evaluator, expr string, opts ...Option) ([]Match[K, refkind.Ref[V]], error) {
	keys, err := MatchKeys[K, V](src, ev, expr, opts...)
	if err != nil {
		return nil, err
	}
	refs, err := refkind.MoveRefs[K, V](src, keys...)
	return zipMatches(keys, refs), err
}

func zipMatches[K any, A any](keys []K, access []A) []Match[K, A] {
	matches := make([]Match[K, A], len(access))
	for i, a := range access {
		matches[i] = Match[K, A]{Key: keys[i], Access: a}
	}
	return matches
}
