//go:build !js_eval

package selector

// NewJSEvaluator returns nil unless built with the js_eval tag.
func NewJSEvaluator(...JSEvaluatorOption) Evaluator {
	return nil
}

// JSEvaluatorAvailable reports whether NewJSEvaluator returns a usable engine.
func JSEvaluatorAvailable() bool {
	return false
}
