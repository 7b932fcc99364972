package selector

import (
	"context"
	"log/slog"
	"time"
)

// EvaluatorLogEvent describes one rule evaluation against one element.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Key      string
	Matched  bool
	Duration time.Duration
	Err      error
}

// EvaluatorLogger records evaluator events.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopEvaluatorLogger struct{}

func (noopEvaluatorLogger) LogEvaluation(EvaluatorLogEvent) {}

type slogEvaluatorLogger struct {
	logger *slog.Logger
}

// SlogEvaluatorLogger writes evaluation events to logger at debug level, or
// warn level when the evaluation failed.
func SlogEvaluatorLogger(logger *slog.Logger) EvaluatorLogger {
	if logger == nil {
		return noopEvaluatorLogger{}
	}
	return slogEvaluatorLogger{logger: logger}
}

func (l slogEvaluatorLogger) LogEvaluation(event EvaluatorLogEvent) {
	attrs := []slog.Attr{
		slog.String("engine", event.Engine),
		slog.String("expr", event.Expr),
		slog.String("key", event.Key),
		slog.Bool("matched", event.Matched),
		slog.Duration("duration", event.Duration),
	}
	level := slog.LevelDebug
	if event.Err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("err", event.Err.Error()))
	}
	l.logger.LogAttrs(context.Background(), level, "selector evaluation", attrs...)
}
