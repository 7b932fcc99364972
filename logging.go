package refkind

import (
	"context"
	"log/slog"
)

// MoveEvent describes one collection-level move attempt.
type MoveEvent struct {
	Collection string
	ID         string
	Op         Op
	Key        any
	From       SlotState
	To         SlotState
	Err        error
}

// MoveLogger records move events.
type MoveLogger interface {
	LogMove(MoveEvent)
}

// MoveLoggerFunc adapts a function to MoveLogger.
type MoveLoggerFunc func(MoveEvent)

// LogMove implements MoveLogger.
func (f MoveLoggerFunc) LogMove(event MoveEvent) {
	if f != nil {
		f(event)
	}
}

type noopMoveLogger struct{}

func (noopMoveLogger) LogMove(MoveEvent) {}

type slogMoveLogger struct {
	logger *slog.Logger
}

// SlogLogger emits move events as structured slog records. Successful moves
// are logged at debug level, failures at warn level.
func SlogLogger(logger *slog.Logger) MoveLogger {
	if logger == nil {
		return noopMoveLogger{}
	}
	return slogMoveLogger{logger: logger}
}

func (l slogMoveLogger) LogMove(event MoveEvent) {
	attrs := []slog.Attr{
		slog.String("collection", event.Collection),
		slog.String("id", event.ID),
		slog.String("op", string(event.Op)),
		slog.String("key", describeKey(event.Key)),
		slog.String("from", event.From.String()),
		slog.String("to", event.To.String()),
	}
	level := slog.LevelDebug
	if event.Err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("err", event.Err.Error()))
	}
	l.logger.LogAttrs(context.Background(), level, "refkind move", attrs...)
}
