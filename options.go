package refkind

import "github.com/google/uuid"

// Option configures a collection.
type Option func(*config)

type config struct {
	name   string
	id     string
	logger MoveLogger
	logged bool
}

// WithName labels the collection in move events.
func WithName(name string) Option {
	return func(cfg *config) {
		cfg.name = name
	}
}

// WithID sets the identifier reported in move events. Without it a random
// UUID is assigned once a logger is configured.
func WithID(id string) Option {
	return func(cfg *config) {
		cfg.id = id
	}
}

// WithMoveLogger attaches a logger that receives one event per move attempt.
func WithMoveLogger(logger MoveLogger) Option {
	return func(cfg *config) {
		if logger == nil {
			cfg.logger = noopMoveLogger{}
			cfg.logged = false
			return
		}
		cfg.logger = logger
		cfg.logged = true
	}
}

func applyOptions(opts []Option) config {
	cfg := config{logger: noopMoveLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logged && cfg.id == "" {
		cfg.id = uuid.NewString()
	}
	return cfg
}

func (cfg *config) log(op Op, key any, from, to SlotState, err error) {
	if !cfg.logged {
		return
	}
	cfg.logger.LogMove(MoveEvent{
		Collection: cfg.name,
		ID:         cfg.id,
		Op:         op,
		Key:        key,
		From:       from,
		To:         to,
		Err:        err,
	})
}
