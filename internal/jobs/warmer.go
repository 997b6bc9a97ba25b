package jobs

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/almanac/history"
	"github.com/briangreenhill/almanac/plugins"
)

// Warmer periodically enqueues warm tasks and processes them in-process.
type Warmer struct {
	queue     string
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
}

// NewWarmer registers every target on schedule, evaluated in the
// history reference timezone so "today" matches request handling. Tasks go
// to the instance's own queue, which only this process consumes.
func NewWarmer(redisAddr, schedule, instance string, reg *plugins.Registry, logger zerolog.Logger) (*Warmer, error) {
	opt := asynq.RedisClientOpt{Addr: redisAddr}
	queue := WarmQueue(instance)
	logger = logger.With().Str("queue", queue).Logger()
	alog := asynqLogger{l: logger.With().Str("component", "asynq").Logger()}

	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: 2,
		Queues:      map[string]int{queue: 1},
		Logger:      alog,
	})
	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Location: history.Location,
		Logger:   alog,
	})

	for _, target := range DefaultTargets() {
		task, err := NewWarmTask(target)
		if err != nil {
			return nil, err
		}
		id, err := scheduler.Register(schedule, task,
			asynq.Queue(queue),
			asynq.MaxRetry(3),
			asynq.Timeout(time.Minute),
		)
		if err != nil {
			return nil, fmt.Errorf("register warm %s %q: %w", target.Plugin, target.Param, err)
		}
		logger.Debug().Str("entry", id).Str("plugin", target.Plugin).Str("param", target.Param).Msg("warm task registered")
	}

	return &Warmer{queue: queue, server: srv, scheduler: scheduler, mux: NewMux(reg, logger)}, nil
}

// Queue is the queue this warmer enqueues on and consumes.
func (w *Warmer) Queue() string { return w.queue }

func (w *Warmer) Start() error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start warm worker: %w", err)
	}
	if err := w.scheduler.Start(); err != nil {
		w.server.Shutdown()
		return fmt.Errorf("start warm scheduler: %w", err)
	}
	return nil
}

func (w *Warmer) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
}

// asynqLogger adapts zerolog to asynq.Logger.
type asynqLogger struct {
	l zerolog.Logger
}

func (a asynqLogger) Debug(args ...interface{}) { a.l.Debug().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...interface{})  { a.l.Info().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...interface{})  { a.l.Warn().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...interface{}) { a.l.Error().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Fatal(args ...interface{}) { a.l.Fatal().Msg(fmt.Sprint(args...)) }

var _ asynq.Logger = asynqLogger{}
