// Package worker wraps asynq for scheduled background tasks. The only
// task today is the voting-deadline lock: when an event is created with
// a deadline, a task is scheduled to run at that instant and flip the
// event to locked. Lock correctness does not depend on the worker; the
// event service also derives the locked state from the deadline on every
// read. The task exists so the lock is persisted and broadcast the
// moment the deadline passes, not on the next read.
package worker

import (
	"context"

	"github.com/hibiken/asynq"

	"slotpoll/core/config"
	"slotpoll/core/logger"
)

type Worker struct {
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
}

func New(cfg config.RedisConfig) *Worker {
	opt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	return &Worker{
		client: asynq.NewClient(opt),
		server: asynq.NewServer(opt, asynq.Config{
			Concurrency: 5,
		}),
		mux: asynq.NewServeMux(),
	}
}

// Client returns the enqueue side, used by services to schedule tasks.
func (w *Worker) Client() *asynq.Client {
	return w.client
}

// HandleFunc registers a handler for a task type. Must be called before
// Start.
func (w *Worker) HandleFunc(taskType string, handler func(context.Context, *asynq.Task) error) {
	w.mux.HandleFunc(taskType, handler)
}

// Start runs the asynq server in the background.
func (w *Worker) Start() error {
	logger.Info("Starting background worker")
	return w.server.Start(w.mux)
}

func (w *Worker) Shutdown() {
	w.server.Shutdown()
	if err := w.client.Close(); err != nil {
		logger.Error("Worker client close", "error", err)
	}
}
