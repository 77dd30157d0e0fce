package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/paasforest/immigrationai-sub000/internal/routing/domain"
	"github.com/paasforest/immigrationai-sub000/platform/config"
	"github.com/paasforest/immigrationai-sub000/platform/logger"
)

// sweepBatchLimit caps how many stale assignments one sweep run touches.
// Anything left over is picked up by the next tick.
const sweepBatchLimit = 200

// stuckLeadGrace is how long a lead may sit in pending_assignment with no
// pending offer before the sweep re-enqueues it. Covers enqueue failures on
// the submit and decline paths.
const stuckLeadGrace = 15 * time.Minute

// RoutingEngine is the slice of the routing service the worker drives.
type RoutingEngine interface {
	Assign(ctx context.Context, leadID uuid.UUID) (*domain.Assignment, error)
	Reassign(ctx context.Context, leadID uuid.UUID) error
	ExpireStale(ctx context.Context, limit int) (int, error)
	RequeueStuck(ctx context.Context, grace time.Duration, limit int) (int, error)
}

// Worker consumes routing tasks from the queue.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    *logger.Logger
}

// NewWorker creates the task worker bound to the routing engine.
func NewWorker(engine RoutingEngine, cfg config.SchedulerConfig, log *logger.Logger) (*Worker, error) {
	redisOpt, err := RedisOptFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.GetAsynqConcurrency(),
		Queues:      map[string]int{cfg.GetAsynqQueueName(): 1},
		Logger:      asynqLogger{log: log},
	})

	w := &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		log:    log,
	}
	w.mux.HandleFunc(TypeAssignLead, w.handleAssign(engine))
	w.mux.HandleFunc(TypeReassign, w.handleReassign(engine))
	w.mux.HandleFunc(TypeExpirySweep, w.handleExpirySweep(engine))

	return w, nil
}

// Run blocks processing tasks until Shutdown is called.
func (w *Worker) Run() error {
	return w.server.Run(w.mux)
}

// Shutdown stops the worker, waiting for in-flight tasks.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleAssign(engine RoutingEngine) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		payload, err := ParseLeadTaskPayload(task.Payload())
		if err != nil {
			return fmt.Errorf("%w: %s", asynq.SkipRetry, err)
		}

		assignment, err := engine.Assign(ctx, payload.LeadID)
		if err != nil {
			return fmt.Errorf("assign lead %s: %w", payload.LeadID, err)
		}
		if assignment == nil {
			w.log.RoutingEvent("assign_no_offer", payload.LeadID.String(), 0, "routing ended without an offer")
			return nil
		}
		w.log.RoutingEvent("assign_offered", payload.LeadID.String(), assignment.Attempt, assignment.ProviderID.String())
		return nil
	}
}

func (w *Worker) handleReassign(engine RoutingEngine) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		payload, err := ParseLeadTaskPayload(task.Payload())
		if err != nil {
			return fmt.Errorf("%w: %s", asynq.SkipRetry, err)
		}

		if err := engine.Reassign(ctx, payload.LeadID); err != nil {
			return fmt.Errorf("reassign lead %s: %w", payload.LeadID, err)
		}
		return nil
	}
}

func (w *Worker) handleExpirySweep(engine RoutingEngine) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		expired, err := engine.ExpireStale(ctx, sweepBatchLimit)
		if err != nil {
			return fmt.Errorf("expiry sweep: %w", err)
		}
		requeued, err := engine.RequeueStuck(ctx, stuckLeadGrace, sweepBatchLimit)
		if err != nil {
			return fmt.Errorf("stuck lead sweep: %w", err)
		}
		if expired > 0 || requeued > 0 {
			w.log.Info("expiry sweep completed", "expired", expired, "requeued", requeued)
		}
		return nil
	}
}

// asynqLogger adapts the application logger to asynq's logging interface.
type asynqLogger struct {
	log *logger.Logger
}

func (l asynqLogger) Debug(args ...interface{}) { l.log.Debug(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...interface{})  { l.log.Info(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...interface{})  { l.log.Warn(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...interface{}) { l.log.Error(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...interface{}) { l.log.Error(fmt.Sprint(args...)) }
