package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/paasforest/immigrationai-sub000/platform/config"
)

// RedisOptFromConfig builds the asynq Redis connection options from the
// application config. Shared by the client and the worker so both sides
// always talk to the same instance.
func RedisOptFromConfig(cfg config.SchedulerConfig) (asynq.RedisClientOpt, error) {
	opts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return asynq.RedisClientOpt{}, fmt.Errorf("parse redis url: %w", err)
	}

	clientOpt := asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	}
	if opts.TLSConfig != nil {
		tlsConfig := opts.TLSConfig.Clone()
		if cfg.GetRedisTLSInsecure() {
			tlsConfig.InsecureSkipVerify = true
		}
		clientOpt.TLSConfig = tlsConfig
	}
	return clientOpt, nil
}

// Client enqueues routing tasks. It satisfies the task-enqueuer ports of
// the routing and leads modules.
type Client struct {
	inner *asynq.Client
	queue string
}

// NewClient creates a task queue client.
func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisOpt, err := RedisOptFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{
		inner: asynq.NewClient(redisOpt),
		queue: cfg.GetAsynqQueueName(),
	}, nil
}

// EnqueueAssign queues the initial routing pass for a lead.
func (c *Client) EnqueueAssign(ctx context.Context, leadID uuid.UUID) error {
	task, err := NewAssignTask(leadID)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task)
}

// EnqueueReassign queues a rerouting pass for a lead.
func (c *Client) EnqueueReassign(ctx context.Context, leadID uuid.UUID) error {
	task, err := NewReassignTask(leadID)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task)
}

// EnqueueExpirySweep queues one sweep run. Uniqueness keeps overlapping
// ticker fires from stacking sweeps.
func (c *Client) EnqueueExpirySweep(ctx context.Context, window time.Duration) error {
	_, err := c.inner.EnqueueContext(ctx, NewExpirySweepTask(),
		asynq.Queue(c.queue),
		asynq.Unique(window),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeExpirySweep, err)
	}
	return nil
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task) error {
	_, err := c.inner.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(5),
		asynq.Timeout(time.Minute),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (c *Client) Close() error {
	return c.inner.Close()
}
