package worker

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const QueueRecalc = "jobs:recalc"

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// RecalcPayload identifies whose invoices need their derived totals
// re-reconciled after a destructive operation.
type RecalcPayload struct {
	UserID string `json:"user_id"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueRecalc pushes an invoice-recalculation job to Redis.
func (d *Dispatcher) EnqueueRecalc(ctx context.Context, userID uuid.UUID) error {
	return d.enqueue(ctx, QueueRecalc, "recalc", RecalcPayload{UserID: userID.String()})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}
