package worker

// Jobs that exhaust their retries are parked on a Redis list next to the
// source queue (jobs:dead:{queue}) so an operator can inspect and requeue
// them by hand.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const deadQueuePrefix = "jobs:dead:"

// DeadJob is a failed job plus enough context to diagnose it.
type DeadJob struct {
	Queue    string          `json:"queue"`
	JobType  string          `json:"job_type"`
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	FailedAt string          `json:"failed_at"` // ISO 8601
	Attempts int             `json:"attempts"`
}

// ParkDeadJob moves a job that ran out of attempts onto the dead queue.
func ParkDeadJob(ctx context.Context, rdb *redis.Client, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	dead := DeadJob{
		Queue:    queue,
		JobType:  jobType,
		Payload:  payload,
		Reason:   reason,
		FailedAt: time.Now().UTC().Format(time.RFC3339),
		Attempts: attempts,
	}

	data, err := json.Marshal(dead)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("no se pudo serializar el trabajo muerto")
		return
	}

	key := deadQueuePrefix + queue
	if err := rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("no se pudo encolar el trabajo muerto")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("trabajo movido a la cola de muertos")
}

// DeadQueueLength reports how many jobs are parked for a queue.
func DeadQueueLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, deadQueuePrefix+queue).Result()
}
