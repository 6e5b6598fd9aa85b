package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Failed alert jobs are parked in dlq:<queue>, newest first, and never retried.
const (
	DLQPrefix = "dlq:"
	dlqMaxLen = 500
)

// DLQEntry keeps the job exactly as it was read from the queue, so entries
// that were not even valid JSON can still be inspected.
type DLQEntry struct {
	Queue    string    `json:"queue"`
	JobType  string    `json:"job_type"`
	Raw      string    `json:"raw"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}

// SendToDLQ parks raw under the queue's dead letter list, trimmed to the last
// dlqMaxLen entries. Redis errors are logged; the job is lost in that case.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue, jobType, raw string, cause error) {
	entry := DLQEntry{Queue: queue, JobType: jobType, Raw: raw, FailedAt: time.Now().UTC()}
	if cause != nil {
		entry.Error = cause.Error()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: entrada no serializable")
		return
	}

	key := DLQPrefix + queue
	pipe := rdb.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, dlqMaxLen-1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("dlq: no se pudo guardar el job")
		return
	}
	log.Warn().Str("queue", queue).Str("job_type", jobType).Err(cause).Msg("dlq: job descartado")
}

// DLQLength is reported by /health.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// PeekDLQ returns up to n of the most recent entries without removing them.
func PeekDLQ(ctx context.Context, rdb *redis.Client, queue string, n int64) ([]DLQEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	raws, err := rdb.LRange(ctx, DLQPrefix+queue, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DLQEntry, 0, len(raws))
	for _, r := range raws {
		var e DLQEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
