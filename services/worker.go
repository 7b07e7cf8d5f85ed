package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// ImportQueueKey is the redis list async import jobs are pushed onto.
	ImportQueueKey = "import:queue"

	jobTTL = 24 * time.Hour
)

// ImportJobKey returns the redis key holding a job's status record.
func ImportJobKey(id string) string {
	return fmt.Sprintf("import:job:%s", id)
}

// EnqueueImportJob stores a pending job record and pushes its id onto the
// queue. Returns the job id.
func EnqueueImportJob(ctx context.Context, rdb *redis.Client, opts ImportOptions) (string, error) {
	jobID := uuid.New().String()

	meta := map[string]interface{}{
		"status":     "pending",
		"created_at": time.Now().UTC().Format(time.RFC3339),
		"options":    opts,
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal job metadata: %w", err)
	}
	if err := rdb.Set(ctx, ImportJobKey(jobID), data, jobTTL).Err(); err != nil {
		return "", fmt.Errorf("store job metadata: %w", err)
	}
	if err := rdb.RPush(ctx, ImportQueueKey, jobID).Err(); err != nil {
		rdb.Del(ctx, ImportJobKey(jobID))
		return "", fmt.Errorf("enqueue job: %w", err)
	}

	zap.L().Info("Import job queued", zap.String("job_id", jobID))
	return jobID, nil
}

// StartImportWorker consumes job ids from the queue and runs imports one at
// a time, writing status and result back with a TTL. Returns immediately;
// the worker stops when ctx is cancelled.
func StartImportWorker(ctx context.Context, rdb *redis.Client, importer *ImportService) {
	if rdb == nil || importer == nil {
		zap.L().Warn("import worker not started: missing dependencies")
		return
	}

	go func() {
		zap.L().Info("import worker started", zap.String("queue", ImportQueueKey))
		for {
			select {
			case <-ctx.Done():
				zap.L().Info("import worker stopping")
				return
			default:
			}

			res, err := rdb.BLPop(ctx, 0, ImportQueueKey).Result()
			if err != nil {
				if err == context.Canceled || err == context.DeadlineExceeded {
					return
				}
				zap.L().Error("redis BLPop failed", zap.Error(err))
				time.Sleep(500 * time.Millisecond)
				continue
			}
			if len(res) < 2 {
				continue
			}
			processJob(ctx, rdb, importer, res[1])
		}
	}()
}

func processJob(ctx context.Context, rdb *redis.Client, importer *ImportService, jobID string) {
	jobKey := ImportJobKey(jobID)

	val, err := rdb.Get(ctx, jobKey).Result()
	if err != nil {
		zap.L().Error("failed to read job metadata", zap.String("job", jobID), zap.Error(err))
		return
	}
	var meta struct {
		Status    string        `json:"status"`
		CreatedAt string        `json:"created_at"`
		Options   ImportOptions `json:"options"`
	}
	if err := json.Unmarshal([]byte(val), &meta); err != nil {
		zap.L().Error("failed to parse job metadata", zap.String("job", jobID), zap.Error(err))
		return
	}

	storeStatus(ctx, rdb, jobKey, map[string]interface{}{
		"status":     "processing",
		"created_at": meta.CreatedAt,
		"options":    meta.Options,
	})

	report, err := importer.Run(ctx, meta.Options)
	if err != nil {
		zap.L().Error("async import failed", zap.String("job", jobID), zap.Error(err))
		storeStatus(ctx, rdb, jobKey, map[string]interface{}{
			"status":     "failed",
			"created_at": meta.CreatedAt,
			"error":      err.Error(),
			"result":     report,
		})
		return
	}

	storeStatus(ctx, rdb, jobKey, map[string]interface{}{
		"status":     "done",
		"created_at": meta.CreatedAt,
		"result":     report,
	})
}

func storeStatus(ctx context.Context, rdb *redis.Client, key string, meta map[string]interface{}) {
	data, err := json.Marshal(meta)
	if err != nil {
		zap.L().Error("failed to marshal job status", zap.Error(err))
		return
	}
	rdb.Set(ctx, key, data, jobTTL)
}
