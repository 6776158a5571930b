package jobs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"
)

// UploadScrubPayload configures one scrub run.
type UploadScrubPayload struct {
	Dir    string        `json:"dir"`
	MaxAge time.Duration `json:"max_age"`
}

// NewUploadScrubTask constructs the scheduled scrub task.
func NewUploadScrubTask(payload UploadScrubPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeUploadScrub, data), nil
}

// HandleUploadScrubTask removes uploaded files older than the retention
// window. Per-file removal errors do not abort the sweep.
func HandleUploadScrubTask(ctx context.Context, t *asynq.Task) error {
	var payload UploadScrubPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Dir == "" || payload.MaxAge <= 0 {
		return asynq.SkipRetry
	}
	cutoff := time.Now().Add(-payload.MaxAge)
	entries, err := os.ReadDir(payload.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(payload.Dir, entry.Name()))
		}
	}
	return nil
}
