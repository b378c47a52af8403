package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskBadgeRefresh recomputes the navigation badge counts.
	TaskBadgeRefresh = "navigation:badges_refresh"
)

// BadgeRefreshPayload says who asked for a refresh.
type BadgeRefreshPayload struct {
	Reason string `json:"reason"`
}

// NewBadgeRefreshTask builds a badge refresh task. An empty reason means the
// scheduler.
func NewBadgeRefreshTask(reason string) (*asynq.Task, error) {
	if reason == "" {
		reason = "cron"
	}
	data, err := json.Marshal(BadgeRefreshPayload{Reason: reason})
	if err != nil {
		return nil, fmt.Errorf("jobs: encode badge refresh: %w", err)
	}
	return asynq.NewTask(TaskBadgeRefresh, data, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// TaskByName builds the task an operator asks for by type name.
func TaskByName(name, reason string) (*asynq.Task, error) {
	switch name {
	case TaskBadgeRefresh:
		return NewBadgeRefreshTask(reason)
	default:
		return nil, fmt.Errorf("jobs: unsupported job %q", name)
	}
}
