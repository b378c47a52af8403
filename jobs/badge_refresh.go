package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/artstock/console/internal/jobs"
	"github.com/artstock/console/internal/navigation"
)

// Refresher recomputes and stores badge counts.
type Refresher interface {
	Refresh(ctx context.Context) (navigation.Counts, error)
}

// BadgeRefreshJob keeps the cached navigation badges warm.
type BadgeRefreshJob struct {
	Badges  Refresher
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Timeout time.Duration
}

// NewBadgeRefreshJob wires the refresh handler.
func NewBadgeRefreshJob(badges Refresher, logger *slog.Logger, metrics *jobmetrics.Metrics) *BadgeRefreshJob {
	return &BadgeRefreshJob{Badges: badges, Logger: logger, Metrics: metrics, Timeout: 30 * time.Second}
}

// Handle processes TaskBadgeRefresh tasks.
func (j *BadgeRefreshJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Badges == nil {
		return errors.New("badge refresh: handler not configured")
	}
	var payload BadgeRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskBadgeRefresh)
	defer func() { err = tracker.End(err) }()

	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	logger := j.logger().With(slog.String("reason", payload.Reason))
	counts, err := j.Badges.Refresh(ctx)
	if err != nil {
		logger.Error("refresh badges", slog.Any("error", err))
		return err
	}
	j.Metrics.SetBadges(counts)
	logger.Info("badges refreshed", slog.Int("badges", len(counts)))
	return nil
}

func (j *BadgeRefreshJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskBadgeRefresh))
	}
	return slog.Default().With(slog.String("job", TaskBadgeRefresh))
}
