package post

import (
	"context"
	"log/slog"
	"time"

	"github.com/simp-lee/blogapi/internal/domain"
)

const publishJobTimeout = 30 * time.Second

// PublishScheduledJob publishes drafts whose scheduled publish time has
// passed. It implements cron.Job.
type PublishScheduledJob struct {
	svc    domain.PostService
	logger *slog.Logger
	now    func() time.Time
}

// NewPublishScheduledJob creates the scheduled publishing job.
func NewPublishScheduledJob(svc domain.PostService, logger *slog.Logger) *PublishScheduledJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishScheduledJob{svc: svc, logger: logger, now: time.Now}
}

// Name identifies the job in scheduler logs.
func (j *PublishScheduledJob) Name() string {
	return "PublishScheduledJob"
}

// Run executes one publishing pass.
func (j *PublishScheduledJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), publishJobTimeout)
	defer cancel()

	n, err := j.svc.PublishDue(ctx, j.now())
	if err != nil {
		j.logger.Error("publishing scheduled posts failed", slog.Any("error", err))
		return
	}
	if n > 0 {
		j.logger.Info("published scheduled posts", slog.Int64("count", n))
	}
}
