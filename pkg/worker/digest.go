package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/medremind/reminder-api/internal/email"
	"github.com/medremind/reminder-api/internal/model"
	"github.com/medremind/reminder-api/internal/repository"
	"github.com/medremind/reminder-api/internal/service/task"
)

type DigestConfig struct {
	Interval time.Duration
}

// DigestWorker periodically mails each active caregiver the doses that are
// overdue and still unmarked for the current day.
type DigestWorker struct {
	caregiverRepo repository.CaregiverRepository
	taskSvc       *task.Service
	sender        email.Sender
	config        DigestConfig
	logger        *zap.Logger
}

func NewDigestWorker(
	caregiverRepo repository.CaregiverRepository,
	taskSvc *task.Service,
	sender email.Sender,
	config DigestConfig,
	logger *zap.Logger,
) *DigestWorker {
	if config.Interval <= 0 {
		config.Interval = 4 * time.Hour
	}
	return &DigestWorker{
		caregiverRepo: caregiverRepo,
		taskSvc:       taskSvc,
		sender:        sender,
		config:        config,
		logger:        logger,
	}
}

func (w *DigestWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	w.logger.Info("starting overdue digest worker",
		zap.Duration("interval", w.config.Interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("shutting down overdue digest worker")
			return
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

func (w *DigestWorker) run(ctx context.Context) {
	caregivers, err := w.caregiverRepo.ListActive(ctx)
	if err != nil {
		w.logger.Error("failed to list caregivers", zap.Error(err))
		return
	}

	now := time.Now()
	window := model.DayWindowFor(now)
	for _, caregiver := range caregivers {
		tasks, err := w.taskSvc.Aggregate(ctx, caregiver.ID, window, now)
		if err != nil {
			w.logger.Error("failed to aggregate tasks",
				zap.String("caregiver_id", caregiver.ID.String()),
				zap.Error(err))
			continue
		}

		overdue := make([]model.Task, 0)
		for _, t := range tasks {
			if t.Overdue && !t.Completed {
				overdue = append(overdue, t)
			}
		}
		if len(overdue) == 0 {
			continue
		}

		if err := w.sender.SendOverdueDigest(caregiver.Email, caregiver.FullName(), overdue); err != nil {
			w.logger.Error("failed to send digest",
				zap.String("caregiver_id", caregiver.ID.String()),
				zap.Error(err))
			continue
		}
		w.logger.Info("sent overdue digest",
			zap.String("caregiver_id", caregiver.ID.String()),
			zap.Int("overdue", len(overdue)))
	}
}
