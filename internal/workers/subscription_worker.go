package workers

import (
	"context"
	"time"

	"resumecraft_backend/internal/logger"
	"resumecraft_backend/internal/services"
)

const (
	trialSweepInterval        = 1 * time.Hour
	subscriptionSweepInterval = 6 * time.Hour
	notifySweepInterval       = 24 * time.Hour
)

// SubscriptionWorker runs the lifecycle sweeps in the background. Each loop
// is independent: a failing sweep logs and waits for the next tick.
type SubscriptionWorker struct {
	subscriptionService services.SubscriptionService
}

func NewSubscriptionWorker(subscriptionService services.SubscriptionService) *SubscriptionWorker {
	return &SubscriptionWorker{subscriptionService: subscriptionService}
}

func (w *SubscriptionWorker) Start(ctx context.Context) {
	go w.loop(ctx, "trial_sweep", trialSweepInterval, w.subscriptionService.HandleExpiredTrials)
	go w.loop(ctx, "subscription_sweep", subscriptionSweepInterval, w.subscriptionService.ProcessExpiredSubscriptions)
	go w.loop(ctx, "expiry_notifier", notifySweepInterval, w.subscriptionService.NotifyExpiringSoon)
}

func (w *SubscriptionWorker) loop(ctx context.Context, name string, interval time.Duration, sweep func(context.Context) (*services.SweepResult, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run once at startup so a restart does not delay overdue work by a
	// full interval.
	w.runSweep(ctx, name, sweep)

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker stopped", "worker", name)
			return
		case <-ticker.C:
			w.runSweep(ctx, name, sweep)
		}
	}
}

func (w *SubscriptionWorker) runSweep(ctx context.Context, name string, sweep func(context.Context) (*services.SweepResult, error)) {
	result, err := sweep(ctx)
	if err != nil {
		logger.WorkerLog(name, "sweep", err)
		return
	}
	if result.Processed > 0 || result.Errors > 0 {
		logger.Info("sweep completed",
			"worker", name,
			"processed", result.Processed,
			"errors", result.Errors,
		)
	}
}
