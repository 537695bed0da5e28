package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/ownerassign/ownerassign/internal/jobs"
	"github.com/ownerassign/ownerassign/internal/provision"
)

// Provisioner runs the owner provisioning routine.
type Provisioner interface {
	Provision(ctx context.Context, ids []int64) provision.Report
}

// SweepSource finds the listings a sweep should process.
type SweepSource interface {
	AdminOwnedWithEmail(ctx context.Context) ([]int64, error)
}

// ProvisionJob processes TaskProvisionListings tasks.
type ProvisionJob struct {
	Provisioner Provisioner
	Sweep       SweepSource
	Logger      *slog.Logger
	Metrics     *jobmetrics.Metrics
}

// Handle executes one provisioning run.
func (j *ProvisionJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Provisioner == nil {
		return errors.New("provision job: handler not configured")
	}
	var payload ProvisionListingsPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("provision job: decode payload: %v: %w", err, asynq.SkipRetry)
	}

	tracker := j.Metrics.Track(TaskProvisionListings)
	defer func() {
		err = tracker.End(err)
	}()

	logger := j.logger()
	ids := payload.ListingIDs
	if len(ids) == 0 {
		if j.Sweep == nil {
			return fmt.Errorf("provision job: sweep not configured: %w", asynq.SkipRetry)
		}
		ids, err = j.Sweep.AdminOwnedWithEmail(ctx)
		if err != nil {
			logger.Error("provision sweep lookup failed", slog.Any("error", err))
			return err
		}
		j.Metrics.AddSwept(len(ids))
		logger.Info("provision sweep", slog.Int("listings", len(ids)))
	}
	if len(ids) == 0 {
		return nil
	}

	report := j.Provisioner.Provision(ctx, ids)
	logger.Info("provision job finished",
		slog.Int("listings", len(ids)),
		slog.Int("assigned", report.Assigned()),
		slog.Int("created", report.Count(provision.OutcomeCreated)),
		slog.Int("update_failed", report.Count(provision.OutcomeUpdateFailed)),
	)
	return nil
}

func (j *ProvisionJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
