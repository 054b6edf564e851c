package scheduler

import (
	"context"
	"time"

	"github.com/emberhollow/hearth/internal/cleanup"

	"github.com/rs/zerolog"
)

// IntegrityScanJob runs the read-only orphan scan on a schedule. Violations
// are published on the event bus by the cleanup service, so the job itself
// only has to trigger the scan and log the outcome.
type IntegrityScanJob struct {
	Name       string
	Log        zerolog.Logger
	CleanupSvc cleanup.Service
}

func (j *IntegrityScanJob) Run() {
	j.Log.Info().Msg("Starting scheduled integrity scan")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := j.CleanupSvc.ValidateDataIntegrity(ctx)
	if err != nil {
		j.Log.Error().Err(err).Msg("Integrity scan failed")
		return
	}

	if !result.IsValid {
		j.Log.Warn().
			Strs("issues", result.Issues).
			Msg("Integrity scan found orphaned records")
		return
	}

	j.Log.Info().Msg("Integrity scan passed, no orphaned records found")
}
