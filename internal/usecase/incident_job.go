package usecase

import (
	"context"
	"fmt"
	"time"

	"PairPull/internal/domain/models"
	drepo "PairPull/internal/domain/repository"
	applogger "PairPull/pkg/logger"
	"PairPull/pkg/queue"
)

// Incident is an operator-attention event: a half-filled pair or any state
// where automated trading has frozen itself.
type Incident struct {
	Date   time.Time `json:"date"`
	State  string    `json:"state"`
	Reason string    `json:"reason"`
}

// IncidentJob consumes incident messages off the redis queue and surfaces
// them in logs and metrics. Recovery itself stays manual.
type IncidentJob struct {
	logger  *applogger.Logger
	metrics drepo.Metrics
}

func NewIncidentJob(logger *applogger.Logger, metrics drepo.Metrics) *IncidentJob {
	return &IncidentJob{logger: logger, metrics: metrics}
}

func (j *IncidentJob) Name() string { return "incident-logger" }
func (j *IncidentJob) Type() string { return "incident" }

func (j *IncidentJob) Handle(ctx context.Context, payload interface{}) error {
	inc, err := queue.ParsePayload[Incident](payload)
	if err != nil {
		return err
	}
	j.metrics.RecordError("incident")
	j.logger.Warn("incident requires manual intervention",
		applogger.String("state", inc.State),
		applogger.String("reason", inc.Reason),
		applogger.String("date", inc.Date.Format("2006-01-02")))
	return nil
}

// SystemLogJob drains aggregated error-log batches from the queue into the
// action journal so repeated failures are queryable next to trade actions.
type SystemLogJob struct {
	store drepo.Journal
}

func NewSystemLogJob(store drepo.Journal) *SystemLogJob {
	return &SystemLogJob{store: store}
}

func (j *SystemLogJob) Name() string { return "system-log-sink" }
func (j *SystemLogJob) Type() string { return "system-logs" }

func (j *SystemLogJob) Handle(ctx context.Context, payload interface{}) error {
	entries, err := queue.ParsePayload[[]applogger.AggregatedLogEntry](payload)
	if err != nil {
		return err
	}
	for _, e := range *entries {
		a := models.ActionEntry{
			Timestamp: e.LastSeen,
			Action:    "log_" + e.Level,
			Details:   fmt.Sprintf("%s (x%d) %s", e.Message, e.Count, e.Caller),
		}
		if err := j.store.RecordAction(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

var (
	_ queue.Job = (*IncidentJob)(nil)
	_ queue.Job = (*SystemLogJob)(nil)
)
