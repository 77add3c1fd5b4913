package schedule

import (
	"context"
	"log/slog"
)

// HistorySaver is the subset of the assistant orchestrator needed by the
// autosave job. Defined here to avoid a circular dependency on the
// assistant package.
type HistorySaver interface {
	SaveHistory() error
}

// HistoryAutosaveJob periodically persists the conversation history to disk.
type HistoryAutosaveJob struct {
	Saver        HistorySaver
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "*/5 * * * *"
}

// Compile-time interface check.
var _ Job = (*HistoryAutosaveJob)(nil)

// Name implements Job.
func (j *HistoryAutosaveJob) Name() string {
	return "history_autosave"
}

// Schedule implements Job.
func (j *HistoryAutosaveJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "*/5 * * * *"
}

// Run saves the conversation history.
func (j *HistoryAutosaveJob) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := j.Saver.SaveHistory(); err != nil {
		return err
	}
	j.Logger.Debug("schedule: history autosaved")
	return nil
}
