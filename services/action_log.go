package services

import (
	"context"
	"time"

	"github.com/rpupo63/portfolio-site-backend/models"
)

const actionLogTimeout = 5 * time.Second

// finish records the outcome of an action in the log and the admin_action_logs table.
// The row is written outside the action's transaction so failures are kept too.
func (s *ProjectService) finish(ctx context.Context, action string, res Result, details map[string]any) Result {
	info := RequestInfoFrom(ctx)

	event := s.logger.Info()
	outcome := models.OutcomeSuccess
	if !res.OK() {
		event = s.logger.Warn()
		outcome = models.OutcomeError
	}
	event.
		Str("action", action).
		Int64("projectID", res.ProjectID).
		Str("outcome", outcome).
		Str("requestID", info.RequestID).
		Msg(res.Message)

	entry := models.AdminActionLog{
		Action:     action,
		Outcome:    outcome,
		Message:    res.Message,
		RemoteAddr: info.RemoteAddr,
	}
	if res.ProjectID > 0 {
		id := res.ProjectID
		entry.ProjectID = &id
	}
	if len(details) > 0 || info.RequestID != "" {
		entry.Details = make(map[string]any, len(details)+1)
		for k, v := range details {
			entry.Details[k] = v
		}
		if info.RequestID != "" {
			entry.Details["request_id"] = info.RequestID
		}
	}

	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), actionLogTimeout)
	defer cancel()
	if err := s.db.ActionLogRepo().Add(logCtx, &entry); err != nil {
		s.logger.Error().Err(err).Str("action", action).Msg("could not persist action log entry")
	}
	return res
}
