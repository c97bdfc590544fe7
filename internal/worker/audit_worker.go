package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/casekit/case-gateway/internal/events"
	"github.com/casekit/case-gateway/internal/observability"
)

// StartAuditWorker subscribes an audit trail to session lifecycle
// events: every login, logout and refresh outcome lands in the
// structured log and the session counters.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) {
	if dispatcher == nil {
		return
	}
	audit := logger.Named("audit")

	record := func(_ context.Context, event events.Event) error {
		audit.Info(string(event.Type),
			zap.String("event_id", event.ID),
			zap.String("session_id", event.SessionID),
			zap.String("user_id", event.UserID),
			zap.String("username", event.Username),
			zap.String("detail", event.Detail),
		)
		switch event.Type {
		case events.EventLogin:
			metrics.RecordLogin(true)
		case events.EventLoginFailed:
			metrics.RecordLogin(false)
		case events.EventRefreshed:
			metrics.RecordRefresh(true)
		case events.EventRefreshFailed:
			metrics.RecordRefresh(false)
		}
		return nil
	}

	for _, eventType := range []events.EventType{
		events.EventLogin,
		events.EventLoginFailed,
		events.EventLogout,
		events.EventRefreshed,
		events.EventRefreshFailed,
		events.EventProfileUpdated,
	} {
		dispatcher.Subscribe(eventType, record)
	}
}
