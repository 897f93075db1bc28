package wizard

import (
	"github.com/google/uuid"
	"github.com/quotewise/intake-api/internal/domain"
	"go.uber.org/zap"
)

// Notifier receives every user-visible notice the wizard raises, in addition
// to the notice buffer kept on the session itself. Implementations may push
// to websockets, webhooks, or just logs.
type Notifier interface {
	Notify(sessionID uuid.UUID, notice domain.Notice)
}

// LogNotifier writes notices to the structured log
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier backed by the application logger
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier
func (n *LogNotifier) Notify(sessionID uuid.UUID, notice domain.Notice) {
	level := n.logger.Info
	if notice.Severity == domain.NoticeSeverityError {
		level = n.logger.Warn
	}
	level("wizard notice",
		zap.String("sessionID", sessionID.String()),
		zap.String("title", notice.Title),
		zap.String("description", notice.Description),
		zap.String("severity", string(notice.Severity)),
	)
}
