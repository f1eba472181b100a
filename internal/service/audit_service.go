package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/session-service/internal/events"
)

// AuditService writes authentication events to the structured log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventSignInSucceeded, a.handleSignInSucceeded)
	a.dispatcher.Subscribe(events.EventSignInFailed, a.handleSignInFailed)
	a.dispatcher.Subscribe(events.EventTokenRefreshed, a.handleTokenRefreshed)
}

func (a *AuditService) handleSignInSucceeded(_ context.Context, event events.Event) error {
	a.logger.Info("SignInSucceeded", fields(event)...)
	return nil
}

func (a *AuditService) handleSignInFailed(_ context.Context, event events.Event) error {
	a.logger.Warn("SignInFailed", fields(event)...)
	return nil
}

func (a *AuditService) handleTokenRefreshed(_ context.Context, event events.Event) error {
	a.logger.Info("TokenRefreshed", fields(event)...)
	return nil
}

func fields(event events.Event) []zap.Field {
	return []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("kind", string(event.Kind)),
		zap.String("email", event.Email),
		zap.String("outcome", event.Outcome),
		zap.Time("at", event.Timestamp),
	}
}
