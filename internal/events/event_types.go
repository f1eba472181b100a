package events

import (
	"time"

	"github.com/spec-kit/session-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSignInSucceeded EventType = "signin_succeeded"
	EventSignInFailed    EventType = "signin_failed"
	EventTokenRefreshed  EventType = "token_refreshed"
)

// Event represents an authentication event emitted by the session service.
// Events never carry passwords or token material.
type Event struct {
	ID        string               `json:"id"`
	Type      EventType            `json:"type"`
	Kind      domain.PrincipalKind `json:"kind"`
	Email     string               `json:"email"`
	Outcome   string               `json:"outcome"`
	Timestamp time.Time            `json:"timestamp"`
}
