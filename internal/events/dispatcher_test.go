package events

import (
	"context"
	"errors"
	"testing"
)

func TestInMemoryDispatcher_Publish(t *testing.T) {
	d := NewInMemoryDispatcher()

	var calls []string
	boom := errors.New("boom")
	d.Subscribe(EventSignInFailed, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.Email)
		return boom
	})
	d.Subscribe(EventSignInFailed, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.Email)
		return nil
	})
	d.Subscribe(EventTokenRefreshed, func(context.Context, Event) error {
		calls = append(calls, "refresh")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventSignInFailed, Email: "a@x.com"})
	if !errors.Is(err, boom) {
		t.Errorf("Publish() error = %v, want %v", err, boom)
	}
	if len(calls) != 2 || calls[0] != "first:a@x.com" || calls[1] != "second:a@x.com" {
		t.Errorf("handlers called = %v", calls)
	}

	if err := d.Publish(context.Background(), Event{Type: EventSignInSucceeded}); err != nil {
		t.Errorf("Publish() without listeners error = %v", err)
	}
}
