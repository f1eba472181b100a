package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/spec-kit/session-service/internal/api/operations"
	"github.com/spec-kit/session-service/internal/config"
	"github.com/spec-kit/session-service/internal/domain"
	"github.com/spec-kit/session-service/internal/observability"
	"github.com/spec-kit/session-service/internal/service"
	apperrors "github.com/spec-kit/session-service/pkg/util"
)

type stubSessions struct{}

func (stubSessions) AdminSignIn(_ context.Context, email, _ string) (*service.AdminSession, error) {
	return &service.AdminSession{Info: &domain.AdminInfo{Email: email}, AccessToken: "at"}, nil
}

func (stubSessions) UserSignIn(context.Context, string, string) (*service.UserSession, error) {
	return nil, apperrors.NewNotFound(apperrors.MsgEmailNotFound)
}

func (stubSessions) VerifyAdminToken(context.Context, string) (*domain.AdminInfo, error) {
	return nil, apperrors.NewUnauthorized(apperrors.MsgTokenVerificationFailed)
}

func (stubSessions) VerifyToken(context.Context, string, domain.TokenClass) (*domain.UserInfo, error) {
	return &domain.UserInfo{Email: "u@x.com"}, nil
}

func (stubSessions) RefreshToken(context.Context, string) (*service.UserSession, error) {
	return nil, apperrors.NewUnauthorized(apperrors.MsgTokenVerificationFailed)
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []amqp.Publishing
	keys []string
	err  error
}

func (p *recordingPublisher) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	p.msgs = append(p.msgs, msg)
	return nil
}

type recordingAck struct {
	mu      sync.Mutex
	acks    int
	nacks   int
	requeue bool
}

func (a *recordingAck) Ack(uint64, bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks++
	return nil
}

func (a *recordingAck) Nack(_ uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks++
	a.requeue = requeue
	return nil
}

func (a *recordingAck) Reject(uint64, bool) error { return nil }

func newTestServer(pub publisher) *Server {
	router := operations.NewRouter(stubSessions{}, observability.NewMetrics(), zap.NewNop())
	s := newServer(config.BrokerConfig{Queue: "auth_queue", Prefetch: 2}, router, zap.NewNop())
	s.pub = pub
	return s
}

func TestServer_Handle(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		replyTo     string
		pubErr      error
		wantStatus  int
		wantReplies int
		wantAcks    int
		wantNacks   int
		wantRequeue bool
	}{
		{
			name:        "Admin Login",
			body:        `{"pattern":"admin_login","data":{"email":"a@x.com","pw":"secret"},"id":"c1"}`,
			replyTo:     "amq.rabbitmq.reply-to",
			wantStatus:  200,
			wantReplies: 1,
			wantAcks:    1,
		},
		{
			name:        "User Login Not Found",
			body:        `{"pattern":"user_login","data":{"email":"x@x.com","pw":"secret"},"id":"c2"}`,
			replyTo:     "replies",
			wantStatus:  404,
			wantReplies: 1,
			wantAcks:    1,
		},
		{
			name:        "Unknown Pattern",
			body:        `{"pattern":"drop_tables","data":{},"id":"c3"}`,
			replyTo:     "replies",
			wantStatus:  404,
			wantReplies: 1,
			wantAcks:    1,
		},
		{
			name:      "Undecodable",
			body:      `not json`,
			replyTo:   "replies",
			wantNacks: 1,
		},
		{
			name:     "No Reply Queue",
			body:     `{"pattern":"verify_token","data":{"token":"t","secret_code":"ACTIVETOKEN"},"id":"c4"}`,
			wantAcks: 1,
		},
		{
			name:        "Publish Failure",
			body:        `{"pattern":"admin_login","data":{"email":"a@x.com","pw":"secret"},"id":"c5"}`,
			replyTo:     "replies",
			pubErr:      errors.New("channel closed"),
			wantNacks:   1,
			wantRequeue: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &recordingPublisher{err: tt.pubErr}
			ack := &recordingAck{}
			s := newTestServer(pub)

			s.handle(context.Background(), amqp.Delivery{
				Acknowledger:  ack,
				DeliveryTag:   1,
				Body:          []byte(tt.body),
				ReplyTo:       tt.replyTo,
				CorrelationId: "corr-" + tt.name,
			})

			if ack.acks != tt.wantAcks || ack.nacks != tt.wantNacks {
				t.Errorf("acks/nacks = %d/%d, want %d/%d", ack.acks, ack.nacks, tt.wantAcks, tt.wantNacks)
			}
			if ack.requeue != tt.wantRequeue {
				t.Errorf("requeue = %v, want %v", ack.requeue, tt.wantRequeue)
			}
			if len(pub.msgs) != tt.wantReplies {
				t.Fatalf("replies = %d, want %d", len(pub.msgs), tt.wantReplies)
			}
			if tt.wantReplies == 0 {
				return
			}

			msg := pub.msgs[0]
			if pub.keys[0] != tt.replyTo {
				t.Errorf("reply routing key = %q, want %q", pub.keys[0], tt.replyTo)
			}
			if msg.CorrelationId != "corr-"+tt.name {
				t.Errorf("CorrelationId = %q", msg.CorrelationId)
			}

			var got struct {
				Err        any  `json:"err"`
				IsDisposed bool `json:"isDisposed"`
				ID         string
				Response   struct {
					StatusCode int             `json:"statusCode"`
					Data       json.RawMessage `json:"data"`
				} `json:"response"`
			}
			if err := json.Unmarshal(msg.Body, &got); err != nil {
				t.Fatalf("decode reply: %v", err)
			}
			if got.Response.StatusCode != tt.wantStatus {
				t.Errorf("statusCode = %d, want %d", got.Response.StatusCode, tt.wantStatus)
			}
			if !got.IsDisposed || got.Err != nil || got.ID == "" {
				t.Errorf("reply frame = %s", msg.Body)
			}
		})
	}
}

func TestServer_Serve(t *testing.T) {
	pub := &recordingPublisher{}
	s := newTestServer(pub)

	deliveries := make(chan amqp.Delivery, 4)
	ack := &recordingAck{}
	for i := 0; i < 3; i++ {
		deliveries <- amqp.Delivery{
			Acknowledger: ack,
			Body:         []byte(`{"pattern":"verify_token","data":{"token":"t","secret_code":"ACTIVETOKEN"},"id":"x"}`),
			ReplyTo:      "replies",
		}
	}
	close(deliveries)

	done := make(chan error, 1)
	go func() { done <- s.serve(context.Background(), deliveries) }()

	select {
	case err := <-done:
		if !errors.Is(err, ErrDeliveriesClosed) {
			t.Errorf("serve() error = %v, want ErrDeliveriesClosed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve() did not return after deliveries closed")
	}
	if len(pub.msgs) != 3 || ack.acks != 3 {
		t.Errorf("replies/acks = %d/%d, want 3/3", len(pub.msgs), ack.acks)
	}
}

func TestServer_ServeCancelled(t *testing.T) {
	s := newTestServer(&recordingPublisher{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.serve(ctx, make(chan amqp.Delivery)); err != nil {
		t.Errorf("serve() after cancel error = %v, want nil", err)
	}
}

func TestPatternName(t *testing.T) {
	if got := patternName(json.RawMessage(`"user_login"`)); got != "user_login" {
		t.Errorf("patternName(string) = %q", got)
	}
	if got := patternName(json.RawMessage(`{"cmd":"x"}`)); got != `{"cmd":"x"}` {
		t.Errorf("patternName(object) = %q", got)
	}
}
