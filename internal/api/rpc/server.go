package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/spec-kit/session-service/internal/api/dto"
	"github.com/spec-kit/session-service/internal/api/operations"
	"github.com/spec-kit/session-service/internal/config"
)

const replyTimeout = 5 * time.Second

// ErrDeliveriesClosed is returned by Serve when the broker closes the consumer.
var ErrDeliveriesClosed = errors.New("rpc: delivery channel closed")

// request is the inbound frame written by NestJS RMQ clients.
type request struct {
	Pattern json.RawMessage `json:"pattern"`
	Data    json.RawMessage `json:"data"`
	ID      string          `json:"id"`
}

// reply is the frame NestJS RMQ clients expect on the reply queue.
type reply struct {
	Err        any          `json:"err"`
	Response   dto.Envelope `json:"response"`
	IsDisposed bool         `json:"isDisposed"`
	ID         string       `json:"id"`
}

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Server consumes operation requests from a queue and publishes replies to
// each request's ReplyTo queue.
type Server struct {
	cfg    config.BrokerConfig
	router *operations.Router
	logger *zap.Logger

	conn *amqp.Connection
	ch   *amqp.Channel

	pubMu sync.Mutex
	pub   publisher
}

func newServer(cfg config.BrokerConfig, router *operations.Router, logger *zap.Logger) *Server {
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}
	return &Server{cfg: cfg, router: router, logger: logger.Named("rpc")}
}

// Dial connects to the broker and declares the request queue.
func Dial(cfg config.BrokerConfig, router *operations.Router, logger *zap.Logger) (*Server, error) {
	s := newServer(cfg, router, logger)

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(cfg.Queue, cfg.Durable, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", cfg.Queue, err)
	}
	if err := ch.Qos(s.cfg.Prefetch, 0, false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	s.conn, s.ch, s.pub = conn, ch, ch
	s.logger.Info("connected to broker", zap.String("queue", cfg.Queue), zap.Int("prefetch", s.cfg.Prefetch))
	return s, nil
}

// Serve handles deliveries on Prefetch workers until ctx is cancelled or the
// broker closes the consumer.
func (s *Server) Serve(ctx context.Context) error {
	deliveries, err := s.ch.Consume(s.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", s.cfg.Queue, err)
	}
	return s.serve(ctx, deliveries)
}

func (s *Server) serve(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	var (
		wg     sync.WaitGroup
		closed = make(chan struct{})
		once   sync.Once
	)
	for i := 0; i < s.cfg.Prefetch; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case d, ok := <-deliveries:
					if !ok {
						once.Do(func() { close(closed) })
						return
					}
					s.handle(ctx, d)
				}
			}
		}()
	}
	wg.Wait()

	select {
	case <-closed:
		if ctx.Err() == nil {
			return ErrDeliveriesClosed
		}
	default:
	}
	return nil
}

// Close tears down the channel and connection.
func (s *Server) Close() error {
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *Server) handle(ctx context.Context, d amqp.Delivery) {
	body, pattern, err := s.process(ctx, d.Body)
	if err != nil {
		s.logger.Warn("rejecting undecodable request", zap.String("correlation_id", d.CorrelationId), zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	if d.ReplyTo == "" {
		s.logger.Warn("request without reply queue", zap.String("pattern", pattern))
		_ = d.Ack(false)
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()

	s.pubMu.Lock()
	err = s.pub.PublishWithContext(pubCtx, "", d.ReplyTo, false, false, amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: d.CorrelationId,
		Body:          body,
	})
	s.pubMu.Unlock()
	if err != nil {
		s.logger.Error("publish reply", zap.String("pattern", pattern), zap.String("reply_to", d.ReplyTo), zap.Error(err))
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}

// process decodes a request frame, runs the operation and encodes the reply.
func (s *Server) process(ctx context.Context, body []byte) ([]byte, string, error) {
	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, "", fmt.Errorf("decode request: %w", err)
	}
	pattern := patternName(req.Pattern)

	env := s.router.Handle(ctx, pattern, req.Data)
	out, err := json.Marshal(reply{Response: env, IsDisposed: true, ID: req.ID})
	if err != nil {
		return nil, pattern, fmt.Errorf("encode reply: %w", err)
	}
	return out, pattern, nil
}

// patternName accepts a JSON string pattern, falling back to the raw text for
// object patterns.
func patternName(raw json.RawMessage) string {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name
	}
	return string(raw)
}
