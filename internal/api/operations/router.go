package operations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/session-service/internal/api/dto"
	"github.com/spec-kit/session-service/internal/domain"
	"github.com/spec-kit/session-service/internal/observability"
	"github.com/spec-kit/session-service/internal/service"
	apperrors "github.com/spec-kit/session-service/pkg/util"
)

// Operation names, shared with existing broker clients.
const (
	PatternAdminLogin       = "admin_login"
	PatternVerifyAdminToken = "verify_admin_token"
	PatternUserLogin        = "user_login"
	PatternVerifyToken      = "verify_token"
	PatternUserRefreshToken = "user_refresh_token"
)

var errNoHandler = errors.New("no handler for pattern")

// SessionManager is the core consumed by the transports.
type SessionManager interface {
	AdminSignIn(ctx context.Context, email, password string) (*service.AdminSession, error)
	UserSignIn(ctx context.Context, email, password string) (*service.UserSession, error)
	VerifyAdminToken(ctx context.Context, token string) (*domain.AdminInfo, error)
	VerifyToken(ctx context.Context, token string, class domain.TokenClass) (*domain.UserInfo, error)
	RefreshToken(ctx context.Context, refreshToken string) (*service.UserSession, error)
}

type handlerFunc func(ctx context.Context, data json.RawMessage) (any, error)

// Router decodes operation payloads, invokes the session manager and builds
// reply envelopes. It is shared by the broker and HTTP transports.
type Router struct {
	sessions SessionManager
	metrics  *observability.Metrics
	logger   *zap.Logger
	handlers map[string]handlerFunc
}

// NewRouter registers the five session operations.
func NewRouter(sessions SessionManager, metrics *observability.Metrics, logger *zap.Logger) *Router {
	r := &Router{sessions: sessions, metrics: metrics, logger: logger}
	r.handlers = map[string]handlerFunc{
		PatternAdminLogin:       r.adminLogin,
		PatternVerifyAdminToken: r.verifyAdminToken,
		PatternUserLogin:        r.userLogin,
		PatternVerifyToken:      r.verifyToken,
		PatternUserRefreshToken: r.refreshToken,
	}
	return r
}

// Handles reports whether pattern is a known operation.
func (r *Router) Handles(pattern string) bool {
	_, ok := r.handlers[pattern]
	return ok
}

// Handle runs one operation. It never panics and always returns an envelope.
func (r *Router) Handle(ctx context.Context, pattern string, data json.RawMessage) (env dto.Envelope) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("panic recovered", zap.String("pattern", pattern), zap.Any("panic", rec), zap.ByteString("stack", debug.Stack()))
			env = dto.NewFailure(apperrors.NewInternalError(fmt.Errorf("panic: %v", rec)))
		}
		op := pattern
		if !r.Handles(op) {
			op = "unknown"
		}
		r.metrics.RecordOutcome(op, env.Code, time.Since(start))
	}()

	handler, ok := r.handlers[pattern]
	if !ok {
		return dto.NewFailure(apperrors.NewNotFound(errNoHandler.Error()))
	}

	payload, err := handler(ctx, data)
	if err != nil {
		de := apperrors.ToDomainError(err)
		if de.HTTPStatus >= 500 {
			r.logger.Error("operation failed", zap.String("pattern", pattern), zap.Error(de))
		} else {
			r.logger.Debug("operation rejected", zap.String("pattern", pattern), zap.String("code", de.Code), zap.Error(de))
		}
		return dto.NewFailure(de)
	}
	return dto.NewSuccess(payload)
}

func (r *Router) adminLogin(ctx context.Context, data json.RawMessage) (any, error) {
	var req dto.SignInRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	session, err := r.sessions.AdminSignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return dto.AdminSession(session), nil
}

func (r *Router) verifyAdminToken(ctx context.Context, data json.RawMessage) (any, error) {
	var req dto.VerifyAdminTokenRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	info, err := r.sessions.VerifyAdminToken(ctx, req.Token)
	if err != nil {
		return nil, err
	}
	return dto.AdminInfoResponse{AdminInfo: info}, nil
}

func (r *Router) userLogin(ctx context.Context, data json.RawMessage) (any, error) {
	var req dto.SignInRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	session, err := r.sessions.UserSignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return dto.UserSession(session), nil
}

func (r *Router) verifyToken(ctx context.Context, data json.RawMessage) (any, error) {
	var req dto.VerifyTokenRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	class, err := domain.ParseTokenClass(req.ClassCode)
	if err != nil {
		return nil, apperrors.NewUnauthorizedCause(apperrors.MsgTokenVerificationFailed, err)
	}
	info, err := r.sessions.VerifyToken(ctx, req.Token, class)
	if err != nil {
		return nil, err
	}
	return dto.UserInfoResponse{UserInfo: info}, nil
}

// refreshToken accepts an absent class code; any other code than
// REFRESHTOKEN is rejected.
func (r *Router) refreshToken(ctx context.Context, data json.RawMessage) (any, error) {
	var req dto.RefreshTokenRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	if req.ClassCode != "" {
		class, err := domain.ParseTokenClass(req.ClassCode)
		if err != nil || class != domain.TokenClassRefresh {
			return nil, apperrors.NewUnauthorizedCause(apperrors.MsgTokenVerificationFailed, fmt.Errorf("refresh with class %q", req.ClassCode))
		}
	}
	session, err := r.sessions.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}
	return dto.UserSession(session), nil
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	return nil
}
