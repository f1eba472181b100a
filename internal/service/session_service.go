package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/session-service/internal/auth"
	"github.com/spec-kit/session-service/internal/config"
	"github.com/spec-kit/session-service/internal/domain"
	"github.com/spec-kit/session-service/internal/events"
	"github.com/spec-kit/session-service/internal/repository"
	apperrors "github.com/spec-kit/session-service/pkg/util"
)

const msgTooManyAttempts = "Too many sign-in attempts, try again later"

// AdminSession is returned on admin sign-in. Admins get no refresh token.
type AdminSession struct {
	Info        *domain.AdminInfo
	AccessToken string
}

// UserSession is returned on user sign-in and refresh.
type UserSession struct {
	Info         *domain.UserInfo
	AccessToken  string
	RefreshToken string
}

// SessionService coordinates sign-in, token verification and refresh.
// Every error it returns is an *apperrors.DomainError.
type SessionService struct {
	resolver   *PrincipalResolver
	passwords  auth.PasswordVerifier
	codec      *auth.TokenCodec
	limiter    auth.AttemptLimiter
	events     events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// SessionDependencies encapsulates collaborators of the session service.
type SessionDependencies struct {
	AdminRepo  repository.AdminRepository
	UserRepo   repository.UserRepository
	Passwords  auth.PasswordVerifier
	Limiter    auth.AttemptLimiter
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// NewSessionService builds the service.
func NewSessionService(cfg config.Config, deps SessionDependencies) *SessionService {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	passwords := deps.Passwords
	if passwords == nil {
		passwords = auth.BcryptVerifier{}
	}
	limiter := deps.Limiter
	if limiter == nil {
		limiter = auth.NoopLimiter{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		resolver:   NewPrincipalResolver(deps.AdminRepo, deps.UserRepo),
		passwords:  passwords,
		codec:      auth.NewTokenCodec(cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret, auth.WithClock(now)),
		limiter:    limiter,
		events:     deps.Dispatcher,
		logger:     logger,
		now:        now,
		accessTTL:  cfg.Auth.AccessTokenTTL(),
		refreshTTL: cfg.Auth.RefreshTokenTTL(),
	}
}

// AdminSignIn authenticates an admin and issues an access token.
func (s *SessionService) AdminSignIn(ctx context.Context, email, password string) (*AdminSession, error) {
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError(apperrors.MsgEmailPasswordNull)
	}

	var admin *domain.AdminPrincipal
	err := s.authenticate(ctx, domain.PrincipalKindAdmin, email, password, func(ctx context.Context) (string, error) {
		found, err := s.resolver.ResolveAdmin(ctx, email)
		if err != nil {
			return "", err
		}
		admin = found
		return found.PasswordHash, nil
	})
	if err != nil {
		return nil, err
	}

	accessToken, err := s.codec.Mint(admin.Claims(), domain.AccessSecret, s.accessTTL)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("mint access token: %w", err))
	}

	s.publish(ctx, events.EventSignInSucceeded, domain.PrincipalKindAdmin, email, "OK")
	return &AdminSession{Info: admin.Info(), AccessToken: accessToken}, nil
}

// UserSignIn authenticates a user and issues an access and a refresh token.
func (s *SessionService) UserSignIn(ctx context.Context, email, password string) (*UserSession, error) {
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError(apperrors.MsgEmailPasswordNull)
	}

	var user *domain.UserPrincipal
	err := s.authenticate(ctx, domain.PrincipalKindUser, email, password, func(ctx context.Context) (string, error) {
		found, err := s.resolver.ResolveUser(ctx, email)
		if err != nil {
			return "", err
		}
		user = found
		return found.PasswordHash, nil
	})
	if err != nil {
		return nil, err
	}

	session, err := s.issueUserSession(user)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventSignInSucceeded, domain.PrincipalKindUser, email, "OK")
	return session, nil
}

// VerifyAdminToken validates an admin access token and reloads the admin.
func (s *SessionService) VerifyAdminToken(ctx context.Context, token string) (*domain.AdminInfo, error) {
	claims, err := s.codec.Verify(token, domain.AccessSecret)
	if err != nil {
		return nil, tokenRejected(err)
	}
	if claims.Role == nil {
		return nil, tokenRejected(errors.New("token carries no admin role"))
	}

	admin, err := s.resolver.ResolveAdmin(ctx, claims.Email)
	if errors.Is(err, ErrPrincipalNotFound) {
		return nil, tokenRejected(err)
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return admin.Info(), nil
}

// VerifyToken validates a user token against the namespace named by class and
// reloads the user.
func (s *SessionService) VerifyToken(ctx context.Context, token string, class domain.TokenClass) (*domain.UserInfo, error) {
	user, err := s.verifyUser(ctx, token, class)
	if err != nil {
		return nil, err
	}
	return user.Info(), nil
}

// RefreshToken exchanges a valid refresh token for a new token pair built
// from the user's current record. The presented token stays valid until it
// expires.
func (s *SessionService) RefreshToken(ctx context.Context, refreshToken string) (*UserSession, error) {
	user, err := s.verifyUser(ctx, refreshToken, domain.TokenClassRefresh)
	if err != nil {
		if !apperrors.IsCode(err, apperrors.CodeUnauthorized) {
			s.logger.Error("refresh verification failed", zap.Error(err))
		}
		return nil, apperrors.NewUnauthorizedCause(apperrors.MsgTokenVerificationFailed, err)
	}

	session, err := s.issueUserSession(user)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventTokenRefreshed, domain.PrincipalKindUser, user.Email, "OK")
	return session, nil
}

func (s *SessionService) verifyUser(ctx context.Context, token string, class domain.TokenClass) (*domain.UserPrincipal, error) {
	var secret domain.SecretName
	switch class {
	case domain.TokenClassActive:
		secret = domain.AccessSecret
	case domain.TokenClassRefresh:
		secret = domain.RefreshSecret
	default:
		return nil, tokenRejected(domain.ErrUnknownTokenClass)
	}

	claims, err := s.codec.Verify(token, secret)
	if err != nil {
		return nil, tokenRejected(err)
	}
	if claims.Role != nil {
		return nil, tokenRejected(errors.New("admin token presented as user token"))
	}

	user, err := s.resolver.ResolveUser(ctx, claims.Email)
	if errors.Is(err, ErrPrincipalNotFound) {
		return nil, tokenRejected(err)
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// authenticate runs the limiter, lookup and password check shared by both
// sign-in flows. lookup returns the stored hash.
func (s *SessionService) authenticate(ctx context.Context, kind domain.PrincipalKind, email, password string, lookup func(context.Context) (string, error)) error {
	key := string(kind) + ":" + email

	allowed, err := s.limiter.Allow(ctx, key)
	if err != nil {
		s.logger.Warn("sign-in limiter unavailable", zap.Error(err))
	} else if !allowed {
		return s.signInFailed(ctx, kind, email, apperrors.NewUnauthorized(msgTooManyAttempts))
	}

	hash, err := lookup(ctx)
	if errors.Is(err, ErrPrincipalNotFound) {
		return s.signInFailed(ctx, kind, email, apperrors.NewNotFound(apperrors.MsgEmailNotFound))
	}
	if err != nil {
		return s.signInFailed(ctx, kind, email, apperrors.NewInternalError(err))
	}

	ok, err := s.passwords.Verify(password, hash)
	if err != nil {
		return s.signInFailed(ctx, kind, email, apperrors.NewInternalError(fmt.Errorf("compare password: %w", err)))
	}
	if !ok {
		if err := s.limiter.RecordFailure(ctx, key); err != nil {
			s.logger.Warn("sign-in limiter unavailable", zap.Error(err))
		}
		return s.signInFailed(ctx, kind, email, apperrors.NewUnauthorized(apperrors.MsgPasswordIncorrect))
	}

	if err := s.limiter.Reset(ctx, key); err != nil {
		s.logger.Warn("sign-in limiter unavailable", zap.Error(err))
	}
	return nil
}

func (s *SessionService) issueUserSession(user *domain.UserPrincipal) (*UserSession, error) {
	claims := user.Claims()
	accessToken, err := s.codec.Mint(claims, domain.AccessSecret, s.accessTTL)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("mint access token: %w", err))
	}
	refreshToken, err := s.codec.Mint(claims, domain.RefreshSecret, s.refreshTTL)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("mint refresh token: %w", err))
	}
	return &UserSession{Info: user.Info(), AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *SessionService) signInFailed(ctx context.Context, kind domain.PrincipalKind, email string, err error) error {
	s.publish(ctx, events.EventSignInFailed, kind, email, apperrors.ToDomainError(err).Code)
	return err
}

func (s *SessionService) publish(ctx context.Context, eventType events.EventType, kind domain.PrincipalKind, email, outcome string) {
	if s.events == nil {
		return
	}
	err := s.events.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Kind:      kind,
		Email:     email,
		Outcome:   outcome,
		Timestamp: s.now(),
	})
	if err != nil {
		s.logger.Warn("publish auth event", zap.String("type", string(eventType)), zap.Error(err))
	}
}

// tokenRejected hides the specific verification failure from callers.
func tokenRejected(err error) error {
	return apperrors.NewUnauthorizedCause(apperrors.MsgTokenVerificationFailed, err)
}
