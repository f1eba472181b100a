// Command seed inserts an admin or user principal with a bcrypt hashed password.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/session-service/internal/auth"
	"github.com/spec-kit/session-service/internal/config"
	"github.com/spec-kit/session-service/internal/domain"
	"github.com/spec-kit/session-service/internal/observability"
	"github.com/spec-kit/session-service/internal/persistence"
	"github.com/spec-kit/session-service/internal/repository"
)

func main() {
	var (
		kind      = pflag.String("kind", "user", "principal kind: admin or user")
		email     = pflag.String("email", "", "account email")
		password  = pflag.String("password", "", "plaintext password")
		firstName = pflag.String("first", "", "first name (optional)")
		lastName  = pflag.String("last", "", "last name (optional)")
		role      = pflag.String("role", "", "admin role (optional)")
		cost      = pflag.Int("cost", 12, "bcrypt cost")
	)
	pflag.Parse()

	if err := run(*kind, *email, *password, optional(*firstName), optional(*lastName), optional(*role), *cost); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(kind, email, password string, firstName, lastName, role *string, cost int) error {
	if email == "" || password == "" {
		return fmt.Errorf("--email and --password are required")
	}

	pgCfg, logCfg, err := loadStoreConfig()
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(config.AppConfig{Name: "seed"}, logCfg)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, pgCfg, logger)
	if err != nil {
		return err
	}
	defer pg.Close()

	hash, err := auth.HashPassword(password, cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	switch domain.PrincipalKind(strings.ToUpper(kind)) {
	case domain.PrincipalKindAdmin:
		admin := &domain.AdminPrincipal{Email: email, PasswordHash: hash, FirstName: firstName, LastName: lastName, Role: role}
		if err := repository.NewAdminRepository(pg.PoolHandle()).Create(ctx, admin); err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		logger.Info("admin created", zap.String("id", admin.ID), zap.String("email", admin.Email))
	case domain.PrincipalKindUser:
		user := &domain.UserPrincipal{Email: email, PasswordHash: hash, FirstName: firstName, LastName: lastName}
		if err := repository.NewUserRepository(pg.PoolHandle()).Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		logger.Info("user created", zap.String("id", user.ID), zap.String("email", user.Email))
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
	return nil
}

// loadStoreConfig reads only the settings the seeder needs, so it runs
// without broker or signing secrets.
func loadStoreConfig() (config.PostgresConfig, config.LoggerConfig, error) {
	cfg, err := config.Load()
	if err == nil {
		return cfg.Postgres, cfg.Logger, nil
	}
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		return config.PostgresConfig{}, config.LoggerConfig{}, fmt.Errorf("POSTGRES_DSN is not defined: %w", err)
	}
	return config.PostgresConfig{DSN: dsn, MaxConns: 2}, config.LoggerConfig{Level: "info"}, nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
