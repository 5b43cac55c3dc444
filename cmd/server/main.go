package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/immoflow/accessgate/gate"
	"github.com/immoflow/accessgate/internal/config"
	"github.com/immoflow/accessgate/internal/database"
	applog "github.com/immoflow/accessgate/internal/log"
	"github.com/immoflow/accessgate/mailer"
	"github.com/immoflow/accessgate/notify"
	"github.com/immoflow/accessgate/provision"
	provisionpg "github.com/immoflow/accessgate/provision/postgres"
	"github.com/immoflow/accessgate/resolver"
	"github.com/immoflow/accessgate/rolecache"
	rolespg "github.com/immoflow/accessgate/roles/postgres"
	"github.com/immoflow/accessgate/server"
	"github.com/immoflow/accessgate/session"
	"github.com/immoflow/accessgate/session/localidp"
	"github.com/immoflow/accessgate/session/oidcidp"
)

const notificationDedupWindow = time.Minute

func main() {
	for {
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())
	logger := applog.New(c.GetEnv())

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, c.GetPostgresDSN())
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()

	roleRepo := rolespg.NewRoleRepo(pool)
	providerRepo := rolespg.NewProviderMembershipRepo(pool)

	res, err := resolver.New(roleRepo, providerRepo, c.GetTrustedDomain(),
		resolver.WithLogger(logger),
		resolver.WithRetryPolicy(resolver.RetryPolicy{
			MaxAttempts: c.GetRetryAttempts(),
			Unit:        c.GetRetryUnit(),
		}),
	)
	if err != nil {
		return fmt.Errorf("resolver: %w", err)
	}

	cache, err := buildRoleCache(ctx, c)
	if err != nil {
		return fmt.Errorf("role cache: %w", err)
	}

	hub := notify.NewHub(logger)
	notifier := notify.NewDeduper(hub, notificationDedupWindow)

	g, err := gate.New(res, cache, c.GetTrustedDomain(),
		gate.WithTimeout(c.GetCheckTimeout()),
		gate.WithNotifier(notifier),
		gate.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("gate: %w", err)
	}

	accountRepo := provisionpg.NewAccountRepo(pool)

	idp, verifier, err := buildIdentity(ctx, c, accountRepo, logger)
	if err != nil {
		return fmt.Errorf("identity provider: %w", err)
	}

	provisionOpts := []provision.Option{provision.WithLogger(logger)}
	if recovery, ok := idp.(provision.RecoveryNotifier); ok {
		provisionOpts = append(provisionOpts, provision.WithRecoveryNotifier(recovery))
	}
	provisioner, err := provision.New(provision.Repos{
		Accounts: accountRepo,
		Resets:   provisionpg.NewResetTokenRepo(pool),
		Roles:    roleRepo,
	}, mailer.NewSMTP(c), c.GetBaseURL(), provisionOpts...)
	if err != nil {
		return fmt.Errorf("provisioner: %w", err)
	}

	srv, err := server.New(c, server.Deps{
		Gate:        g,
		Resolver:    res,
		Verifier:    verifier,
		Identity:    idp,
		Provisioner: provisioner,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@hourly", func() {
		if err := provisioner.CleanupExpiredResets(context.Background()); err != nil {
			logger.Error().Err(err).Msg("reset token cleanup failed")
		}
	}); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	go logSessionEvents(idp, logger)

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer, logger)
	waitForStopSignal()
	return shutdown(httpServer)
}

func buildRoleCache(ctx context.Context, c config.Config) (rolecache.Cache, error) {
	if addr := c.GetRedisAddr(); addr != "" {
		client, err := database.NewRedisClient(ctx, addr, c.GetRedisPassword(), c.GetRedisDB())
		if err != nil {
			return nil, err
		}
		return rolecache.NewRedis(client, "server", c.GetRoleCacheTTL()), nil
	}
	return rolecache.NewMemory(c.GetRoleCacheTTL()), nil
}

// buildIdentity prefers full OIDC discovery against the hosted auth service;
// without an issuer it falls back to the local provider, with bearer tokens
// verified against the shared JWT secret.
func buildIdentity(ctx context.Context, c config.Config, accounts provision.AccountRepo, logger zerolog.Logger) (session.Provider, session.Verifier, error) {
	if issuer := c.GetOIDCIssuer(); issuer != "" {
		idp, err := oidcidp.New(ctx, issuer, c.GetOIDCClientID(), c.GetOIDCClientSecret(), logger)
		if err != nil {
			return nil, nil, err
		}
		return idp, idp, nil
	}

	if c.GetJWTSecret() == "" {
		return nil, nil, errors.New("either OIDC_ISSUER or JWT_SECRET must be set")
	}
	idp, err := localidp.New(accounts, localidp.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return idp, session.NewJWTVerifier(c.GetJWTSecret()), nil
}

func logSessionEvents(idp session.Provider, logger zerolog.Logger) {
	for ev := range idp.Events() {
		e := logger.Info().Str("event", string(ev.Type))
		if ev.Session != nil {
			e = e.Str("user_id", ev.Session.UserID)
		}
		e.Msg("session event")
	}
}

func listenAndServe(httpServer *http.Server, logger zerolog.Logger) {
	logger.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("server stopped")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
