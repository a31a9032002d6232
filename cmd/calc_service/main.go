package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calculator-saas/internal/auth"
	"calculator-saas/internal/config"
	"calculator-saas/internal/history"
	"calculator-saas/internal/logging"
	"calculator-saas/internal/middleware"
	"calculator-saas/internal/server"
	"calculator-saas/internal/storage"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := storage.NewSQLite(cfg.DatabasePath, log)
	if err != nil {
		return err
	}
	log.WithField("path", cfg.DatabasePath).Info("connected to SQLite database")

	ledger := history.NewLedger(db, log, cfg.HistoryWriteTimeout)
	defer func() {
		// Pending history writes need the database, so drain them first.
		ledger.Wait()
		if err := storage.Close(db); err != nil {
			log.WithError(err).Error("error closing database")
			return
		}
		log.Info("database connection closed")
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var limiter *middleware.RateLimiter
	if cfg.AuthRateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst, log)
		limiter.StartCleanup(10*time.Minute, ctx.Done())
	}

	handler := server.NewRouter(server.Deps{
		Config:  cfg,
		Log:     log,
		Users:   auth.NewStore(db, cfg.BcryptCost),
		Tokens:  auth.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL),
		Ledger:  ledger,
		Limiter: limiter,
	})

	return server.Run(ctx, cfg.Addr(), handler, cfg.ShutdownTimeout, log)
}

// loadConfig layers command-line flags over config.Load.
func loadConfig(args []string) (*config.Config, error) {
	flags := pflag.NewFlagSet("calc_service", pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", os.Getenv("CALC_CONFIG"), "path to a YAML config file")
	envFile := flags.String("env-file", ".env", "dotenv file loaded into the environment if present")
	port := flags.StringP("port", "p", "", "listen port (overrides PORT)")
	dbPath := flags.String("db", "", "SQLite database path (overrides DATABASE_PATH)")
	logLevel := flags.String("log-level", "", "log level: debug, info, warn, error")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		return nil, err
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
