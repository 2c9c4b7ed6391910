package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/api"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/auth"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/cache"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/config"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/host"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/orbit"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/stream"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/view"
	"github.com/mamaroma/SpacePi-PolytechUniversity/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	addr := os.Getenv("SPACEPI_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	baseURL := os.Getenv("SPACEPI_ORBIT_BASE_URL")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8000"
	}

	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		logger.Error("invalid auth configuration", "error", err)
		os.Exit(1)
	}

	knobs, err := config.Load(os.Getenv("SPACEPI_CONFIG_FILE"))
	if err != nil {
		logger.Error("invalid knob configuration", "error", err)
		os.Exit(1)
	}

	globe := host.NewGlobe(knobs.ToHost(), web.Content, logger)

	client := orbit.NewClient(baseURL, logger)
	trackCache := cache.New(loadCacheConfig(logger), client, logger)
	gv := view.New(knobs.ToView(), trackCache, globe, logger)

	streamCfg := loadStreamConfig(logger)
	streamHandler := stream.NewHandler(globe, streamCfg, logger)

	srv := api.NewServer(addr, logger, authCfg, api.Deps{
		View:    gv,
		Surface: globe,
		Stream:  streamHandler,
		Ready:   globe.Ready,
		WebFS:   web.Content,
	})

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the frame loop.
	go globe.Start(ctx)

	go func() {
		logger.Info("starting server",
			"addr", addr,
			"auth_enabled", authCfg.Enabled,
			"orbit_base_url", baseURL,
			"sat", knobs.View.Satellite,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	// The frame loop has exited with ctx; tear the scene down after it.
	gv.Close()

	logger.Info("server stopped")
}

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	enabledStr := os.Getenv("SPACEPI_AUTH_ENABLED")
	if enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return cfg, errors.New("SPACEPI_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("SPACEPI_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("SPACEPI_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}

	return cfg, nil
}

func loadCacheConfig(logger *slog.Logger) cache.Config {
	cfg := cache.Config{
		TTL:      30 * time.Second,
		StaleFor: 10 * time.Minute,
	}

	if v := os.Getenv("SPACEPI_CACHE_TTL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid SPACEPI_CACHE_TTL value, using default", "value", v, "default", 30)
		} else {
			cfg.TTL = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("SPACEPI_CACHE_STALE_FOR"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			logger.Warn("invalid SPACEPI_CACHE_STALE_FOR value, using default", "value", v, "default", 600)
		} else {
			cfg.StaleFor = time.Duration(n) * time.Second
		}
	}

	logger.Info("cache config",
		"ttl_seconds", cfg.TTL.Seconds(),
		"stale_for_seconds", cfg.StaleFor.Seconds(),
	)

	return cfg
}

func loadStreamConfig(logger *slog.Logger) stream.Config {
	cfg := stream.Config{
		MaxConcurrentPerIP: 10,
		KeepaliveInterval:  30 * time.Second,
	}

	if v := os.Getenv("SPACEPI_STREAM_MAX_CONCURRENT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid SPACEPI_STREAM_MAX_CONCURRENT value, using default", "value", v, "default", 10)
		} else {
			cfg.MaxConcurrentPerIP = n
		}
	}

	if v := os.Getenv("SPACEPI_STREAM_KEEPALIVE_INTERVAL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid SPACEPI_STREAM_KEEPALIVE_INTERVAL value, using default", "value", v, "default", 30)
		} else {
			cfg.KeepaliveInterval = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("SPACEPI_STREAM_TRUST_PROXY"); v != "" {
		trust, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid SPACEPI_STREAM_TRUST_PROXY value, defaulting to false", "value", v)
		} else {
			cfg.TrustProxy = trust
		}
	}

	logger.Info("stream config",
		"max_concurrent_per_ip", cfg.MaxConcurrentPerIP,
		"keepalive_interval_seconds", cfg.KeepaliveInterval.Seconds(),
		"trust_proxy", cfg.TrustProxy,
	)

	return cfg
}
