package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	adaptertcp "machinethread/controller/adapter/tcp"
	adapterwebsocket "machinethread/controller/adapter/websocket"
	"machinethread/controller/application"
	"machinethread/controller/domain"
	"machinethread/controller/handler"
)

const (
	dialTimeout     = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

func main() {
	var level slog.LevelVar
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: &level}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	level.Set(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := domain.NewRegistry()
	eg, ctx := errgroup.WithContext(ctx)

	if cfg.HealthAddr != "" {
		srv := &http.Server{Addr: cfg.HealthAddr, Handler: handler.Route(registry)}
		eg.Go(func() error {
			slog.Info("health server listening", "addr", cfg.HealthAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("health server: %w", err)
			}
			return nil
		})
		eg.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	slog.Info("starting controllers", "count", cfg.Count, "transport", cfg.Transport, "server", cfg.Address())
	for i := 1; i <= cfg.Count; i++ {
		name := cfg.ControllerName(i)
		eg.Go(func() error {
			runController(ctx, cfg, name, registry)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		slog.Error("controllers stopped with error", "err", err)
		os.Exit(1)
	}
	slog.Info("all controllers stopped")
}

// runController は ctx が終わるまで接続と再接続を繰り返します。
// 試合終了（空行）でも通信エラーでも RetryInterval 待ってからつなぎ直します。
func runController(ctx context.Context, cfg config, name string, registry *domain.Registry) {
	logger := slog.With("controller", name)

	for {
		if ctx.Err() != nil {
			return
		}
		err := controllerSession(ctx, cfg, name, registry, logger)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logger.Warn("controller session ended, reconnecting", "err", err, "retry_in", cfg.RetryInterval)
		} else {
			logger.Info("match ended, reconnecting", "retry_in", cfg.RetryInterval)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(cfg.RetryInterval):
		}
	}
}

func controllerSession(ctx context.Context, cfg config, name string, registry *domain.Registry, logger *slog.Logger) error {
	transport, err := dial(ctx, cfg)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	session := domain.NewSession(name)
	pilotCfg := cfg.Pilot
	pilotCfg.Name = name
	endpoint, err := domain.NewEndpoint(session, transport, application.NewPilot(pilotCfg))
	if err != nil {
		_ = transport.Close(1011, "init failed")
		return err
	}

	registry.Add(session)
	defer registry.Remove(session.ID())

	logger.Info("connected", "session_id", session.ID(), "transport", cfg.Transport)
	return endpoint.Run(ctx)
}

func dial(ctx context.Context, cfg config) (domain.Transport, error) {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	if cfg.Transport == transportWebSocket {
		return adapterwebsocket.Dial(dialCtx, cfg.URL())
	}
	return adaptertcp.Dial(dialCtx, cfg.Address())
}
