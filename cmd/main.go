package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	grpcapi "ai-video-summary-service/internal/api/grpc"
	"ai-video-summary-service/internal/app"
	"ai-video-summary-service/internal/config"
	httpapi "ai-video-summary-service/internal/http"
	"ai-video-summary-service/internal/observability"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create application")
	}
	if err := application.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start application")
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Service.HTTPPort,
		Handler:           httpapi.NewRouter(application),
		ReadHeaderTimeout: 10 * time.Second,
		// /summarize waits on search, transcript and LLM calls.
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	grpcLis, err := net.Listen("tcp", ":"+cfg.Service.GRPCPort)
	if err != nil {
		log.Fatal().Err(err).Str("port", cfg.Service.GRPCPort).Msg("failed to listen")
	}
	grpcServer := grpcapi.New(application.Metrics)

	obsServer := observability.NewServer(cfg.Observability.MetricsAddr)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", httpServer.Addr).Msg("AI Video Summary service started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return grpcServer.Serve(grpcLis)
	})
	g.Go(obsServer.ListenAndServe)

	grpcServer.SetServing(true)
	obsServer.SetReady(true)

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutdown signal received")

		grpcServer.SetServing(false)
		obsServer.SetReady(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Service.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		grpcServer.Stop()
		if err := application.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		if err := obsServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("service exited with error")
		os.Exit(1)
	}
	log.Info().Msg("service stopped")
}
