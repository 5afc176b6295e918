// Package main implements the pluto.tv proxy server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/savid/plutotv-proxy/config"
	"github.com/savid/plutotv-proxy/handlers"
	"github.com/savid/plutotv-proxy/pkg/addon"
	"github.com/savid/plutotv-proxy/pkg/data"
	"github.com/savid/plutotv-proxy/pkg/pluto"
	"github.com/savid/plutotv-proxy/pkg/settings"
	"github.com/sirupsen/logrus"
)

func main() {
	// Configure logrus
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.WithError(err).Fatal("Failed to load .env file")
	}

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	// Set log level based on config
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to parse log level")
	}
	logrus.SetLevel(level)

	logger := logrus.StandardLogger()

	store, err := settings.Open(cfg.SettingsBackend, cfg.SettingsPath, cfg.RedisURL)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open settings store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close settings store")
		}
	}()

	fetcher := data.NewFetcher(data.FetcherConfig{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.FetchTimeout,
		RateLimit: cfg.FetchRateLimit,
	}, logger)

	catalog := pluto.NewCatalog(fetcher, pluto.CatalogConfig{
		URL:          cfg.ChannelsURL,
		StartNumber:  cfg.StartChannel,
		ColoredLogos: cfg.ColoredLogos,
	}, logger)
	guide := pluto.NewGuide(fetcher, catalog, pluto.GuideConfig{URL: cfg.GuideURL}, logger)

	backend := addon.New(catalog, guide, settings.NewIdentity(store), addon.Options{
		WorkaroundBrokenStreams: cfg.WorkaroundBrokenStreams,
		UserAgent:               cfg.UserAgent,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The catalog loads lazily; a failed warm-up is retried on first use.
	if err := catalog.EnsureLoaded(ctx); err != nil {
		logger.WithError(err).Warn("Initial channel load failed")
	}

	// Start background guide refresh
	refresher := data.NewRefresher(guide, cfg.GuideWindow, cfg.RefreshInterval, logger)
	go refresher.Start(ctx)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handlers.NewRouter(backend, cfg, logger),
		ReadTimeout:  120 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Failed to gracefully shutdown")
		}
	}()

	logger.WithFields(logrus.Fields{
		"port":    cfg.Port,
		"backend": addon.BackendName,
		"version": backend.BackendVersion(),
	}).Info("Starting pluto.tv proxy server")
	logger.WithField("endpoint", fmt.Sprintf("%s/iptv.m3u", cfg.BaseURL)).Info("M3U endpoint")
	logger.WithField("endpoint", fmt.Sprintf("%s/epg.xml", cfg.BaseURL)).Info("EPG endpoint")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Error("Failed to start server")
		return
	}

	<-ctx.Done()
	logger.Info("Server stopped")
}
