package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wine/internal/animation"
	"wine/internal/configuration"
	"wine/internal/dataset"
	"wine/internal/guide"
	"wine/internal/history"
	"wine/internal/model"
	"wine/internal/predict"
	"wine/internal/server"
)

// logLevel is shared by the default logger and configuration reloads.
var logLevel = new(slog.LevelVar)

// prepareLogger installs a JSON logger on stdout as the default slog logger.
// Unknown levels fall back to info.
func prepareLogger(level string) {
	setLogLevel(level)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

func setLogLevel(level string) {
	l, _ := configuration.ParseLevel(level)
	logLevel.Set(l)
}

// Any error while loading the configuration, the model or the guide rules
// terminates the process with status 1 before the server starts.
func main() {
	configPath := flag.String("config", "/etc/wine/config.yaml", "configuration file")
	flag.Parse()
	config, err := configuration.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Unable to load configuration", "error", err)
		os.Exit(1)
	}
	prepareLogger(config.Logger.Level)
	configuration.WatchConfig(func(c *configuration.AppConfig) {
		setLogLevel(c.Logger.Level)
	})

	appCtx, appCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer appCancel()

	m, err := model.Load(config.Model.Path)
	if err != nil {
		slog.Error("Unable to load model", "error", err)
		os.Exit(1)
	}
	invoker, err := predict.NewInvoker(m)
	if err != nil {
		slog.Error("Model does not match the feature schema", "error", err)
		os.Exit(1)
	}
	slog.Info("Model loaded", "name", m.Name(), "path", config.Model.Path)

	var notes *guide.Guide
	if config.Guide.Rules != "" {
		notes, err = guide.LoadFromFile(config.Guide.Rules)
		if err != nil {
			slog.Error("Unable to load guide rules", "error", err)
			os.Exit(1)
		}
	}

	historyRepo := history.NewRepository(config.History.Length, config.History.Sessions, config.History.TTL)

	var datasetRepo dataset.DatasetRepository = dataset.NopDatasetRepository{}
	if config.Dataset.File != "" {
		datasetRepo = dataset.NewJsonDatasetRepository(config.Dataset.File, config.Dataset.Size, config.Dataset.Amount)
	}

	var animations *animation.Library
	if len(config.Animation.URLs) != 0 {
		animations = animation.NewLibrary(
			animation.NewFetcher(config.Animation.Timeout),
			config.Animation.URLs,
			config.Animation.TTL,
		)
		go animations.Warm(appCtx)
	}

	router := server.NewRouter(
		config.Server.Static,
		config.Server.SessionCookie,
		invoker,
		notes,
		historyRepo,
		datasetRepo,
		animations,
	)
	srv := server.NewServer(config.Server.Address, router)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			appCancel()
		}
	}()
	slog.Info("Server listening " + config.Server.Address)
	<-appCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second*10)
	defer shutdownCancel()

	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		slog.Error("Server shutdown", "error", err)
	}
	slog.Info("Server stopped")

	datasetRepo.Close()
}
