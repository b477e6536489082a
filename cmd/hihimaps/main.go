package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hihimaps/internal/api"
	"hihimaps/pkg/audio"
	"hihimaps/pkg/cache"
	"hihimaps/pkg/config"
	"hihimaps/pkg/db"
	"hihimaps/pkg/detail"
	"hihimaps/pkg/geocode"
	"hihimaps/pkg/guide"
	"hihimaps/pkg/logging"
	"hihimaps/pkg/model"
	"hihimaps/pkg/places"
	"hihimaps/pkg/poller"
	"hihimaps/pkg/probe"
	"hihimaps/pkg/request"
	"hihimaps/pkg/search"
	"hihimaps/pkg/sensor"
	"hihimaps/pkg/sensor/mockloc"
	"hihimaps/pkg/store"
	"hihimaps/pkg/tracker"
	"hihimaps/pkg/version"
)

var initConfig = flag.Bool("init-config", false, "Generate default config file and exit")

const configPath = "configs/hihimaps.yaml"

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", configPath)
		return
	}

	if err := run(context.Background(), configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("HihiMaps Started", "version", version.Version)

	// An empty db.path runs without a response cache.
	var cacher cache.Cacher = cache.NullCache{}
	if cfg.DB.Path != "" {
		dbConn, err := db.Init(cfg.DB.Path)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer dbConn.Close()

		if err := dbConn.PruneCache(time.Duration(cfg.DB.CacheTTL)); err != nil {
			slog.Warn("Cache pruning failed", "error", err)
		}
		cacher = cache.NewSQLiteCache(dbConn)
	} else {
		slog.Info("Response cache disabled, db.path is empty")
	}

	// Shared HTTP client: per-provider queues, backoff, response cache.
	tr := tracker.New()
	reqClient := request.New(cacher, tr, &cfg.Request, cfg.Geocoding.Contact)

	placesClient := places.New(reqClient, &cfg.Places)
	geocoder := geocode.New(reqClient, &cfg.Geocoding)

	// Client state and components.
	lang, err := model.ParseLanguage(cfg.Language)
	if err != nil {
		return err
	}
	st := store.New(lang)
	fetcher := detail.New(placesClient, tr)
	player := audio.NewPlayer()
	player.SetVolume(cfg.Audio.Volume)

	provider, err := sensor.FromConfig(&cfg.Sensor, func(mc config.MockLocConfig) sensor.Provider {
		return mockloc.New(mc)
	})
	if err != nil {
		return err
	}

	ctrl := guide.New(st, fetcher, player, provider, sensor.Options{
		Accuracy:         sensor.Accuracy(cfg.Sensor.Accuracy),
		DistanceInterval: cfg.Sensor.DistanceInterval,
	})
	defer ctrl.Close()

	if err := ctrl.Start(ctx); err != nil {
		return err
	}

	// Nearby polling: a time job and a movement job share one refresher, so
	// overlapping triggers cannot interleave stale lists into the store.
	refresher := poller.NewRefresher(placesClient, st, tr, cfg.Places.RadiusMeters)
	sched := poller.NewScheduler(st, time.Second)
	sched.AddJob(poller.NewTimeJob("NearbyPoll", time.Duration(cfg.Places.PollInterval), refresher.Refresh))
	sched.AddJob(poller.NewDistanceJob("NearbyMove", cfg.Places.MovementThreshold, refresher.Refresh))
	go sched.Start(ctx)

	// Startup probes: the places API is critical, the geocoder is not.
	results := probe.Run(ctx, []probe.Probe{
		{Name: "Places API", Check: placesClient.HealthCheck, Critical: true},
		{Name: "Geocoder", Check: func(ctx context.Context) error {
			_, err := geocoder.Search(ctx, "Hanoi")
			return err
		}},
	})
	if err := probe.AnalyzeResults(results); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	return runServer(ctx, cancel, cfg, ctrl, st, tr, geocoder)
}

func runServer(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, ctrl *guide.Controller, st *store.Store, tr *tracker.Tracker, geocoder *geocode.Client) error {
	hub := api.NewHub(func() any { return ctrl.Snapshot() })
	ctrl.SetOnChange(hub.Broadcast)
	defer hub.Close()

	searchH := api.NewSearchHandler(func() *search.Assistant {
		return search.New(geocoder, st, &cfg.Geocoding)
	})

	srv := api.NewServer(cfg.Server.Addr,
		api.NewStateHandler(ctrl),
		api.NewPlacesHandler(ctrl),
		api.NewAudioHandler(ctrl),
		api.NewLanguageHandler(ctrl),
		searchH,
		api.NewStatsHandler(tr, searchH, hub),
		hub,
		cancel,
	)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case <-ctx.Done():
		slog.Info("Shutdown requested")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Server shutdown incomplete", "error", err)
	}
	return nil
}
