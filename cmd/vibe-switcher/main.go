// Command vibe-switcher switches Spotify playlists to match motion, weather and time of day.
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

	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	"github.com/justestif/go-spotify-vibe-switcher/internal/auth"
	"github.com/justestif/go-spotify-vibe-switcher/internal/breaker"
	"github.com/justestif/go-spotify-vibe-switcher/internal/classifier"
	"github.com/justestif/go-spotify-vibe-switcher/internal/config"
	"github.com/justestif/go-spotify-vibe-switcher/internal/db"
	"github.com/justestif/go-spotify-vibe-switcher/internal/engine"
	"github.com/justestif/go-spotify-vibe-switcher/internal/features"
	"github.com/justestif/go-spotify-vibe-switcher/internal/playback"
	"github.com/justestif/go-spotify-vibe-switcher/internal/sensor"
	"github.com/justestif/go-spotify-vibe-switcher/internal/timeutil"
	"github.com/justestif/go-spotify-vibe-switcher/internal/weather"
	"github.com/justestif/go-spotify-vibe-switcher/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      cfg.Level(),
		TimeFormat: time.TimeOnly,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Each upstream gets its own breaker so one outage doesn't block the others.
	spotifyHTTP := breaker.Client(nil, withLogger(breaker.DefaultSettings("spotify"), logger))
	weatherHTTP := breaker.Client(nil, withLogger(breaker.DefaultSettings("openweather"), logger))
	classifierHTTP := breaker.Client(nil, withLogger(breaker.DefaultSettings("classifier"), logger))

	// Spotify login
	cache, err := tokenCache(cfg.TokenPath)
	if err != nil {
		return err
	}
	account, err := auth.New(auth.Config{
		ClientID:     cfg.SpotifyID,
		ClientSecret: cfg.SpotifySecret,
		RedirectURI:  cfg.RedirectURI,
		HTTPClient:   spotifyHTTP,
	}, cache, logger)
	if err != nil {
		return fmt.Errorf("creating authenticator: %w", err)
	}
	restored, err := account.Restore(ctx)
	if err != nil {
		logger.Warn("could not restore Spotify login", "error", err)
	}
	if restored {
		logger.Info("restored Spotify login", "token", cache.Path())
	} else {
		logger.Info("not logged in to Spotify", "login", "http://"+cfg.HTTPAddr+"/auth/login")
	}

	g, ctx := errgroup.WithContext(ctx)

	clock := timeutil.RealClock{}

	// Motion source
	held := []sensor.LatestOption{sensor.WithClock(clock), sensor.WithMaxAge(cfg.SensorMaxAge)}
	var (
		source  sensor.Source
		samples *sensor.Latest
	)
	switch cfg.SensorSource {
	case config.SensorSerial:
		port, err := sensor.OpenSerial(cfg.SerialPort, cfg.SerialBaud, logger, held...)
		if err != nil {
			// No readings will ever arrive; sample ticks stay no-ops.
			logger.Error("sensor unavailable", "port", cfg.SerialPort, "error", err)
			source = sensor.NewLatest(held...)
			break
		}
		defer port.Close()
		source = port
		g.Go(func() error {
			if err := port.Monitor(ctx); err != nil {
				logger.Error("serial monitor stopped", "error", err)
			}
			return nil
		})
		logger.Info("reading motion from serial port", "port", cfg.SerialPort, "baud", cfg.SerialBaud)
	default:
		samples = sensor.NewLatest(held...)
		source = samples
		logger.Info("accepting motion samples over HTTP", "path", "/api/samples")
	}

	extractor := features.NewExtractor(clock, cfg.WindowSize)

	model := newClassifier(cfg, classifierHTTP, logger)

	location := weather.NewStaticLocation(cfg.Location())
	var conditions engine.WeatherService
	if cfg.OpenWeatherAPIKey != "" {
		client, err := weather.NewClient(&weather.Config{
			APIKey:  cfg.OpenWeatherAPIKey,
			BaseURL: cfg.OpenWeatherURL,
		}, weatherHTTP)
		if err != nil {
			return fmt.Errorf("creating weather client: %w", err)
		}
		conditions = client
	}

	opts := []playback.Option{
		playback.WithPlaylists(cfg.Playlists()),
		playback.WithPolicy(cfg.Policy()),
		playback.WithRetryBackoff(cfg.RetryBackoff, cfg.RetryBackoffMax),
		playback.WithClock(clock),
		playback.WithLogger(logger),
	}

	handlersCfg := web.HandlersConfig{
		Account:  account,
		Samples:  samples,
		Location: location,
		Logger:   logger,
	}

	// Switch journal
	if cfg.DatabaseURL != "" {
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()

		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}
		switches := database.Switches()
		opts = append(opts, playback.WithJournal(switches))
		handlersCfg.Switches = switches
		logger.Info("journaling switches to database")
	}

	players := playback.PlayerProviderFunc(func() (playback.Player, bool) {
		player, ok := account.Player()
		if !ok {
			return nil, false
		}
		return player, true
	})
	controller := playback.NewController(players, opts...)

	scheduler := engine.New(engine.Deps{
		Clock:            clock,
		Source:           source,
		Extractor:        extractor,
		Classifier:       model,
		Weather:          conditions,
		Location:         location,
		Switcher:         controller,
		Logger:           logger,
		SampleInterval:   cfg.SampleInterval,
		ClassifyInterval: cfg.ClassifyInterval,
		WeatherInterval:  cfg.WeatherInterval,
	})

	handlersCfg.Status = scheduler
	server := web.NewServer(cfg.HTTPAddr, web.NewHandlers(handlersCfg), logger)

	g.Go(func() error { return scheduler.Run(ctx) })
	g.Go(func() error { return server.Run(ctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func withLogger(s breaker.Settings, logger *slog.Logger) breaker.Settings {
	s.Logger = logger
	return s
}

func tokenCache(path string) (*auth.TokenCache, error) {
	if path != "" {
		return auth.NewTokenCache(path), nil
	}
	cache, err := auth.DefaultTokenCache()
	if err != nil {
		return nil, fmt.Errorf("creating token cache: %w", err)
	}
	return cache, nil
}

// newClassifier returns nil when no model is available; classification
// ticks are then skipped.
func newClassifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) classifier.Classifier {
	switch cfg.Classifier {
	case config.ClassifierCentroid:
		model, err := classifier.LoadCentroid(cfg.ModelPath)
		if err != nil {
			logger.Warn("no activity model loaded, mood will not update", "path", cfg.ModelPath, "error", err)
			return nil
		}
		logger.Info("loaded activity model", "path", cfg.ModelPath)
		return model
	case config.ClassifierRemote:
		logger.Info("using remote activity classifier", "url", cfg.ClassifierURL)
		return classifier.NewRemote(cfg.ClassifierURL, httpClient)
	default:
		logger.Info("activity classification disabled")
		return nil
	}
}
