// Package app boots the arena host: config, logging, catalog, hub, HTTP.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	server "ricochet/server"
	"ricochet/server/catalog"
	"ricochet/server/logging"
	loggingSinks "ricochet/server/logging/sinks"
)

const closeTimeout = 5 * time.Second

// Run wires the process together and blocks until ctx is cancelled or a
// component fails. The simulation loop, the HTTP listener, and the shutdown
// watcher run in one errgroup so the first failure tears everything down.
func Run(ctx context.Context) error {
	configPath := os.Getenv("RICOCHET_CONFIG")
	if configPath == "" {
		configPath = "config/server.yaml"
	}

	cfg, err := server.LoadConfig(configPath)
	if err != nil {
		return err
	}
	applyEnvOverrides(&cfg)

	router, err := buildRouter(loggingConfig())
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			log.Printf("failed to close logging router: %v", cerr)
		}
	}()

	resolver, err := catalog.Load(cfg.CatalogPaths...)
	if err != nil {
		return fmt.Errorf("failed to load weapon catalog: %w", err)
	}

	metrics := server.NewMetrics(router.Stats)
	hub := server.NewHub(cfg, resolver, router, metrics)

	srv := &http.Server{Addr: cfg.Addr, Handler: server.NewHTTPHandler(hub)}
	log.Printf("server listening on %s", srv.Addr)

	stop := make(chan struct{})
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		hub.RunSimulation(stop)
		return nil
	})
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		close(stop)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}

func applyEnvOverrides(cfg *server.Config) {
	if raw := os.Getenv("RICOCHET_ADDR"); raw != "" {
		cfg.Addr = raw
	}
	if raw := os.Getenv("RICOCHET_TICK_RATE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			cfg.TickRate = value
		} else {
			log.Printf("invalid RICOCHET_TICK_RATE=%q: %v", raw, err)
		}
	}
	if raw := os.Getenv("RICOCHET_SEED"); raw != "" {
		cfg.Arena.Seed = raw
	}
}

func loggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	if raw := os.Getenv("RICOCHET_LOG_SINKS"); raw != "" {
		names := strings.Split(raw, ",")
		enabled := make([]string, 0, len(names))
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name != "" {
				enabled = append(enabled, name)
			}
		}
		if len(enabled) > 0 {
			cfg.EnabledSinks = enabled
		}
	}
	if raw := os.Getenv("RICOCHET_LOG_JSON_PATH"); raw != "" {
		cfg.JSON.FilePath = raw
	}
	if raw := os.Getenv("RICOCHET_LOG_SQLITE_PATH"); raw != "" {
		cfg.SQLite.Path = raw
	}
	if raw := os.Getenv("RICOCHET_LOG_MIN_SEVERITY"); raw != "" {
		if severity, ok := parseSeverity(raw); ok {
			cfg.MinimumSeverity = severity
		} else {
			log.Printf("invalid RICOCHET_LOG_MIN_SEVERITY=%q", raw)
		}
	}
	return cfg
}

func parseSeverity(raw string) (logging.Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return logging.SeverityDebug, true
	case "info":
		return logging.SeverityInfo, true
	case "warn", "warning":
		return logging.SeverityWarn, true
	case "error":
		return logging.SeverityError, true
	}
	return logging.SeverityInfo, false
}

func buildRouter(cfg logging.Config) (*logging.Router, error) {
	var namedSinks []logging.NamedSink
	for _, name := range cfg.EnabledSinks {
		switch name {
		case "console":
			namedSinks = append(namedSinks, logging.NamedSink{
				Name: name,
				Sink: loggingSinks.NewConsoleSink(os.Stdout, cfg.Console),
			})
		case "json":
			path := cfg.JSON.FilePath
			if path == "" {
				path = "events.ndjson"
			}
			file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("open json log %s: %w", path, err)
			}
			namedSinks = append(namedSinks, logging.NamedSink{
				Name: name,
				Sink: loggingSinks.NewJSON(file, cfg.JSON.FlushInterval),
			})
		case "sqlite":
			sink, err := loggingSinks.NewSQLiteSink(cfg.SQLite.Path)
			if err != nil {
				return nil, fmt.Errorf("open sqlite log %s: %w", cfg.SQLite.Path, err)
			}
			namedSinks = append(namedSinks, logging.NamedSink{Name: name, Sink: sink})
		default:
			return nil, fmt.Errorf("unknown log sink %q", name)
		}
	}
	return logging.NewRouter(logging.ClockFunc(time.Now), cfg, namedSinks)
}
