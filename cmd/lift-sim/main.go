// Command lift-sim runs a YAML scenario against the lift controller and
// prints every frame. With -serve it also replays the run to browsers.
package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"go-lift-simulator/internal/config"
	"go-lift-simulator/internal/feed"
	"go-lift-simulator/internal/logger"
	"go-lift-simulator/internal/scenario"
	"go-lift-simulator/pkg/elevator"
)

//go:embed static/*
var staticFiles embed.FS

type options struct {
	scenarioPath string
	format       string
	envFile      string
	serve        bool
	loop         bool
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.scenarioPath, "scenario", "", "scenario YAML file (or first argument)")
	flag.StringVar(&o.format, "format", "text", "output format: text or jsonl")
	flag.StringVar(&o.envFile, "env", ".env", "optional .env file")
	flag.BoolVar(&o.serve, "serve", false, "serve a read-only WebSocket replay of the run")
	flag.BoolVar(&o.loop, "loop", false, "with -serve, replay the run until interrupted")
	config.RegisterFlags(flag.CommandLine)
	flag.Parse()
	if o.scenarioPath == "" && flag.NArg() > 0 {
		o.scenarioPath = flag.Arg(0)
	}
	return o
}

func main() {
	opts := parseFlags()

	cfg, err := config.LoadWithFlags(flag.CommandLine, opts.envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	log, err := logger.New(logger.Options{Level: cfg.LogLevel, Format: logger.Format(cfg.LogFormat)})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(2)
	}
	if opts.scenarioPath == "" {
		fmt.Fprintln(os.Stderr, "usage: lift-sim [flags] scenario.yaml")
		flag.PrintDefaults()
		os.Exit(2)
	}

	sc, err := scenario.Load(opts.scenarioPath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load scenario")
		os.Exit(2)
	}

	tr, runErr := scenario.Run(sc, cfg.Floors,
		elevator.WithLogger(log),
		elevator.WithID(sc.Name),
		elevator.WithEventBuffer(0),
	)
	if tr == nil {
		log.Error().Err(runErr).Msg("Failed to start scenario")
		os.Exit(2)
	}

	if err := writeTranscript(opts.format, tr); err != nil {
		log.Error().Err(err).Msg("Failed to write transcript")
		os.Exit(2)
	}
	if runErr != nil {
		log.Error().Err(runErr).Msg("Scenario failed")
	} else {
		log.Info().Str("run", tr.RunID).Int("frames", len(tr.Frames)).Msg("Scenario passed")
	}

	if opts.serve {
		if err := serve(cfg, log, tr, opts.loop); err != nil {
			log.Error().Err(err).Msg("Server error")
			os.Exit(1)
		}
	}
	if runErr != nil {
		os.Exit(1)
	}
}

func writeTranscript(format string, tr *scenario.Transcript) error {
	switch format {
	case "text":
		return scenario.WriteText(os.Stdout, tr)
	case "jsonl":
		return scenario.WriteJSONL(os.Stdout, tr)
	}
	return fmt.Errorf("unknown format %q", format)
}

// serve hosts the embedded viewer and the feed until interrupted.
func serve(cfg config.AppConfig, log zerolog.Logger, tr *scenario.Transcript, loop bool) error {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return err
	}

	hub := feed.NewHub(log)
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.FS(staticFS)))
	mux.Handle("/ws", hub)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		for {
			if err := hub.Replay(ctx, tr, cfg.TickInterval); err != nil {
				return
			}
			if !loop {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(3 * cfg.TickInterval):
			}
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", srv.Addr).Msg("Starting lift feed server")
	log.Info().Msg("Open http://localhost:" + cfg.Port + " in your browser")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().
		Int("sessions", hub.Sessions()).
		Uint64("dropped", hub.DroppedFrameCount()).
		Msg("Feed server stopped")
	return nil
}
