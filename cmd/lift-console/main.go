// Command lift-console drives the lift controller from the keyboard, one
// key per operation, and optionally mirrors every step to the browser feed.
package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/eiannone/keyboard"
	"github.com/google/uuid"

	"go-lift-simulator/internal/config"
	"go-lift-simulator/internal/feed"
	"go-lift-simulator/internal/logger"
	"go-lift-simulator/internal/scenario"
	"go-lift-simulator/pkg/elevator"
)

func main() {
	envFile := flag.String("env", ".env", "optional .env file")
	serve := flag.Bool("serve", false, "mirror steps to a read-only WebSocket feed")
	config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := config.LoadWithFlags(flag.CommandLine, *envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	log, err := logger.New(logger.Options{Level: cfg.LogLevel, Format: logger.Format(cfg.LogFormat)})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(2)
	}

	car, err := elevator.NewCarWithConfig(cfg.Floors)
	if err != nil {
		log.Error().Err(err).Msg("Invalid floors")
		os.Exit(2)
	}
	ctrl := elevator.NewController(car, elevator.WithLogger(log), elevator.WithID("console"), elevator.WithEventBuffer(0))
	con := newConsole(ctrl)

	if *serve {
		hub := feed.NewHub(log)
		hub.BeginRun(uuid.NewString(), "console")
		con.onFrame = hub.Publish
		defer hub.EndRun()

		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		srv := &http.Server{Addr: ":" + cfg.Port, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Feed server error")
			}
		}()
		defer srv.Close()
		log.Info().Str("addr", srv.Addr).Msg("Feed listening on /ws")
	}

	fmt.Println(scenario.FormatState(ctrl.Snapshot()))
	for {
		char, key, err := keyboard.GetSingleKey()
		if err != nil {
			log.Error().Err(err).Msg("Error when getting key")
			return
		}
		switch key {
		case keyboard.KeyCtrlC, keyboard.KeyEsc:
			return
		case keyboard.KeySpace:
			char = ' '
		}

		line, quit := con.handle(char)
		fmt.Println(line)
		if quit {
			return
		}
	}
}
