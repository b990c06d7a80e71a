package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/amir20/logview/config"
	"github.com/amir20/logview/internal/stream"
	"github.com/amir20/logview/internal/ui"

	"github.com/alecthomas/kong"
	kongyaml "github.com/alecthomas/kong-yaml"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	version = "dev"
	commit  = "n/a"
	date    = "n/a"
)

func main() {
	var cfg config.Cli
	kong.Parse(&cfg,
		kong.Name("logview"),
		kong.Description("Follow a remote log receiver in the terminal."),
		kong.Configuration(kongyaml.Loader, "./config.yaml", "~/.config/logview/config.yaml", "~/.logview.yaml"),
	)

	if cfg.Version {
		fmt.Printf("logview version: %s\nCommit: %s\nBuilt on: %s\n", version, commit, date)
		os.Exit(0)
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	defer closeLog()

	// the terminal belongs to the UI
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard

	settings := cfg.StreamSettings()
	dial := func(ctx context.Context) (ui.Conn, error) {
		log.WithField("url", cfg.URL).Info("connecting")
		client, err := stream.Dial(ctx, cfg.URL, settings)
		if err != nil {
			log.WithError(err).Error("connect failed")
			return nil, err
		}
		return client, nil
	}

	app := ui.NewApp(context.Background(), dial, ui.Options{
		Controller:  cfg.ControllerOptions(),
		Web:         cfg.Web,
		HostRefresh: cfg.HostRefresh,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func setupLogging(cfg config.Cli) (func(), error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, DisableColors: true})

	if cfg.LogFile == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "open log file")
	}
	log.SetOutput(f)
	return func() { f.Close() }, nil
}
