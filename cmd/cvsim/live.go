package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/cvsim/internal/cardio"
	"github.com/san-kum/cvsim/internal/experiment"
	"github.com/san-kum/cvsim/internal/logging"
	"github.com/san-kum/cvsim/internal/stream"
	"github.com/san-kum/cvsim/internal/viz"
)

var (
	speed   int
	theme   string
	publish bool
)

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The monitor owns the terminal, so engine logs are dropped.
	exp, err := experiment.New(cfg, experiment.NewRegistry(), logging.Discard())
	if err != nil {
		return err
	}
	engine := exp.Engine()
	if err := engine.Initialize(); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	opts := viz.Options{
		Compression:    cfg.Compression,
		Flags:          cfg.Flags(),
		SamplesPerTick: speed,
		Theme:          theme,
	}
	if publish {
		nc, err := stream.Connect(cfg.Stream.URL)
		if err != nil {
			return fmt.Errorf("connect %s: %w", cfg.Stream.URL, err)
		}
		defer nc.Drain()

		pub, err := stream.NewPublisher(nc, cfg.Stream.Subject, cfg.Stream.Series, nil)
		if err != nil {
			return err
		}
		opts.OnSample = func(smp *cardio.Sample) error { return pub.Publish(smp) }
	}

	p := tea.NewProgram(viz.NewMonitor(engine, opts), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(viz.Monitor); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}
