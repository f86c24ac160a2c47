package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"github.com/spf13/cobra"

	"github.com/san-kum/cvsim/internal/cardio"
	"github.com/san-kum/cvsim/internal/experiment"
	"github.com/san-kum/cvsim/internal/stream"
)

var forever bool

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	nc, err := stream.Connect(cfg.Stream.URL)
	if err != nil {
		return fmt.Errorf("connect %s: %w", cfg.Stream.URL, err)
	}
	defer nc.Drain()

	pub, err := stream.NewPublisher(nc, cfg.Stream.Subject, cfg.Stream.Series, log)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, experiment.NewRegistry(), log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.WithField("url", cfg.Stream.URL).WithField("subject", cfg.Stream.Subject).Info("publishing samples")
	simCfg := exp.SimConfig()
	if forever {
		simCfg.Duration = 0
	}
	var pubErr error
	err = exp.GetSimulator().RunWithCallback(ctx, simCfg, func(smp *cardio.Sample) bool {
		if pubErr = pub.Publish(smp); pubErr != nil {
			return false
		}
		return true
	})
	log.WithField("samples", pub.Sent()).Info("publishing stopped")
	if pubErr != nil {
		return pubErr
	}
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func runTail(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	nc, err := stream.Connect(cfg.Stream.URL)
	if err != nil {
		return fmt.Errorf("connect %s: %w", cfg.Stream.URL, err)
	}
	defer nc.Drain()

	var mu sync.Mutex
	_, err = stream.Subscribe(nc, cfg.Stream.Subject, func(series string, values []float64) {
		if len(values) == 0 {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		fmt.Printf("%-32s %4d pts  last %9.3f\n", series, len(values), values[len(values)-1])
	})
	if err != nil {
		return err
	}

	fmt.Printf("listening on %s.> (ctrl+c to stop)\n", cfg.Stream.Subject)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-ctx.Done()
	return nil
}
