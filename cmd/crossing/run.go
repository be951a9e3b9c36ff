package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/anggasct/crossing"
	"github.com/anggasct/crossing/internal/server"
	"github.com/anggasct/crossing/pkg/observers"
	"github.com/anggasct/crossing/visualization"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

func loadConfig(opts *options) (crossing.Config, error) {
	if opts.configPath == "" {
		return crossing.DefaultConfig(), nil
	}
	return crossing.LoadConfig(opts.configPath)
}

func newLogger(opts *options) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(opts.logLevel)
	if err != nil {
		logger.WithField("level", opts.logLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// newEngine wires an engine with logging and metrics observers
func newEngine(opts *options, logger *logrus.Logger) (*crossing.Engine, *observers.MetricsObserver, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}

	metrics := observers.NewMetricsObserver()
	engine, err := crossing.NewEngine(cfg,
		crossing.WithRandomSource(crossing.NewRandomSource(opts.seed)),
		crossing.WithObserver(observers.NewLoggingObserver(logger, observers.ParseLogLevel(opts.logLevel), "engine")),
		crossing.WithObserver(metrics),
	)
	if err != nil {
		return nil, nil, errors.Wrap(err, "create engine")
	}
	return engine, metrics, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runHeadless(parent context.Context, opts *options, duration time.Duration, out io.Writer) error {
	logger := newLogger(opts)
	engine, metrics, err := newEngine(opts, logger)
	if err != nil {
		return err
	}

	safety := observers.NewSafetyObserver(engine.Plan())
	engine.AddObserver(safety)

	ctx, stop := signalContext(parent)
	defer stop()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	if err := engine.Run(ctx); err != nil {
		return errors.Wrap(err, "run engine")
	}

	snap := engine.Snapshot()
	metrics.ObserveWaiting(snap.Vehicles)
	printSummary(out, snap, metrics.Metrics())
	for _, v := range safety.GetViolations() {
		logger.WithField("violation", v).Warn("safety check failed")
	}
	fmt.Fprintf(out, "\nSafety violations: %d\n", len(safety.GetViolations()))
	return nil
}

func runServe(parent context.Context, opts *options, port int) error {
	logger := newLogger(opts)
	engine, metrics, err := newEngine(opts, logger)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(parent)
	defer stop()

	if err := engine.Start(ctx); err != nil {
		return errors.Wrap(err, "start engine")
	}
	defer func() {
		if err := engine.Stop(); err != nil && !crossing.IsMachineError(err) {
			logger.WithError(err).Error("stop engine")
		}
	}()

	srv := server.New(engine, metrics, logger)
	return srv.ListenAndServe(ctx, fmt.Sprintf(":%d", port))
}

func runPlan(out io.Writer, svg bool) error {
	generator := visualization.NewDOTGenerator(crossing.DefaultSignalPlan())

	var (
		content string
		err     error
	)
	if svg {
		content, err = generator.GenerateSVG()
	} else {
		content, err = generator.Generate()
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, content)
	return err
}

func runConfig(opts *options, out io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	data, err := cfg.YAML()
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func printSummary(out io.Writer, snap crossing.Snapshot, m observers.Metrics) {
	fmt.Fprintf(out, "\nControl ticks:     %d\n", snap.Tick)
	fmt.Fprintf(out, "Vehicles spawned:  %d\n", m.VehiclesSpawned)
	fmt.Fprintf(out, "Vehicles exited:   %d\n", m.VehiclesExited)
	fmt.Fprintf(out, "On the road:       %d\n", len(snap.Vehicles))
	fmt.Fprintf(out, "Longest wait:      %d motion ticks\n", m.MaxWaitingTime)
	fmt.Fprintf(out, "Emergencies:       %d\n", m.EmergenciesStarted)
	fmt.Fprintf(out, "Blocked switches:  %d\n", m.BlockedSteps)
	fmt.Fprintf(out, "Traffic:           %s (%s)\n", snap.Advisory.Condition, snap.Advisory.Advice)

	modes := lo.Keys(m.ModeCounts)
	sort.Strings(modes)
	fmt.Fprintln(out, "\nControl branches:")
	for _, mode := range modes {
		fmt.Fprintf(out, "  %-12s %d\n", mode, m.ModeCounts[mode])
	}

	fmt.Fprintln(out, "\nLights:")
	for _, l := range snap.Lights {
		fmt.Fprintf(out, "  %-6s %-7s timer=%-3d queue=%d changes=%d\n",
			l.Direction, l.State, l.Timer, l.QueueLength, m.Transitions[l.Direction])
	}
}
