// Package app wires configuration, inputs, the estimation pipeline and
// the observability sinks into runnable commands.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/ovrim/windcurb/config"
	"github.com/ovrim/windcurb/infra/csvio"
	"github.com/ovrim/windcurb/infra/logger"
	"github.com/ovrim/windcurb/infra/mqtt"
	"github.com/ovrim/windcurb/metrics"
)

// Service orchestrates estimation runs for the configured turbines.
type Service struct {
	cfg  *config.Config
	sink metrics.Sink
	pub  mqtt.Publisher
	log  logger.Logger
}

// New creates a Service from the configuration, building the metric
// sinks and the optional summary publisher.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sinks []metrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(nil)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink metrics.Sink = metrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	var pub mqtt.Publisher = mqtt.NopPublisher{}
	if cfg.MQTT.Enabled {
		p, err := mqtt.NewPahoPublisher(cfg.MQTT, logger.New("mqtt-publisher"))
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		pub = p
	}

	return &Service{cfg: cfg, sink: sink, pub: pub, log: logg}, nil
}

// Run executes the forward estimation for every selected turbine. A
// failing turbine does not stop the others; the joined errors are
// returned at the end.
func (s *Service) Run(ctx context.Context) error {
	return s.runAll(ctx, s.runTurbine)
}

// RunBackCalc executes the back-calculation from observed production
// for every selected turbine.
func (s *Service) RunBackCalc(ctx context.Context) error {
	return s.runAll(ctx, s.runBackCalc)
}

func (s *Service) runAll(ctx context.Context, run func(context.Context, *turbineRun) error) error {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	profiles, err := csvio.ReadTurbines(s.cfg.Paths.TurbineTable)
	if err != nil {
		return err
	}
	if s.cfg.Run.Turbine != "" {
		p, err := csvio.FindTurbine(profiles, s.cfg.Run.Turbine)
		if err != nil {
			return err
		}
		profiles = profiles[:0]
		profiles = append(profiles, p)
	}

	var errs []error
	for _, p := range profiles {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		tr := newTurbineRun(s, p)
		if err := run(ctx, tr); err != nil {
			s.log.Errorf("turbine %s: %v", p.Name, err)
			errs = append(errs, fmt.Errorf("turbine %s: %w", p.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Close releases the sinks and the publisher.
func (s *Service) Close() error {
	s.pub.Close()
	return nil
}
