package automation

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/cvsim/internal/cardio"
	"github.com/san-kum/cvsim/internal/config"
	"github.com/san-kum/cvsim/internal/experiment"
	"github.com/san-kum/cvsim/internal/sim"
)

// Event actions.
const (
	ActionParam         = "param"
	ActionPressure      = "pressure"
	ActionBloodVolume   = "blood_volume"
	ActionIntrathoracic = "intrathoracic"
	ActionBaroreflex    = "baroreflex"
	ActionCardiopulm    = "cardiopulmonary"
	ActionTilt          = "tilt"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Preset      string  `yaml:"preset"`
	Duration    float64 `yaml:"duration"`
	Events      []Event `yaml:"events"`
}

// Event is one timed intervention. Target names a parameter or a compartment
// depending on the action; On switches gates.
type Event struct {
	At     float64 `yaml:"at"`
	Action string  `yaml:"action"`
	Target string  `yaml:"target,omitempty"`
	Value  float64 `yaml:"value,omitempty"`
	On     bool    `yaml:"on,omitempty"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &scenario, nil
}

func (s *Scenario) Validate() error {
	for i, ev := range s.Events {
		if ev.At < 0 {
			return fmt.Errorf("event %d: time must not be negative, got %f", i+1, ev.At)
		}
		switch ev.Action {
		case ActionParam:
			if _, err := cardio.ParseParam(ev.Target); err != nil {
				return fmt.Errorf("event %d: %w", i+1, err)
			}
		case ActionPressure:
			if _, err := cardio.ParseCompartment(ev.Target); err != nil {
				return fmt.Errorf("event %d: %w", i+1, err)
			}
		case ActionBloodVolume, ActionIntrathoracic, ActionBaroreflex, ActionCardiopulm, ActionTilt:
		default:
			return fmt.Errorf("event %d: unknown action %q", i+1, ev.Action)
		}
	}
	return nil
}

// Apply performs the event on the engine and the flags of the next sample.
func (ev Event) Apply(e *cardio.Engine, f *cardio.Flags) error {
	switch ev.Action {
	case ActionParam:
		return e.UpdateParameter(ev.Target, ev.Value)
	case ActionPressure:
		c, err := cardio.ParseCompartment(ev.Target)
		if err != nil {
			return err
		}
		return e.UpdatePressure(c, ev.Value)
	case ActionBloodVolume:
		return e.UpdateTotalBloodVolume(ev.Value)
	case ActionIntrathoracic:
		return e.UpdateIntrathoracicPressure(ev.Value)
	case ActionBaroreflex:
		f.ArterialBaroreflex = ev.On
	case ActionCardiopulm:
		f.Cardiopulmonary = ev.On
	case ActionTilt:
		if !ev.On {
			// Tilt-off starts the tilt-back phase.
			if f.Tilt {
				f.TiltStop = e.Time()
			}
			break
		}
		f.Tilt = true
		f.TiltStop = 0
		if err := e.UpdateParameter(cardio.TiltOnset.String(), e.Time()); err != nil {
			return err
		}
		if ev.Value > 0 {
			return e.UpdateParameter(cardio.TiltAngle.String(), ev.Value)
		}
	default:
		return fmt.Errorf("unknown action %q", ev.Action)
	}
	return nil
}

// Observer fires the events in time order as the run reaches them.
func (s *Scenario) Observer(log logrus.FieldLogger) sim.Observer {
	events := append([]Event(nil), s.Events...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].At < events[j].At })
	next := 0

	return sim.ObserverFunc(func(t float64, e *cardio.Engine, f *cardio.Flags) error {
		for next < len(events) && events[next].At <= t {
			ev := events[next]
			next++
			if err := ev.Apply(e, f); err != nil {
				return fmt.Errorf("%s at %.2f s: %w", ev.Action, ev.At, err)
			}
			if log != nil {
				log.WithFields(logrus.Fields{
					"time":   t,
					"action": ev.Action,
					"target": ev.Target,
					"value":  ev.Value,
				}).Info("scenario event")
			}
		}
		return nil
	})
}

// Config returns the run configuration of the scenario: its preset, or base
// when no preset is named, with the scenario duration applied.
func (s *Scenario) Config(base *config.Config) (*config.Config, error) {
	cfg := base.Clone()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	return cfg, nil
}

// RunScenario executes the scenario events against one engine
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, registry *experiment.Registry, log logrus.FieldLogger) (*experiment.Experiment, *sim.Result, error) {
	cfg, err := scenario.Config(base)
	if err != nil {
		return nil, nil, err
	}
	exp, err := experiment.New(cfg, registry, log)
	if err != nil {
		return nil, nil, err
	}
	exp.GetSimulator().AddObserver(scenario.Observer(log))

	fmt.Printf("Running scenario %s: %d events over %.1f s\n", scenario.Name, len(scenario.Events), cfg.Duration)
	result, err := exp.Run(ctx)
	return exp, result, err
}
