package crossing

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the intersection engine
type Config struct {
	// Lane positions, in the 0..100 progress scale
	EntryThreshold float64 `yaml:"entry_threshold"`
	ExitThreshold  float64 `yaml:"exit_threshold"`

	// Signal timing, in control ticks
	GreenDuration   int `yaml:"green_duration"`
	YellowDuration  int `yaml:"yellow_duration"`
	MinRedDuration  int `yaml:"min_red_duration"`
	SwitchThreshold int `yaml:"switch_threshold"`

	SpawnProbability     float64 `yaml:"spawn_probability"`
	EmergencyProbability float64 `yaml:"emergency_probability"`
	EmergencyDuration    int     `yaml:"emergency_duration"`

	ControlPeriod  time.Duration `yaml:"control_period"`
	MotionPeriod   time.Duration `yaml:"motion_period"`
	DispatchPeriod time.Duration `yaml:"dispatch_period"`

	// Total queued vehicles at which the advisory escalates
	ModerateQueue int `yaml:"moderate_queue"`
	HeavyQueue    int `yaml:"heavy_queue"`
}

// DefaultConfig returns the stock tuning for a four-way junction
func DefaultConfig() Config {
	return Config{
		EntryThreshold:       45,
		ExitThreshold:        55,
		GreenDuration:        30,
		YellowDuration:       5,
		MinRedDuration:       20,
		SwitchThreshold:      3,
		SpawnProbability:     0.05,
		EmergencyProbability: 0.1,
		EmergencyDuration:    30,
		ControlPeriod:        time.Second,
		MotionPeriod:         100 * time.Millisecond,
		DispatchPeriod:       60 * time.Second,
		ModerateQueue:        5,
		HeavyQueue:           12,
	}
}

// QueueLimit is the last position still counted as queued
func (c Config) QueueLimit() float64 {
	return c.EntryThreshold - 5
}

// ApproachStart is the first position at which a vehicle obeys a halting light
func (c Config) ApproachStart() float64 {
	return c.EntryThreshold - 10
}

// CycleLength is the length of one fixed-cycle rotation in control ticks
func (c Config) CycleLength() int {
	return c.GreenDuration + c.YellowDuration + c.MinRedDuration
}

// Validate checks the configuration for values the engine cannot run with
func (c Config) Validate() error {
	if c.EntryThreshold <= 0 || c.EntryThreshold > 100 {
		return NewConfigurationError("Config", fmt.Sprintf("entry threshold %.1f must be within (0, 100]", c.EntryThreshold))
	}
	if c.ExitThreshold < c.EntryThreshold || c.ExitThreshold > 100 {
		return NewConfigurationError("Config", fmt.Sprintf("exit threshold %.1f must be within [%.1f, 100]", c.ExitThreshold, c.EntryThreshold))
	}
	if c.GreenDuration <= 0 || c.YellowDuration <= 0 || c.MinRedDuration <= 0 {
		return NewConfigurationError("Config", "green, yellow and minimum red durations must be positive")
	}
	if c.SwitchThreshold < 0 {
		return NewConfigurationError("Config", "switch threshold cannot be negative")
	}
	if !isProbability(c.SpawnProbability) {
		return NewConfigurationError("Config", fmt.Sprintf("spawn probability %v outside [0, 1]", c.SpawnProbability))
	}
	if !isProbability(c.EmergencyProbability) {
		return NewConfigurationError("Config", fmt.Sprintf("emergency probability %v outside [0, 1]", c.EmergencyProbability))
	}
	if c.EmergencyDuration <= 0 {
		return NewConfigurationError("Config", "emergency duration must be positive")
	}
	if c.ControlPeriod <= 0 || c.MotionPeriod <= 0 || c.DispatchPeriod <= 0 {
		return NewConfigurationError("Config", "tick periods must be positive")
	}
	if c.ModerateQueue < 0 || c.HeavyQueue < c.ModerateQueue {
		return NewConfigurationError("Config", "condition thresholds must satisfy 0 <= moderate <= heavy")
	}
	return nil
}

func isProbability(p float64) bool {
	return p >= 0 && p <= 1
}

// LoadConfig reads a YAML file over the defaults and validates the result.
// Keys missing from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// YAML encodes the configuration in the same layout LoadConfig reads
func (c Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "encode config")
	}
	return out, nil
}
