// Package config loads and validates the TOML settings table of spec §6
// into a typed struct, the way the teacher's reinforcement package loads
// its YAML training config through viper.
package config

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sort"

	"github.com/spf13/viper"

	"zebra/road"
	"zebra/timeq"
)

// Simulation holds the run-level parameters of spec §6's
// "simulation.*" keys, plus the supplemented direction-weighting knob
// (spec.md §9's open question on vehicle direction distribution).
type Simulation struct {
	RunTime                int64   `mapstructure:"run_time"`
	PedestrianArrivalRate  float64 `mapstructure:"pedestrian_arrival_rate"`
	VehicleArrivalRate     float64 `mapstructure:"vehicle_arrival_rate"`
	DirectionWeightUp      float64 `mapstructure:"direction_weight_up"`
}

// Config is the full recognised settings table of spec §6.
type Config struct {
	RoadLength       float64    `mapstructure:"road_length"`
	MaxSpeed         float64    `mapstructure:"max_speed"`
	MaxAcceleration  float64    `mapstructure:"max_acceleration"`
	MaxDeceleration  float64    `mapstructure:"max_deceleration"`
	CrossingTime     int64      `mapstructure:"crossing_time"`
	PelicanWaitTime  int64      `mapstructure:"pelican_wait_time"`
	PelicanGoTime    int64      `mapstructure:"pelican_go_time"`
	ZebraCrossings   []float64  `mapstructure:"zebra_crossings"`
	PelicanCrossings []float64  `mapstructure:"pelican_crossings"`
	Simulation       Simulation `mapstructure:"simulation"`

	// Extra holds any unrecognised top-level string keys verbatim, so a
	// config file can carry deployment-local annotations (site name,
	// run label) without the loader rejecting the file outright.
	Extra map[string]string `mapstructure:",remain"`
}

// Defaults per spec §6.
func Defaults() Config {
	return Config{
		RoadLength:      1000,
		MaxSpeed:        13.41,
		MaxAcceleration: 3.0,
		MaxDeceleration: 4.0,
		CrossingTime:    10000,
		PelicanWaitTime: 5000,
		PelicanGoTime:   5000,
		Simulation: Simulation{
			RunTime:               300000,
			PedestrianArrivalRate: 0.5,
			VehicleArrivalRate:    0.5,
			DirectionWeightUp:     1.0,
		},
	}
}

var (
	// ErrInvalidConfig wraps any configuration error surfaced before
	// kernel construction (spec §7).
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Load reads and validates the TOML file at path, applying spec §6's
// defaults for anything absent.
func Load(path string) (*Config, error) {
	vp := viper.New()
	def := Defaults()
	vp.SetConfigFile(path)
	vp.SetConfigType("toml")
	vp.AddConfigPath(filepath.Dir(path))
	vp.SetDefault("road_length", def.RoadLength)
	vp.SetDefault("max_speed", def.MaxSpeed)
	vp.SetDefault("max_acceleration", def.MaxAcceleration)
	vp.SetDefault("max_deceleration", def.MaxDeceleration)
	vp.SetDefault("crossing_time", def.CrossingTime)
	vp.SetDefault("pelican_wait_time", def.PelicanWaitTime)
	vp.SetDefault("pelican_go_time", def.PelicanGoTime)
	vp.SetDefault("simulation.run_time", def.Simulation.RunTime)
	vp.SetDefault("simulation.pedestrian_arrival_rate", def.Simulation.PedestrianArrivalRate)
	vp.SetDefault("simulation.vehicle_arrival_rate", def.Simulation.VehicleArrivalRate)
	vp.SetDefault("simulation.direction_weight_up", def.Simulation.DirectionWeightUp)

	if err := vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := &Config{}
	if err := vp.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the error conditions spec §7 assigns to configuration
// (unreadable file is the caller's concern via Load's own error path;
// this covers everything that requires the parsed values).
func (c *Config) Validate() error {
	numerics := []float64{
		c.RoadLength, c.MaxSpeed, c.MaxAcceleration, c.MaxDeceleration,
		c.Simulation.PedestrianArrivalRate, c.Simulation.VehicleArrivalRate,
		c.Simulation.DirectionWeightUp,
	}
	for _, n := range numerics {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return fmt.Errorf("%w: non-finite numeric value", ErrInvalidConfig)
		}
	}

	if c.RoadLength <= 0 {
		return fmt.Errorf("%w: road_length must be positive", ErrInvalidConfig)
	}
	if c.Simulation.RunTime <= 0 {
		return fmt.Errorf("%w: simulation.run_time must exceed start time 0", ErrInvalidConfig)
	}
	if c.Simulation.PedestrianArrivalRate < 0 || c.Simulation.VehicleArrivalRate < 0 {
		return fmt.Errorf("%w: arrival rates must be non-negative", ErrInvalidConfig)
	}

	seen := map[float64]bool{}
	for _, p := range c.ZebraCrossings {
		if p < 0 || p > c.RoadLength {
			return fmt.Errorf("%w: zebra crossing at %.3f is outside [0, %.3f]", ErrInvalidConfig, p, c.RoadLength)
		}
		if seen[p] {
			return fmt.Errorf("%w: duplicate crossing position %.3f", ErrInvalidConfig, p)
		}
		seen[p] = true
	}
	for _, p := range c.PelicanCrossings {
		if p < 0 || p > c.RoadLength {
			return fmt.Errorf("%w: pelican crossing at %.3f is outside [0, %.3f]", ErrInvalidConfig, p, c.RoadLength)
		}
		if seen[p] {
			return fmt.Errorf("%w: duplicate crossing position %.3f", ErrInvalidConfig, p)
		}
		seen[p] = true
	}

	return nil
}

// BuildRoad merges the zebra and pelican crossing lists into the
// position-ordered spec road.New requires, and constructs the Road.
func (c *Config) BuildRoad() (*road.Road, error) {
	specs := make([]road.CrossingSpec, 0, len(c.ZebraCrossings)+len(c.PelicanCrossings))
	for _, p := range c.ZebraCrossings {
		specs = append(specs, road.CrossingSpec{Kind: road.Zebra, Position: p})
	}
	for _, p := range c.PelicanCrossings {
		specs = append(specs, road.CrossingSpec{Kind: road.Pelican, Position: p})
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Position < specs[j].Position })

	r, err := road.New(c.RoadLength, specs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	crossTime := timeq.NewDelta(c.CrossingTime)
	waitTime := timeq.NewDelta(c.PelicanWaitTime)
	goTime := timeq.NewDelta(c.PelicanGoTime)
	for _, ca := range r.Crossings(road.Up) {
		ca.Crossing.StopTime = crossTime
		if ca.Crossing.Kind == road.Pelican {
			ca.Crossing.WaitTime = waitTime
			ca.Crossing.GoTime = goTime
		}
	}

	return r, nil
}
