// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package phys2d

import (
	"os"

	"gopkg.in/yaml.v3"

	pmath "github.com/gazed/phys2d/math"
)

// Config enumerates the recognized world options. Mirrors
// gazed/vu/config.go's "plain struct with sane defaults" shape, but adds
// yaml tags so a tuned config can be checked into source control with
// LoadConfig/SaveConfig.
type Config struct {
	Gravity pmath.V2 `yaml:"gravity"`

	AABBExtension     pmath.R `yaml:"aabb_extension"`
	MinVertexRadius   pmath.R `yaml:"min_vertex_radius"`
	MaxVertexRadius   pmath.R `yaml:"max_vertex_radius"`
	LinearSlop        pmath.R `yaml:"linear_slop"`
	AngularSlop       pmath.R `yaml:"angular_slop"`

	MaxLinearCorrection  pmath.R `yaml:"max_linear_correction"`
	MaxAngularCorrection pmath.R `yaml:"max_angular_correction"`
	MaxTranslation       pmath.R `yaml:"max_translation"`
	MaxRotation          pmath.R `yaml:"max_rotation"`

	VelocityThreshold pmath.R `yaml:"velocity_threshold"`

	MaxSubSteps       int `yaml:"max_sub_steps"`
	MaxToiIterations  int `yaml:"max_toi_iterations"`
	MaxToiRootIters   int `yaml:"max_toi_root_iterations"`
	MaxDistanceIters  int `yaml:"max_distance_iterations"`
	MaxToiContacts    int `yaml:"max_toi_contacts"`

	ToiBaumgarte pmath.R `yaml:"toi_baumgarte"`
	Baumgarte    pmath.R `yaml:"baumgarte"`

	MinStillTimeToSleep   pmath.R `yaml:"min_still_time_to_sleep"`
	LinearSleepTolerance  pmath.R `yaml:"linear_sleep_tolerance"`
	AngularSleepTolerance pmath.R `yaml:"angular_sleep_tolerance"`

	MaxCirclesRatio pmath.R `yaml:"max_circles_ratio"`

	VelocityIterations int `yaml:"velocity_iterations"`
	PositionIterations int `yaml:"position_iterations"`

	DoWarmStart       bool `yaml:"do_warm_start"`
	AllowSleep        bool `yaml:"allow_sleep"`
	ContinuousPhysics bool `yaml:"continuous_physics"`
	SubStepping       bool `yaml:"sub_stepping"`
	AutoClearForces   bool `yaml:"auto_clear_forces"`
}

// NewConfig returns reasonable defaults, the numeric tolerances Box2D
// ships with adapted to this repo's field names (linearSlop=0.005,
// 8-iteration velocity / 3-iteration position solve, etc).
func NewConfig() Config {
	return Config{
		Gravity: pmath.V2{X: 0, Y: -10},

		AABBExtension:   0.1,
		MinVertexRadius: 0.005,
		MaxVertexRadius: 10,
		LinearSlop:      pmath.LinearSlop,
		AngularSlop:     pmath.AngularSlop,

		MaxLinearCorrection:  0.2,
		MaxAngularCorrection: 8.0 / 180.0 * pmath.Pi,
		MaxTranslation:       2.0,
		MaxRotation:          0.5 * pmath.Pi,

		VelocityThreshold: 1.0,

		MaxSubSteps:      48,
		MaxToiIterations: 20,
		MaxToiRootIters:  30,
		MaxDistanceIters: 20,
		MaxToiContacts:   32,

		ToiBaumgarte: 0.75,
		Baumgarte:    0.2,

		MinStillTimeToSleep:   0.5,
		LinearSleepTolerance:  0.01,
		AngularSleepTolerance: 2.0 / 180.0 * pmath.Pi,

		MaxCirclesRatio: 10,

		VelocityIterations: 8,
		PositionIterations: 3,

		DoWarmStart:       true,
		AllowSleep:        true,
		ContinuousPhysics: true,
		SubStepping:       false,
		AutoClearForces:   true,
	}
}

// Option mutates a Config. gazed/vu/config.go calls these "Attr"; phys2d
// keeps the same functional-options shape under the more common Go name.
type Option func(*Config)

func Gravity(g pmath.V2) Option   { return func(c *Config) { c.Gravity = g } }
func AABBExtension(r pmath.R) Option { return func(c *Config) { c.AABBExtension = r } }
func AllowSleep(allow bool) Option   { return func(c *Config) { c.AllowSleep = allow } }
func ContinuousPhysics(on bool) Option { return func(c *Config) { c.ContinuousPhysics = on } }
func SubStepping(on bool) Option     { return func(c *Config) { c.SubStepping = on } }
func VelocityIterations(n int) Option { return func(c *Config) { c.VelocityIterations = n } }
func PositionIterations(n int) Option { return func(c *Config) { c.PositionIterations = n } }

// LoadConfig reads a YAML config file, starting from NewConfig()'s
// defaults and overlaying whatever keys the file sets.
func LoadConfig(path string) (Config, error) {
	cfg := NewConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML to path.
func SaveConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
