// Package config holds the tunables of a rigidtris session. A Config is built once at
// startup, either from Default or from a YAML file, and is never mutated afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration surface of the simulation.
type Config struct {
	Arena   Arena   `yaml:"arena"`
	Physics Physics `yaml:"physics"`
	Blocks  Blocks  `yaml:"blocks"`
	Lines   Lines   `yaml:"lines"`
	Pieces  Pieces  `yaml:"pieces"`
	Control Control `yaml:"control"`
}

// Arena is the rectangular play area bounded by the floor and the two walls.
type Arena struct {
	Left   float64 `yaml:"left"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
	Top    float64 `yaml:"top"`
}

// Width returns the horizontal extent of the arena.
func (a Arena) Width() float64 {
	return a.Right - a.Left
}

// Height returns the vertical extent of the arena.
func (a Arena) Height() float64 {
	return a.Top - a.Bottom
}

type Physics struct {
	// Gravity is the magnitude of the downward acceleration.
	Gravity         float64       `yaml:"gravity"`
	TimeStep        time.Duration `yaml:"time_step"`
	Iterations      int           `yaml:"iterations"`
	WallRestitution float64       `yaml:"wall_restitution"`
	WallFriction    float64       `yaml:"wall_friction"`
	// Margin is the collision skin added around every piece shape.
	Margin float64 `yaml:"margin"`
}

// Blocks describes block geometry relative to the arena width.
type Blocks struct {
	// Fill is the share of the arena width covered by BlocksPerLine block spacings.
	Fill float64 `yaml:"fill"`
	// SizeRatio is the block edge length as a fraction of the spacing.
	SizeRatio float64 `yaml:"size_ratio"`
	// CornerRatio is the corner radius as a fraction of the block size.
	CornerRatio    float64 `yaml:"corner_ratio"`
	EdgesPerCorner int     `yaml:"edges_per_corner"`
}

type Lines struct {
	BlocksPerLine int     `yaml:"blocks_per_line"`
	Threshold     float64 `yaml:"threshold"`
	// Jitter inflates the threshold and the band half-width to absorb float noise.
	Jitter float64 `yaml:"jitter"`
	// Tolerance is the smallest distance from a band centre that still counts as inside,
	// covering the rounding picked up when a fragment body is rebuilt from its parent's pose.
	Tolerance float64 `yaml:"tolerance"`
	// Adjacency is the block-size multiple under which two blocks stay connected.
	Adjacency    float64 `yaml:"adjacency"`
	ScorePerLine int     `yaml:"score_per_line"`
}

type Pieces struct {
	// Set names the polyomino library: triomino, tetromino, pentomino or hexomino.
	Set           string        `yaml:"set"`
	Density       float64       `yaml:"density"`
	Restitution   float64       `yaml:"restitution"`
	Friction      float64       `yaml:"friction"`
	SpawnCooldown time.Duration `yaml:"spawn_cooldown"`
	// SpawnDepth is how many block spacings below the top a new piece appears.
	SpawnDepth float64 `yaml:"spawn_depth"`
}

// Control holds the per-tick impulses applied to the controlled piece.
// Zero values are replaced by the defaults of the selected piece set.
type Control struct {
	Force  float64 `yaml:"force"`
	Torque float64 `yaml:"torque"`
}

var setControls = map[string]Control{
	"triomino":  {Force: 0.16, Torque: 0.14},
	"tetromino": {Force: 0.16, Torque: 0.14},
	"pentomino": {Force: 0.03, Torque: 0.024},
	"hexomino":  {Force: 0.03, Torque: 0.024},
}

// Default returns the stock tuning: a 12x16 arena with tetrominoes.
func Default() Config {
	return Config{
		Arena: Arena{Left: 0, Right: 12, Bottom: 0, Top: 16},
		Physics: Physics{
			Gravity:         20,
			TimeStep:        16 * time.Millisecond,
			Iterations:      10,
			WallRestitution: 0.4,
			WallFriction:    0.4,
			Margin:          0.012,
		},
		Blocks: Blocks{
			Fill:           0.995,
			SizeRatio:      0.96,
			CornerRatio:    0.16,
			EdgesPerCorner: 3,
		},
		Lines: Lines{
			BlocksPerLine: 12,
			Threshold:     0.05,
			Jitter:        1.01,
			Tolerance:     1e-9,
			Adjacency:     1.3,
			ScorePerLine:  10,
		},
		Pieces: Pieces{
			Set:           "tetromino",
			Density:       0.05,
			Restitution:   0.3,
			Friction:      0.25,
			SpawnCooldown: 750 * time.Millisecond,
			SpawnDepth:    3,
		},
		Control: setControls["tetromino"],
	}
}

// Load reads a YAML file on top of Default. An empty path yields Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default, fills set-dependent defaults and validates.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	cfg.Control = Control{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	preset, ok := setControls[cfg.Pieces.Set]
	if ok {
		if cfg.Control.Force == 0 {
			cfg.Control.Force = preset.Force
		}
		if cfg.Control.Torque == 0 {
			cfg.Control.Torque = preset.Torque
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every inconsistency found in the configuration, joined into one error.
func (c Config) Validate() error {
	var errs []error

	if c.Arena.Width() <= 0 || c.Arena.Height() <= 0 {
		errs = append(errs, fmt.Errorf("arena must have positive width and height, got %gx%g", c.Arena.Width(), c.Arena.Height()))
	}
	if c.Physics.TimeStep <= 0 {
		errs = append(errs, fmt.Errorf("physics.time_step must be positive, got %s", c.Physics.TimeStep))
	}
	if c.Physics.Iterations <= 0 {
		errs = append(errs, fmt.Errorf("physics.iterations must be positive, got %d", c.Physics.Iterations))
	}
	if c.Physics.Margin < 0 {
		errs = append(errs, fmt.Errorf("physics.margin must not be negative, got %g", c.Physics.Margin))
	}
	if c.Blocks.Fill <= 0 || c.Blocks.Fill > 1 {
		errs = append(errs, fmt.Errorf("blocks.fill must be in (0, 1], got %g", c.Blocks.Fill))
	}
	if c.Blocks.SizeRatio <= 0 || c.Blocks.SizeRatio > 1 {
		errs = append(errs, fmt.Errorf("blocks.size_ratio must be in (0, 1], got %g", c.Blocks.SizeRatio))
	}
	if c.Blocks.CornerRatio < 0 || c.Blocks.CornerRatio >= 0.5 {
		errs = append(errs, fmt.Errorf("blocks.corner_ratio must be in [0, 0.5), got %g", c.Blocks.CornerRatio))
	}
	if c.Blocks.EdgesPerCorner < 1 {
		errs = append(errs, fmt.Errorf("blocks.edges_per_corner must be at least 1, got %d", c.Blocks.EdgesPerCorner))
	}
	if c.Lines.BlocksPerLine < 1 {
		errs = append(errs, fmt.Errorf("lines.blocks_per_line must be at least 1, got %d", c.Lines.BlocksPerLine))
	}
	if c.Lines.Threshold <= 0 {
		errs = append(errs, fmt.Errorf("lines.threshold must be positive, got %g", c.Lines.Threshold))
	}
	if c.Lines.Jitter < 1 {
		errs = append(errs, fmt.Errorf("lines.jitter must be at least 1, got %g", c.Lines.Jitter))
	}
	if c.Lines.Tolerance < 0 {
		errs = append(errs, fmt.Errorf("lines.tolerance must not be negative, got %g", c.Lines.Tolerance))
	}
	if c.Lines.Adjacency <= 0 {
		errs = append(errs, fmt.Errorf("lines.adjacency must be positive, got %g", c.Lines.Adjacency))
	}
	if _, ok := setControls[c.Pieces.Set]; !ok {
		errs = append(errs, fmt.Errorf("pieces.set %q is not one of triomino, tetromino, pentomino, hexomino", c.Pieces.Set))
	}
	if c.Pieces.Density <= 0 {
		errs = append(errs, fmt.Errorf("pieces.density must be positive, got %g", c.Pieces.Density))
	}
	if c.Pieces.SpawnCooldown < 0 {
		errs = append(errs, fmt.Errorf("pieces.spawn_cooldown must not be negative, got %s", c.Pieces.SpawnCooldown))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// BlockSpacing is the distance between the centres of two neighbouring blocks.
func (c Config) BlockSpacing() float64 {
	return c.Blocks.Fill * c.Arena.Width() / float64(c.Lines.BlocksPerLine)
}

// BlockSize is the edge length of a single block.
func (c Config) BlockSize() float64 {
	return c.Blocks.SizeRatio * c.BlockSpacing()
}

// CornerRadius is the rounding radius of a block's corners.
func (c Config) CornerRadius() float64 {
	return c.Blocks.CornerRatio * c.BlockSize()
}
