package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"cave-projector/internal/layout"
	"cave-projector/internal/mathutil"
	"cave-projector/internal/projection"
)

// DefaultEye is used when the file has no usable eyePosition.
var DefaultEye = mathutil.Vec3{0, 1.6, 0}

// BuiltinChecker as preview.texture selects a generated checkerboard.
const BuiltinChecker = "builtin:checker"

// Clip plane defaults.
const (
	DefaultNearClip = 0.1
	DefaultFarClip  = 100.0
)

// Config is the room description plus tool settings.
type Config struct {
	EyePosition []float64      `json:"eyePosition"`
	Displays    []DisplayEntry `json:"displays"`

	NearClip   float64   `json:"nearClip"`
	FarClip    float64   `json:"farClip"`
	Strict     *bool     `json:"strict"`
	RoomOrigin []float64 `json:"roomOrigin"`
	RoomYaw    float64   `json:"roomYaw"`
	WorldSpace bool      `json:"worldSpace"` // compute matrices in the roomOrigin/roomYaw frame

	Preview Preview `json:"preview"`

	// BaseDir is the directory relative paths are resolved against. Load
	// sets it to the config file's directory.
	BaseDir string `json:"-"`
}

// DisplayEntry is one element of "displays".
type DisplayEntry struct {
	Name          string      `json:"name"`
	DisplayIndex  OutputIndex `json:"DisplayIndex"`
	Width         float64     `json:"width"`
	Height        float64     `json:"height"`
	TextureWidth  int         `json:"textureWidth"`
	TextureHeight int         `json:"textureHeight"`
}

// Preview holds offline preview render settings.
type Preview struct {
	OutputDir   string `json:"output_dir"`
	Supersample int    `json:"supersample"`
	Workers     int    `json:"workers"`
	Format      string `json:"format"` // "webp" or "tga"
	Texture     string `json:"texture"`
	MaxSize     int    `json:"max_size"`

	RearProjection []string `json:"rear_projection"` // walls whose image is mirrored
	FlipVertical   []string `json:"flip_vertical"`   // walls fed by a ceiling-mounted projector
	ContactSheet   bool     `json:"contact_sheet"`

	WallTextures map[string]string `json:"wall_textures"` // wall name -> texture file
}

// RearProjected returns the rear-projected wall names, lowercased.
func (p Preview) RearProjected() map[string]bool { return nameSet(p.RearProjection) }

// FlippedVertical returns the wall names flipped top-bottom, lowercased.
func (p Preview) FlippedVertical() map[string]bool { return nameSet(p.FlipVertical) }

// WallTexturePaths returns the per-wall texture overrides keyed by
// lowercased wall name.
func (p Preview) WallTexturePaths() map[string]string {
	m := make(map[string]string, len(p.WallTextures))
	for name, path := range p.WallTextures {
		if path = strings.TrimSpace(path); path != "" {
			m[strings.ToLower(strings.TrimSpace(name))] = path
		}
	}
	return m
}

func nameSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, name := range names {
		m[strings.ToLower(strings.TrimSpace(name))] = true
	}
	return m
}

// OutputIndex accepts a JSON string or number. Anything that does not
// parse as an integer becomes 0.
type OutputIndex int

func (o *OutputIndex) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		n = 0
	}
	*o = OutputIndex(n)
	return nil
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.BaseDir = filepath.Dir(path)

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.OutputDir != "" {
		c.Preview.OutputDir = flags.OutputDir
	}
	if flags.Workers > 0 {
		c.Preview.Workers = flags.Workers
	}
	if flags.Supersample > 0 {
		c.Preview.Supersample = flags.Supersample
	}
	if flags.Format != "" {
		c.Preview.Format = flags.Format
	}
	if flags.NearClip != 0 {
		c.NearClip = flags.NearClip
	}
	if flags.FarClip != 0 {
		c.FarClip = flags.FarClip
	}
	if flags.Lenient {
		strict := false
		c.Strict = &strict
	}

	// Only unset clips are defaulted; invalid ones are reported by ClipRange.
	if c.NearClip == 0 {
		c.NearClip = DefaultNearClip
	}
	if c.FarClip == 0 {
		c.FarClip = DefaultFarClip
	}
	if c.Strict == nil {
		strict := true
		c.Strict = &strict
	}

	// Defaults for preview settings
	if c.Preview.OutputDir == "" {
		c.Preview.OutputDir = "cave-previews"
	}
	if c.Preview.Supersample <= 0 {
		c.Preview.Supersample = 2
	}
	if c.Preview.Workers <= 0 {
		c.Preview.Workers = runtime.NumCPU()
	}
	c.Preview.Format = strings.ToLower(c.Preview.Format)
	if c.Preview.Format == "" {
		c.Preview.Format = "webp"
	}
	if c.Preview.MaxSize <= 0 {
		c.Preview.MaxSize = 2048
	}

	// Resolve relative paths against base dir
	if c.BaseDir != "" {
		if !filepath.IsAbs(c.Preview.OutputDir) {
			c.Preview.OutputDir = filepath.Join(c.BaseDir, c.Preview.OutputDir)
		}
		if c.Preview.Texture != "" && c.Preview.Texture != BuiltinChecker && !filepath.IsAbs(c.Preview.Texture) {
			c.Preview.Texture = filepath.Join(c.BaseDir, c.Preview.Texture)
		}
		for name, path := range c.Preview.WallTextures {
			if path = strings.TrimSpace(path); path != "" && !filepath.IsAbs(path) {
				path = filepath.Join(c.BaseDir, path)
			}
			c.Preview.WallTextures[name] = path
		}
	}
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	OutputDir   string
	Workers     int
	Supersample int
	Format      string
	NearClip    float64
	FarClip     float64
	Lenient     bool
}

// Eye returns the configured eye, or DefaultEye when eyePosition is absent
// or does not have exactly three components.
func (c Config) Eye() mathutil.Vec3 {
	if len(c.EyePosition) != 3 {
		return DefaultEye
	}
	return mathutil.Vec3{c.EyePosition[0], c.EyePosition[1], c.EyePosition[2]}
}

// ParseVec3 parses "x,y,z" as used by the -eye flags and CAVE_EYE.
func ParseVec3(s string) (mathutil.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return mathutil.Vec3{}, fmt.Errorf("config: want x,y,z, got %q", s)
	}
	var v mathutil.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return mathutil.Vec3{}, fmt.Errorf("config: component %d of %q: %w", i, s, err)
		}
		v[i] = f
	}
	return v, nil
}

// Pose returns the room placement from roomOrigin/roomYaw.
func (c Config) Pose() layout.Pose {
	p := layout.Pose{Yaw: c.RoomYaw}
	if len(c.RoomOrigin) == 3 {
		p.Origin = mathutil.Vec3{c.RoomOrigin[0], c.RoomOrigin[1], c.RoomOrigin[2]}
	}
	return p
}

// LayoutDisplays converts the file entries into layout descriptors.
func (c Config) LayoutDisplays() []layout.Display {
	out := make([]layout.Display, len(c.Displays))
	for i, d := range c.Displays {
		out[i] = layout.Display{
			Name:         d.Name,
			OutputIndex:  int(d.DisplayIndex),
			Width:        d.Width,
			Height:       d.Height,
			RenderWidth:  d.TextureWidth,
			RenderHeight: d.TextureHeight,
		}
	}
	return out
}

// ClipRange returns the near/far clip distances, defaulting unset values.
// A range the projector would reject fails here with
// projection.ErrInvalidClipRange.
func (c Config) ClipRange() (near, far float64, err error) {
	near, far = c.NearClip, c.FarClip
	if near == 0 {
		near = DefaultNearClip
	}
	if far == 0 {
		far = DefaultFarClip
	}
	if !(near > 0) || !(far > near) || math.IsInf(far, 0) {
		return 0, 0, fmt.Errorf("config: nearClip %g, farClip %g: %w", near, far, projection.ErrInvalidClipRange)
	}
	return near, far, nil
}

// BuildRoom checks the clip range and runs the layout builder over the
// configured displays.
func (c Config) BuildRoom() (layout.Room, error) {
	if _, _, err := c.ClipRange(); err != nil {
		return layout.Room{}, err
	}
	strict := c.Strict == nil || *c.Strict
	room, err := layout.Build(c.Eye(), c.LayoutDisplays(), layout.Options{Strict: strict, Pose: c.Pose()})
	if err != nil {
		return layout.Room{}, fmt.Errorf("config: build room: %w", err)
	}
	return room, nil
}
