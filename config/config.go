// Package config holds the viewer settings, read from a TOML file and
// overridden by command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"

	"product-viewer/asset"
	"product-viewer/exposure"
)

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
}

type AssetConfig struct {
	Model      string   `toml:"model"`
	Textures   string   `toml:"textures"`
	TextureExt string   `toml:"texture_ext"`
	Roles      []string `toml:"roles"`
	// Environment is an optional .hdr path or URL. Empty selects the
	// studio lights.
	Environment    string `toml:"environment"`
	MaxTextureSize int    `toml:"max_texture_size"`
}

type CameraConfig struct {
	FOV  float32 `toml:"fov"`
	Near float32 `toml:"near"`
	Far  float32 `toml:"far"`
}

type OrbitConfig struct {
	Damping     float32 `toml:"damping"`
	MinDistance float32 `toml:"min_distance"`
	MaxDistance float32 `toml:"max_distance"`
}

type ExposureConfig struct {
	Compensation float64 `toml:"compensation"`
	ShutterSpeed float64 `toml:"shutter_speed"`
	ISO          float64 `toml:"iso"`
	FStop        float64 `toml:"f_stop"`
}

type ControlsConfig struct {
	Keyboard bool `toml:"keyboard"`
	// File is an optional TOML control file watched for changes.
	File string `toml:"file"`
}

type RenderConfig struct {
	Background    string `toml:"background"`
	ShadowMapSize int    `toml:"shadow_map_size"`
}

type Config struct {
	Window   WindowConfig   `toml:"window"`
	Assets   AssetConfig    `toml:"assets"`
	Camera   CameraConfig   `toml:"camera"`
	Orbit    OrbitConfig    `toml:"orbit"`
	Exposure ExposureConfig `toml:"exposure"`
	Controls ControlsConfig `toml:"controls"`
	Render   RenderConfig   `toml:"render"`

	// LoadTimeout bounds asset loading, e.g. "30s". Empty or "0" waits
	// indefinitely.
	LoadTimeout string `toml:"load_timeout"`
	// Report prints a table of loaded assets after startup.
	Report bool `toml:"report"`
}

func Default() Config {
	ex := exposure.Default()
	return Config{
		Window: WindowConfig{Width: 1280, Height: 720, Title: "Product Viewer", VSync: true},
		Assets: AssetConfig{
			Model:          "assets/shoe.glb",
			Textures:       "assets/textures",
			TextureExt:     ".jpeg",
			Roles:          rolesToStrings(asset.DefaultRoles),
			MaxTextureSize: 4096,
		},
		Camera: CameraConfig{FOV: 30, Near: 0.01, Far: 1000},
		Orbit:  OrbitConfig{Damping: 0.05, MinDistance: 0.1, MaxDistance: 10},
		Exposure: ExposureConfig{
			Compensation: ex.Compensation,
			ShutterSpeed: ex.ShutterSpeed,
			ISO:          ex.ISO,
			FStop:        ex.FStop,
		},
		Controls: ControlsConfig{Keyboard: true},
		Render:   RenderConfig{Background: "#1e1e1e", ShadowMapSize: 2048},
		Report:   true,
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return cfg, fmt.Errorf("%s:%d:%d: %w", path, row, col, err)
		}
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Assets.Model == "" {
		return errors.New("assets.model is required")
	}
	if _, err := c.TextureRoles(); err != nil {
		return err
	}
	if c.Assets.MaxTextureSize < 0 {
		return errors.New("assets.max_texture_size must not be negative")
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("camera.fov %v out of range (0, 180)", c.Camera.FOV)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera near/far %v/%v invalid", c.Camera.Near, c.Camera.Far)
	}
	if c.Orbit.MinDistance <= 0 || c.Orbit.MaxDistance < c.Orbit.MinDistance {
		return fmt.Errorf("orbit distance range [%v, %v] invalid", c.Orbit.MinDistance, c.Orbit.MaxDistance)
	}
	if c.Orbit.Damping < 0 || c.Orbit.Damping > 1 {
		return fmt.Errorf("orbit.damping %v out of range [0, 1]", c.Orbit.Damping)
	}
	if err := c.ExposureSettings().Validate(); err != nil {
		return err
	}
	if _, err := colorful.Hex(c.Render.Background); err != nil {
		return fmt.Errorf("render.background: %w", err)
	}
	if c.Render.ShadowMapSize <= 0 {
		return errors.New("render.shadow_map_size must be positive")
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	return nil
}

// TextureRoles parses Assets.Roles.
func (c *Config) TextureRoles() ([]asset.TextureRole, error) {
	roles := make([]asset.TextureRole, 0, len(c.Assets.Roles))
	for _, s := range c.Assets.Roles {
		r, err := asset.ParseRole(s)
		if err != nil {
			return nil, fmt.Errorf("assets.roles: %w", err)
		}
		roles = append(roles, r)
	}
	return roles, nil
}

func (c *Config) ExposureSettings() exposure.Settings {
	return exposure.Settings{
		Compensation: c.Exposure.Compensation,
		ShutterSpeed: c.Exposure.ShutterSpeed,
		ISO:          c.Exposure.ISO,
		FStop:        c.Exposure.FStop,
	}
}

// AssetOptions returns loader options for the configured textures.
func (c *Config) AssetOptions() asset.Options {
	opts := asset.DefaultOptions()
	if c.Assets.TextureExt != "" {
		opts.TextureExt = c.Assets.TextureExt
	}
	opts.MaxTextureSize = c.Assets.MaxTextureSize
	return opts
}

// Timeout parses LoadTimeout. Zero means no timeout.
func (c *Config) Timeout() (time.Duration, error) {
	if c.LoadTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.LoadTimeout)
	if err != nil {
		return 0, fmt.Errorf("load_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("load_timeout %v must not be negative", d)
	}
	return d, nil
}

func rolesToStrings(roles []asset.TextureRole) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
