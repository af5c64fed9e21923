// Package config loads server settings from defaults, an optional YAML file,
// a .env file and GEOFEATURES_* environment variables, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ironsheep/geo-features-mcp/internal/pipeline"
	"github.com/ironsheep/geo-features-mcp/internal/vectorize"
)

// EnvPrefix prefixes every environment override, e.g.
// GEOFEATURES_PATHS_OUTPUT_DIR or GEOFEATURES_VECTORIZE_BOUNDS_MIN_LAT.
const EnvPrefix = "GEOFEATURES"

// Log modes.
const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
)

// Config is the complete server configuration, one field per YAML section.
type Config struct {
	Paths     PathsConfig       `mapstructure:"paths"`
	Pipeline  pipeline.Params   `mapstructure:"pipeline"`
	Vectorize vectorize.Options `mapstructure:"vectorize"`
	Log       LogConfig         `mapstructure:"log"`
}

// PathsConfig holds the directories uploads are copied into and results
// are written to. Both are created by EnsureDirs.
type PathsConfig struct {
	UploadDir string `mapstructure:"upload_dir"`
	OutputDir string `mapstructure:"output_dir"`
}

// LogConfig selects the log level (debug, info, warn, error) and the
// encoder: JSON for ModeProduction, coloured console for ModeDevelopment.
type LogConfig struct {
	Level string `mapstructure:"level"`
	Mode  string `mapstructure:"mode"`
}

// Default returns the built-in configuration. It does not touch the
// filesystem.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			UploadDir: "uploads",
			OutputDir: "outputs",
		},
		Pipeline:  pipeline.DefaultParams(),
		Vectorize: vectorize.DefaultOptions(),
		Log: LogConfig{
			Level: "info",
			Mode:  ModeProduction,
		},
	}
}

// Load builds the configuration and creates the upload and output
// directories.
//
// When path is empty a config.yaml in the working directory is used if one
// exists; an explicit path that cannot be read is an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("paths.upload_dir", d.Paths.UploadDir)
	v.SetDefault("paths.output_dir", d.Paths.OutputDir)

	v.SetDefault("pipeline.blur_kernel", d.Pipeline.BlurKernel)
	v.SetDefault("pipeline.block_size", d.Pipeline.BlockSize)
	v.SetDefault("pipeline.offset_c", d.Pipeline.OffsetC)
	v.SetDefault("pipeline.canny_low", d.Pipeline.CannyLow)
	v.SetDefault("pipeline.canny_high", d.Pipeline.CannyHigh)
	v.SetDefault("pipeline.close_kernel", d.Pipeline.CloseKernel)

	v.SetDefault("vectorize.min_area", d.Vectorize.MinArea)
	v.SetDefault("vectorize.epsilon_factor", d.Vectorize.EpsilonFactor)
	v.SetDefault("vectorize.simplify_tolerance", d.Vectorize.SimplifyTolerance)
	v.SetDefault("vectorize.merge_distance", d.Vectorize.MergeDistance)
	v.SetDefault("vectorize.regularize", d.Vectorize.Regularize)
	v.SetDefault("vectorize.bounds.min_lat", d.Vectorize.Bounds.MinLat)
	v.SetDefault("vectorize.bounds.min_lon", d.Vectorize.Bounds.MinLon)
	v.SetDefault("vectorize.bounds.max_lat", d.Vectorize.Bounds.MaxLat)
	v.SetDefault("vectorize.bounds.max_lon", d.Vectorize.Bounds.MaxLon)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.mode", d.Log.Mode)
}

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Paths.UploadDir == "" || c.Paths.OutputDir == "" {
		return errors.New("paths.upload_dir and paths.output_dir must be set")
	}
	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("invalid pipeline config: %w", err)
	}
	if err := c.Vectorize.Validate(); err != nil {
		return fmt.Errorf("invalid vectorize config: %w", err)
	}
	switch c.Log.Mode {
	case ModeProduction, ModeDevelopment:
	default:
		return fmt.Errorf("log.mode must be %q or %q, got %q", ModeProduction, ModeDevelopment, c.Log.Mode)
	}
	return nil
}

// EnsureDirs creates the upload and output directories if needed.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.Paths.UploadDir, c.Paths.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}
