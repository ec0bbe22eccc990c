// ABOUTME: Wander configuration management with backend selection
// ABOUTME: Loads settings from file, environment and flags via viper and builds storage backends

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/harper/wander/internal/charm"
	"github.com/harper/wander/internal/log"
	"github.com/harper/wander/internal/recovery"
	"github.com/harper/wander/internal/replay"
	"github.com/harper/wander/internal/storage"
	"github.com/harper/wander/internal/target"
	"github.com/harper/wander/internal/tracking"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. WANDER_BACKEND.
const EnvPrefix = "WANDER"

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendCharm  = "charm"
)

// Recovery slot backends.
const (
	RecoveryBadger = "badger"
	RecoveryFile   = "file"
)

// defaultDBFilename is the SQLite database filename inside the data directory.
const defaultDBFilename = "wander.db"

// Config stores wander configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "charm".
	Backend string `mapstructure:"backend" yaml:"backend" validate:"oneof=sqlite charm"`

	// DataDir is the root directory for local data. Supports ~ expansion.
	// Defaults to ~/.local/share/wander.
	DataDir string `mapstructure:"data_dir" yaml:"data_dir,omitempty"`

	Charm    CharmConfig     `mapstructure:"charm" yaml:"charm"`
	Recovery RecoveryConfig  `mapstructure:"recovery" yaml:"recovery"`
	Tracking TrackingConfig  `mapstructure:"tracking" yaml:"tracking"`
	Replay   ReplayConfig    `mapstructure:"replay" yaml:"replay"`
	Log      LogConfig       `mapstructure:"log" yaml:"log"`
	Targets  []target.Target `mapstructure:"targets" yaml:"targets,omitempty" validate:"dive"`
}

// CharmConfig configures the Charm KV backend.
type CharmConfig struct {
	Host     string `mapstructure:"host" yaml:"host,omitempty"`
	AutoSync bool   `mapstructure:"auto_sync" yaml:"auto_sync"`
}

// RecoveryConfig selects where crash-recovery snapshots live.
type RecoveryConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend" validate:"oneof=badger file"`
}

// TrackingConfig holds recording options.
type TrackingConfig struct {
	Source           string        `mapstructure:"source" yaml:"source" validate:"required"`
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval" yaml:"snapshot_interval" validate:"gt=0"`
	TickInterval     time.Duration `mapstructure:"tick_interval" yaml:"tick_interval" validate:"gt=0"`
}

// ReplayConfig holds replay timing.
type ReplayConfig struct {
	Frame       time.Duration `mapstructure:"frame" yaml:"frame" validate:"gt=0"`
	Speedup     float64       `mapstructure:"speedup" yaml:"speedup" validate:"gt=0"`
	MinDuration time.Duration `mapstructure:"min_duration" yaml:"min_duration" validate:"gt=0"`
	MaxDuration time.Duration `mapstructure:"max_duration" yaml:"max_duration" validate:"gtefield=MinDuration"`
}

// LogConfig controls logging.
type LogConfig struct {
	Rules    string `mapstructure:"rules" yaml:"rules"`
	Encoding string `mapstructure:"encoding" yaml:"encoding" validate:"oneof=console json"`
}

// Default returns a config with every default applied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", BackendSQLite)
	v.SetDefault("data_dir", "")
	v.SetDefault("charm.host", charm.DefaultCharmHost)
	v.SetDefault("charm.auto_sync", true)
	v.SetDefault("recovery.backend", RecoveryBadger)
	v.SetDefault("tracking.source", "gpsd://127.0.0.1:2947")
	v.SetDefault("tracking.snapshot_interval", tracking.DefaultSnapshotInterval)
	v.SetDefault("tracking.tick_interval", tracking.DefaultTickInterval)

	ro := replay.DefaultOptions()
	v.SetDefault("replay.frame", ro.Frame)
	v.SetDefault("replay.speedup", ro.Speedup)
	v.SetDefault("replay.min_duration", ro.MinDuration)
	v.SetDefault("replay.max_duration", ro.MaxDuration)

	v.SetDefault("log.rules", "warn+:*")
	v.SetDefault("log.encoding", "console")
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	return ExpandPath(c.DataDir)
}

// defaultDataDir returns the default XDG data directory for wander.
func defaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "wander")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DBPath returns the SQLite database path.
func (c *Config) DBPath() string {
	return filepath.Join(c.GetDataDir(), defaultDBFilename)
}

// OpenBackend creates the record store for the configured backend.
func (c *Config) OpenBackend() (storage.RecordStore, error) {
	switch c.GetBackend() {
	case BackendSQLite:
		return storage.NewSQLiteDB(c.DBPath())
	case BackendCharm:
		return charm.NewClient(&charm.Config{CharmHost: c.Charm.Host, AutoSync: c.Charm.AutoSync})
	default:
		return nil, fmt.Errorf("unknown backend: %q", c.Backend)
	}
}

// OpenStorage creates the typed store on top of the configured backend.
func (c *Config) OpenStorage() (*storage.Store, error) {
	backend, err := c.OpenBackend()
	if err != nil {
		return nil, err
	}
	return storage.NewStore(backend), nil
}

// Slot is a recovery slot that must be closed after use.
type Slot interface {
	recovery.Slot
	Close() error
}

type fileSlot struct {
	*recovery.FileSlot
}

func (fileSlot) Close() error { return nil }

// OpenRecovery opens the configured crash-recovery slot.
func (c *Config) OpenRecovery() (Slot, error) {
	switch c.Recovery.Backend {
	case RecoveryBadger, "":
		return recovery.OpenBadgerSlot(filepath.Join(c.GetDataDir(), "recovery"))
	case RecoveryFile:
		return fileSlot{recovery.NewFileSlot(filepath.Join(c.GetDataDir(), "recovery.json"))}, nil
	default:
		return nil, fmt.Errorf("unknown recovery backend: %q", c.Recovery.Backend)
	}
}

// EngineConfig returns the tracking engine timing.
func (c *Config) EngineConfig() tracking.Config {
	return tracking.Config{
		SnapshotInterval: c.Tracking.SnapshotInterval,
		TickInterval:     c.Tracking.TickInterval,
	}
}

// ReplayOptions returns replay timing.
func (c *Config) ReplayOptions() replay.Options {
	return replay.Options{
		Frame:       c.Replay.Frame,
		Speedup:     c.Replay.Speedup,
		MinDuration: c.Replay.MinDuration,
		MaxDuration: c.Replay.MaxDuration,
	}
}

// LoggerConfig returns the logger settings.
func (c *Config) LoggerConfig() log.Config {
	return log.Config{Rules: c.Log.Rules, Encoding: c.Log.Encoding}
}

// Validate checks every field.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for _, t := range c.Targets {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}
	return nil
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "wander", "config.yaml")
}

// Load reads config from the default path. See LoadFile.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads config from path (the default path when empty), applies
// WANDER_* environment overrides and validates the result. A missing default
// config file is created with defaults on first run.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	if err := read(v, path); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func read(v *viper.Viper, path string) error {
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = GetConfigPath()
	}
	v.SetConfigFile(path)

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		if saveErr := Default().SaveTo(path); saveErr != nil {
			fmt.Fprintf(os.Stderr, "warning: could not save default config: %v\n", saveErr)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read config: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Save writes config to the default path.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo writes config as YAML, replacing the file atomically.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// BindFlags applies config and environment values to cmd's flags that were
// not set on the command line. Flag --foo-bar maps to WANDER_FOO_BAR.
func BindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name, fmt.Sprintf("%s_%s", EnvPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "could not bind env var %s: %v\n", f.Name, err)
			}
		}
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "could not set flag value for %s: %v\n", f.Name, err)
			}
		}
	})
}

// FlagViper returns a viper reading only WANDER_* environment variables, for use with BindFlags.
func FlagViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}
