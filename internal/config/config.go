// Package config resolves runtime settings from defaults, a YAML file,
// a .env file and BLOCKNOTE_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"blocknote/internal/secret"
	"blocknote/internal/storage"
)

const envPrefix = "BLOCKNOTE_"

// Config is the resolved runtime configuration.
type Config struct {
	DataDir string       `yaml:"data_dir"`
	Store   StoreConfig  `yaml:"store"`
	Log     LogConfig    `yaml:"log"`
	Export  ExportConfig `yaml:"export"`
	Backup  BackupConfig `yaml:"backup"`
}

type StoreConfig struct {
	// Driver is one of sqlite, postgres, mysql, mongo, memory.
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	// DSNSecret names a keychain entry holding the DSN, used when DSN is empty.
	DSNSecret string `yaml:"dsn_secret"`
	// Path of the SQLite file. Relative paths are under DataDir.
	Path string `yaml:"path"`
	// PollSeconds re-reads network stores for changes made elsewhere.
	PollSeconds int `yaml:"poll_seconds"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type ExportConfig struct {
	Dir string `yaml:"dir"`
}

type BackupConfig struct {
	// Schedule is a cron expression. Empty disables backups.
	Schedule string `yaml:"schedule"`
	Format   string `yaml:"format"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	homeDir, _ := os.UserHomeDir()
	return Config{
		DataDir: filepath.Join(homeDir, ".local", "share", "blocknote"),
		Store: StoreConfig{
			Driver:      storage.DriverSQLite,
			Path:        "blocknote.db",
			PollSeconds: 5,
		},
		Log:    LogConfig{Level: "info"},
		Backup: BackupConfig{Format: "md"},
	}
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "blocknote", "config.yaml")
}

// Load builds the configuration. A missing config or .env file is not an
// error; a malformed one is. path == "" means DefaultPath.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv()
	cfg.resolve()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	set := func(name string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}
	set("DATA_DIR", &c.DataDir)
	set("STORE_DRIVER", &c.Store.Driver)
	set("STORE_DSN", &c.Store.DSN)
	set("STORE_DSN_SECRET", &c.Store.DSNSecret)
	set("STORE_PATH", &c.Store.Path)
	set("LOG_LEVEL", &c.Log.Level)
	set("LOG_FILE", &c.Log.File)
	set("EXPORT_DIR", &c.Export.Dir)
	set("BACKUP_SCHEDULE", &c.Backup.Schedule)
	set("BACKUP_FORMAT", &c.Backup.Format)
}

// resolve fills paths derived from DataDir.
func (c *Config) resolve() {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = storage.DriverSQLite
	}
	if c.Store.Path == "" {
		c.Store.Path = "blocknote.db"
	}
	if !filepath.IsAbs(c.Store.Path) {
		c.Store.Path = filepath.Join(c.DataDir, c.Store.Path)
	}
	if c.Export.Dir == "" {
		c.Export.Dir = filepath.Join(c.DataDir, "exports")
	}
	if c.Log.File != "" && !filepath.IsAbs(c.Log.File) {
		c.Log.File = filepath.Join(c.DataDir, c.Log.File)
	}
}

// SetDataDir moves every path derived from the data dir under dir.
func (c *Config) SetDataDir(dir string) {
	old := c.DataDir
	c.DataDir = dir
	rebase := func(p *string) {
		if *p == "" || !filepath.IsAbs(*p) {
			return
		}
		if rel, err := filepath.Rel(old, *p); err == nil && !strings.HasPrefix(rel, "..") {
			*p = filepath.Join(dir, rel)
		}
	}
	rebase(&c.Store.Path)
	rebase(&c.Export.Dir)
	rebase(&c.Log.File)
	c.resolve()
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case storage.DriverSQLite, storage.DriverMemory:
	case storage.DriverPostgres, storage.DriverMySQL, storage.DriverMongo:
		if c.Store.DSN == "" && c.Store.DSNSecret == "" {
			return fmt.Errorf("store driver %s needs a dsn", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.DataDir == "" {
		return errors.New("data dir is empty")
	}
	switch strings.ToLower(c.Backup.Format) {
	case "", "md", "markdown", "html":
	default:
		return fmt.Errorf("unknown backup format %q", c.Backup.Format)
	}
	return nil
}

// ResolveSecrets fills the DSN from secrets when only DSNSecret is set.
func (c *Config) ResolveSecrets(s secret.Store) error {
	if c.Store.DSN != "" || c.Store.DSNSecret == "" {
		return nil
	}
	dsn, err := s.Get(c.Store.DSNSecret)
	if err != nil {
		return fmt.Errorf("store dsn: %w", err)
	}
	c.Store.DSN = string(dsn)
	return nil
}

// StoreOptions converts the store section for storage.Open.
func (c Config) StoreOptions() storage.Options {
	return storage.Options{Driver: c.Store.Driver, DSN: c.Store.DSN, Path: c.Store.Path}
}

// FileBacked reports whether the store lives in a local file that can be
// watched for changes.
func (c Config) FileBacked() bool {
	return c.Store.Driver == storage.DriverSQLite
}
