// Package config resolves configuration directories, the optional config
// file, the task data path, and the process logger.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "tasktracker"

	// TOMLFile is the preferred config filename.
	TOMLFile = "config.toml"

	// YAMLFile is read when no TOMLFile exists.
	YAMLFile = "config.yaml"

	// DataFile is the default task data filename.
	DataFile = "tasks.json"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// DefaultListen is the default serve address.
	DefaultListen = "127.0.0.1:8000"
)

// FileSettings is the content of config.toml / config.yaml.
type FileSettings struct {
	DataFile   string `toml:"data_file" yaml:"data_file"`
	Listen     string `toml:"listen" yaml:"listen"`
	RemoteList string `toml:"remote_list" yaml:"remote_list"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// DataFile overrides the task data path when set.
	DataFile string

	// Listen is the serve address.
	Listen string

	// RemoteList names the Google Tasks list used by push.
	RemoteList string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Log is the process logger. Nil means the logrus standard logger.
	Log *log.Logger
}

// New creates a Config for configDir (or the default directory when empty)
// and applies config.toml or config.yaml from it when present.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir, Listen: DefaultListen}

	settings, err := readSettings(dir)
	if err != nil {
		return nil, err
	}
	if settings.DataFile != "" {
		cfg.DataFile = settings.DataFile
		if !filepath.IsAbs(cfg.DataFile) {
			cfg.DataFile = filepath.Join(dir, cfg.DataFile)
		}
	}
	if settings.Listen != "" {
		cfg.Listen = settings.Listen
	}
	cfg.RemoteList = settings.RemoteList
	return cfg, nil
}

func readSettings(dir string) (FileSettings, error) {
	var s FileSettings

	tomlPath := filepath.Join(dir, TOMLFile)
	if _, err := toml.DecodeFile(tomlPath, &s); err == nil {
		return s, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return s, fmt.Errorf("invalid %s: %w", TOMLFile, err)
	}

	yamlPath := filepath.Join(dir, YAMLFile)
	data, err := os.ReadFile(yamlPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("read %s: %w", YAMLFile, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("invalid %s: %w", YAMLFile, err)
	}
	return s, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultDataPath returns the default task data path.
// Uses XDG_DATA_HOME if set, otherwise $HOME/.local/share.
func DefaultDataPath() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName, DataFile)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DataFile
	}
	return filepath.Join(home, ".local", "share", AppName, DataFile)
}

// DataPath returns the task data file path.
func (c *Config) DataPath() string {
	if c.DataFile != "" {
		return c.DataFile
	}
	return DefaultDataPath()
}

// Logger returns the process logger.
func (c *Config) Logger() *log.Logger {
	if c.Log == nil {
		return log.StandardLogger()
	}
	return c.Log
}

// NewLogger builds the text logger written to w: warnings by default, debug
// output when debug is set.
func NewLogger(w io.Writer, debug bool) *log.Logger {
	l := log.New()
	l.SetOutput(w)
	l.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	l.SetLevel(log.WarnLevel)
	if debug {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
