package toml

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultPort = 10497

	configName      = "lineserver"
	configType      = "toml"
	configDir       = "lineserver"
	envPrefix       = "LINESERVER"
	configFileMode  = 0o644
	configDirMode   = 0o755
	tempFilePattern = ".lineserver-*.toml.tmp"

	KeyVersion            = "version"
	KeyServerAddr         = "server.addr"
	KeyServerLineFile     = "server.line_file"
	KeyFailOnSessionError = "server.fail_on_session_error"
	KeyDrainTimeout       = "server.drain_timeout"
	KeyControlBuffer      = "server.control_buffer"
	KeyLogLevel           = "log.level"
	KeyLogFormat          = "log.format"
)

var (
	DefaultAddr = net.JoinHostPort("127.0.0.1", strconv.Itoa(DefaultPort))

	ErrMissingLineFile = errors.New("line file is required")
	ErrConfigExists    = errors.New("config file already exists")
)

type Config struct {
	Server ServerConfig
	Log    LogConfig
}

type ServerConfig struct {
	Addr               string
	LineFile           string
	FailOnSessionError bool
	DrainTimeout       time.Duration
	ControlBuffer      int
}

type LogConfig struct {
	Level  string
	Format string
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:          DefaultAddr,
			DrainTimeout:  5 * time.Second,
			ControlBuffer: 1000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load resolves defaults, the config file, LINESERVER_* environment variables
// and any flags already bound to v, in increasing precedence. An explicit
// configFile must exist; the default search locations may be empty.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType(configType)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		for _, dir := range searchPaths() {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	if err := validateVersion(v.GetInt(KeyVersion)); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Server: ServerConfig{
			Addr:               v.GetString(KeyServerAddr),
			LineFile:           v.GetString(KeyServerLineFile),
			FailOnSessionError: v.GetBool(KeyFailOnSessionError),
			DrainTimeout:       v.GetDuration(KeyDrainTimeout),
			ControlBuffer:      v.GetInt(KeyControlBuffer),
		},
		Log: LogConfig{
			Level:  strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
			Format: strings.ToLower(strings.TrimSpace(v.GetString(KeyLogFormat))),
		},
	}

	return cfg, nil
}

// BindFlags binds each config key to the named flag so that an explicitly set
// flag overrides the file and environment.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet, keyToFlag map[string]string) error {
	for key, name := range keyToFlag {
		flag := flags.Lookup(name)
		if flag == nil {
			return fmt.Errorf("bind %s: unknown flag --%s", key, name)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyVersion, currentSchemaVersion)
	v.SetDefault(KeyServerAddr, d.Server.Addr)
	v.SetDefault(KeyServerLineFile, d.Server.LineFile)
	v.SetDefault(KeyFailOnSessionError, d.Server.FailOnSessionError)
	v.SetDefault(KeyDrainTimeout, d.Server.DrainTimeout)
	v.SetDefault(KeyControlBuffer, d.Server.ControlBuffer)
	v.SetDefault(KeyLogLevel, d.Log.Level)
	v.SetDefault(KeyLogFormat, d.Log.Format)
}

func searchPaths() []string {
	var dirs []string
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, configDir))
	}
	return append(dirs, ".")
}

// Validate checks the settings needed before binding a socket.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.LineFile) == "" {
		return ErrMissingLineFile
	}
	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return fmt.Errorf("invalid server address %q: %w", c.Server.Addr, err)
	}
	if c.Server.ControlBuffer < 0 {
		return fmt.Errorf("control buffer must not be negative, got %d", c.Server.ControlBuffer)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q (want text or json)", c.Log.Format)
	}

	return nil
}

func (c LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unsupported log level %q: %w", c.Level, err)
	}
	return level, nil
}

func Marshal(cfg Config) ([]byte, error) {
	file := toSchema(cfg)
	file.applyDefaults()

	data, err := toml.Marshal(file)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

// Write stores cfg at path through a temp file and rename. It refuses to
// replace an existing file unless overwrite is set.
func Write(path string, cfg Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config file: %w", err)
		}
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}

	if err := tempFile.Chmod(configFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	cleanup = false
	return nil
}

// DefaultPath is where `config init` writes when no path is given.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(dir, configDir, configName+"."+configType), nil
}
