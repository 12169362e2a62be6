package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	configtoml "github.com/bnema/lineserver/internal/adapters/config/toml"
	inspectadapter "github.com/bnema/lineserver/internal/adapters/render/inspect"
	filesource "github.com/bnema/lineserver/internal/adapters/source/file"
	"github.com/bnema/lineserver/internal/ports"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultClientTimeout = 5 * time.Second

type app struct {
	newSource       func(path string) ports.LineSource
	inspectRenderer func(inspectadapter.Summary, inspectadapter.RenderOptions) (string, error)
	clientTimeout   time.Duration
}

func wireApp() *app {
	return &app{
		newSource: func(path string) ports.LineSource {
			return filesource.NewSource(path)
		},
		inspectRenderer: inspectadapter.Render,
		clientTimeout:   defaultClientTimeout,
	}
}

// loadConfig resolves the layered configuration for cmd, letting the flags
// named in keyToFlag override the file and environment.
func (a *app) loadConfig(cmd *cobra.Command, keyToFlag map[string]string) (configtoml.Config, error) {
	configFile, err := cmd.Flags().GetString(configFlag)
	if err != nil {
		return configtoml.Config{}, err
	}

	v := viper.New()
	if err := configtoml.BindFlags(v, cmd.Flags(), keyToFlag); err != nil {
		return configtoml.Config{}, err
	}

	cfg, err := configtoml.Load(v, configFile)
	if err != nil {
		return configtoml.Config{}, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

func newLogger(w io.Writer, cfg configtoml.LogConfig) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	switch cfg.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q", cfg.Format)
	}
}
