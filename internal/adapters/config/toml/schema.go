package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int          `toml:"version"`
	Server  serverSchema `toml:"server"`
	Log     logSchema    `toml:"log"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func validateVersion(version int) error {
	if version > currentSchemaVersion {
		return fmt.Errorf("unsupported config schema version %d (current %d)", version, currentSchemaVersion)
	}

	return nil
}

type serverSchema struct {
	Addr               string `toml:"addr"`
	LineFile           string `toml:"line_file"`
	FailOnSessionError bool   `toml:"fail_on_session_error"`
	DrainTimeout       string `toml:"drain_timeout"`
	ControlBuffer      int    `toml:"control_buffer"`
}

type logSchema struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func toSchema(cfg Config) fileSchema {
	return fileSchema{
		Version: currentSchemaVersion,
		Server: serverSchema{
			Addr:               cfg.Server.Addr,
			LineFile:           cfg.Server.LineFile,
			FailOnSessionError: cfg.Server.FailOnSessionError,
			DrainTimeout:       cfg.Server.DrainTimeout.String(),
			ControlBuffer:      cfg.Server.ControlBuffer,
		},
		Log: logSchema{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
		},
	}
}
