package convlog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML shape accepted by NewFromFile.
type fileConfig struct {
	Scope       string            `yaml:"scope"`
	Console     *bool             `yaml:"console"`
	Diagnostics diagnosticsConfig `yaml:"diagnostics"`
	Handlers    []handlerConfig   `yaml:"handlers" validate:"dive"`
}

type diagnosticsConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" validate:"gte=0"`
}

type handlerConfig struct {
	Path        string `yaml:"path" validate:"required"`
	Level       string `yaml:"level"`
	MaxBytes    int64  `yaml:"max_bytes" validate:"gte=0"`
	BackupCount int    `yaml:"backup_count" validate:"gte=0"`
	RotateWhen  string `yaml:"rotate_when" validate:"omitempty,oneof=hourly daily midnight"`
}

// NewFromFile builds a Logger from a YAML description. Explicit Options
// remain the primary construction path; the file form covers deployments
// that keep logging wiring next to the rest of their configuration.
//
//	scope: web-app
//	console: true
//	handlers:
//	  - path: logs/errors.log
//	    level: ERROR
//	    max_bytes: 10485760
//	    backup_count: 5
//	  - path: logs/all.log
//	    rotate_when: daily
//	    backup_count: 7
func NewFromFile(path string) (*Logger, error) {
	cfg, err := loadFileConfig(path)
	if err != nil {
		return nil, err
	}

	opts := Options{
		Scope:                cfg.Scope,
		DiagnosticFile:       cfg.Diagnostics.File,
		DiagnosticMaxSizeMB:  cfg.Diagnostics.MaxSizeMB,
		DiagnosticMaxBackups: cfg.Diagnostics.MaxBackups,
		DiagnosticMaxAgeDays: cfg.Diagnostics.MaxAgeDays,
	}
	// Console defaults to on when the file does not mention it.
	if cfg.Console != nil {
		opts.DisableConsole = !*cfg.Console
	}

	l, err := New(opts)
	if err != nil {
		return nil, err
	}
	for _, h := range cfg.Handlers {
		fh := FileHandlerOptions{
			Path:        h.Path,
			MaxBytes:    h.MaxBytes,
			BackupCount: h.BackupCount,
			RotateWhen:  RotateWhen(h.RotateWhen),
		}
		if h.Level != emptyString {
			level, perr := ParseSeverity(h.Level)
			if perr != nil {
				_ = l.Close()
				return nil, perr
			}
			fh.Level = level
		}
		if herr := l.AddFileHandler(fh); herr != nil {
			_ = l.Close()
			return nil, herr
		}
	}
	return l, nil
}

func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := validateFileConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
