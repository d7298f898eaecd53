package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const defaultConfigPath = "/ai_data/bookshelf/config.json"

// Config holds every path the operator tooling touches. Components never
// read ambient environment state; they get handed this at construction.
type Config struct {
	Root          string   `json:"root"`
	ManifestPath  string   `json:"manifest_path"`
	StagingDir    string   `json:"staging_dir"`
	ArchiveDir    string   `json:"archive_dir"`
	LogDir        string   `json:"log_dir"`
	IndexDir      string   `json:"index_dir"`
	ReportCommand string   `json:"report_command"`
	ScanRoots     []string `json:"scan_roots"`
	WitnessTxt    string   `json:"witness_txt"`
	SourcePDF     string   `json:"source_pdf"`
}

func DefaultPath() string {
	if path := os.Getenv("BOOKSHELF_CONFIG_FILE"); path != "" {
		return path
	}
	return defaultConfigPath
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Root == "" {
		return errors.New("config root is required")
	}
	if c.ManifestPath == "" {
		return errors.New("config manifest_path is required")
	}
	if c.StagingDir == "" {
		return errors.New("config staging_dir is required")
	}
	if c.ArchiveDir == "" {
		return errors.New("config archive_dir is required")
	}
	if c.LogDir == "" {
		return errors.New("config log_dir is required")
	}
	return nil
}

func (c *Config) IndexPath() string {
	if c.IndexDir != "" {
		return filepath.Join(c.IndexDir, "catalog.db")
	}
	return filepath.Join(c.Root, "catalog.db")
}

// FailureLogPath is the per-run fetch/promote failure log, kept under the
// log dir so it can be tailed while a run is in progress.
func (c *Config) FailureLogPath() string {
	return filepath.Join(c.LogDir, "pipeline-failures.log")
}
