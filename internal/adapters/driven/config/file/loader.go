// Package file loads application configuration from a TOML file, a local
// .env file and process environment, in increasing order of precedence.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/evidentlabs/evidence-cli/internal/core/domain"
)

// Environment variables recognised as overrides.
const (
	envDBPath      = "EVIDENCE_DB_PATH"
	envAuthorName  = "TARGET_AUTHOR_NAME"
	envAuthorEmail = "TARGET_AUTHOR_EMAIL"
	envMaxCommits  = "EVIDENCE_MAX_COMMITS"
)

// fileConfig mirrors the config.toml layout.
type fileConfig struct {
	Database struct {
		Path string `toml:"path"`
	} `toml:"database"`
	Author struct {
		Name  string `toml:"name"`
		Email string `toml:"email"`
	} `toml:"author"`
	Chunking struct {
		NoteSize      int `toml:"note_size"`
		NoteOverlap   int `toml:"note_overlap"`
		CommitSize    int `toml:"commit_size"`
		CommitOverlap int `toml:"commit_overlap"`
	} `toml:"chunking"`
	Ingest struct {
		MaxCommits int `toml:"max_commits"`
	} `toml:"ingest"`
}

// Loader resolves configuration for one process start.
type Loader struct {
	configDir string
}

// NewLoader creates a config loader rooted at configDir.
// If configDir is empty, defaults to ~/.evidence.
func NewLoader(configDir string) (*Loader, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".evidence")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	return &Loader{configDir: configDir}, nil
}

// Path returns the configuration file path.
func (l *Loader) Path() string {
	return filepath.Join(l.configDir, "config.toml")
}

// Load resolves the effective configuration: built-in defaults, then
// config.toml, then .env in the working directory, then process
// environment.
func (l *Loader) Load() (domain.Config, error) {
	cfg := domain.Defaults()

	if err := l.applyFile(&cfg); err != nil {
		return domain.Config{}, err
	}

	// .env supplies variables without clobbering ones already exported.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return domain.Config{}, fmt.Errorf("loading .env: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func (l *Loader) applyFile(cfg *domain.Config) error {
	data, err := os.ReadFile(l.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fc.Database.Path != "" {
		cfg.DBPath = fc.Database.Path
	}
	if fc.Author.Name != "" {
		cfg.TargetAuthorName = fc.Author.Name
	}
	if fc.Author.Email != "" {
		cfg.TargetAuthorEmail = fc.Author.Email
	}
	if fc.Chunking.NoteSize > 0 {
		cfg.NoteChunkSize = fc.Chunking.NoteSize
	}
	if fc.Chunking.NoteOverlap > 0 {
		cfg.NoteChunkOverlap = fc.Chunking.NoteOverlap
	}
	if fc.Chunking.CommitSize > 0 {
		cfg.CommitChunkSize = fc.Chunking.CommitSize
	}
	if fc.Chunking.CommitOverlap > 0 {
		cfg.CommitChunkOverlap = fc.Chunking.CommitOverlap
	}
	if fc.Ingest.MaxCommits > 0 {
		cfg.MaxCommits = fc.Ingest.MaxCommits
	}
	return nil
}

func applyEnv(cfg *domain.Config) {
	if v := os.Getenv(envDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(envAuthorName); v != "" {
		cfg.TargetAuthorName = v
	}
	if v := os.Getenv(envAuthorEmail); v != "" {
		cfg.TargetAuthorEmail = v
	}
	if v := os.Getenv(envMaxCommits); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxCommits = n
		}
	}
}
