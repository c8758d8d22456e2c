package reviewflow

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config carries process-level settings, typically loaded from a YAML file
// with environment overrides on top.
type Config struct {
	// DebugStep enables step-level debug logging.
	DebugStep bool `yaml:"debug_step"`

	// DebugArtifact enables logging of artifact payloads.
	DebugArtifact bool `yaml:"debug_artifact"`

	// JournalPath, when non-empty, points the session journal at a SQLite
	// database file.
	JournalPath string `yaml:"journal_path"`
}

// LoadConfig reads the YAML file at path, then applies the environment
// overrides REVIEWFLOW_DEBUG_STEP, REVIEWFLOW_DEBUG_ARTIFACT and
// REVIEWFLOW_JOURNAL. A missing file is not an error; defaults plus the
// environment apply. An empty path skips the file entirely.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// fall through to env overrides
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}

	if v, ok := envBool("REVIEWFLOW_DEBUG_STEP"); ok {
		cfg.DebugStep = v
	}
	if v, ok := envBool("REVIEWFLOW_DEBUG_ARTIFACT"); ok {
		cfg.DebugArtifact = v
	}
	if v := os.Getenv("REVIEWFLOW_JOURNAL"); v != "" {
		cfg.JournalPath = v
	}
	return cfg, nil
}

// envBool parses a boolean environment variable. Unset or unrecognized
// values report ok=false so file and default values survive.
func envBool(key string) (value, ok bool) {
	raw, present := os.LookupEnv(key)
	if !present {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}
