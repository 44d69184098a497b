// Package bhptconfig loads table-definition config files for the bhptctl
// CLI. It is not used by pkg/bhpt itself, which takes its configuration
// purely through bhpt.Config at construction time.
package bhptconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

// ConfigFileName is the default config file name looked for in the
// current directory.
const ConfigFileName = ".bhptctl.json"

// Config holds the construction parameters for a bhpt.Table, as read from
// a HuJSON (JSON with comments) file.
type Config struct {
	Capacity           int    `json:"capacity"`
	HistoryLength      int    `json:"history_length"`
	ConsiderationDepth int    `json:"consideration_depth,omitempty"`
	MWSP               int    `json:"mwsp"`
	Defer              bool   `json:"defer,omitempty"`
	AutoRemove         bool   `json:"auto_remove,omitempty"`
	Seed               uint64 `json:"seed,omitempty"`
}

// Sources records which config files were loaded.
type Sources struct {
	Global  string
	Project string
}

var (
	errConfigFileNotFound = errors.New("config file not found")
	errConfigFileRead     = errors.New("cannot read config file")
	errConfigInvalid      = errors.New("invalid config file")
)

// DefaultConfig returns the default table definition: 64 entries of 8
// history bits each, with MWSP disabled.
func DefaultConfig() Config {
	return Config{
		Capacity:      64,
		HistoryLength: 8,
		MWSP:          -1,
	}
}

// Load loads configuration with the following precedence (highest wins):
//  1. Defaults
//  2. Global user config ($XDG_CONFIG_HOME/bhptctl/config.json, or
//     ~/.config/bhptctl/config.json)
//  3. Project config: the explicit file at configPath if non-empty (it
//     must exist), otherwise workDir/.bhptctl.json if it exists. An
//     explicit configPath replaces workDir/.bhptctl.json; the two are
//     never both loaded.
func Load(workDir, configPath string, env []string) (Config, Sources, error) {
	cfg := DefaultConfig()

	var sources Sources

	globalCfg, globalMWSPSet, globalPath, err := loadGlobalConfig(env)
	if err != nil {
		return Config{}, Sources{}, err
	}

	sources.Global = globalPath
	cfg = mergeConfig(cfg, globalCfg, globalMWSPSet)

	projectCfg, projectMWSPSet, projectPath, err := loadProjectConfig(workDir, configPath)
	if err != nil {
		return Config{}, Sources{}, err
	}

	sources.Project = projectPath
	cfg = mergeConfig(cfg, projectCfg, projectMWSPSet)

	return cfg, sources, nil
}

func loadGlobalConfig(env []string) (Config, bool, string, error) {
	path := globalConfigPath(env)
	if path == "" {
		return Config{}, false, "", nil
	}

	cfg, mwspSet, loaded, err := loadConfigFile(path, false)
	if err != nil {
		return Config{}, false, "", err
	}

	if !loaded {
		return Config{}, false, "", nil
	}

	return cfg, mwspSet, path, nil
}

func loadProjectConfig(workDir, configPath string) (Config, bool, string, error) {
	var file string

	var mustExist bool

	if configPath != "" {
		file = configPath
		if !filepath.IsAbs(file) {
			file = filepath.Join(workDir, file)
		}

		mustExist = true

		if _, statErr := os.Stat(file); statErr != nil {
			return Config{}, false, "", fmt.Errorf("%w: %s", errConfigFileNotFound, configPath)
		}
	} else {
		file = filepath.Join(workDir, ConfigFileName)
	}

	cfg, mwspSet, loaded, err := loadConfigFile(file, mustExist)
	if err != nil {
		return Config{}, false, "", err
	}

	if !loaded {
		return Config{}, false, "", nil
	}

	return cfg, mwspSet, file, nil
}

// loadConfigFile loads a config file. Returns the parsed config, whether
// "mwsp" was an explicitly present key in the file, whether the file was
// loaded, and any error.
func loadConfigFile(path string, mustExist bool) (Config, bool, bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is constructed from caller-supplied directories
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, false, nil
		}

		if mustExist {
			return Config{}, false, false, fmt.Errorf("%w: %s", errConfigFileRead, path)
		}

		return Config{}, false, false, nil
	}

	cfg, mwspSet, parseErr := parseConfig(data)
	if parseErr != nil {
		return Config{}, false, false, fmt.Errorf("%w %s: %w", errConfigInvalid, path, parseErr)
	}

	return cfg, mwspSet, true, nil
}

// parseConfig unmarshals a HuJSON config file. It also reports whether
// "mwsp" was present as a key in the source document: MWSP's valid range
// (-1 disables, else >= 0) includes 0, so a missing key and an explicit
// "mwsp": 0 cannot be told apart from the unmarshaled Config alone.
func parseConfig(data []byte) (Config, bool, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	if unmarshalErr := json.Unmarshal(standardized, &cfg); unmarshalErr != nil {
		return Config{}, false, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	_, mwspSet := raw["mwsp"]

	return cfg, mwspSet, nil
}

// mergeConfig applies every non-zero field of overlay onto base. MWSP is
// special-cased via mwspSet (computed from the source document's raw
// keys by parseConfig) rather than a zero-value check, since 0 is itself
// a valid MWSP and would otherwise be indistinguishable from "absent".
func mergeConfig(base, overlay Config, mwspSet bool) Config {
	if overlay.Capacity != 0 {
		base.Capacity = overlay.Capacity
	}

	if overlay.HistoryLength != 0 {
		base.HistoryLength = overlay.HistoryLength
	}

	if overlay.ConsiderationDepth != 0 {
		base.ConsiderationDepth = overlay.ConsiderationDepth
	}

	if mwspSet {
		base.MWSP = overlay.MWSP
	}

	if overlay.Defer {
		base.Defer = overlay.Defer
	}

	if overlay.AutoRemove {
		base.AutoRemove = overlay.AutoRemove
	}

	if overlay.Seed != 0 {
		base.Seed = overlay.Seed
	}

	return base
}

// globalConfigPath returns $XDG_CONFIG_HOME/bhptctl/config.json if set,
// otherwise ~/.config/bhptctl/config.json. Returns "" if neither the env
// slice nor the OS environment nor the home directory can resolve it.
func globalConfigPath(env []string) string {
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, "XDG_CONFIG_HOME="); ok {
			return filepath.Join(after, "bhptctl", "config.json")
		}
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "bhptctl", "config.json")
	}

	home, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(home, ".config", "bhptctl", "config.json")
	}

	return ""
}
