// Package config loads commandbar configuration from JSONC files and
// environment variables.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"

	"github.com/tidwall/jsonc"

	"github.com/opencode-ai/commandbar/pkg/types"
)

// Load loads configuration from multiple sources (priority order):
//  1. Global config (~/.config/commandbar/)
//  2. Project config (<directory>/commandbar.json[c] and <directory>/.opencode/)
//  3. COMMANDBAR_CONFIG file
//  4. Environment variables
func Load(directory string) (*types.Config, error) {
	config := &types.Config{
		Command: make(map[string]types.CommandConfig),
	}

	loaded := make(map[string]bool)

	loadOnce := func(path string) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return
		}
		if loaded[absPath] {
			return
		}
		if loadConfigFile(path, config) == nil {
			loaded[absPath] = true
		}
	}

	// 1. Global config
	globalDir := globalConfigDir()
	loadOnce(filepath.Join(globalDir, "commandbar.json"))
	loadOnce(filepath.Join(globalDir, "commandbar.jsonc"))

	// 2. Project config
	if directory != "" {
		loadOnce(filepath.Join(directory, "commandbar.json"))
		loadOnce(filepath.Join(directory, "commandbar.jsonc"))
		loadOnce(filepath.Join(directory, ".opencode", "commandbar.json"))
		loadOnce(filepath.Join(directory, ".opencode", "commandbar.jsonc"))
	}

	// 3. COMMANDBAR_CONFIG file override
	if configPath := os.Getenv("COMMANDBAR_CONFIG"); configPath != "" {
		loadOnce(configPath)
	}

	// 4. Environment variables (highest priority)
	applyEnvOverrides(config)

	if config.Directory == "" {
		config.Directory = directory
	}

	return config, nil
}

// loadConfigFile loads a single config file with interpolation support.
func loadConfigFile(path string, config *types.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err // File doesn't exist, skip
	}

	// Strip JSONC comments using tidwall/jsonc
	data = jsonc.ToJSON(data)

	data = interpolate(data)

	var fileConfig types.Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return err
	}

	mergeConfig(config, &fileConfig)
	return nil
}

// interpolate processes {env:VAR} placeholders.
func interpolate(data []byte) []byte {
	envPattern := regexp.MustCompile(`\{env:([^}]+)\}`)
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := envPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(varName)))
	})
}

// mergeConfig merges source config into target.
func mergeConfig(target, source *types.Config) {
	if source.Schema != "" {
		target.Schema = source.Schema
	}
	if source.ServerURL != "" {
		target.ServerURL = source.ServerURL
	}
	if source.Directory != "" {
		target.Directory = source.Directory
	}
	if source.LogLevel != "" {
		target.LogLevel = source.LogLevel
	}
	if source.HistoryDir != "" {
		target.HistoryDir = source.HistoryDir
	}

	if source.Command != nil {
		if target.Command == nil {
			target.Command = make(map[string]types.CommandConfig)
		}
		for k, v := range source.Command {
			target.Command[k] = v
		}
	}
}

// applyEnvOverrides applies environment variable overrides.
func applyEnvOverrides(config *types.Config) {
	if url := os.Getenv("COMMANDBAR_SERVER_URL"); url != "" {
		config.ServerURL = url
	}
	if level := os.Getenv("COMMANDBAR_LOG_LEVEL"); level != "" {
		config.LogLevel = level
	}
	if dir := os.Getenv("COMMANDBAR_HISTORY_DIR"); dir != "" {
		config.HistoryDir = dir
	}
}

// globalConfigDir returns the global config directory, honoring
// COMMANDBAR_CONFIG_DIR and falling back to the XDG location.
func globalConfigDir() string {
	if dir := os.Getenv("COMMANDBAR_CONFIG_DIR"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "commandbar")
	}
	home := os.Getenv("HOME")
	return filepath.Join(home, ".config", "commandbar")
}
