/*
Package config manages TOML config for brailleserve.
*/
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bastiangx/brailleserve/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// FileName is the config file name inside the config dir.
const FileName = "config.toml"

// Environment variables read by ApplyEnv.
const (
	EnvConfig  = "BRAILLE_CONFIG"
	EnvDataDir = "BRAILLE_DATA_DIR"
	EnvDebug   = "BRAILLE_DEBUG"
)

// Config holds the entire config structure
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Keys   KeysConfig   `toml:"keys"`
	Dict   DictConfig   `toml:"dict"`
	Server ServerConfig `toml:"server"`
	CLI    CliConfig    `toml:"cli"`

	// Debug and DataDir only come from flags and the environment.
	Debug   bool   `toml:"-"`
	DataDir string `toml:"-"`
}

// EngineConfig has letter and word matching options.
type EngineConfig struct {
	MaxSuggestions   int `toml:"max_suggestions"`
	AcceptDistance   int `toml:"accept_distance"`
	CharCandidates   int `toml:"char_candidates"`
	MaxDistance      int `toml:"max_distance"`
	ShortMaxDistance int `toml:"short_max_distance"`
	ShortLength      int `toml:"short_length"`
	CacheSize        int `toml:"cache_size"`
}

// KeysConfig holds keyboard options.
type KeysConfig struct {
	Layout         string `toml:"layout"`
	ChordTimeoutMs int    `toml:"chord_timeout_ms"`
}

// DictConfig holds dictionary and table sources. Empty paths mean the
// bundled data.
type DictConfig struct {
	TablePath   string `toml:"table_path"`
	DefaultPath string `toml:"default_path"`
	CustomPath  string `toml:"custom_path"`
	Active      string `toml:"active"`
}

// ServerConfig has IPC server limits.
type ServerConfig struct {
	MaxWordLen     int `toml:"max_word_len"`
	MaxUploadWords int `toml:"max_upload_words"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	ShowCandidates bool `toml:"show_candidates"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxSuggestions:   5,
			AcceptDistance:   2,
			CharCandidates:   3,
			MaxDistance:      2,
			ShortMaxDistance: 1,
			ShortLength:      2,
			CacheSize:        256,
		},
		Keys: KeysConfig{
			Layout:         "asdjkl",
			ChordTimeoutMs: 300,
		},
		Dict: DictConfig{
			CustomPath: "custom_words.txt",
			Active:     "default",
		},
		Server: ServerConfig{
			MaxWordLen:     60,
			MaxUploadWords: 200000,
		},
		CLI: CliConfig{
			ShowCandidates: true,
		},
	}
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	pr, err := utils.NewPathResolver()
	if err != nil {
		return "", err
	}
	return pr.GetConfigPath(FileName), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag or BRAILLE_CONFIG
// 2. Default path: [UserConfigDir]/brailleserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath == "" {
		customConfigPath = os.Getenv(EnvConfig)
	}

	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file. Sections that fail to parse keep their
// defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.normalize()
	return config, nil
}

// tryPartialParse attempts to parse a TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "engine"); ok {
		extractEngineConfig(section, &config.Engine)
	}
	if section, ok := utils.ExtractSection(tempConfig, "keys"); ok {
		extractKeysConfig(section, &config.Keys)
	}
	if section, ok := utils.ExtractSection(tempConfig, "dict"); ok {
		extractDictConfig(section, &config.Dict)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		if val, ok := utils.ExtractBool(section, "show_candidates"); ok {
			config.CLI.ShowCandidates = val
		}
	}
	config.normalize()
	return config, nil
}

func extractEngineConfig(data map[string]any, engine *EngineConfig) {
	fields := map[string]*int{
		"max_suggestions":    &engine.MaxSuggestions,
		"accept_distance":    &engine.AcceptDistance,
		"char_candidates":    &engine.CharCandidates,
		"max_distance":       &engine.MaxDistance,
		"short_max_distance": &engine.ShortMaxDistance,
		"short_length":       &engine.ShortLength,
		"cache_size":         &engine.CacheSize,
	}
	for key, dst := range fields {
		if val, ok := utils.ExtractInt64(data, key); ok {
			*dst = val
		}
	}
}

func extractKeysConfig(data map[string]any, keys *KeysConfig) {
	if val, ok := utils.ExtractString(data, "layout"); ok {
		keys.Layout = val
	}
	if val, ok := utils.ExtractInt64(data, "chord_timeout_ms"); ok {
		keys.ChordTimeoutMs = val
	}
}

func extractDictConfig(data map[string]any, dict *DictConfig) {
	if val, ok := utils.ExtractString(data, "table_path"); ok {
		dict.TablePath = val
	}
	if val, ok := utils.ExtractString(data, "default_path"); ok {
		dict.DefaultPath = val
	}
	if val, ok := utils.ExtractString(data, "custom_path"); ok {
		dict.CustomPath = val
	}
	if val, ok := utils.ExtractString(data, "active"); ok {
		dict.Active = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_word_len"); ok {
		server.MaxWordLen = val
	}
	if val, ok := utils.ExtractInt64(data, "max_upload_words"); ok {
		server.MaxUploadWords = val
	}
}

// normalize replaces values that would break the engine with defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Engine.MaxSuggestions < 1 {
		log.Warnf("max_suggestions %d is invalid, using %d", c.Engine.MaxSuggestions, def.Engine.MaxSuggestions)
		c.Engine.MaxSuggestions = def.Engine.MaxSuggestions
	}
	if c.Engine.CharCandidates < 1 {
		c.Engine.CharCandidates = def.Engine.CharCandidates
	}
	if c.Engine.AcceptDistance < 0 {
		c.Engine.AcceptDistance = def.Engine.AcceptDistance
	}
	if c.Engine.MaxDistance < 0 {
		c.Engine.MaxDistance = def.Engine.MaxDistance
	}
	if c.Engine.ShortMaxDistance < 0 {
		c.Engine.ShortMaxDistance = def.Engine.ShortMaxDistance
	}
	if c.Engine.ShortLength < 0 {
		c.Engine.ShortLength = def.Engine.ShortLength
	}
	if c.Keys.Layout == "" {
		c.Keys.Layout = def.Keys.Layout
	}
	if c.Keys.ChordTimeoutMs < 1 {
		c.Keys.ChordTimeoutMs = def.Keys.ChordTimeoutMs
	}
	if c.Dict.CustomPath == "" {
		c.Dict.CustomPath = def.Dict.CustomPath
	}
	if c.Server.MaxWordLen < 1 {
		c.Server.MaxWordLen = def.Server.MaxWordLen
	}
}

// LoadEnv reads a .env file from the working directory if there is one.
// Variables already set in the environment win.
func LoadEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if !utils.FileExists(f) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.Warnf("Failed to read env file %s: %v", f, err)
			continue
		}
		log.Debugf("Loaded environment from %s", f)
	}
}

// ApplyEnv copies BRAILLE_DATA_DIR and BRAILLE_DEBUG into c.
func (c *Config) ApplyEnv() {
	if dir := strings.TrimSpace(os.Getenv(EnvDataDir)); dir != "" {
		c.DataDir = dir
	}
	if v := strings.TrimSpace(os.Getenv(EnvDebug)); v != "" {
		if debug, err := strconv.ParseBool(v); err == nil {
			c.Debug = debug
		} else {
			log.Warnf("Ignoring %s=%q: %v", EnvDebug, v, err)
		}
	}
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
