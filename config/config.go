package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const keyEnv = "ENV"
const envLocal = "local"

const (
	defaultPageSize          = 20
	defaultMaxPageSize       = 100
	defaultDebounceDelay     = 300 * time.Millisecond
	defaultColumnFilterDelay = 150 * time.Millisecond
	defaultSessionTTL        = 30 * time.Minute
	defaultCollationLanguage = "id"
)

type Config struct {
	config *viper.Viper
}

func Load() (*Config, error) {

	env := os.Getenv(keyEnv)
	if len(env) == 0 {
		env = envLocal
	}

	configPath, err := getConfigPath(env)

	viperConfig := viper.New()
	if err == nil {
		viperConfig.SetConfigFile(configPath)
		if err := viperConfig.ReadInConfig(); err != nil {
			slog.Warn(fmt.Sprintf("error reading config file, %s", err))
		}
	}
	viperConfig.AutomaticEnv()

	cfg := &Config{
		config: viperConfig,
	}

	return cfg, nil
}

func (c *Config) GetPort() string {
	return c.getString("PORT", "server.port")
}

func (c *Config) GetLogLevel() string {
	return c.getString("LOG_LEVEL", "server.log_level")
}

func (c *Config) GetKVDBPath() string {
	return c.getString("KVDB_PATH", "database.kvdb_path")
}

func (c *Config) GetIndexPath() string {
	return c.getString("INDEX_PATH", "database.index_path")
}

func (c *Config) GetStoragePath() string {
	return c.getString("STORAGE_PATH", "database.storage_path")
}

// GetRedisAddr returns an empty string when realtime changes should stay in-process.
func (c *Config) GetRedisAddr() string {
	return c.getString("REDIS_ADDR", "realtime.redis_addr")
}

func (c *Config) GetDefaultPageSize() int {
	return c.getInt("DEFAULT_PAGE_SIZE", "search.default_page_size", defaultPageSize)
}

func (c *Config) GetMaxPageSize() int {
	return c.getInt("MAX_PAGE_SIZE", "search.max_page_size", defaultMaxPageSize)
}

func (c *Config) GetCollationLanguage() string {
	language := c.getString("COLLATION_LANGUAGE", "search.collation_language")
	if len(language) == 0 {
		language = defaultCollationLanguage
	}

	return language
}

func (c *Config) GetDebounceDelay() time.Duration {
	return c.getDuration("DEBOUNCE_DELAY", "search.debounce_delay", defaultDebounceDelay)
}

func (c *Config) GetColumnFilterDelay() time.Duration {
	return c.getDuration("COLUMN_FILTER_DELAY", "search.column_filter_delay", defaultColumnFilterDelay)
}

func (c *Config) GetSessionTTL() time.Duration {
	return c.getDuration("SESSION_TTL", "search.session_ttl", defaultSessionTTL)
}

func (c *Config) getString(envKey string, fileKey string) string {
	value := c.config.GetString(envKey)
	if len(value) == 0 {
		value = c.config.GetString(fileKey)
	}

	return value
}

func (c *Config) getInt(envKey string, fileKey string, fallback int) int {
	value := c.config.GetInt(envKey)
	if value == 0 {
		value = c.config.GetInt(fileKey)
	}
	if value == 0 {
		value = fallback
	}

	return value
}

func (c *Config) getDuration(envKey string, fileKey string, fallback time.Duration) time.Duration {
	value := c.config.GetDuration(envKey)
	if value == 0 {
		value = c.config.GetDuration(fileKey)
	}
	if value <= 0 {
		value = fallback
	}

	return value
}

func getProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	for {
		configDir := filepath.Join(currentDir, "config")
		if info, err := os.Stat(configDir); err == nil && info.IsDir() {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)

		if parent == currentDir {
			break
		}

		currentDir = parent
	}

	return "", fmt.Errorf("could not find project root (directory containing 'config' folder)")
}

func getConfigPath(env string) (string, error) {
	configFile := fmt.Sprintf("config.%s.yaml", env)

	projectRoot, err := getProjectRoot()
	if err != nil {
		slog.Warn("failed to find project root with config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("failed to find project root: %w", err)
	}
	configPath := filepath.Join(projectRoot, "config", configFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Warn("failed to find config file within config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("config file does not exist: %s", configPath)
	}

	return configPath, nil
}
