package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	values map[string]string
}

func Load() (*Config, error) {
	cfg := &Config{
		values: make(map[string]string),
	}

	cfg.loadFromEnv()
	return cfg, nil
}

func (c *Config) loadFromEnv() {
	envVars := []string{
		"ANVIL_STORE",
		"ANVIL_DATA_DIR",
		"ANVIL_S3_ENDPOINT",
		"ANVIL_S3_ACCESS_KEY_ID",
		"ANVIL_S3_SECRET_ACCESS_KEY",
		"ANVIL_S3_BUCKET",
		"ANVIL_S3_PREFIX",
		"ANVIL_S3_USE_SSL",
		"ANVIL_S3_REGION",
		"ANVIL_RESOLVER_URL",
		"ANVIL_RESOLVER_TIMEOUT_SECONDS",
		"ANVIL_INGEST_PARALLELISM",
		"ANVIL_INGEST_TIMEOUT_SECONDS",
		"ANVIL_CORS_ORIGINS",
		"ANVIL_LOG_LEVEL",
		"ANVIL_LOG_FORMAT",
		"PORT",
	}

	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			c.values[envVar] = value
		}
	}
}

// Validate checks that the selected store and the resolver endpoint are
// usable before any component is constructed from this configuration.
func (c *Config) Validate() error {
	if c.GetString("ANVIL_RESOLVER_URL", "") == "" {
		return fmt.Errorf("required field 'ANVIL_RESOLVER_URL' is missing or empty")
	}

	switch store := c.GetString("ANVIL_STORE", "local"); store {
	case "local":
		// ANVIL_DATA_DIR falls back to ./data
	case "s3":
		requiredFields := []string{
			"ANVIL_S3_ENDPOINT",
			"ANVIL_S3_ACCESS_KEY_ID",
			"ANVIL_S3_SECRET_ACCESS_KEY",
			"ANVIL_S3_BUCKET",
		}
		for _, field := range requiredFields {
			if value := c.GetString(field, ""); value == "" {
				return fmt.Errorf("required field '%s' is missing or empty", field)
			}
		}
	default:
		return fmt.Errorf("unknown store '%s': expected 'local' or 's3'", store)
	}

	return nil
}

func (c *Config) GetString(key, defaultValue string) string {
	if value, exists := c.values[key]; exists {
		return value
	}
	return defaultValue
}

func (c *Config) GetBool(key string, defaultValue bool) bool {
	if value, exists := c.values[key]; exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func (c *Config) GetInt(key string, defaultValue int) int {
	if value, exists := c.values[key]; exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) GetS3Config() map[string]string {
	return map[string]string{
		"endpoint":          c.GetString("ANVIL_S3_ENDPOINT", ""),
		"access_key_id":     c.GetString("ANVIL_S3_ACCESS_KEY_ID", ""),
		"secret_access_key": c.GetString("ANVIL_S3_SECRET_ACCESS_KEY", ""),
		"bucket":            c.GetString("ANVIL_S3_BUCKET", ""),
		"prefix":            c.GetString("ANVIL_S3_PREFIX", ""),
		"use_ssl":           c.GetString("ANVIL_S3_USE_SSL", "true"),
		"region":            c.GetString("ANVIL_S3_REGION", "us-east-1"),
	}
}
