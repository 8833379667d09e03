package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the configuration from the .env file or environment variables for integration tests
// If the TEST_DB_* variables are not set, returns a Config with empty values
// which allows tests to use fallback DSN values
func LoadTestConfig() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist - it's optional)
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	cfg := &Config{}
	if os.Getenv("TEST_DB_HOST") == "" {
		// Return empty config to allow fallback DSN in tests
		return cfg, nil
	}
	if err := loadDatabase(cfg, "TEST_"); err != nil {
		return nil, err
	}
	if err := loadJWT(cfg, "TEST_"); err != nil {
		return nil, err
	}

	cfg.APIKey = os.Getenv("TEST_API_KEY")

	return cfg, nil
}
