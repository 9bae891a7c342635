package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override file values.
const (
	EnvStorageBackend = "JOBTRACKER_STORAGE_BACKEND"
	EnvStoragePath    = "JOBTRACKER_STORAGE_PATH"
	EnvStorageKey     = "JOBTRACKER_STORAGE_KEY"
	EnvLogLevel       = "JOBTRACKER_LOG_LEVEL"
	EnvLogFile        = "JOBTRACKER_LOG_FILE"
)

// ApplyEnv overlays environment variables onto cfg. Values come from the
// optional dotenv file first and the process environment second, so the
// process wins. A missing dotenv file is not an error.
func ApplyEnv(cfg *Config, dotenvPath string) error {
	vars := map[string]string{}

	if dotenvPath != "" {
		fileVars, err := godotenv.Read(dotenvPath)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("reading env file: %w", err)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}

	for _, name := range []string{EnvStorageBackend, EnvStoragePath, EnvStorageKey, EnvLogLevel, EnvLogFile} {
		if v, ok := os.LookupEnv(name); ok {
			vars[name] = v
		}
	}

	targets := map[string]*string{
		EnvStorageBackend: &cfg.Storage.Backend,
		EnvStoragePath:    &cfg.Storage.Path,
		EnvStorageKey:     &cfg.Storage.Key,
		EnvLogLevel:       &cfg.Logging.Level,
		EnvLogFile:        &cfg.Logging.File,
	}
	for name, dst := range targets {
		if v, ok := vars[name]; ok && v != "" {
			*dst = v
		}
	}

	return nil
}
