// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvOutputDir = "LEXARTICLES_OUTPUT_DIR"
	EnvCodesDir  = "LEXARTICLES_CODES_DIR"
	EnvWorkers   = "LEXARTICLES_WORKERS"
	EnvVerbose   = "LEXARTICLES_VERBOSE"
	EnvStrict    = "LEXARTICLES_STRICT"
)

// Config holds settings shared by all commands. Command-line flags override
// these values.
type Config struct {
	// OutputDir is the root under which each code gets its own folder.
	OutputDir string
	// CodesDir holds YAML overrides for the code registry.
	CodesDir string
	Workers  int
	Verbose  bool
	Strict   bool
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		OutputDir: "codes",
		CodesDir:  filepath.Join("config", "codes"),
		Workers:   runtime.NumCPU(),
	}
}

// Load reads envFiles (".env" when none are given) if present, then the
// process environment. Missing .env files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	cfg := Default()
	cfg.OutputDir = getEnv(EnvOutputDir, cfg.OutputDir)
	cfg.CodesDir = getEnv(EnvCodesDir, cfg.CodesDir)

	var err error
	if cfg.Workers, err = getEnvInt(EnvWorkers, cfg.Workers); err != nil {
		return nil, err
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("%s must be at least 1, got %d", EnvWorkers, cfg.Workers)
	}
	if cfg.Verbose, err = getEnvBool(EnvVerbose, cfg.Verbose); err != nil {
		return nil, err
	}
	if cfg.Strict, err = getEnvBool(EnvStrict, cfg.Strict); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, value)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, value)
	}
	return b, nil
}
