package main

import "os"

// Config follows the teacher's provers/types.Config pattern: environment
// variables with explicit defaults, no config file, no flag-parsing library
// beyond cobra's own flag binding.
type Config struct {
	Home string
}

// NewConfig reads MUSIGCTL_HOME, defaulting to the current directory.
func NewConfig() *Config {
	return &Config{
		Home: getEnv("MUSIGCTL_HOME", "."),
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
