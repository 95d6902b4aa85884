package config

import (
	"os"

	"github.com/joho/godotenv"

	"gdpr-backend/internal/shared/telemetry"
)

// loadEnvFiles copies KEY=VALUE pairs from each existing file into the
// environment. Variables that are already set, including by an earlier
// file, are left alone.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		vars, err := godotenv.Read(path)
		if err != nil {
			if !os.IsNotExist(err) {
				telemetry.Warn("config.env_file_unreadable", map[string]any{"path": path, "error": err})
			}
			continue
		}
		for k, v := range vars {
			if _, set := os.LookupEnv(k); !set {
				os.Setenv(k, v)
			}
		}
	}
}
