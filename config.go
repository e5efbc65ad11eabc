package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultMaxUploadBytes = 16 << 20 // 16MB, same cap as the original dashboard

// Config collects everything the server needs at boot. Values come from the
// environment (a .env file is honored when present); a RAILWAY volume mount
// relocates the database like the production deployment expects.
type Config struct {
	Addr           string
	DBPath         string
	DataDir        string
	Debug          bool
	MaxUploadBytes int64

	// Aliases extends the built-in column-alias table from aliases.yaml in
	// the data dir: canonical column -> extra header names.
	Aliases map[string][]string
}

func LoadConfig() (Config, error) {
	// Missing .env is fine; env vars still apply.
	_ = godotenv.Load()

	cfg := Config{
		Addr:           ":8080",
		DBPath:         "./cycling_dashboard.db",
		DataDir:        "./data",
		MaxUploadBytes: defaultMaxUploadBytes,
	}
	if v := os.Getenv("DASH_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("DASH_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if mountPath := os.Getenv("RAILWAY_VOLUME_MOUNT_PATH"); mountPath != "" {
		cfg.DBPath = filepath.Join(mountPath, "cycling_dashboard.db")
	}
	if v := os.Getenv("DASH_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("DASH_DEBUG"); v == "1" || v == "true" {
		cfg.Debug = true
	}

	aliases, err := loadAliases(filepath.Join(cfg.DataDir, "aliases.yaml"))
	if err != nil {
		return Config{}, err
	}
	cfg.Aliases = aliases
	return cfg, nil
}

// loadAliases reads optional column-alias overrides. A missing file means no
// overrides; a malformed one is a boot error rather than a silent ignore.
func loadAliases(path string) (map[string][]string, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var aliases map[string][]string
	if err := yaml.Unmarshal(raw, &aliases); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return aliases, nil
}
