package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dukerupert/homestock/internal/backup"
)

type config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string
	Seed      bool
	Backup    backup.Config
}

// loadConfig reads HOMESTOCK_* variables through getenv.
func loadConfig(getenv func(string) string) (config, error) {
	or := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := config{
		Port:      or("HOMESTOCK_PORT", "8080"),
		DBPath:    or("HOMESTOCK_DB_PATH", "homestock.db"),
		LogLevel:  or("HOMESTOCK_LOG_LEVEL", "info"),
		LogFormat: or("HOMESTOCK_LOG_FORMAT", "text"),
		Backup: backup.Config{
			S3: backup.S3Config{
				Endpoint:  getenv("HOMESTOCK_S3_ENDPOINT"),
				Bucket:    getenv("HOMESTOCK_S3_BUCKET"),
				Region:    or("HOMESTOCK_S3_REGION", "us-east-1"),
				AccessKey: getenv("HOMESTOCK_S3_ACCESS_KEY"),
				SecretKey: getenv("HOMESTOCK_S3_SECRET_KEY"),
			},
			Dir:        getenv("HOMESTOCK_BACKUP_DIR"),
			Passphrase: getenv("HOMESTOCK_BACKUP_PASSPHRASE"),
		},
	}

	seed, err := strconv.ParseBool(or("HOMESTOCK_SEED", "true"))
	if err != nil {
		return config{}, fmt.Errorf("HOMESTOCK_SEED: %w", err)
	}
	cfg.Seed = seed

	cfg.Backup.RestoreDir = or("HOMESTOCK_RESTORE_DIR", filepath.Join(filepath.Dir(cfg.DBPath), "restore"))

	if v := getenv("HOMESTOCK_BACKUP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return config{}, fmt.Errorf("HOMESTOCK_BACKUP_INTERVAL: %w", err)
		}
		cfg.Backup.Interval = d
	}
	return cfg, nil
}
