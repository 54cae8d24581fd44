package main

import (
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(envMap(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBPath != "homestock.db" || cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("defaults = %+v", cfg)
	}
	if !cfg.Seed {
		t.Error("seed should default to true")
	}
	if cfg.Backup.Dir != "" || cfg.Backup.S3.Bucket != "" || cfg.Backup.Interval != 0 {
		t.Errorf("backup should be unset: %+v", cfg.Backup)
	}
	if cfg.Backup.RestoreDir != "restore" {
		t.Errorf("restore dir = %q, want restore", cfg.Backup.RestoreDir)
	}
}

func TestLoadConfigRestoreDir(t *testing.T) {
	cfg, _ := loadConfig(envMap(map[string]string{"HOMESTOCK_DB_PATH": "/data/homestock.db"}))
	if cfg.Backup.RestoreDir != "/data/restore" {
		t.Errorf("restore dir = %q, want next to the database", cfg.Backup.RestoreDir)
	}

	cfg, _ = loadConfig(envMap(map[string]string{"HOMESTOCK_RESTORE_DIR": "/srv/restores"}))
	if cfg.Backup.RestoreDir != "/srv/restores" {
		t.Errorf("restore dir = %q, want override", cfg.Backup.RestoreDir)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := loadConfig(envMap(map[string]string{
		"HOMESTOCK_PORT":              "9000",
		"HOMESTOCK_SEED":              "false",
		"HOMESTOCK_BACKUP_DIR":        "/var/backups/homestock",
		"HOMESTOCK_BACKUP_INTERVAL":   "24h",
		"HOMESTOCK_BACKUP_PASSPHRASE": "hunter22",
		"HOMESTOCK_S3_BUCKET":         "pantry",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9000" || cfg.Seed {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Backup.Interval != 24*time.Hour || cfg.Backup.Passphrase != "hunter22" {
		t.Errorf("backup = %+v", cfg.Backup)
	}
	if cfg.Backup.S3.Bucket != "pantry" || cfg.Backup.S3.Region != "us-east-1" {
		t.Errorf("s3 = %+v", cfg.Backup.S3)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []map[string]string{
		{"HOMESTOCK_SEED": "maybe"},
		{"HOMESTOCK_BACKUP_INTERVAL": "daily"},
	}
	for _, env := range tests {
		if _, err := loadConfig(envMap(env)); err == nil {
			t.Errorf("loadConfig(%v) = nil error", env)
		}
	}
}
