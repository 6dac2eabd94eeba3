package config

import (
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	for _, key := range []string{"DB_URL", "DATA_DIR", "PORT", "ENV", "STORAGE_BACKEND", "BOOTSTRAP_WORKERS", "MAX_UPLOAD_BYTES"} {
		t.Setenv(key, "")
	}
	// t.Setenv("X", "") still counts as set; the integer readers treat empty as unset.
	t.Setenv("PORT", "9090")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.BootstrapWorkers != 4 {
		t.Errorf("BootstrapWorkers = %d, want 4", cfg.BootstrapWorkers)
	}
	if cfg.MaxUploadBytes != 0 {
		t.Errorf("MaxUploadBytes = %d, want 0", cfg.MaxUploadBytes)
	}
}

func TestGetEnvIntInvalid(t *testing.T) {
	t.Setenv("BOOTSTRAP_WORKERS", "lots")
	if got := getEnvInt("BOOTSTRAP_WORKERS", 7); got != 7 {
		t.Errorf("getEnvInt() = %d, want fallback 7", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"missing data dir", Config{StorageBackend: StorageLocal, BootstrapWorkers: 1}, true},
		{"local ok", Config{DataDir: "/data", StorageBackend: StorageLocal, BootstrapWorkers: 1}, false},
		{"r2 without bucket", Config{DataDir: "/data", StorageBackend: StorageR2, BootstrapWorkers: 1}, true},
		{"r2 ok", Config{DataDir: "/data", StorageBackend: StorageR2, BootstrapWorkers: 1, R2: R2Config{AccountID: "acc", BucketName: "b"}}, false},
		{"unknown backend", Config{DataDir: "/data", StorageBackend: "ftp", BootstrapWorkers: 1}, true},
		{"zero workers", Config{DataDir: "/data", StorageBackend: StorageLocal}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCorsConfigOrigins(t *testing.T) {
	opts := CorsConfig(" http://a.test, ,http://b.test ")
	if len(opts.AllowedOrigins) != 2 || opts.AllowedOrigins[0] != "http://a.test" || opts.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("AllowedOrigins = %v", opts.AllowedOrigins)
	}
}

func TestSQLitePath(t *testing.T) {
	cfg := Config{DataDir: "/srv/modvault"}
	if got := cfg.SQLitePath(); got != filepath.Join("/srv/modvault", "db.db") {
		t.Errorf("SQLitePath() = %q", got)
	}
}
