package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	c := &Config{}
	setDefaults(c)
	return c
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "relative backend url", mutate: func(c *Config) { c.Backend.BaseURL = "/reportes" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Backend.Timeout = 0 }, wantErr: true},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = "http" }, wantErr: true},
		{name: "port with colon", mutate: func(c *Config) { c.Server.Port = ":9000" }},
		{name: "unknown mode", mutate: func(c *Config) { c.Server.Mode = "prod" }, wantErr: true},
		{name: "negative ttl", mutate: func(c *Config) { c.Cache.TTL = -time.Second }, wantErr: true},
		{name: "zero ttl disables cache", mutate: func(c *Config) { c.Cache.TTL = 0 }},
		{name: "release without secret", mutate: func(c *Config) { c.Server.Mode = "release" }, wantErr: true},
		{
			name: "release with secret",
			mutate: func(c *Config) {
				c.Server.Mode = "release"
				c.Session.Secret = "s3cr3t"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := validateConfig(c)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9001")
	t.Setenv("REPORTES_URL", "http://api.local/reportes")
	t.Setenv("REPORTES_TIMEOUT", "3s")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("CACHE_TTL", "0s")
	t.Setenv("EXPORT_ARCHIVE_DIR", "/tmp/reportes")

	c := validConfig()
	if err := loadFromEnv(c); err != nil {
		t.Fatalf("loadFromEnv: %v", err)
	}

	if c.Server.Port != "9001" || c.Backend.BaseURL != "http://api.local/reportes" {
		t.Fatalf("unexpected server/backend: %+v %+v", c.Server, c.Backend)
	}
	if c.Backend.Timeout != 3*time.Second {
		t.Fatalf("got timeout %s", c.Backend.Timeout)
	}
	if len(c.Server.AllowedOrigins) != 2 || c.Server.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("got origins %v", c.Server.AllowedOrigins)
	}
	if !c.Redis.Enabled || c.Cache.TTL != 0 || c.Export.ArchiveDir != "/tmp/reportes" {
		t.Fatalf("unexpected redis/cache/export: %+v %+v %+v", c.Redis, c.Cache, c.Export)
	}
}

func TestLoadFromEnv_InvalidDuration(t *testing.T) {
	t.Setenv("REPORTES_TIMEOUT", "quince")
	if err := loadFromEnv(validConfig()); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  port: \"9100\"\nbackend:\n  base_url: http://reportes.test/api\n  timeout: 2s\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	c := validConfig()
	if err := loadFromFile(c); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if c.Server.Port != "9100" || c.Backend.BaseURL != "http://reportes.test/api" || c.Backend.Timeout != 2*time.Second {
		t.Fatalf("unexpected config: %+v %+v", c.Server, c.Backend)
	}
	if c.Cache.TTL != 5*time.Minute {
		t.Fatalf("defaults overwritten: %s", c.Cache.TTL)
	}
}
