package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, env, content string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", env+".yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	writeConfig(t, "test", `
http:
  port: 8080
`)
	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Cache.Driver != "memory" {
		t.Errorf("Cache.Driver = %q, want memory default", cfg.Cache.Driver)
	}
	if cfg.Cache.TTLSec != 300 {
		t.Errorf("Cache.TTLSec = %d, want 300 default", cfg.Cache.TTLSec)
	}
	if cfg.Index.Driver != "sqlite" {
		t.Errorf("Index.Driver = %q, want sqlite default", cfg.Index.Driver)
	}
	if cfg.Search.DefaultPageSize != 20 || cfg.Search.MaxPageSize != 100 {
		t.Errorf("page size defaults wrong: %+v", cfg.Search)
	}
	if cfg.Search.DebounceWindowMS != 300 || cfg.Search.MinQueryLength != 2 {
		t.Errorf("search defaults wrong: %+v", cfg.Search)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("CRIMEDEX_REDIS_PASSWORD", "s3cret")
	writeConfig(t, "test", `
http:
  port: 8080
cache:
  driver: redis
  addrs: ["localhost:6379"]
  password: ${CRIMEDEX_REDIS_PASSWORD}
  ttl_sec: ${CRIMEDEX_TTL:-120}
`)
	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.Password != "s3cret" {
		t.Errorf("Password = %q, want expanded env var", cfg.Cache.Password)
	}
	if cfg.Cache.TTLSec != 120 {
		t.Errorf("TTLSec = %d, want 120 from default expansion", cfg.Cache.TTLSec)
	}
}

func TestValidate_Errors(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"redis without addrs", func(c *Config) {
			c.Cache.Driver = "redis"
			c.Cache.Addrs = nil
		}, "cache.addrs"},
		{"unknown cache driver", func(c *Config) { c.Cache.Driver = "memcached" }, "cache.driver"},
		{"http index without url", func(c *Config) {
			c.Index.Driver = "http"
			c.Index.BaseURL = ""
		}, "index.base_url"},
		{"unknown index driver", func(c *Config) { c.Index.Driver = "solr" }, "index.driver"},
		{"default page over max", func(c *Config) {
			c.Search.DefaultPageSize = 50
			c.Search.MaxPageSize = 40
		}, "default_page_size"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{HTTP: HTTPConfig{Port: 8080}}
			cfg.ApplyDefaults()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("Validate() = %v, want error mentioning %q", err, tc.wantSub)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv() = %q, want local", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv() = %q, want prod", got)
	}
}
