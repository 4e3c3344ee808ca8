package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile_MissingUsesDefaults(t *testing.T) {
	cfg, info, err := LoadFile(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if info.FileFound || info.PortSpecified {
		t.Fatalf("unexpected info: %+v", info)
	}
	if cfg.Server.Port != DefaultConfig().Server.Port {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.Import.ConsumptionColumn != "AO" {
		t.Fatalf("consumption column = %q", cfg.Import.ConsumptionColumn)
	}
}

func TestLoadFile_OverridesAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 8080

[database]
driver = "postgres"
dsn = "postgres://localhost/restock"

[import]
consumption_column = "AP"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("RESTOCK_LOG_LEVEL", "debug")

	cfg, info, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !info.FileFound || !info.PortSpecified {
		t.Fatalf("unexpected info: %+v", info)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Fatalf("driver = %q", cfg.Database.Driver)
	}
	if cfg.Import.ConsumptionColumn != "AP" || cfg.Import.ReferenceColumn != "J" {
		t.Fatalf("import columns = %+v", cfg.Import)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level = %q", cfg.Log.Level)
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DefaultConfig()
	if got := DatabaseDSN(cfg, "/srv/data"); got != filepath.Join("/srv/data", "restock.db") {
		t.Fatalf("sqlite dsn = %q", got)
	}

	cfg.Database.Driver = "mysql"
	cfg.Database.DSN = "user:pw@/restock"
	if got := DatabaseDSN(cfg, "/srv/data"); got != "user:pw@/restock" {
		t.Fatalf("mysql dsn = %q", got)
	}
}
