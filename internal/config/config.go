package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig is the application configuration, read from config.toml.
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
	Import   ImportConfig   `toml:"import"`
}

// ServerConfig HTTP server settings.
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig data directory settings.
type DataConfig struct {
	DataDir    string `toml:"data_dir"`
	AutoBackup bool   `toml:"auto_backup"`
}

// DatabaseConfig selects the SQL driver. An empty DSN with the sqlite3
// driver means <data_dir>/restock.db.
type DatabaseConfig struct {
	Driver string `toml:"driver"` // sqlite3, postgres or mysql
	DSN    string `toml:"dsn"`
}

// LogConfig logging settings.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // json or text
	Output string `toml:"output"` // stdout, stderr or a file path
}

// ImportConfig column letters of the consumption spreadsheet.
type ImportConfig struct {
	ReferenceColumn       string `toml:"reference_column"`
	NameColumn            string `toml:"name_column"`
	DestinationCodeColumn string `toml:"destination_code_column"`
	StockUnitColumn       string `toml:"stock_unit_column"`
	ConsumptionColumn     string `toml:"consumption_column"`
}

// LoadConfigInfo carries facts about how the config was loaded.
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir:    "data",
			AutoBackup: true,
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		Import: ImportConfig{
			ReferenceColumn:       "J",
			NameColumn:            "K",
			DestinationCodeColumn: "E",
			StockUnitColumn:       "L",
			ConsumptionColumn:     "AO",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverMap, ok := raw["server"].(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir returns the directory of the running executable.
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

func baseDir() string {
	exeDir, err := GetExeDir()
	if err != nil || exeDir == "" {
		return "."
	}
	return exeDir
}

// LoadConfigWithInfo loads config.toml from the executable's directory.
// A missing file yields the defaults. Environment variables override the file.
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	return LoadFile(filepath.Join(baseDir(), "config.toml"))
}

// LoadFile loads the configuration at path.
func LoadFile(path string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(config)
			return config, info, nil
		}
		return nil, info, err
	}
	info.FileFound = true
	info.PortSpecified = isPortSpecifiedInToml(data)

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, info, err
	}

	applyEnv(config)
	return config, info, nil
}

func applyEnv(config *AppConfig) {
	if v := os.Getenv("RESTOCK_DB_DRIVER"); v != "" {
		config.Database.Driver = v
	}
	if v := os.Getenv("RESTOCK_DB_DSN"); v != "" {
		config.Database.DSN = v
	}
	if v := os.Getenv("RESTOCK_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}
	if v := os.Getenv("RESTOCK_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
}

// SaveConfig writes config to config.toml beside the executable.
func SaveConfig(config *AppConfig) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(baseDir(), "config.toml"), data, 0644)
}

// ResolveDataDir returns the absolute data directory. Relative paths are
// taken from the executable's directory.
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	return filepath.Join(baseDir(), config.Data.DataDir)
}

// EnsureDataDir creates the data directory and its subdirectories.
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	for _, subdir := range []string{"uploads", "exports", "backups"} {
		if err := os.MkdirAll(filepath.Join(dataDir, subdir), 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}

// GetDataPath returns the path of filename under a data subdirectory.
func GetDataPath(config *AppConfig, subdir, filename string) string {
	return filepath.Join(ResolveDataDir(config), subdir, filename)
}

// DatabaseDSN returns the DSN to open, defaulting sqlite to the data directory.
func DatabaseDSN(config *AppConfig, dataDir string) string {
	if config.Database.DSN != "" {
		return config.Database.DSN
	}
	if config.Database.Driver == "" || config.Database.Driver == "sqlite3" {
		return filepath.Join(dataDir, "restock.db")
	}
	return ""
}
