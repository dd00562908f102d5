package cli

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultDriver = "sqlite3"
	defaultDSN    = ":memory:"
)

// Config 配置文件, 如:
//
//	driver: mysql
//	dsn: root:123456@tcp(127.0.0.1:3306)/test
//	print_sql: true
//	cache_size: 1024
type Config struct {
	Driver    string `yaml:"driver"`
	DSN       string `yaml:"dsn"`
	PrintSql  bool   `yaml:"print_sql"`
	CacheSize int    `yaml:"cache_size"`
}

// LoadConfig path 为空时使用内存 sqlite
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{Driver: defaultDriver, DSN: defaultDSN}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q is failed, err: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q is failed, err: %w", path, err)
	}
	cfg.Driver = strings.TrimSpace(cfg.Driver)
	if cfg.Driver == "" {
		return nil, fmt.Errorf("config %q: driver is required", path)
	}
	if cfg.CacheSize < 0 {
		return nil, fmt.Errorf("config %q: cache_size should not be negative", path)
	}
	return cfg, nil
}
