package config

import "fmt"

const (
	// ConfigVersionLatest 最新配置版本
	ConfigVersionLatest = 1
)

// Migrator 配置遷移器
type Migrator struct{}

// NewMigrator 創建遷移器
func NewMigrator() *Migrator {
	return &Migrator{}
}

// MigrateToLatest 自動遷移到最新版本
func (m *Migrator) MigrateToLatest(cfg *Config) (*Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置為空，無法遷移")
	}

	if cfg.Version == ConfigVersionLatest {
		return cfg, nil
	}

	if cfg.Version > ConfigVersionLatest {
		return nil, fmt.Errorf("配置版本過高 (v%d)，當前程序僅支持 v%d", cfg.Version, ConfigVersionLatest)
	}

	// 未標版本的手寫配置：補默認值後視為 v1
	newCfg := cfg.DeepCopy()
	newCfg.Version = ConfigVersionLatest
	newCfg.FillDefaults()
	return newCfg, nil
}

// NeedsMigration 檢查是否需要遷移
func (m *Migrator) NeedsMigration(cfg *Config) bool {
	if cfg == nil {
		return false
	}
	return cfg.Version < ConfigVersionLatest
}
