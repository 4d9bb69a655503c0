package config

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Repository 配置倉庫接口
type Repository interface {
	// Load 加載配置
	Load(ctx context.Context) (*Config, error)

	// Save 保存配置
	Save(ctx context.Context, cfg *Config) error
}

// Config 主配置結構
type Config struct {
	Version  int            `yaml:"version"`
	Search   SearchConfig   `yaml:"search"`
	Catalogs CatalogsConfig `yaml:"catalogs"`
	Log      LogConfig      `yaml:"log"`
}

// SearchConfig 搜索配置
type SearchConfig struct {
	Limit      uint   `yaml:"limit"`
	DefaultTag string `yaml:"default_tag,omitempty"` // 啟動時自動按標籤瀏覽
}

// CatalogsConfig 參與合併的包來源
type CatalogsConfig struct {
	Apt   bool        `yaml:"apt"`
	Brew  bool        `yaml:"brew"`
	Index IndexConfig `yaml:"index"`
}

// IndexConfig 本地 YAML 索引來源
type IndexConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Manifest string `yaml:"manifest,omitempty"` // 留空使用基礎目錄下的 index.yaml
}

// LogConfig 日誌配置
type LogConfig struct {
	Level      string `yaml:"level"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

const (
	defaultSearchLimit = 25
	maxSearchLimit     = 500
)

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// DefaultConfig 默認配置
func DefaultConfig() *Config {
	return &Config{
		Version: ConfigVersionLatest,
		Search: SearchConfig{
			Limit: defaultSearchLimit,
		},
		Catalogs: CatalogsConfig{
			Apt:  true,
			Brew: true,
			Index: IndexConfig{
				Enabled: true,
			},
		},
		Log: LogConfig{
			Level:      "info",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     14,
			Compress:   true,
		},
	}
}

// FillDefaults 為缺省字段補默認值
func (c *Config) FillDefaults() {
	def := DefaultConfig()

	if c.Search.Limit == 0 {
		c.Search.Limit = def.Search.Limit
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.MaxSize <= 0 {
		c.Log.MaxSize = def.Log.MaxSize
	}
	if c.Log.MaxBackups < 0 {
		c.Log.MaxBackups = def.Log.MaxBackups
	}
	if c.Log.MaxAge <= 0 {
		c.Log.MaxAge = def.Log.MaxAge
	}
	c.Search.DefaultTag = strings.TrimSpace(c.Search.DefaultTag)
}

// Validate 驗證配置
func (c *Config) Validate() error {
	if c.Version > ConfigVersionLatest {
		return fmt.Errorf("配置版本過高 (v%d)，當前程序僅支持 v%d", c.Version, ConfigVersionLatest)
	}
	if c.Search.Limit > maxSearchLimit {
		return fmt.Errorf("search.limit 超出範圍: %d (最大 %d)", c.Search.Limit, maxSearchLimit)
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("無效的日誌級別: %q", c.Log.Level)
	}
	if c.Log.MaxSize > 100 {
		return fmt.Errorf("log.max_size 超出範圍: %d", c.Log.MaxSize)
	}
	if !c.Catalogs.Apt && !c.Catalogs.Brew && !c.Catalogs.Index.Enabled {
		return fmt.Errorf("至少需要啟用一個包來源")
	}
	return nil
}

// DeepCopy 深拷貝配置
// 通過序列化回環實現，新增字段自動生效
func (c *Config) DeepCopy() *Config {
	if c == nil {
		return nil
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		panic(fmt.Errorf("DeepCopy 序列化失敗 (這是一個 Bug): %w", err))
	}

	var newCfg Config
	if err := yaml.Unmarshal(data, &newCfg); err != nil {
		panic(fmt.Errorf("DeepCopy 反序列化失敗 (這是一個 Bug): %w", err))
	}

	return &newCfg
}
