package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestDefaultConfig 測試默認配置生成
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, ConfigVersionLatest, cfg.Version)
	assert.Equal(t, uint(25), cfg.Search.Limit)
	assert.Empty(t, cfg.Search.DefaultTag)
	assert.True(t, cfg.Catalogs.Apt)
	assert.True(t, cfg.Catalogs.Brew)
	assert.True(t, cfg.Catalogs.Index.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

// TestFillDefaults 測試默認值填充邏輯
func TestFillDefaults(t *testing.T) {
	cfg := &Config{
		Search: SearchConfig{DefaultTag: "  zip "},
		Log:    LogConfig{Level: " WARN ", MaxBackups: -1},
	}
	cfg.FillDefaults()

	assert.Equal(t, uint(25), cfg.Search.Limit)
	assert.Equal(t, "zip", cfg.Search.DefaultTag)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Log.MaxSize)
	assert.Equal(t, 3, cfg.Log.MaxBackups)
	assert.Equal(t, 14, cfg.Log.MaxAge)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"默認配置", func(*Config) {}, false},
		{"版本過高", func(c *Config) { c.Version = ConfigVersionLatest + 1 }, true},
		{"上限過大", func(c *Config) { c.Search.Limit = 1000 }, true},
		{"無效日誌級別", func(c *Config) { c.Log.Level = "verbose" }, true},
		{"日誌文件過大", func(c *Config) { c.Log.MaxSize = 500 }, true},
		{"沒有來源", func(c *Config) {
			c.Catalogs.Apt = false
			c.Catalogs.Brew = false
			c.Catalogs.Index.Enabled = false
		}, true},
		{"只啟用索引", func(c *Config) {
			c.Catalogs.Apt = false
			c.Catalogs.Brew = false
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDeepCopy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Catalogs.Index.Manifest = "/srv/index.yaml"

	cp := cfg.DeepCopy()
	require.NotSame(t, cfg, cp)
	assert.Equal(t, cfg, cp)

	cp.Catalogs.Index.Manifest = "other"
	assert.Equal(t, "/srv/index.yaml", cfg.Catalogs.Index.Manifest)

	var nilCfg *Config
	assert.Nil(t, nilCfg.DeepCopy())
}

func TestYAMLKeys(t *testing.T) {
	raw := `
version: 1
search:
  limit: 40
  default_tag: archiver
catalogs:
  apt: false
  brew: true
  index:
    enabled: true
    manifest: /tmp/index.yaml
log:
  level: debug
`
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(raw), &cfg))

	assert.Equal(t, uint(40), cfg.Search.Limit)
	assert.Equal(t, "archiver", cfg.Search.DefaultTag)
	assert.False(t, cfg.Catalogs.Apt)
	assert.Equal(t, "/tmp/index.yaml", cfg.Catalogs.Index.Manifest)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestMigrator(t *testing.T) {
	m := NewMigrator()

	t.Run("未標版本", func(t *testing.T) {
		old := &Config{Catalogs: CatalogsConfig{Apt: true}}
		assert.True(t, m.NeedsMigration(old))

		cfg, err := m.MigrateToLatest(old)
		require.NoError(t, err)
		assert.Equal(t, ConfigVersionLatest, cfg.Version)
		assert.Equal(t, uint(25), cfg.Search.Limit)
		assert.Equal(t, 0, old.Version)
	})

	t.Run("已是最新", func(t *testing.T) {
		cfg := DefaultConfig()
		got, err := m.MigrateToLatest(cfg)
		require.NoError(t, err)
		assert.Same(t, cfg, got)
		assert.False(t, m.NeedsMigration(cfg))
	})

	t.Run("版本過高", func(t *testing.T) {
		_, err := m.MigrateToLatest(&Config{Version: ConfigVersionLatest + 1})
		assert.Error(t, err)
	})

	t.Run("空配置", func(t *testing.T) {
		_, err := m.MigrateToLatest(nil)
		assert.Error(t, err)
		assert.False(t, m.NeedsMigration(nil))
	})
}
