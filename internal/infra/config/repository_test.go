package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainConfig "github.com/Yat-Muk/pkgdeck/internal/domain/config"
	"github.com/Yat-Muk/pkgdeck/internal/pkg/errors"
)

func newTestRepo(t *testing.T) (*FileRepository, string) {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	return NewFileRepository(configPath, zap.NewNop()), configPath
}

func TestFileRepository_Load_NonExistent(t *testing.T) {
	repo, _ := newTestRepo(t)

	cfg, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domainConfig.DefaultConfig(), cfg)
}

func TestFileRepository_SaveAndLoad(t *testing.T) {
	repo, configPath := newTestRepo(t)
	ctx := context.Background()

	cfg := domainConfig.DefaultConfig()
	cfg.Search.DefaultTag = "archiver"
	cfg.Catalogs.Brew = false

	require.NoError(t, repo.Save(ctx, cfg))
	assert.FileExists(t, configPath)

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "archiver", loaded.Search.DefaultTag)
	assert.False(t, loaded.Catalogs.Brew)
}

func TestFileRepository_Cache(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	cfg := domainConfig.DefaultConfig()
	cfg.Search.Limit = 40
	require.NoError(t, repo.Save(ctx, cfg))

	cfg1, err := repo.Load(ctx)
	require.NoError(t, err)
	cfg2, err := repo.Load(ctx)
	require.NoError(t, err)

	cfg2.Search.Limit = 99
	assert.Equal(t, uint(40), cfg1.Search.Limit)

	cfg3, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(40), cfg3.Search.Limit)
}

func TestFileRepository_HotReload(t *testing.T) {
	repo, configPath := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, domainConfig.DefaultConfig()))
	loaded1, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(25), loaded1.Search.Limit)

	// 外部修改文件
	raw := "version: 1\nsearch:\n  limit: 60\ncatalogs:\n  apt: true\nlog:\n  level: info\n"
	require.NoError(t, os.WriteFile(configPath, []byte(raw), 0600))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(configPath, future, future))

	loaded2, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(60), loaded2.Search.Limit)
}

func TestFileRepository_LoadFillsDefaults(t *testing.T) {
	repo, configPath := newTestRepo(t)

	require.NoError(t, os.WriteFile(configPath, []byte("catalogs:\n  index:\n    enabled: true\n"), 0600))

	cfg, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domainConfig.ConfigVersionLatest, cfg.Version)
	assert.Equal(t, uint(25), cfg.Search.Limit)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestFileRepository_LoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		code string
	}{
		{"格式錯誤", "search: [", "CFG001"},
		{"版本過高", "version: 9\n", "CFG002"},
		{"沒有來源", "catalogs:\n  apt: false\n", "CFG003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, configPath := newTestRepo(t)
			require.NoError(t, os.WriteFile(configPath, []byte(tt.raw), 0600))

			_, err := repo.Load(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrConfigInvalid)
			assert.Equal(t, tt.code, errors.Code(err))
		})
	}
}

func TestFileRepository_Save_NilConfig(t *testing.T) {
	repo, _ := newTestRepo(t)

	err := repo.Save(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "配置對象為空")
}

func TestFileRepository_Save_Invalid(t *testing.T) {
	repo, configPath := newTestRepo(t)

	cfg := domainConfig.DefaultConfig()
	cfg.Log.Level = "loud"

	err := repo.Save(context.Background(), cfg)
	assert.ErrorIs(t, err, errors.ErrConfigInvalid)
	assert.NoFileExists(t, configPath)
}

func TestWriteAtomic_NoTempLeft(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.yaml")

	require.NoError(t, WriteAtomic(path, []byte("a: 1\n"), 0644))
	require.NoError(t, WriteAtomic(path, []byte("a: 2\n"), 0644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a: 2\n", string(data))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1, "不應有臨時文件殘留")
}

func TestFileRepository_Concurrent(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, domainConfig.DefaultConfig()))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Load(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
