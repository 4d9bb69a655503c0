package config

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	domainConfig "github.com/Yat-Muk/pkgdeck/internal/domain/config"
	"github.com/Yat-Muk/pkgdeck/internal/pkg/errors"
)

// FileRepository 基於文件的配置倉庫實現
type FileRepository struct {
	filePath     string
	mu           sync.RWMutex
	fileMu       sync.Mutex // 用於文件 I/O 的互斥鎖
	migrator     *domainConfig.Migrator
	logger       *zap.Logger
	cachedConfig *domainConfig.Config
	lastModTime  time.Time
}

var _ domainConfig.Repository = (*FileRepository)(nil)

func NewFileRepository(path string, logger *zap.Logger) *FileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileRepository{
		filePath: path,
		migrator: domainConfig.NewMigrator(),
		logger:   logger,
	}
}

// Load 加載配置（支持緩存與熱重載）
// 文件不存在時返回默認配置
func (r *FileRepository) Load(ctx context.Context) (*domainConfig.Config, error) {
	// 快速路徑：文件未變更時直接使用緩存
	r.mu.RLock()
	stat, err := os.Stat(r.filePath)

	if os.IsNotExist(err) {
		r.mu.RUnlock()
		r.logger.Info("配置文件不存在，使用默認配置", zap.String("path", r.filePath))
		return domainConfig.DefaultConfig(), nil
	}
	if err != nil {
		r.mu.RUnlock()
		return nil, fmt.Errorf("檢查配置文件狀態失敗: %w", err)
	}

	if r.cachedConfig != nil && !stat.ModTime().After(r.lastModTime) {
		// 必須返回深拷貝，避免調用方修改污染緩存
		cfg := r.cachedConfig.DeepCopy()
		r.mu.RUnlock()
		r.logger.Debug("配置未變更，使用內存緩存")
		return cfg, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// 雙重檢查：切換鎖的空檔期可能已有其他協程完成加載
	stat, err = os.Stat(r.filePath)
	if os.IsNotExist(err) {
		return domainConfig.DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("檢查配置文件狀態失敗: %w", err)
	}
	if r.cachedConfig != nil && !stat.ModTime().After(r.lastModTime) {
		return r.cachedConfig.DeepCopy(), nil
	}

	r.fileMu.Lock()
	content, err := os.ReadFile(r.filePath)
	r.fileMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("讀取配置文件失敗: %w", err)
	}

	cfg := &domainConfig.Config{}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrConfigInvalid, "CFG001", fmt.Sprintf("parse %s: %v", r.filePath, err))
	}

	if r.migrator.NeedsMigration(cfg) {
		r.logger.Info("配置需要遷移", zap.Int("from", cfg.Version))
	}
	cfg, err = r.migrator.MigrateToLatest(cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigInvalid, "CFG002", err.Error())
	}
	cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigInvalid, "CFG003", err.Error())
	}

	r.cachedConfig = cfg.DeepCopy()
	r.lastModTime = stat.ModTime()

	r.logger.Info("配置文件已從磁盤重新加載",
		zap.String("path", r.filePath),
		zap.Time("mod_time", r.lastModTime),
	)

	return cfg, nil
}

// Save 保存配置到文件（原子寫入）
func (r *FileRepository) Save(ctx context.Context, cfg *domainConfig.Config) error {
	if cfg == nil {
		return fmt.Errorf("配置對象為空")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(errors.ErrConfigInvalid, "CFG003", err.Error())
	}

	r.fileMu.Lock()
	defer r.fileMu.Unlock()

	data, err := yaml.Marshal(cfg.DeepCopy())
	if err != nil {
		return fmt.Errorf("序列化配置失敗: %w", err)
	}

	if err := WriteAtomic(r.filePath, data, 0600); err != nil {
		return fmt.Errorf("保存配置失敗: %w", err)
	}

	r.mu.Lock()
	r.cachedConfig = cfg.DeepCopy()
	if stat, err := os.Stat(r.filePath); err == nil {
		r.lastModTime = stat.ModTime()
	}
	r.mu.Unlock()

	return nil
}
