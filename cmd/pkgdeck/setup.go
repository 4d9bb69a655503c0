package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Yat-Muk/pkgdeck/internal/application"
	"github.com/Yat-Muk/pkgdeck/internal/domain/catalog"
	domainConfig "github.com/Yat-Muk/pkgdeck/internal/domain/config"
	infraCatalog "github.com/Yat-Muk/pkgdeck/internal/infra/catalog"
	infraConfig "github.com/Yat-Muk/pkgdeck/internal/infra/config"
	infraSystem "github.com/Yat-Muk/pkgdeck/internal/infra/system"
	"github.com/Yat-Muk/pkgdeck/internal/pkg/appctx"
	"github.com/Yat-Muk/pkgdeck/internal/pkg/logger"
	"github.com/Yat-Muk/pkgdeck/internal/tui/bridge"
	"github.com/Yat-Muk/pkgdeck/internal/tui/handlers"
)

// StartOptions 命令行帶入的啟動參數
type StartOptions struct {
	Tag   string
	Query string
}

type AppDependencies struct {
	App           *appctx.App
	Search        *application.SearchService
	Bridge        *bridge.Program
	HandlerConfig *handlers.Config
}

// Close 停止後台搜索與消息投遞
func (d *AppDependencies) Close() {
	if d.Search != nil {
		d.Search.Close()
	}
	if d.Bridge != nil {
		d.Bridge.Close()
	}
}

// loadConfig 日誌器創建前加載配置，失敗時回退到默認值
// 首次運行時把默認配置寫入文件，便於用戶修改
func loadConfig(paths *appctx.Paths) (*domainConfig.Config, error) {
	ctx := context.Background()
	repo := infraConfig.NewFileRepository(paths.ConfigFile, zap.NewNop())

	_, statErr := os.Stat(paths.ConfigFile)
	firstRun := os.IsNotExist(statErr)

	cfg, err := repo.Load(ctx)
	if err != nil {
		return domainConfig.DefaultConfig(), err
	}

	if firstRun {
		if err := repo.Save(ctx, cfg); err != nil {
			return cfg, fmt.Errorf("寫入默認配置失敗: %w", err)
		}
	}
	return cfg, nil
}

// newLogger 按配置創建寫入日誌目錄的日誌器
func newLogger(paths *appctx.Paths, cfg *domainConfig.Config, debug bool) (*zap.Logger, error) {
	logConfig := logger.DefaultConfig()
	logConfig.OutputPath = filepath.Join(paths.LogDir, "pkgdeck.log")
	logConfig.Level = cfg.Log.Level
	logConfig.MaxSize = cfg.Log.MaxSize
	logConfig.MaxBackups = cfg.Log.MaxBackups
	logConfig.MaxAge = cfg.Log.MaxAge
	logConfig.Compress = cfg.Log.Compress
	if debug {
		logConfig.Level = "debug"
	}
	return logger.New(logConfig)
}

// buildSources 按配置創建已啟用的目錄來源
func buildSources(cfg *domainConfig.Config, paths *appctx.Paths, exec infraSystem.Executor, log *zap.Logger) []infraCatalog.Source {
	var sources []infraCatalog.Source

	if cfg.Catalogs.Apt {
		sources = append(sources, infraCatalog.NewAptSource(exec, log))
	}
	if cfg.Catalogs.Brew {
		sources = append(sources, infraCatalog.NewBrewSource(exec, log))
	}
	if cfg.Catalogs.Index.Enabled {
		manifest := cfg.Catalogs.Index.Manifest
		if manifest == "" {
			manifest = paths.IndexFile
		}
		sources = append(sources, infraCatalog.NewIndexSource(manifest, paths, log))
	}
	return sources
}

func initializeDependencies(log *zap.Logger, paths *appctx.Paths, cfg *domainConfig.Config, opts StartOptions) (*AppDependencies, error) {
	// ==========================================
	// 1. 基礎設施層
	// ==========================================
	executor := infraSystem.NewExecutor(log)

	sources := buildSources(cfg, paths, executor, log)
	if len(sources) == 0 {
		return nil, fmt.Errorf("沒有啟用任何目錄來源")
	}
	gateway := infraCatalog.NewGateway(log, sources...)

	app := &appctx.App{
		Log:     log,
		Paths:   paths,
		Config:  cfg,
		Gateway: gateway,
	}

	// ==========================================
	// 2. 應用服務層
	// ==========================================
	tuiBridge := bridge.New(log)

	tag := opts.Tag
	if tag == "" {
		tag = cfg.Search.DefaultTag
	}

	// 有初始查詢時由界面提交，避免先瀏覽標籤再立即被取代
	startupTag := tag
	if opts.Query != "" {
		startupTag = ""
	}

	search := application.NewSearchService(gateway, tuiBridge.Surface(), application.SearchOptions{
		Limit: cfg.Search.Limit,
		Tag:   startupTag,
	}, app.Logger("app"))

	newOperation := func(r catalog.PackageRecord) handlers.Invoker {
		return application.NewOperationController(gateway, r, tuiBridge.Sink(), app.Logger("app"),
			application.WithOnFinished(func(r catalog.PackageRecord, installed bool) {
				version := ""
				if installed {
					version = r.InstalledVersion
				}
				search.MarkInstalled(r.ID, version)
			}),
		)
	}

	// ==========================================
	// 3. 表現層配置
	// ==========================================
	handlerConfig := &handlers.Config{
		Log:          log,
		Search:       search,
		NewOperation: newOperation,
		DefaultTag:   tag,
		InitialQuery: opts.Query,
	}

	log.Info("依賴初始化完成",
		zap.Int("sources", len(sources)),
		zap.Uint("limit", cfg.Search.Limit),
		zap.String("tag", tag),
	)

	return &AppDependencies{
		App:           app,
		Search:        search,
		Bridge:        tuiBridge,
		HandlerConfig: handlerConfig,
	}, nil
}
