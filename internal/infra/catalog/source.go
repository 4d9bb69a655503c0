package catalog

import (
	"context"
	"strings"

	domainCatalog "github.com/Yat-Muk/pkgdeck/internal/domain/catalog"
)

// Source 單個包來源
type Source interface {
	// Name 來源名，同時作為記錄的 Source 字段與 ID 前綴
	Name() string

	// Available 來源在當前系統上是否可用
	Available() bool

	// Search 按過濾條件搜索，結果數不超過 opts.Limit
	Search(ctx context.Context, opts domainCatalog.FindOptions) ([]domainCatalog.PackageRecord, error)

	// Install 安裝包並通過 progress 報告階段
	Install(ctx context.Context, r domainCatalog.PackageRecord, opts domainCatalog.InstallOptions, progress domainCatalog.ProgressFunc) (domainCatalog.InstallResult, error)

	// Uninstall 卸載包
	Uninstall(ctx context.Context, r domainCatalog.PackageRecord, opts domainCatalog.UninstallOptions) (domainCatalog.UninstallResult, error)
}

// qualify 生成帶來源前綴的包 ID
func qualify(source, name string) string {
	return source + ":" + name
}

// packageName 從記錄中取出來源內部的包名
func packageName(source string, r domainCatalog.PackageRecord) string {
	if name, ok := strings.CutPrefix(r.ID, source+":"); ok {
		return name
	}
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// report 對可能為空的回調安全地報告進度
func report(progress domainCatalog.ProgressFunc, ev domainCatalog.ProgressEvent) {
	if progress != nil {
		progress(ev)
	}
}

func effectiveLimit(opts domainCatalog.FindOptions) int {
	if opts.Limit == 0 {
		return domainCatalog.DefaultLimit
	}
	return int(opts.Limit)
}
