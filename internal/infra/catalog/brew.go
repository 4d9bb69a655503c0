package catalog

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	domainCatalog "github.com/Yat-Muk/pkgdeck/internal/domain/catalog"
	"github.com/Yat-Muk/pkgdeck/internal/infra/system"
	"github.com/Yat-Muk/pkgdeck/internal/pkg/errors"
)

// BrewSourceName Homebrew 來源名
const BrewSourceName = "brew"

// BrewSource 通過 brew 命令訪問 Homebrew formula
type BrewSource struct {
	exec system.Executor
	log  *zap.Logger
}

var _ Source = (*BrewSource)(nil)

func NewBrewSource(exec system.Executor, log *zap.Logger) *BrewSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &BrewSource{exec: exec, log: log.Named(BrewSourceName)}
}

func (b *BrewSource) Name() string { return BrewSourceName }

func (b *BrewSource) Available() bool {
	return b.exec.Exists("brew")
}

func (b *BrewSource) Search(ctx context.Context, opts domainCatalog.FindOptions) ([]domainCatalog.PackageRecord, error) {
	text := strings.TrimSpace(opts.Text())
	if text == "" || opts.Tag() != "" {
		return nil, nil
	}

	out, err := b.exec.Execute(ctx, "brew", "search", "--formula", text)
	if err != nil {
		return nil, errors.Wrap(err, "BRW001", "brew search failed")
	}

	limit := effectiveLimit(opts)
	var names []string
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() && len(names) < limit {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "==>") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("解析 brew 輸出失敗: %w", err)
	}
	if len(names) == 0 {
		return nil, nil
	}

	installed, err := b.installedVersions(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]domainCatalog.PackageRecord, 0, len(names))
	for _, name := range names {
		records = append(records, domainCatalog.PackageRecord{
			ID:               qualify(BrewSourceName, name),
			Name:             name,
			InstalledVersion: installed[name],
			Source:           BrewSourceName,
		})
	}
	return records, nil
}

// installedVersions 解析 brew list --versions，名稱後跟一個或多個版本，取最後一個
func (b *BrewSource) installedVersions(ctx context.Context, names ...string) (map[string]string, error) {
	args := append([]string{"list", "--formula", "--versions"}, names...)
	out, err := b.exec.Execute(ctx, "brew", args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// 指定的包未安裝時 brew 返回非零
		if len(names) == 0 {
			return nil, errors.Wrap(err, "BRW002", "brew list failed")
		}
	}
	return parseBrewVersions(out), nil
}

func parseBrewVersions(out string) map[string]string {
	versions := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		versions[fields[0]] = fields[len(fields)-1]
	}
	return versions
}

func (b *BrewSource) Install(ctx context.Context, r domainCatalog.PackageRecord, opts domainCatalog.InstallOptions, progress domainCatalog.ProgressFunc) (domainCatalog.InstallResult, error) {
	name := packageName(BrewSourceName, r)

	report(progress, domainCatalog.ProgressEvent{Phase: domainCatalog.PhaseQueued})
	report(progress, domainCatalog.ProgressEvent{Phase: domainCatalog.PhaseInstalling})

	if _, err := b.exec.Execute(ctx, "brew", "install", name); err != nil {
		return domainCatalog.InstallResult{}, errors.Wrap(err, "BRW003", "brew install failed")
	}

	report(progress, domainCatalog.ProgressEvent{Phase: domainCatalog.PhasePostInstall})

	versions, err := b.installedVersions(ctx, name)
	if err != nil {
		b.log.Warn("查詢安裝版本失敗", zap.String("package", name), zap.Error(err))
	}
	return domainCatalog.InstallResult{InstalledVersion: versions[name]}, nil
}

func (b *BrewSource) Uninstall(ctx context.Context, r domainCatalog.PackageRecord, opts domainCatalog.UninstallOptions) (domainCatalog.UninstallResult, error) {
	name := packageName(BrewSourceName, r)

	if _, err := b.exec.Execute(ctx, "brew", "uninstall", name); err != nil {
		return domainCatalog.UninstallResult{}, errors.Wrap(err, "BRW004", "brew uninstall failed")
	}
	return domainCatalog.UninstallResult{}, nil
}
