package catalog

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	domainCatalog "github.com/Yat-Muk/pkgdeck/internal/domain/catalog"
	"github.com/Yat-Muk/pkgdeck/internal/infra/system"
	"github.com/Yat-Muk/pkgdeck/internal/pkg/errors"
)

// AptSourceName apt 來源名
const AptSourceName = "apt"

// AptSource 通過 apt-cache / apt-get / dpkg-query 訪問 Debian 系包
// apt 沒有標籤概念，帶標籤的查詢不會返回結果
type AptSource struct {
	exec system.Executor
	log  *zap.Logger
}

var _ Source = (*AptSource)(nil)

func NewAptSource(exec system.Executor, log *zap.Logger) *AptSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &AptSource{exec: exec, log: log.Named(AptSourceName)}
}

func (a *AptSource) Name() string { return AptSourceName }

func (a *AptSource) Available() bool {
	return a.exec.Exists("apt-cache") && a.exec.Exists("apt-get") && a.exec.Exists("dpkg-query")
}

func (a *AptSource) Search(ctx context.Context, opts domainCatalog.FindOptions) ([]domainCatalog.PackageRecord, error) {
	text := strings.TrimSpace(opts.Text())
	if text == "" || opts.Tag() != "" {
		return nil, nil
	}

	out, err := a.exec.Execute(ctx, "apt-cache", "search", "--names-only", text)
	if err != nil {
		return nil, errors.Wrap(err, "APT001", "apt-cache search failed")
	}

	limit := effectiveLimit(opts)
	var names []string
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() && len(names) < limit {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		name, _, _ := strings.Cut(line, " - ")
		names = append(names, strings.TrimSpace(name))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("解析 apt-cache 輸出失敗: %w", err)
	}
	if len(names) == 0 {
		return nil, nil
	}

	installed, err := a.installedVersions(ctx, names...)
	if err != nil {
		return nil, err
	}

	records := make([]domainCatalog.PackageRecord, 0, len(names))
	for _, name := range names {
		records = append(records, domainCatalog.PackageRecord{
			ID:               qualify(AptSourceName, name),
			Name:             name,
			InstalledVersion: installed[name],
			Source:           AptSourceName,
		})
	}
	return records, nil
}

// installedVersions 一次查詢多個包的安裝狀態
// dpkg-query 對未知包返回非零，但仍會輸出已知包的信息
func (a *AptSource) installedVersions(ctx context.Context, names ...string) (map[string]string, error) {
	args := append([]string{"-W", "-f=${Package}\t${Status}\t${Version}\n"}, names...)
	out, err := a.exec.Execute(ctx, "dpkg-query", args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !stderrors.Is(err, errors.ErrCommandFailed) {
			return nil, errors.Wrap(err, "APT002", "dpkg-query failed")
		}
	}
	return parseDpkgStatus(out), nil
}

func parseDpkgStatus(out string) map[string]string {
	versions := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) != 3 {
			continue
		}
		name, status, version := fields[0], fields[1], fields[2]
		if strings.HasSuffix(status, "install ok installed") && version != "" {
			// 多架構包名帶 :arch 後綴
			name, _, _ = strings.Cut(name, ":")
			versions[name] = version
		}
	}
	return versions
}

func (a *AptSource) Install(ctx context.Context, r domainCatalog.PackageRecord, opts domainCatalog.InstallOptions, progress domainCatalog.ProgressFunc) (domainCatalog.InstallResult, error) {
	name := packageName(AptSourceName, r)

	report(progress, domainCatalog.ProgressEvent{Phase: domainCatalog.PhaseQueued})
	report(progress, domainCatalog.ProgressEvent{Phase: domainCatalog.PhaseInstalling})

	// -n：憑據未緩存時直接失敗，不在 TUI 中提示密碼
	if _, err := a.exec.Execute(ctx, "sudo", "-n", "apt-get", "install", "-y", name); err != nil {
		return domainCatalog.InstallResult{}, errors.Wrap(err, "APT003", "apt-get install failed (run 'sudo -v' first to cache credentials)")
	}

	report(progress, domainCatalog.ProgressEvent{Phase: domainCatalog.PhasePostInstall})

	versions, err := a.installedVersions(ctx, name)
	if err != nil {
		a.log.Warn("查詢安裝版本失敗", zap.String("package", name), zap.Error(err))
	}
	return domainCatalog.InstallResult{InstalledVersion: versions[name]}, nil
}

func (a *AptSource) Uninstall(ctx context.Context, r domainCatalog.PackageRecord, opts domainCatalog.UninstallOptions) (domainCatalog.UninstallResult, error) {
	name := packageName(AptSourceName, r)

	if _, err := a.exec.Execute(ctx, "sudo", "-n", "apt-get", "remove", "-y", name); err != nil {
		return domainCatalog.UninstallResult{}, errors.Wrap(err, "APT004", "apt-get remove failed (run 'sudo -v' first to cache credentials)")
	}
	return domainCatalog.UninstallResult{}, nil
}
