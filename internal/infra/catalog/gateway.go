package catalog

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	domainCatalog "github.com/Yat-Muk/pkgdeck/internal/domain/catalog"
	"github.com/Yat-Muk/pkgdeck/internal/pkg/errors"
)

// compositeCatalog 合併目錄句柄，只包含可用的來源
type compositeCatalog struct {
	sources []Source
}

func (c *compositeCatalog) Name() string {
	return strings.Join(c.Sources(), "+")
}

func (c *compositeCatalog) Sources() []string {
	names := make([]string, 0, len(c.sources))
	for _, s := range c.sources {
		names = append(names, s.Name())
	}
	return names
}

// Gateway 多來源合併的目錄網關
type Gateway struct {
	sources []Source
	log     *zap.Logger

	// 探測在 singleflight 內進行，緩存讀取不加鎖
	group     singleflight.Group
	composite atomic.Pointer[compositeCatalog]
}

var _ domainCatalog.Gateway = (*Gateway)(nil)

// NewGateway 創建網關，sources 的順序即結果合併順序
func NewGateway(log *zap.Logger, sources ...Source) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		sources: sources,
		log:     log.Named("catalog"),
	}
}

// CompositeCatalog 首次調用時探測可用來源並緩存結果
// 並發調用合併為一次探測
func (g *Gateway) CompositeCatalog(ctx context.Context) (domainCatalog.Catalog, error) {
	if cached := g.composite.Load(); cached != nil {
		return cached, nil
	}

	ch := g.group.DoChan("composite", func() (interface{}, error) {
		return g.bootstrap()
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*compositeCatalog), nil
	}
}

func (g *Gateway) bootstrap() (*compositeCatalog, error) {
	if cached := g.composite.Load(); cached != nil {
		return cached, nil
	}

	var available []Source
	for _, s := range g.sources {
		if s.Available() {
			available = append(available, s)
			continue
		}
		g.log.Info("包來源不可用，已跳過", zap.String("source", s.Name()))
	}

	if len(available) == 0 {
		return nil, errors.Wrap(errors.ErrCatalogUnavailable, "CAT001", "no package source is available on this system")
	}

	composite := &compositeCatalog{sources: available}
	g.composite.Store(composite)
	g.log.Info("已連接合併目錄", zap.Strings("sources", composite.Sources()))
	return composite, nil
}

// FindPackages 並發查詢所有來源
// 單個來源失敗只記錄日誌；全部失敗時返回錯誤
func (g *Gateway) FindPackages(ctx context.Context, c domainCatalog.Catalog, opts domainCatalog.FindOptions) ([]domainCatalog.PackageMatch, error) {
	cc, ok := c.(*compositeCatalog)
	if !ok || cc == nil {
		return nil, fmt.Errorf("不支持的目錄句柄: %T", c)
	}

	results := make([][]domainCatalog.PackageRecord, len(cc.sources))
	failures := make([]error, len(cc.sources))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, src := range cc.sources {
		eg.Go(func() error {
			records, err := src.Search(egCtx, opts)
			if err != nil {
				if egCtx.Err() != nil {
					return egCtx.Err()
				}
				g.log.Warn("包來源查詢失敗",
					zap.String("source", src.Name()),
					zap.String("text", opts.Text()),
					zap.Error(err),
				)
				failures[i] = fmt.Errorf("%s: %w", src.Name(), err)
				return nil
			}
			results[i] = records
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failed := 0
	for _, err := range failures {
		if err != nil {
			failed++
		}
	}
	if failed == len(cc.sources) {
		return nil, stderrors.Join(failures...)
	}

	limit := effectiveLimit(opts)
	matches := make([]domainCatalog.PackageMatch, 0, limit)
	for i, records := range results {
		for _, r := range records {
			if len(matches) >= limit {
				return matches, nil
			}
			matches = append(matches, domainCatalog.PackageMatch{
				Record:  r,
				Catalog: cc.sources[i].Name(),
			})
		}
	}
	return matches, nil
}

// Install 按記錄的來源路由安裝請求
func (g *Gateway) Install(ctx context.Context, r domainCatalog.PackageRecord, opts domainCatalog.InstallOptions, progress domainCatalog.ProgressFunc) (domainCatalog.InstallResult, error) {
	src, err := g.route(r)
	if err != nil {
		return domainCatalog.InstallResult{}, err
	}
	g.log.Info("安裝包", zap.String("source", src.Name()), zap.String("package", r.ID), zap.Stringer("scope", opts.Scope))
	return src.Install(ctx, r, opts, progress)
}

// Uninstall 按記錄的來源路由卸載請求
func (g *Gateway) Uninstall(ctx context.Context, r domainCatalog.PackageRecord, opts domainCatalog.UninstallOptions) (domainCatalog.UninstallResult, error) {
	src, err := g.route(r)
	if err != nil {
		return domainCatalog.UninstallResult{}, err
	}
	g.log.Info("卸載包", zap.String("source", src.Name()), zap.String("package", r.ID), zap.Stringer("scope", opts.Scope))
	return src.Uninstall(ctx, r, opts)
}

func (g *Gateway) route(r domainCatalog.PackageRecord) (Source, error) {
	for _, s := range g.sources {
		if s.Name() == r.Source {
			return s, nil
		}
	}
	return nil, errors.Wrap(errors.ErrSourceNotFound, "CAT002", fmt.Sprintf("no source %q for %s", r.Source, r.ID))
}
